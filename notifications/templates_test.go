package notifications

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplates(t *testing.T) {
	body := RenderPostApproved("Alice", "Garage spot")
	assert.Contains(t, body, "Hi Alice,")
	assert.Contains(t, body, "<strong>Garage spot</strong> has been approved")

	assert.Contains(t, RenderPostCreated("Alice", "Garage spot"), "waiting for review")
	assert.Contains(t, RenderPostDeactivated("Alice", "Garage spot"), "has been deactivated")
}

func TestRenderReportCreated(t *testing.T) {
	body := RenderReportCreated("Bob", "Garage spot", "scam", "")
	assert.Contains(t, body, "Reason: scam")
	assert.NotContains(t, body, "Details:")

	body = RenderReportCreated("Bob", "Garage spot", "scam", "<script>x</script>")
	assert.Contains(t, body, "Details: &lt;script&gt;")
}
