package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu      sync.Mutex
	sent    []Message
	fail    bool
	release chan struct{}
}

func (f *fakeMailer) SendEmail(ctx context.Context, msg Message) error {
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestDispatcher_DeliversQueuedMessages(t *testing.T) {
	mailer := &fakeMailer{}
	d := NewDispatcher(mailer, 10)
	d.Start(context.Background())

	d.Send([]string{"a@example.com"}, "New Post", "summary", "<p>body</p>")
	d.Send([]string{"b@example.com"}, "Post Approved", "summary", "<p>body</p>")
	d.Close()

	require.Equal(t, 2, mailer.count())
	assert.Equal(t, "New Post", mailer.sent[0].Subject)
	assert.Equal(t, []string{"b@example.com"}, mailer.sent[1].Recipients)
}

func TestDispatcher_SendNeverBlocks(t *testing.T) {
	mailer := &fakeMailer{release: make(chan struct{})}
	d := NewDispatcher(mailer, 1)
	d.Start(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			d.Send([]string{"a@example.com"}, "New Post", "", "")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full queue")
	}
	close(mailer.release)
	d.Close()
	assert.LessOrEqual(t, mailer.count(), 2)
	assert.GreaterOrEqual(t, mailer.count(), 1)
}

func TestDispatcher_FailuresAndLateSends(t *testing.T) {
	mailer := &fakeMailer{fail: true}
	d := NewDispatcher(mailer, 0)
	d.Start(context.Background())

	d.Send([]string{"a@example.com"}, "New Post", "", "")
	d.Send(nil, "ignored", "", "")
	d.Close()
	assert.Zero(t, mailer.count())

	assert.NotPanics(t, func() {
		d.Send([]string{"a@example.com"}, "late", "", "")
	})
	d.Close()
}
