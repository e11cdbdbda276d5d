// Package repository implements the service persistence interfaces on gorm.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spotlist/api-go/services"
	"gorm.io/gorm"
)

const defaultQueryTimeout = 5 * time.Second

// base carries the connection and the per-call timeout shared by every
// repository.
type base struct {
	db      *gorm.DB
	timeout time.Duration
}

func newBase(db *gorm.DB, timeout time.Duration) base {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return base{db: db, timeout: timeout}
}

// conn returns a session bound to ctx with the query timeout applied.
func (b base) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	return b.db.WithContext(ctx), cancel
}

// transient wraps a database failure so callers see a retryable error.
func transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return services.NewTransientError(op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// userSummary limits a preloaded user to the fields shown alongside posts and reports.
func userSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email")
}

func adminSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "first_name", "last_name", "email")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// contains builds an ILIKE pattern matching s anywhere in the column.
func contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
