// Package service holds the business rules that span more than one
// repository call: the application lifecycle, moderation, accounts and
// profiles.  Stores are declared here as interfaces so the rules can be
// tested against in-memory fakes.
package service

import (
	"context"
	"log"

	"github.com/iliyamo/jobhunter/internal/model"
	"github.com/iliyamo/jobhunter/internal/queue"
)

// Caller identifies the authenticated user issuing a request.
type Caller struct {
	ID   uint64
	Role model.Role
}

// Publisher sends domain events once a request has committed.
type Publisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// UserReader loads users by id.
type UserReader interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// publish sends ev and only logs failures: side effects never fail the
// request that caused them.
func publish(ctx context.Context, p Publisher, ev queue.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Printf("publish %s: %v", ev.EventType(), err)
	}
}
