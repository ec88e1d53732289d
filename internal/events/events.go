// Package events publishes domain events to the configured message
// broker for downstream consumers such as a moderation pipeline. A nil
// Publisher or a broker failure never fails the originating request.
package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/mingle-social/apiserver/internal/mq"
)

// Channel is the broker channel all domain events are published to.
const Channel = "mingle.events"

const (
	TypeUserRegistered = "user.registered"
	TypePostCreated    = "post.created"
	TypePostDeleted    = "post.deleted"
)

// Event is the payload published for every domain event.
type Event struct {
	Type       string    `json:"type"`
	UserID     int       `json:"user_id,omitempty"`
	PostID     int       `json:"post_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher fans domain events out to the broker.
type Publisher struct {
	mq *mq.MQ
}

// NewPublisher wraps the given MQ. A nil MQ yields a no-op publisher.
func NewPublisher(m *mq.MQ) *Publisher {
	return &Publisher{mq: m}
}

// UserRegistered announces a new account.
func (p *Publisher) UserRegistered(ctx context.Context, userID int) {
	p.publish(ctx, Event{Type: TypeUserRegistered, UserID: userID})
}

// PostCreated announces a new post.
func (p *Publisher) PostCreated(ctx context.Context, userID, postID int) {
	p.publish(ctx, Event{Type: TypePostCreated, UserID: userID, PostID: postID})
}

// PostDeleted announces a removed post.
func (p *Publisher) PostDeleted(ctx context.Context, userID, postID int) {
	p.publish(ctx, Event{Type: TypePostDeleted, UserID: userID, PostID: postID})
}

func (p *Publisher) publish(ctx context.Context, event Event) {
	if p == nil || p.mq == nil {
		return
	}
	event.OccurredAt = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("events: marshal %s failed: %v", event.Type, err)
		return
	}
	if _, err := p.mq.Publish(ctx, Channel, data, map[string]string{"type": event.Type}); err != nil {
		log.Printf("events: publish %s failed: %v", event.Type, err)
	}
}
