// Package mq moves the outbound domain event stream over a pluggable
// broker. The server publishes envelopes through it and the
// `mingle events` command subscribes to tail them.
package mq

import "context"

// Message is one event envelope as delivered by the broker.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Handler processes a delivered event. Return an error to nack it for
// redelivery.
type Handler func(ctx context.Context, msg Message) error

// Backend is implemented per broker (RabbitMQ, Pub/Sub).
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ is the broker-agnostic handle the rest of the app holds.
type MQ struct {
	backend Backend
}

// New wraps a backend.
func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Publish sends an event envelope to the named channel.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	return m.backend.Publish(ctx, channel, data, attrs)
}

// Subscribe consumes events from the named channel.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	return m.backend.Subscribe(ctx, channel, handler)
}

// Close closes the underlying backend.
func (m *MQ) Close() error {
	return m.backend.Close()
}
