// Package pubsub implements a Google Cloud Pub/Sub publisher for run events.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
)

// Publisher wraps a Pub/Sub topic for run-completion events.
type Publisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// New connects a Pub/Sub client and binds the topic. Authentication goes
// through Application Default Credentials.
func New(ctx context.Context, projectID, topicID string) (*Publisher, error) {
	if projectID == "" || topicID == "" {
		return nil, fmt.Errorf("pubsub project and topic are required")
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &Publisher{
		client: client,
		topic:  client.Topic(topicID),
	}, nil
}

// Publish marshals the payload to JSON and publishes it, blocking until the
// server acknowledges.
func (p *Publisher) Publish(ctx context.Context, payload any) (string, error) {
	if p == nil || p.topic == nil {
		return "", fmt.Errorf("pubsub publisher is not configured")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	result := p.topic.Publish(ctx, &pubsub.Message{Data: data})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish message: %w", err)
	}
	return id, nil
}

// Close flushes pending messages and releases the client.
func (p *Publisher) Close() error {
	if p == nil || p.client == nil {
		return nil
	}
	p.topic.Stop()
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
