package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

const pubsubClientAttempts = 3

// RunCompletedMessage announces a finished extraction run.
type RunCompletedMessage struct {
	RunId         string    `json:"run_id"`
	RunDate       string    `json:"run_date"`
	OutputDir     string    `json:"output_dir"`
	Artifacts     []string  `json:"artifacts"`
	MovementCount int       `json:"movement_count"`
	OrderCount    int       `json:"order_count"`
	CompletedAt   time.Time `json:"completed_at"`
}

type PubSubSettings struct {
	ProjectId       string
	Topic           string
	CredentialsJSON string
}

func (s PubSubSettings) Enabled() bool {
	return s.Topic != ""
}

func newPubSubClient(ctx context.Context, s PubSubSettings) (*pubsub.Client, error) {
	if s.ProjectId == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	var lastErr error
	for attempt := 1; attempt <= pubsubClientAttempts; attempt++ {
		var (
			c   *pubsub.Client
			err error
		)
		if s.CredentialsJSON != "" {
			c, err = pubsub.NewClient(ctx, s.ProjectId, option.WithCredentialsJSON([]byte(s.CredentialsJSON)))
		} else {
			// Uses Application Default Credentials (service account or GOOGLE_APPLICATION_CREDENTIALS).
			c, err = pubsub.NewClient(ctx, s.ProjectId)
		}
		if err == nil {
			logg.WithFields(logrus.Fields{"project_id": s.ProjectId, "attempt": attempt}).Debug("pubsub.client.ready")
			return c, nil
		}
		lastErr = err

		sleep := time.Second * time.Duration(1<<attempt)
		logg.WithFields(logrus.Fields{"project_id": s.ProjectId, "attempt": attempt, "retry_in": sleep.String()}).
			WithError(err).Warn("pubsub.client.retry")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return nil, fmt.Errorf("init pubsub client: %w", lastErr)
}

// PublishRunCompleted publishes msg to the configured topic and returns the
// server-assigned message ID.
func PublishRunCompleted(ctx context.Context, s PubSubSettings, msg RunCompletedMessage) (string, error) {
	if s.Topic == "" {
		return "", errors.New("PUBSUB_TOPIC is required")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}

	client, err := newPubSubClient(ctx, s)
	if err != nil {
		return "", err
	}
	defer client.Close()

	t := client.Topic(s.Topic)
	defer t.Stop()
	result := t.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"run_id":   msg.RunId,
			"run_date": msg.RunDate,
		},
	})
	return result.Get(ctx)
}
