package config

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestRunCompletedMessage_JSONFields(t *testing.T) {
	msg := RunCompletedMessage{
		RunId:         "run-1",
		RunDate:       "2024-09-03",
		OutputDir:     "out/output_2024-09-03",
		Artifacts:     []string{"a.xlsx"},
		MovementCount: 12,
		OrderCount:    3,
		CompletedAt:   time.Date(2024, 9, 3, 18, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"run_id", "run_date", "output_dir", "artifacts", "movement_count", "order_count", "completed_at"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing field %q in %s", key, data)
		}
	}
	if fields["movement_count"] != float64(12) || fields["run_id"] != "run-1" {
		t.Fatalf("unexpected values %v", fields)
	}
}

func TestPublishRunCompleted_RequiresTopic(t *testing.T) {
	_, err := PublishRunCompleted(context.Background(), PubSubSettings{ProjectId: "proj"}, RunCompletedMessage{})
	if err == nil || !strings.Contains(err.Error(), "PUBSUB_TOPIC") {
		t.Fatalf("expected topic error, got %v", err)
	}
}

func TestPublishRunCompleted_RequiresProject(t *testing.T) {
	_, err := PublishRunCompleted(context.Background(), PubSubSettings{Topic: "repair-costs"}, RunCompletedMessage{})
	if err == nil || !strings.Contains(err.Error(), "PUBSUB_PROJECT_ID") {
		t.Fatalf("expected project error, got %v", err)
	}
}

func TestPubSubSettings_Enabled(t *testing.T) {
	if (PubSubSettings{ProjectId: "proj"}).Enabled() {
		t.Fatalf("expected disabled without a topic")
	}
	if !(PubSubSettings{Topic: "t"}).Enabled() {
		t.Fatalf("expected enabled with a topic")
	}
}
