package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"coopra.org/internal/auth"
	"coopra.org/internal/obs"
)

func TestLogEventIncludesActorAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	obs.SetOutput(&buf)
	defer obs.SetOutput(os.Stdout)

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = auth.ContextWithIdentity(ctx, auth.Identity{
		UserID:        "user-9",
		Role:          "super_admin",
		CooperativeID: "coop-1",
	})

	if err := LogEvent(ctx, "cooperative.approve", map[string]string{"cooperative_id": "coop-1"}); err != nil {
		t.Fatalf("log event: %v", err)
	}

	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("audit line is not valid JSON: %v", err)
	}
	if entry["type"] != "audit" || entry["event"] != "cooperative.approve" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("missing request id: %v", entry)
	}
	if entry["actor_id"] != "user-9" {
		t.Fatalf("missing actor: %v", entry)
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["cooperative_id"] != "coop-1" {
		t.Fatalf("fields not forwarded: %v", entry)
	}
}

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty event name")
	}
}
