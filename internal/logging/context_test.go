package logging

import (
	"context"
	"strings"
	"testing"
)

func TestContextIDs(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "corr-1")
	ctx = ContextWithRequestID(ctx, "req-1")

	if id, ok := CorrelationIDFromContext(ctx); !ok || id != "corr-1" {
		t.Errorf("correlation id = %q, %v", id, ok)
	}
	if id, ok := RequestIDFromContext(ctx); !ok || id != "req-1" {
		t.Errorf("request id = %q, %v", id, ok)
	}
}

func TestMissingContextValues(t *testing.T) {
	ctx := context.Background()
	if _, ok := CorrelationIDFromContext(ctx); ok {
		t.Error("unexpected correlation id")
	}
	if _, ok := RequestIDFromContext(ctx); ok {
		t.Error("unexpected request id")
	}
	if fields := GameFieldsFromContext(ctx); fields != nil {
		t.Errorf("unexpected game fields %v", fields)
	}
}

func TestGeneratedIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := GenerateRequestID()
		if !strings.HasPrefix(id, "req_") {
			t.Fatalf("request id %q lacks prefix", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
	if id := GenerateCorrelationID(); !strings.HasPrefix(id, "corr_") {
		t.Errorf("correlation id %q lacks prefix", id)
	}
}

func TestGameFields(t *testing.T) {
	ctx := ContextWithGame(context.Background(), GameRef{Index: 0})
	fields := GameFieldsFromContext(ctx)
	if len(fields) != 1 || fields["game"] != 0 {
		t.Errorf("fields = %v, want only game=0", fields)
	}

	ctx = ContextWithGame(ctx, GameRef{File: "a.pgn", Index: 5, Title: "A vs. B"})
	fields = GameFieldsFromContext(ctx)
	if fields["pgn_file"] != "a.pgn" || fields["game"] != 5 || fields["game_title"] != "A vs. B" {
		t.Errorf("fields = %v", fields)
	}
}
