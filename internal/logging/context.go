package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

type (
	correlationKey struct{}
	requestKey     struct{}
	gameKey        struct{}
)

// ContextWithCorrelationID tags ctx with the ID shared by every log line
// of one tool call.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func CorrelationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(correlationKey{}).(string)
	return id, ok
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestKey{}, id)
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestKey{}).(string)
	return id, ok
}

func GenerateCorrelationID() string { return newID("corr") }

func GenerateRequestID() string { return newID("req") }

func newID(prefix string) string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return prefix + "_" + strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return prefix + "_" + hex.EncodeToString(b[:])
}

// GameRef identifies the game a log line is about. Index is 1-based as
// in tool arguments.
type GameRef struct {
	File  string
	Index int
	Title string
}

// ContextWithGame attaches the game being rendered to the context.
func ContextWithGame(ctx context.Context, ref GameRef) context.Context {
	return context.WithValue(ctx, gameKey{}, ref)
}

// GameFieldsFromContext returns the log fields of the game in ctx, or nil.
func GameFieldsFromContext(ctx context.Context) map[string]interface{} {
	ref, ok := ctx.Value(gameKey{}).(GameRef)
	if !ok {
		return nil
	}
	fields := map[string]interface{}{"game": ref.Index}
	if ref.File != "" {
		fields["pgn_file"] = ref.File
	}
	if ref.Title != "" {
		fields["game_title"] = ref.Title
	}
	return fields
}
