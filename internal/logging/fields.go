package logging

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Fields are the key-value pairs attached to a log line.
type Fields map[string]interface{}

// with returns a copy of f extended by extra. f is never modified.
func (f Fields) with(extra map[string]interface{}) Fields {
	out := make(Fields, len(f)+len(extra))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// fromContext collects the request IDs and the current game stored in ctx.
func fromContext(ctx context.Context) map[string]interface{} {
	out := GameFieldsFromContext(ctx)
	if out == nil {
		out = make(map[string]interface{}, 2)
	}
	if id, ok := CorrelationIDFromContext(ctx); ok {
		out["correlation_id"] = id
	}
	if id, ok := RequestIDFromContext(ctx); ok {
		out["request_id"] = id
	}
	return out
}

// String renders f as "k=v k=v" with sorted keys.
func (f Fields) String() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%v", k, f[k])
	}
	return sb.String()
}

// splitArgs formats the leading args consumed by the printf verbs of
// format and returns the rest as key-value fields. An unpaired trailing
// value is kept under "extra". When there are fewer args than verbs the
// whole argument list is treated as key-value pairs and format is used
// verbatim.
func splitArgs(format string, args []interface{}) (string, Fields) {
	n := countVerbs(format)
	if n > len(args) {
		n = 0
	}
	msg := format
	if n > 0 {
		msg = fmt.Sprintf(format, args[:n]...)
	}
	kv := args[n:]
	if len(kv) == 0 {
		return msg, nil
	}
	fields := make(Fields, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	if len(kv)%2 == 1 {
		fields["extra"] = kv[len(kv)-1]
	}
	return msg, fields
}

// countVerbs counts printf verbs, ignoring "%%".
func countVerbs(format string) int {
	n := 0
	for i := 0; i < len(format)-1; i++ {
		if format[i] != '%' {
			continue
		}
		if format[i+1] == '%' {
			i++
			continue
		}
		n++
	}
	return n
}
