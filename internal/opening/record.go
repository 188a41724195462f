// Package opening classifies games against an ECO opening dataset.
package opening

import (
	"fmt"
	"strings"
)

// Record is one row of the opening dataset.
type Record struct {
	Code     string
	Group    string
	Name     string
	Variant  string
	MoveText string
	// FEN is the position after MoveText.
	FEN string
}

// Volume returns the ECO volume letter, e.g. "B" for "B05".
func (r Record) Volume() string {
	if r.Code == "" {
		return ""
	}
	return r.Code[:1]
}

// Summary is the opening section text:
// "<volume> - <group>\n<code> - <name>\n<variant>\n<move text>".
func (r Record) Summary() string {
	clean := func(s string) string {
		return strings.TrimSpace(strings.ReplaceAll(s, "?", ""))
	}
	return fmt.Sprintf("%s - %s\n%s - %s\n%s\n%s",
		r.Volume(), r.Group, r.Code, clean(r.Name), clean(r.Variant), r.MoveText)
}

func (r Record) String() string {
	name := r.Name
	if r.Variant != "" {
		name += ", " + r.Variant
	}
	return fmt.Sprintf("%s %s (%s)", r.Code, name, r.MoveText)
}
