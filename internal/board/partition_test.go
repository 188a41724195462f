package board

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartition_FromTo(t *testing.T) {
	runs, err := Partition(afterE4, "", "e2", "e4")
	require.NoError(t, err)
	require.Len(t, runs, 5)

	assert.Equal(t, MarkNone, runs[0].Mark)
	assert.Equal(t, []rune(afterE4)[:60], []rune(runs[0].Text))
	assert.Equal(t, Run{Text: "p", Mark: MarkTo}, runs[1])
	assert.Equal(t, MarkNone, runs[2].Mark)
	assert.Equal(t, Run{Text: "*", Mark: MarkFrom}, runs[3])
	assert.Equal(t, MarkNone, runs[4].Mark)

	assert.Equal(t, afterE4, Join(runs))
}

func TestPartition_Reconstructs(t *testing.T) {
	names := []string{"", "a1", "a8", "h1", "h8", "e4", "d5", "g7"}
	for _, check := range names {
		for _, from := range names {
			for _, to := range names {
				runs, err := Partition(startEncoded, check, from, to)
				require.NoError(t, err)
				assert.Equal(t, startEncoded, Join(runs), "check=%q from=%q to=%q", check, from, to)

				marked := 0
				for _, r := range runs {
					if r.Mark != MarkNone {
						assert.Len(t, []rune(r.Text), 1)
						marked++
					} else {
						assert.NotEmpty(t, r.Text)
					}
				}
				distinct := map[string]bool{}
				for _, n := range []string{check, from, to} {
					if n != "" {
						distinct[n] = true
					}
				}
				assert.Equal(t, len(distinct), marked)
			}
		}
	}
}

func TestPartition_TieBreak(t *testing.T) {
	tests := []struct {
		name            string
		check, from, to string
		want            Mark
	}{
		{"check and to", "e4", "", "e4", MarkTo},
		{"check and from", "e4", "e4", "", MarkFrom},
		{"all three", "e4", "e4", "e4", MarkTo},
		{"check only", "e4", "", "", MarkCheck},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := Partition(startEncoded, tt.check, tt.from, tt.to)
			require.NoError(t, err)
			require.Len(t, runs, 3)
			assert.Equal(t, tt.want, runs[1].Mark)
		})
	}
}

func TestPartition_Edges(t *testing.T) {
	// a8 sits right after the first row and its rank label
	runs := PartitionMarks(startEncoded, NoSquare, mustSquare("a8"), NoSquare)
	require.Len(t, runs, 3)
	assert.Equal(t, "1222222223\nÇ", runs[0].Text)
	assert.Equal(t, Run{Text: "t", Mark: MarkFrom}, runs[1])

	runs = PartitionMarks(startEncoded, NoSquare, NoSquare, NoSquare)
	require.Len(t, runs, 1)
	assert.Equal(t, Run{Text: startEncoded}, runs[0])

	_, err := Partition(startEncoded, "k9", "", "")
	assert.Equal(t, ErrLookup, errors.Cause(err))

	assert.Empty(t, PartitionMarks("", NoSquare, NoSquare, NoSquare))
}

func TestMarkString(t *testing.T) {
	assert.Equal(t, "plain", MarkNone.String())
	assert.Equal(t, "check", MarkCheck.String())
	assert.Equal(t, "from", MarkFrom.String())
	assert.Equal(t, "to", MarkTo.String())
}
