package opening

import (
	"archive/zip"
	"bytes"
	_ "embed"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/dmmcquay/chessbook/internal/game"
)

//go:embed data/eco.csv
var embedded []byte

// column aliases accepted in the header row
var columns = map[string]string{
	"eco":      "eco",
	"code":     "eco",
	"group":    "group",
	"subgroup": "name",
	"name":     "name",
	"variant":  "variant",
	"pgn":      "pgn",
	"moves":    "pgn",
	"fen":      "fen",
}

// Default returns the embedded dataset.
func Default() ([]Record, error) {
	return Load(bytes.NewReader(embedded))
}

// LoadFile reads a dataset from a .csv file or the first .csv entry of a
// .zip archive.
func LoadFile(path string) ([]Record, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return loadZip(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	return Load(f)
}

func loadZip(path string) ([]Record, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "open %s in %s", f.Name, path)
		}
		defer rc.Close()
		return Load(rc)
	}
	return nil, errors.Errorf("%s contains no csv file", path)
}

// Load parses a CSV dataset with a header row naming at least the eco and
// pgn columns. Move text is normalised and a missing FEN is computed by
// replaying it. Rows that cannot be replayed are skipped; their errors are
// returned together with the valid records.
func Load(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	index := map[string]int{}
	for i, h := range header {
		if col, ok := columns[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, dup := index[col]; !dup {
				index[col] = i
			}
		}
	}
	if _, ok := index["eco"]; !ok {
		return nil, errors.New("dataset has no eco column")
	}
	if _, ok := index["pgn"]; !ok {
		return nil, errors.New("dataset has no pgn column")
	}

	field := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		records []Record
		result  *multierror.Error
		line    = 1
	)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "line %d", line))
			continue
		}

		rec := Record{
			Code:    field(row, "eco"),
			Group:   field(row, "group"),
			Name:    field(row, "name"),
			Variant: field(row, "variant"),
			FEN:     field(row, "fen"),
		}
		rec.MoveText, rec.FEN, err = replay(field(row, "pgn"), rec.FEN)
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "line %d (%s)", line, rec.Code))
			continue
		}
		records = append(records, rec)
	}
	return records, result.ErrorOrNil()
}

func replay(text, fen string) (string, string, error) {
	line, err := game.Replay(game.StartPosition(), game.Tokens(text))
	if err != nil {
		return "", "", err
	}
	if len(line.Plies) == 0 {
		return "", "", errors.Wrapf(game.ErrMalformed, "no moves in %q", text)
	}
	if fen == "" {
		fen = line.Plies[len(line.Plies)-1].After.(*game.Position).FEN()
	}
	return game.FormatMoveText(line), fen, nil
}
