// Package clarity reads glucose readings out of a Dexcom Clarity CSV export.
//
// The export mixes device/patient metadata rows with EGV data rows and clips
// out-of-range readings to the literal strings "Low" and "High". Parsing is
// best-effort: rows that do not carry a usable timestamp and glucose value
// are skipped, not errored.
package clarity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// Column headers as written by the Clarity export feature. Columns are
	// located by name, not position.
	timestampHeader = "Timestamp (YYYY-MM-DDThh:mm:ss)"
	glucoseHeader   = "Glucose Value (mg/dL)"

	// Export timestamps carry no zone.
	timestampLayout = "2006-01-02T15:04:05"

	// The sensor clips readings outside its measurable range.
	lowClipMgDL  = 30
	highClipMgDL = 400
)

// ErrNoReadings means the export contained no usable data rows at all.
var ErrNoReadings = errors.New("no usable readings in export")

// Reading is one glucose measurement. Immutable once parsed.
type Reading struct {
	Time time.Time
	MgDL float64
}

// ReadFile parses the Clarity export at path into readings ordered by
// timestamp ascending.
func ReadFile(path string) ([]Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("close export", "error", closeErr)
		}
	}()
	return Read(f)
}

// Read parses a Clarity export from r. The first row must be the header row;
// data rows that fail to parse are skipped. Returns ErrNoReadings when the
// required columns are missing or no data row yields a reading.
func Read(r io.Reader) ([]Reading, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // metadata and data rows have different widths

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoReadings
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	tsCol, valCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case timestampHeader:
			tsCol = i
		case glucoseHeader:
			valCol = i
		}
	}
	if tsCol < 0 || valCol < 0 {
		return nil, fmt.Errorf("%w: header missing %q or %q", ErrNoReadings, timestampHeader, glucoseHeader)
	}

	var out []Reading
	skipped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		rec, ok := parseRow(row, tsCol, valCol)
		if !ok {
			skipped++
			continue
		}
		out = append(out, rec)
	}
	if skipped > 0 {
		slog.Debug("rows skipped", "count", skipped)
	}
	if len(out) == 0 {
		return nil, ErrNoReadings
	}

	// Exports are normally chronological already; sort so the renderer can
	// rely on it either way.
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

func parseRow(row []string, tsCol, valCol int) (Reading, bool) {
	if tsCol >= len(row) || valCol >= len(row) {
		return Reading{}, false
	}
	ts, err := time.Parse(timestampLayout, strings.TrimSpace(row[tsCol]))
	if err != nil {
		return Reading{}, false
	}
	v, ok := parseGlucose(strings.TrimSpace(row[valCol]))
	if !ok {
		return Reading{}, false
	}
	return Reading{Time: ts, MgDL: v}, true
}

func parseGlucose(s string) (float64, bool) {
	switch s {
	case "Low":
		return lowClipMgDL, true
	case "High":
		return highClipMgDL, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
