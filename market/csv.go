package market

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// ErrNoBars is returned when a bar source yields no bars, either because
// the file is empty or the date-range filter removed everything.
var ErrNoBars = errors.New("market: no bars")

// Accepted timestamp layouts, tried in order.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// LoadCSV reads bars from a CSV file with columns
// datetime,open,high,low,close,volume. A header row is detected and
// skipped. Bars must be ordered by non-decreasing timestamp.
func LoadCSV(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses bars from r. See LoadCSV for the expected format.
func ReadCSV(r io.Reader) ([]Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var bars []Bar
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bars: %w", err)
		}
		line++

		if len(rec) < 6 {
			return nil, fmt.Errorf("read bars: line %d: want 6 fields, got %d", line, len(rec))
		}

		// Header row
		if line == 1 && !looksNumeric(rec[1]) {
			continue
		}

		ts, err := parseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("read bars: line %d: %w", line, err)
		}

		vals := make([]float64, 5)
		for i := 0; i < 5; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("read bars: line %d field %d: %w", line, i+1, err)
			}
			vals[i] = v
		}

		bars = append(bars, Bar{
			Time:   ts,
			Open:   vals[0],
			High:   vals[1],
			Low:    vals[2],
			Close:  vals[3],
			Volume: vals[4],
		})
	}

	if len(bars) == 0 {
		return nil, ErrNoBars
	}
	if err := ValidateBars(bars); err != nil {
		return nil, err
	}
	return bars, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func looksNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
