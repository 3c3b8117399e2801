// Package roster reads uploaded census files and writes the processed
// output. Input files are header-named CSV; the input is never modified.
package roster

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/blitzmed/censusrecon/internal/model"
	"github.com/blitzmed/censusrecon/internal/normalize"
)

// Read loads a census CSV into memory. Headers are trimmed; a UTF-8 BOM on
// the first header is dropped. Short rows are padded with blanks, long rows
// keep only the named columns.
func Read(path string) (*model.RosterTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()
	return decode(f)
}

func decode(r io.Reader) (*model.RosterTable, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	if bom, err := br.Peek(3); err == nil && len(bom) == 3 &&
		bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("roster file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read roster header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}

	table := &model.RosterTable{Columns: header}
	for num := 1; ; num++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read roster row %d: %w", num, err)
		}
		fields := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				fields[col] = strings.TrimSpace(rec[i])
			}
		}
		table.Rows = append(table.Rows, &model.RosterRow{Number: num, Fields: fields})
	}
	return table, nil
}

// oldestFloor: rosters sometimes carry typo years far in the past; a fetch
// window that old would pull the entire view. Anything before 2023 clamps
// to this floor.
var oldestFloor = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// OldestDOS returns the earliest parseable Date of Service in the table,
// used as the encounter fetch window's start. Returns nil when no row has a
// parseable date.
func OldestDOS(table *model.RosterTable) *time.Time {
	var oldest *time.Time
	for _, row := range table.Rows {
		d := normalize.ParseDate(row.Get("Date of Service"))
		if d == nil {
			continue
		}
		if oldest == nil || d.Before(*oldest) {
			oldest = d
		}
	}
	if oldest != nil && oldest.Year() < 2023 {
		f := oldestFloor
		return &f
	}
	return oldest
}
