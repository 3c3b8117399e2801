// Package snapshot persists a fetched encounter batch as a Parquet file.
// Exports of large date windows can take tens of minutes to fetch; a
// snapshot lets later runs reconcile without touching the network.
package snapshot

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/blitzmed/censusrecon/internal/model"
)

// Write saves records to path, replacing any existing snapshot.
func Write(path string, records []model.EncounterRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	w := parquet.NewGenericWriter[model.EncounterRecord](f)
	for off := 0; off < len(records); {
		n, err := w.Write(records[off:])
		if err != nil {
			f.Close()
			return fmt.Errorf("write snapshot rows: %w", err)
		}
		off += n
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close snapshot writer: %w", err)
	}
	return f.Close()
}

// Read loads every record from a snapshot file.
func Read(path string) ([]model.EncounterRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat snapshot: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open snapshot parquet: %w", err)
	}

	r := parquet.NewGenericReader[model.EncounterRecord](pf)
	defer r.Close()

	records := make([]model.EncounterRecord, 0, r.NumRows())
	buf := make([]model.EncounterRecord, 1024)
	for {
		n, err := r.Read(buf)
		records = append(records, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read snapshot rows: %w", err)
		}
	}
	return records, nil
}
