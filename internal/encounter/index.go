// Package encounter builds the in-memory lookup structures over a fetched
// encounter batch: the charge-code index the reconciliation engine classifies
// against, the first-seen patient info lookup, and the cross-reference lookup
// used by the concord profile. All three are built in one pass and read-only
// afterward.
package encounter

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/blitzmed/censusrecon/internal/model"
	"github.com/blitzmed/censusrecon/internal/normalize"
)

// NameKey is the composite identity key: normalized last name plus the first
// token of the first name.
type NameKey struct {
	Last  string
	First string
}

// Visit is one charge line within an appointment bucket.
type Visit struct {
	Code     string
	DOS      string // raw m/d/yyyy from the source, parsed lazily
	Provider string

	dos *time.Time
}

// Date returns the visit's normalized date of service, nil if unparseable.
func (v *Visit) Date() *time.Time { return v.dos }

// PatientInfo carries the DOB/MRN pair borrowed into rosters that lack them.
type PatientInfo struct {
	DOB string
	MRN string
}

// RefKey is the concord cross-reference key: name plus either a normalized
// DOS (serial string) or a chart number, whichever field Value holds.
type RefKey struct {
	Last  string
	First string
	Value string
}

// Index is the full set of lookups for one fetched encounter batch.
type Index struct {
	buckets map[NameKey]map[string][]*Visit // key → appointment FID → visits
	order   map[NameKey][]string            // appointment FIDs in first-seen order
	info    map[NameKey]PatientInfo
	refs    map[RefKey]*model.EncounterRecord
	rows    int64
}

// BuildStats reports what happened during an index build.
type BuildStats struct {
	RowsIndexed  int64
	RowsSkipped  int64
	NamesIndexed int64
}

// Build constructs an Index from a decoded encounter batch. Rows missing a
// last name are counted and skipped; duplicate (code, dos) pairs within an
// appointment bucket are dropped so re-ingesting the same export is a no-op.
func Build(records []model.EncounterRecord, log zerolog.Logger) (*Index, *BuildStats) {
	idx := &Index{
		buckets: make(map[NameKey]map[string][]*Visit),
		order:   make(map[NameKey][]string),
		info:    make(map[NameKey]PatientInfo),
		refs:    make(map[RefKey]*model.EncounterRecord),
	}
	stats := &BuildStats{}

	for i := range records {
		rec := &records[i]
		last := normalize.Code(rec.LastName)
		first := normalize.FirstToken(rec.FirstName)
		if last == "" {
			stats.RowsSkipped++
			log.Warn().Int("row", i+1).Msg("encounter row missing last name, skipped")
			continue
		}
		key := NameKey{Last: last, First: first}

		idx.insertVisit(key, rec)
		idx.insertInfo(key, rec)
		idx.insertRefs(key, rec)
		stats.RowsIndexed++
	}

	idx.rows = stats.RowsIndexed
	stats.NamesIndexed = int64(len(idx.buckets))
	log.Info().
		Int64("rows_indexed", stats.RowsIndexed).
		Int64("rows_skipped", stats.RowsSkipped).
		Int64("names", stats.NamesIndexed).
		Msg("encounter index built")
	return idx, stats
}

func (idx *Index) insertVisit(key NameKey, rec *model.EncounterRecord) {
	appts, ok := idx.buckets[key]
	if !ok {
		appts = make(map[string][]*Visit)
		idx.buckets[key] = appts
	}
	fid := normalize.Code(rec.AppointmentFID)
	code := normalize.Code(rec.ChargeCode)
	dos := rec.DOS

	for _, v := range appts[fid] {
		if v.Code == code && v.DOS == dos {
			return // idempotent re-ingestion
		}
	}
	if _, seen := appts[fid]; !seen {
		idx.order[key] = append(idx.order[key], fid)
	}
	appts[fid] = append(appts[fid], &Visit{
		Code:     code,
		DOS:      dos,
		Provider: rec.Provider,
		dos:      normalize.ParseDate(dos),
	})
}

// insertInfo records DOB/MRN for a key, first row wins.
func (idx *Index) insertInfo(key NameKey, rec *model.EncounterRecord) {
	if _, seen := idx.info[key]; seen {
		return
	}
	idx.info[key] = PatientInfo{DOB: rec.DOB, MRN: rec.ChartNumber}
}

// insertRefs records the concord cross-reference entries, first row wins.
func (idx *Index) insertRefs(key NameKey, rec *model.EncounterRecord) {
	if dos := normalize.ParseDate(rec.DOS); dos != nil {
		k := RefKey{Last: key.Last, First: key.First, Value: normalize.SerialString(dos)}
		if _, seen := idx.refs[k]; !seen {
			idx.refs[k] = rec
		}
	}
	if chart := normalize.Code(rec.ChartNumber); chart != "" {
		k := RefKey{Last: key.Last, First: key.First, Value: chart}
		if _, seen := idx.refs[k]; !seen {
			idx.refs[k] = rec
		}
	}
}

// HasName reports whether any encounter exists for the key, regardless of
// date of service.
func (idx *Index) HasName(key NameKey) bool {
	_, ok := idx.buckets[key]
	return ok
}

// Candidates returns every visit for the key in deterministic order:
// appointment buckets in first-seen order, visits within a bucket in
// insertion order. Nil when the key is absent.
func (idx *Index) Candidates(key NameKey) []*Visit {
	appts, ok := idx.buckets[key]
	if !ok {
		return nil
	}
	var out []*Visit
	for _, fid := range idx.order[key] {
		out = append(out, appts[fid]...)
	}
	return out
}

// Info returns the first-seen DOB/MRN for the key.
func (idx *Index) Info(key NameKey) (PatientInfo, bool) {
	pi, ok := idx.info[key]
	return pi, ok
}

// CrossRef resolves a concord lookup: (last, first, DOS) first, then
// (last, first, chart number).
func (idx *Index) CrossRef(last, first string, dos *time.Time, chart string) (*model.EncounterRecord, bool) {
	if dos != nil {
		if rec, ok := idx.refs[RefKey{Last: last, First: first, Value: normalize.SerialString(dos)}]; ok {
			return rec, true
		}
	}
	if chart != "" {
		if rec, ok := idx.refs[RefKey{Last: last, First: first, Value: chart}]; ok {
			return rec, true
		}
	}
	return nil, false
}

// Len returns the number of indexed encounter rows.
func (idx *Index) Len() int64 { return idx.rows }
