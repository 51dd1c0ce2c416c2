// Package holder owns a loaded trace document and answers read-only queries on it.
package holder

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/sanspareilsmyn/iolens/internal/stats"
	"github.com/sanspareilsmyn/iolens/internal/trace"
)

// Summary aggregates one file's operations under one access type.
type Summary struct {
	OpCount       int
	MaxExtent     float64 // max(offset + size)
	TotalSize     float64
	TotalDuration float64
}

// DataHolder keeps the current trace document. SetData swaps the whole document
// atomically, so readers never see a partially loaded trace.
type DataHolder struct {
	data atomic.Pointer[trace.Dataset]
}

// New returns a DataHolder with no document.
func New() *DataHolder {
	return &DataHolder{}
}

// SetData replaces the held document. ds must not be mutated afterwards.
func (h *DataHolder) SetData(ds *trace.Dataset) {
	h.data.Store(ds)
}

// Data returns the held document, or nil before the first SetData.
// Callers must treat it as read-only.
func (h *DataHolder) Data() *trace.Dataset {
	return h.data.Load()
}

// Lookup returns the trace of name under t.
func (h *DataHolder) Lookup(t trace.AccessType, name string) (trace.FileTrace, bool) {
	ds := h.Data()
	if ds == nil {
		return trace.FileTrace{}, false
	}
	return ds.Lookup(t, name)
}

// Filenames returns the sorted names present under t.
func (h *DataHolder) Filenames(t trace.AccessType) []string {
	return h.Data().Names(t)
}

// Summary computes a Summary for every file under t.
func (h *DataHolder) Summary(t trace.AccessType) (map[string]Summary, error) {
	ds := h.Data()
	if ds == nil {
		return nil, ErrNotInitialized
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %s", trace.ErrUnknownAccessType, t)
	}

	bucket := ds.Bucket(t)
	out := make(map[string]Summary, len(bucket))
	for name, ft := range bucket {
		out[name] = summarize(ft.Ops)
	}
	return out, nil
}

// Totals aggregates every file under t into a single run-level Summary.
func (h *DataHolder) Totals(t trace.AccessType) (Summary, error) {
	perFile, err := h.Summary(t)
	if err != nil {
		return Summary{}, err
	}
	var total Summary
	for _, s := range perFile {
		total.OpCount += s.OpCount
		total.TotalSize += s.TotalSize
		total.TotalDuration += s.TotalDuration
		total.MaxExtent = math.Max(total.MaxExtent, s.MaxExtent)
	}
	return total, nil
}

// summarize folds ops in one pass; order does not matter.
func summarize(ops []trace.Operation) Summary {
	var extent, size, dur stats.Accumulator
	for _, op := range ops {
		extent.Add(op.End())
		size.Add(op.Size)
		dur.Add(op.Duration)
	}
	s := Summary{
		OpCount:       len(ops),
		TotalSize:     size.Sum(),
		TotalDuration: dur.Sum(),
	}
	if extent.Count() > 0 {
		s.MaxExtent = extent.Max()
	}
	return s
}
