package trace

import (
	"fmt"
	"sort"
)

// AccessType classifies an operation as a read or a write.
type AccessType int

const (
	Reads AccessType = iota
	Writes
)

// AccessTypes lists every access type in document order.
var AccessTypes = []AccessType{Reads, Writes}

func (t AccessType) String() string {
	switch t {
	case Reads:
		return "reads"
	case Writes:
		return "writes"
	default:
		return fmt.Sprintf("AccessType(%d)", int(t))
	}
}

// Valid reports whether t is one of the declared access types.
func (t AccessType) Valid() bool {
	return t == Reads || t == Writes
}

// ParseAccessType maps the document key ("reads"/"writes") to an AccessType.
func ParseAccessType(s string) (AccessType, error) {
	switch s {
	case "reads", "read":
		return Reads, nil
	case "writes", "write":
		return Writes, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAccessType, s)
	}
}

// Operation is one observed read or write. Offset and Size are KiB, Start is
// seconds since the epoch and Duration is milliseconds.
type Operation struct {
	Offset   float64
	Size     float64
	Start    float64
	Duration float64
}

// End returns the first offset past the operation.
func (o Operation) End() float64 {
	return o.Offset + o.Size
}

// FileTrace holds every operation observed on one file for one access type.
// FirstTime is the time the file was opened, in seconds.
type FileTrace struct {
	FirstTime float64
	Ops       []Operation
}

// Dataset is a full trace document. It is never mutated after construction;
// holders replace it wholesale.
type Dataset struct {
	Reads  map[string]FileTrace
	Writes map[string]FileTrace
}

// NewDataset returns a dataset with both buckets allocated.
func NewDataset() *Dataset {
	return &Dataset{
		Reads:  make(map[string]FileTrace),
		Writes: make(map[string]FileTrace),
	}
}

// Bucket returns the per-file map for t, or nil for an unknown access type.
func (d *Dataset) Bucket(t AccessType) map[string]FileTrace {
	if d == nil {
		return nil
	}
	switch t {
	case Reads:
		return d.Reads
	case Writes:
		return d.Writes
	default:
		return nil
	}
}

// Lookup returns the trace of name under t and whether it exists.
func (d *Dataset) Lookup(t AccessType, name string) (FileTrace, bool) {
	ft, ok := d.Bucket(t)[name]
	return ft, ok
}

// Names returns the file names present under t in lexical order.
func (d *Dataset) Names(t AccessType) []string {
	bucket := d.Bucket(t)
	if bucket == nil {
		return nil
	}
	names := make([]string, 0, len(bucket))
	for name := range bucket {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpCount returns the number of operations across every file of both buckets.
func (d *Dataset) OpCount() int {
	n := 0
	for _, t := range AccessTypes {
		for _, ft := range d.Bucket(t) {
			n += len(ft.Ops)
		}
	}
	return n
}
