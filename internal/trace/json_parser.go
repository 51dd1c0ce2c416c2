package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
)

// document is the loosely typed shape produced by encoding/json before validation.
type document map[string]interface{}

// ParseJSON decodes a trace document of the form
//
//	{"reads": {name: [firstTime, [[offset, size, start, duration], ...]]}, "writes": {...}}
//
// and validates its shape. Errors wrap ErrJSONUnmarshalFailed or ErrInvalidTrace and
// name the offending path.
func ParseJSON(data []byte) (*Dataset, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSONUnmarshalFailed, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document is null", ErrInvalidTrace)
	}

	for key := range doc {
		if key != Reads.String() && key != Writes.String() {
			return nil, fmt.Errorf("%w: unexpected top-level key %q", ErrInvalidTrace, key)
		}
	}

	ds := NewDataset()
	for _, t := range AccessTypes {
		raw, exists := doc[t.String()]
		if !exists {
			return nil, fmt.Errorf("%w: missing %q bucket", ErrInvalidTrace, t.String())
		}
		files, ok := raw.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s must be an object", ErrInvalidTrace, t)
		}
		bucket := ds.Bucket(t)
		for name, entry := range files {
			ft, err := parseFileTrace(entry)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%q]: %w", ErrInvalidTrace, t, name, err)
			}
			bucket[name] = ft
		}
	}
	return ds, nil
}

// LoadFile reads and parses a trace document from path.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w '%s': %w", ErrReadTraceFile, path, err)
	}
	return ParseJSON(data)
}

// Encode writes ds in the document format accepted by ParseJSON.
func Encode(w io.Writer, ds *Dataset) error {
	out := make(map[string]map[string][2]interface{}, len(AccessTypes))
	for _, t := range AccessTypes {
		files := make(map[string][2]interface{}, len(ds.Bucket(t)))
		for name, ft := range ds.Bucket(t) {
			ops := make([][4]float64, len(ft.Ops))
			for i, op := range ft.Ops {
				ops[i] = [4]float64{op.Offset, op.Size, op.Start, op.Duration}
			}
			files[name] = [2]interface{}{ft.FirstTime, ops}
		}
		out[t.String()] = files
	}
	return json.NewEncoder(w).Encode(out)
}

func parseFileTrace(entry interface{}) (FileTrace, error) {
	pair, ok := entry.([]interface{})
	if !ok || len(pair) != 2 {
		return FileTrace{}, fmt.Errorf("expected [firstTime, operations]")
	}
	first, ok := toFloat64(pair[0])
	if !ok {
		return FileTrace{}, fmt.Errorf("firstTime is not a number: %v", snippet(pair[0], 40))
	}
	if first < 0 {
		return FileTrace{}, fmt.Errorf("firstTime is negative: %v", first)
	}
	rawOps, ok := pair[1].([]interface{})
	if !ok {
		return FileTrace{}, fmt.Errorf("operations must be an array")
	}

	ops := make([]Operation, 0, len(rawOps))
	for i, rawOp := range rawOps {
		op, err := parseOperation(rawOp)
		if err != nil {
			return FileTrace{}, fmt.Errorf("operation %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return FileTrace{FirstTime: first, Ops: ops}, nil
}

func parseOperation(raw interface{}) (Operation, error) {
	tuple, ok := raw.([]interface{})
	if !ok || len(tuple) != 4 {
		return Operation{}, fmt.Errorf("expected [offset, size, start, duration], got %v", snippet(raw, 60))
	}
	var fields [4]float64
	for i, v := range tuple {
		f, ok := toFloat64(v)
		if !ok {
			return Operation{}, fmt.Errorf("field %d is not a number: %v", i, snippet(v, 40))
		}
		if f < 0 {
			return Operation{}, fmt.Errorf("field %d is negative: %v", i, f)
		}
		fields[i] = f
	}
	return Operation{Offset: fields[0], Size: fields[1], Start: fields[2], Duration: fields[3]}, nil
}

// toFloat64 converts a decoded JSON value to a finite float64.
// Handles null, float64 from encoding/json and integer types from hand-built maps.
func toFloat64(val interface{}) (float64, bool) {
	var f float64
	switch v := val.(type) {
	case nil:
		return 0, false
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// snippet renders a value for error messages, truncated to maxLength.
func snippet(value interface{}, maxLength int) string {
	s := fmt.Sprintf("%v", value)
	if maxLength <= 0 {
		return "..."
	}
	if len(s) > maxLength {
		return s[:maxLength] + "..."
	}
	return s
}
