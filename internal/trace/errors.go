package trace

import "errors"

var (
	ErrJSONUnmarshalFailed = errors.New("failed to unmarshal trace JSON")
	ErrInvalidTrace        = errors.New("invalid trace document")
	ErrUnknownAccessType   = errors.New("unknown access type")
	ErrReadTraceFile       = errors.New("failed to read trace file")
)
