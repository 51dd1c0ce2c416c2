package render

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrChartRender       = errors.New("failed to render chart")
	ErrWriteImage        = errors.New("failed to write image")
	ErrEmptyView         = errors.New("view has nothing to draw")
)
