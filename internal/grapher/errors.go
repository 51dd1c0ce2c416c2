package grapher

import "errors"

var (
	ErrInvalidTimeMode   = errors.New("time mode not in allowed list")
	ErrInvalidPlotMode   = errors.New("plot mode not in allowed list")
	ErrInvalidAccessType = errors.New("access type not in allowed list")
	ErrNoDataSet         = errors.New("no trace data loaded")
	ErrNoFileSelected    = errors.New("no file selected")
	ErrFileNotInDataset  = errors.New("file is not in data set")
	ErrNoData            = errors.New("no operations to plot")
	ErrUnknownHistogram  = errors.New("unknown histogram kind")
	ErrSurfaceDraw       = errors.New("surface failed to draw view")
)
