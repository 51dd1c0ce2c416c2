package grapher

import "fmt"

// TimeMode is the reference frame operation start times are normalized to.
type TimeMode int

const (
	// Absolute keeps capture timestamps; the axis starts at the first operation.
	Absolute TimeMode = iota
	// RelativeApp shifts by the first operation seen when the mode was first used.
	RelativeApp
	// RelativeFile shifts by the time the file was opened.
	RelativeFile
	// Count replaces elapsed time with the operation sequence number.
	Count
)

var timeModeNames = [...]string{"absolute", "relapp", "relfile", "count"}

func (m TimeMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("TimeMode(%d)", int(m))
	}
	return timeModeNames[m]
}

func (m TimeMode) Valid() bool {
	return m >= Absolute && m <= Count
}

// ParseTimeMode maps a configuration name to a TimeMode.
func ParseTimeMode(s string) (TimeMode, error) {
	for i, name := range timeModeNames {
		if s == name {
			return TimeMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidTimeMode, s)
}

// PlotMode tells the surface how to dispose of a rendered view.
type PlotMode int

const (
	Show PlotMode = iota
	Save
)

var plotModeNames = [...]string{"show", "save"}

func (m PlotMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("PlotMode(%d)", int(m))
	}
	return plotModeNames[m]
}

func (m PlotMode) Valid() bool {
	return m == Show || m == Save
}

// ParsePlotMode maps a configuration name to a PlotMode.
func ParsePlotMode(s string) (PlotMode, error) {
	for i, name := range plotModeNames {
		if s == name {
			return PlotMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPlotMode, s)
}
