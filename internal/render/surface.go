// Package render draws grapher views with go-chart.
package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/iolens/internal/config"
	"github.com/sanspareilsmyn/iolens/internal/grapher"
)

// ChartSurface implements grapher.Surface. Views in save mode are written to
// OutputDir; views in show mode go to the Show writer, or to a temporary file
// when Show is nil.
type ChartSurface struct {
	cfg    config.RenderConfig
	logger *zap.Logger

	// Show receives images rendered in show mode.
	Show io.Writer
}

var _ grapher.Surface = (*ChartSurface)(nil)

func NewChartSurface(cfg config.RenderConfig, logger *zap.Logger) (*ChartSurface, error) {
	if _, err := provider(cfg.Format); err != nil {
		return nil, err
	}
	return &ChartSurface{cfg: cfg, logger: logger}, nil
}

// DrawPattern draws one segment per operation.
func (s *ChartSurface) DrawPattern(view grapher.PatternView) error {
	if len(view.Segments) == 0 {
		return ErrEmptyView
	}
	ch := patternChart(view, s.cfg.Width, s.cfg.Height)
	name := fileStem(view.FileName, view.AccessType.String(), "pattern", view.TimeMode.String())
	return s.emit(name, view.Mode, ch.Render)
}

// DrawHistogram draws the bins as a filled step outline. An empty view is
// logged and skipped.
func (s *ChartSurface) DrawHistogram(view grapher.HistogramView) error {
	if view.Empty() {
		s.logger.Info("Histogram has no samples, nothing drawn",
			zap.String("file_name", view.FileName),
			zap.Stringer("kind", view.Kind),
			zap.Int("excluded", view.Excluded),
		)
		return nil
	}
	ch := histogramChart(view, s.cfg.Width, s.cfg.Height)
	name := fileStem(view.FileName, view.AccessType.String(), view.Kind.String())
	return s.emit(name, view.Mode, ch.Render)
}

func (s *ChartSurface) emit(stem string, mode grapher.PlotMode, draw func(chart.RendererProvider, io.Writer) error) error {
	rp, err := provider(s.cfg.Format)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := draw(rp, &buf); err != nil {
		return fmt.Errorf("%w: %w", ErrChartRender, err)
	}

	if mode == grapher.Show && s.Show != nil {
		if _, err := s.Show.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteImage, err)
		}
		return nil
	}

	path, err := s.writeFile(stem, mode, buf.Bytes())
	if err != nil {
		return err
	}
	s.logger.Info("Plot written", zap.String("path", path), zap.Stringer("plot_mode", mode))
	return nil
}

func (s *ChartSurface) writeFile(stem string, mode grapher.PlotMode, data []byte) (string, error) {
	ext := "." + strings.ToLower(s.cfg.Format)
	if mode == grapher.Show {
		f, err := os.CreateTemp("", stem+"-*"+ext)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrWriteImage, err)
		}
		defer f.Close()
		if _, err := f.Write(data); err != nil {
			return "", fmt.Errorf("%w: %w", ErrWriteImage, err)
		}
		return f.Name(), nil
	}

	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteImage, err)
	}
	path := filepath.Join(s.cfg.OutputDir, stem+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteImage, err)
	}
	return path, nil
}

func provider(format string) (chart.RendererProvider, error) {
	switch strings.ToLower(format) {
	case "png":
		return chart.PNG, nil
	case "svg":
		return chart.SVG, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// fileStem turns a traced path plus view qualifiers into a flat file name.
func fileStem(path string, parts ...string) string {
	base := strings.Trim(path, "/")
	if base == "" {
		base = "trace"
	}
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return '_'
	}, base)
	return strings.Join(append([]string{base}, parts...), "_")
}
