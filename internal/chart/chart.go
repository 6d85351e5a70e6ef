// Package chart pivots merged AOC rows and renders them as a line chart with
// one series per country.
package chart

import (
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Options controls chart rendering.
type Options struct {
	Title string
	// Width and Height are in inches.
	Width  float64
	Height float64
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Title:  "AOC by country",
		Width:  12,
		Height: 7,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Title == "" {
		o.Title = d.Title
	}
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	return o
}

// Series returns the points of one country, x being the year position in
// p.Years. Missing years are skipped so the drawn line spans the gap.
func (p *PivotTable) Series(country string) plotter.XYs {
	var xys plotter.XYs
	for i, year := range p.Years {
		if v, ok := p.Value(year, country); ok {
			xys = append(xys, plotter.XY{X: float64(i), Y: v})
		}
	}
	return xys
}

// Plot builds the chart for p.
func Plot(p *PivotTable, opts Options) (*plot.Plot, error) {
	opts = opts.withDefaults()

	pl := plot.New()
	pl.Title.Text = opts.Title
	pl.X.Label.Text = "Year"
	pl.Y.Label.Text = "AOC"
	pl.Legend.Top = true
	pl.Add(plotter.NewGrid())

	ticks := make([]plot.Tick, len(p.Years))
	for i, year := range p.Years {
		ticks[i] = plot.Tick{Value: float64(i), Label: year}
	}
	pl.X.Tick.Marker = plot.ConstantTicks(ticks)
	if len(p.Years) > 0 {
		pl.X.Min = -0.5
		pl.X.Max = float64(len(p.Years)) - 0.5
	}

	for i, country := range p.Countries {
		xys := p.Series(country)
		if len(xys) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", country, err)
		}
		line.Color = plotutil.Color(i)
		points.Color = plotutil.Color(i)
		points.Shape = plotutil.Shape(i)

		pl.Add(line, points)
		pl.Legend.Add(country, line, points)
	}
	return pl, nil
}

// Render writes the chart to w in the given format (png, svg, pdf, ...).
func Render(w io.Writer, p *PivotTable, format string, opts Options) error {
	opts = opts.withDefaults()
	pl, err := Plot(p, opts)
	if err != nil {
		return err
	}
	wt, err := pl.WriterTo(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}

// Save writes the chart to path; the format follows the file extension.
func Save(path string, p *PivotTable, opts Options) error {
	opts = opts.withDefaults()
	pl, err := Plot(p, opts)
	if err != nil {
		return err
	}
	if err := pl.Save(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}

// Viewer displays a rendered chart file.
type Viewer func(path string) error

// Visualize saves the chart to path and hands it to view. A nil view only
// saves.
func Visualize(path string, p *PivotTable, opts Options, view Viewer) error {
	if err := Save(path, p, opts); err != nil {
		return err
	}
	if view == nil {
		return nil
	}
	return view(path)
}

// Formats lists the file extensions Save understands.
var Formats = []string{"eps", "jpg", "jpeg", "pdf", "png", "svg", "tif", "tiff"}

// FormatOf returns the lower-case extension of path without the dot.
func FormatOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// SystemViewer opens path with the platform's default application.
func SystemViewer(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", path) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path) //nolint:noctx
	default:
		return fmt.Errorf("don't know how to open files on %s", runtime.GOOS)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return nil
}
