// Package render draws transient results as node voltage curves.
package render

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/edp1096/femspice/pkg/result"
)

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

type Options struct {
	Title  string
	Width  vg.Length
	Height vg.Length
	Format string // png, svg or pdf; png when empty
}

// FormatFromPath picks the image format from the file extension.
func FormatFromPath(path string) (string, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "png", "svg", "pdf":
		return ext, nil
	case "":
		return "png", nil
	default:
		return "", fmt.Errorf("unsupported plot format %q", ext)
	}
}

// Plot builds one line per node, time in milliseconds.
func Plot(tr *result.Transient, title string) (*plot.Plot, error) {
	if tr == nil || len(tr.Time) == 0 {
		return nil, errors.New("no transient data to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Time (ms)"
	p.Y.Label.Text = "Voltage (V)"
	p.Add(plotter.NewGrid())

	for i, node := range tr.Nodes() {
		series := tr.Voltages[node]
		pts := make(plotter.XYs, len(tr.Time))
		for k, t := range tr.Time {
			pts[k].X = t * 1e3
			pts[k].Y = series[k]
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("node %s: %v", node, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)

		p.Add(line)
		p.Legend.Add("V("+node+")", line)
	}
	p.Legend.Top = true

	return p, nil
}

// Transient writes the plot of tr to w.
func Transient(w io.Writer, tr *result.Transient, opts Options) error {
	title := opts.Title
	if title == "" {
		title = "Transient analysis"
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	format := opts.Format
	if format == "" {
		format = "png"
	}

	p, err := Plot(tr, title)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
