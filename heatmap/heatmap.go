// Package heatmap draws codon frequency tables as heat maps.
package heatmap

import (
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/op/go-logging"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"bitbucket.org/Davydov/cusage/bio"
	"bitbucket.org/Davydov/cusage/codon"
)

var log = logging.MustGetLogger("heatmap")

// Size of the image.
var (
	Width  = 16 * vg.Inch
	Height = 7 * vg.Inch
)

// grid is amino acid (rows) by codon (columns) frequency matrix.
type grid struct {
	aas    []byte
	codons []string
	m      [][]float64
}

func newGrid(t codon.Table, gcode *bio.GeneticCode) *grid {
	aas, codons, m := t.Matrix(gcode)
	return &grid{aas: aas, codons: codons, m: m}
}

// Dims returns the number of columns and rows.
func (g *grid) Dims() (c, r int) { return len(g.codons), len(g.aas) }

func (g *grid) Z(c, r int) float64 { return g.m[r][c] }

func (g *grid) X(c int) float64 { return float64(c) }

func (g *grid) Y(r int) float64 { return float64(r) }

// ticks returns a tick for every label at integer positions.
func ticks(labels []string) plot.ConstantTicks {
	t := make(plot.ConstantTicks, len(labels))
	for i, l := range labels {
		t[i] = plot.Tick{Value: float64(i), Label: l}
	}
	return t
}

// newPlot creates the heat map plot.
func newPlot(t codon.Table, gcode *bio.GeneticCode) *plot.Plot {
	g := newGrid(t, gcode)

	p := plot.New()
	p.Title.Text = "Codon usage frequency"
	p.X.Label.Text = "Codon"
	p.Y.Label.Text = "Amino acid"

	hm := plotter.NewHeatMap(g, palette.Heat(32, 1))
	// frequencies are fractions, keep the scale fixed
	hm.Min = 0
	hm.Max = 1
	p.Add(hm)

	aaLabels := make([]string, len(g.aas))
	for i, aa := range g.aas {
		aaLabels[i] = string(aa)
	}
	p.X.Tick.Marker = ticks(g.codons)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.Y.Tick.Marker = ticks(aaLabels)
	p.X.Min, p.X.Max = -0.5, float64(len(g.codons))-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(len(g.aas))-0.5
	return p
}

// WriteTo draws the heat map in the format (png, svg, pdf, ...) and
// writes it to w.
func WriteTo(w io.Writer, t codon.Table, gcode *bio.GeneticCode, format string) error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty frequency table", codon.ErrInvalidArgument)
	}
	p := newPlot(t, gcode)
	wt, err := p.WriterTo(Width, Height, format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Render saves the heat map to a file. The format is derived from the
// file extension, png is used if there is none.
func Render(path string, t codon.Table, gcode *bio.GeneticCode) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		format = "png"
	}
	log.Debugf("Drawing %s heat map of %d amino acids", format, len(t))
	return codon.WriteFileAtomic(path, func(w io.Writer) error {
		return WriteTo(w, t, gcode, format)
	})
}
