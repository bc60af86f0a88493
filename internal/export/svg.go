package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/helm/internal/dynamo"
)

// Series is one polyline of a plot. NaN values break the line.
type Series struct {
	Name   string
	Color  string
	Values []float64
}

// RunSeries picks the signals worth drawing from a recorded run.
func RunSeries(samples []dynamo.Sample) (times []float64, series []Series) {
	times = make([]float64, len(samples))
	ref := make([]float64, len(samples))
	obs := make([]float64, len(samples))
	act := make([]float64, len(samples))
	for i, s := range samples {
		times[i] = s.Time
		ref[i] = s.Reference
		obs[i] = s.Observable
		act[i] = s.Actual
	}
	return times, []Series{
		{Name: "reference", Color: "#4f8fff", Values: ref},
		{Name: "observable", Color: "#00ff00", Values: obs},
		{Name: "actual", Color: "#ffaa00", Values: act},
	}
}

// SVG draws series against times on a shared scale.
func SVG(w io.Writer, times []float64, series []Series, width, height int) error {
	if len(times) < 2 {
		return fmt.Errorf("need at least 2 points, got %d", len(times))
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d", width, height)
	}

	minX, maxX := times[0], times[len(times)-1]
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		if len(s.Values) != len(times) {
			return fmt.Errorf("series %s has %d values, want %d", s.Name, len(s.Values), len(times))
		}
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	if math.IsInf(minY, 1) {
		minY, maxY = 0, 1
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for _, s := range series {
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, s.Color)
		pen := false
		for i, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				pen = false
				continue
			}
			x := (times[i] - minX) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if pen {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
				pen = true
			}
		}
		fmt.Fprintf(&sb, "\"><title>%s</title></path>\n", s.Name)
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
