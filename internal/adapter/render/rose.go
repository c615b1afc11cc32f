// Package render draws wind-rose frequency distributions as PNG images.
// It implements pipeline.Renderer on top of a 2D raster canvas.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/fogleman/gg"

	"github.com/brisalabs/windrose-service/internal/domain"
)

// ErrEmptyDistribution is returned when asked to draw a distribution with no
// observations. Empty bands must be omitted by the caller, never rendered as
// a blank panel.
var ErrEmptyDistribution = errors.New("refusing to render empty distribution")

// gridColumns is the panel column count of the combined figure.
const gridColumns = 3

// barOpening is the fraction of each sector's angular width occupied by its
// bar, leaving a small gap between neighboring sectors.
const barOpening = 0.8

// palette holds the speed sub-bin colors, slowest to fastest.
var palette = []string{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"}

// Renderer draws wind roses at a fixed square panel size.
type Renderer struct {
	panelSize int
	logger    *slog.Logger
}

// New creates a Renderer. panelSize is the square panel edge in pixels; the
// default 1200 corresponds to a 4-inch panel at 300 DPI.
func New(panelSize int, logger *slog.Logger) *Renderer {
	return &Renderer{panelSize: panelSize, logger: logger}
}

// RenderBand draws a single standalone wind rose.
func (r *Renderer) RenderBand(ctx context.Context, rose domain.Rose) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rose.Empty() {
		return nil, ErrEmptyDistribution
	}

	size := float64(r.panelSize)
	dc := gg.NewContext(r.panelSize, r.panelSize)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	r.drawRose(dc, 0, 0, size, rose)
	return encodePNG(dc)
}

// RenderCombined draws the given roses as panels of one figure, reflowed in
// order into a three-column grid. All roses must be non-empty; panel count
// equals len(roses).
func (r *Renderer) RenderCombined(ctx context.Context, roses []domain.Rose) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(roses) == 0 {
		return nil, ErrEmptyDistribution
	}
	for _, rose := range roses {
		if rose.Empty() {
			return nil, ErrEmptyDistribution
		}
	}

	cols := gridColumns
	if len(roses) < cols {
		cols = len(roses)
	}
	rows := (len(roses) + gridColumns - 1) / gridColumns
	r.logger.Debug("rendering combined figure", "panels", len(roses), "cols", cols, "rows", rows)

	size := float64(r.panelSize)
	dc := gg.NewContext(cols*r.panelSize, rows*r.panelSize)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for i, rose := range roses {
		ox := float64(i%gridColumns) * size
		oy := float64(i/gridColumns) * size
		r.drawRose(dc, ox, oy, size, rose)
	}

	return encodePNG(dc)
}

// drawRose draws one wind rose into the square cell at (ox, oy). Compass
// convention: 0° is north (up), angles grow clockwise.
func (r *Renderer) drawRose(dc *gg.Context, ox, oy, size float64, rose domain.Rose) {
	margin := size * 0.14
	radius := size/2 - margin
	cx := ox + size/2
	cy := oy + size/2 + size*0.02

	r.drawGrid(dc, cx, cy, radius, rose)
	r.drawBars(dc, cx, cy, radius, rose)
	r.drawLegend(dc, ox, oy, size, rose)

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(rose.Band.Label, ox+size/2, oy+margin*0.35, 0.5, 0.5)
}

// drawGrid paints the radial rings with their count labels, the spokes, and
// the compass tick labels.
func (r *Renderer) drawGrid(dc *gg.Context, cx, cy, radius float64, rose domain.Rose) {
	const rings = 4
	maxTotal := rose.MaxSectorTotal()

	dc.SetLineWidth(1)
	for i := 1; i <= rings; i++ {
		rr := radius * float64(i) / rings
		dc.SetRGBA(0, 0, 0, 0.25)
		dc.DrawCircle(cx, cy, rr)
		dc.Stroke()

		dc.SetRGBA(0, 0, 0, 0.6)
		label := fmt.Sprintf("%d", maxTotal*i/rings)
		dc.DrawStringAnchored(label, cx+radius*0.04, cy-rr, 0, 0.5)
	}

	dc.SetRGBA(0, 0, 0, 0.25)
	for a := 0.0; a < 360; a += 45 {
		x, y := polar(cx, cy, radius, a)
		dc.DrawLine(cx, cy, x, y)
		dc.Stroke()
	}

	dc.SetRGBA(0, 0, 0, 0.85)
	labels := domain.CompassLabels(rose.Sectors)
	labelEvery := 1
	if rose.Sectors >= 8 && rose.Sectors%8 == 0 {
		labelEvery = rose.Sectors / 8
	}
	for i := 0; i < rose.Sectors; i += labelEvery {
		angle := rose.SectorWidth * float64(i)
		x, y := polar(cx, cy, radius*1.08, angle)
		dc.DrawStringAnchored(labels[i], x, y, 0.5, 0.5)
	}
}

// drawBars paints the stacked annular bars: within a sector, sub-bins stack
// outward from the center, slowest first, radial extent proportional to the
// cumulative count.
func (r *Renderer) drawBars(dc *gg.Context, cx, cy, radius float64, rose domain.Rose) {
	maxTotal := rose.MaxSectorTotal()
	if maxTotal == 0 {
		return
	}

	half := rose.SectorWidth * barOpening / 2
	for s := 0; s < rose.Sectors; s++ {
		center := rose.SectorWidth * float64(s)
		cumulative := 0
		for b, count := range rose.Counts[s] {
			if count == 0 {
				continue
			}
			r0 := radius * float64(cumulative) / float64(maxTotal)
			cumulative += count
			r1 := radius * float64(cumulative) / float64(maxTotal)

			dc.SetHexColor(binColor(b, len(rose.Counts[s])))
			fillAnnularSector(dc, cx, cy, r0, r1, center-half, center+half)

			dc.SetRGB(1, 1, 1)
			dc.SetLineWidth(1.5)
			strokeAnnularSector(dc, cx, cy, r0, r1, center-half, center+half)
		}
	}
}

// drawLegend paints the speed sub-bin key in the lower-left corner of the
// cell.
func (r *Renderer) drawLegend(dc *gg.Context, ox, oy, size float64, rose domain.Rose) {
	bins := len(rose.SpeedEdges) - 1
	if bins < 1 {
		return
	}

	box := size * 0.018
	rowH := size * 0.028
	x := ox + size*0.04
	y := oy + size - float64(bins+1)*rowH - size*0.03

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored("Wind speed (knots)", x, y, 0, 0.5)
	for b := 0; b < bins; b++ {
		ry := y + float64(b+1)*rowH
		dc.SetHexColor(binColor(b, bins))
		dc.DrawRectangle(x, ry-box/2, box, box)
		dc.Fill()

		dc.SetRGB(0, 0, 0)
		label := fmt.Sprintf("%.1f - %.1f", rose.SpeedEdges[b], rose.SpeedEdges[b+1])
		dc.DrawStringAnchored(label, x+box*1.8, ry, 0, 0.5)
	}
}

// fillAnnularSector fills the region between radii r0 < r1 across the
// compass angle range [a0, a1] degrees.
func fillAnnularSector(dc *gg.Context, cx, cy, r0, r1, a0, a1 float64) {
	annularSectorPath(dc, cx, cy, r0, r1, a0, a1)
	dc.Fill()
}

func strokeAnnularSector(dc *gg.Context, cx, cy, r0, r1, a0, a1 float64) {
	annularSectorPath(dc, cx, cy, r0, r1, a0, a1)
	dc.Stroke()
}

func annularSectorPath(dc *gg.Context, cx, cy, r0, r1, a0, a1 float64) {
	dc.ClearPath()
	dc.DrawArc(cx, cy, r1, compassRadians(a0), compassRadians(a1))
	if r0 > 0 {
		dc.DrawArc(cx, cy, r0, compassRadians(a1), compassRadians(a0))
	} else {
		dc.LineTo(cx, cy)
	}
	dc.ClosePath()
}

// polar converts a compass angle (degrees clockwise from north) and radius
// into canvas coordinates.
func polar(cx, cy, radius, compassDeg float64) (float64, float64) {
	rad := compassRadians(compassDeg)
	return cx + radius*math.Cos(rad), cy + radius*math.Sin(rad)
}

// compassRadians maps a compass angle to the canvas angle convention
// (radians from the positive x-axis, clockwise because y grows downward).
func compassRadians(compassDeg float64) float64 {
	return gg.Radians(compassDeg - 90)
}

// binColor samples the palette for sub-bin i of n, endpoints inclusive.
func binColor(i, n int) string {
	if n <= 1 {
		return palette[0]
	}
	idx := i * (len(palette) - 1) / (n - 1)
	if idx >= len(palette) {
		idx = len(palette) - 1
	}
	return palette[idx]
}

func encodePNG(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
