package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/banshee-data/btinference/internal/config"
	"github.com/golang/geo/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	rayColor     = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	markerColor  = color.NRGBA{R: 220, G: 30, B: 30, A: 255}
	ellipseFill  = color.NRGBA{R: 30, G: 90, B: 200, A: 80}
	ellipseEdge  = color.NRGBA{R: 30, G: 90, B: 200, A: 255}
	estimateMark = color.NRGBA{R: 30, G: 90, B: 200, A: 255}
)

func xys(pts []r2.Point) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return out
}

func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(alpha * float64(c.A))
	return c
}

// rayColors returns the sightline and camera marker colours for r; both fade
// with the observation's distance from the frame time.
func rayColors(r Ray) (line, marker color.NRGBA) {
	return withAlpha(rayColor, r.Alpha), withAlpha(markerColor, r.Alpha)
}

// buildPlot lays out one frame: sightlines, camera markers, then the estimate
// and its uncertainty ellipse on top.
func buildPlot(f Frame, cfg *config.RenderConfig) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("t = %.2f s", f.Time)
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	radius := cfg.GetMarkerRadius()
	for _, r := range f.Rays {
		lineColor, markerFill := rayColors(r)
		line, err := plotter.NewLine(xys([]r2.Point{r.From, r.To}))
		if err != nil {
			return nil, fmt.Errorf("ray %d: %w", r.Index, err)
		}
		line.Color = lineColor
		line.Width = vg.Points(1)
		p.Add(line)

		marker, err := plotter.NewPolygon(xys(circle(r.From, radius, ellipseSegments)))
		if err != nil {
			return nil, fmt.Errorf("marker %d: %w", r.Index, err)
		}
		marker.Color = markerFill
		marker.LineStyle.Width = 0
		p.Add(marker)
	}

	ellipse, err := plotter.NewPolygon(xys(f.Ellipse))
	if err != nil {
		return nil, fmt.Errorf("ellipse: %w", err)
	}
	ellipse.Color = ellipseFill
	ellipse.LineStyle.Color = ellipseEdge
	ellipse.LineStyle.Width = vg.Points(1)
	p.Add(ellipse)

	mean, err := plotter.NewScatter(xys([]r2.Point{f.Mean}))
	if err != nil {
		return nil, fmt.Errorf("estimate: %w", err)
	}
	mean.GlyphStyle.Color = estimateMark
	mean.GlyphStyle.Shape = draw.CrossGlyph{}
	mean.GlyphStyle.Radius = vg.Points(3)
	p.Add(mean)

	// Fixed extents; Add widens the axes to fit the data, so set them last.
	p.X.Min, p.X.Max = cfg.GetXMin(), cfg.GetXMax()
	p.Y.Min, p.Y.Max = cfg.GetYMin(), cfg.GetYMax()
	return p, nil
}

// DrawFrame rasterises a frame at the configured figure size and DPI.
func DrawFrame(f Frame, cfg *config.RenderConfig) (image.Image, error) {
	p, err := buildPlot(f, cfg)
	if err != nil {
		return nil, err
	}
	c := vgimg.NewWith(
		vgimg.UseWH(vg.Length(cfg.GetFigureWidthIn())*vg.Inch, vg.Length(cfg.GetFigureHeightIn())*vg.Inch),
		vgimg.UseDPI(int(cfg.GetDPI())),
		vgimg.UseBackgroundColor(color.White),
	)
	p.Draw(draw.New(c))
	return c.Image(), nil
}
