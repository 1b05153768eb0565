package render

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/banshee-data/btinference/internal/camera"
	"github.com/banshee-data/btinference/internal/inference"
	"github.com/banshee-data/btinference/internal/observation"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// SourceCamera returns the camera identifier of a detection record path laid
// out as <set>/<tool>/<file>.
func SourceCamera(source string) string {
	return camera.SetID(filepath.Dir(filepath.Dir(source)))
}

// WriteTimeline writes an HTML page with two charts: when each camera saw the
// tag, and the estimated x/y path.
func WriteTimeline(w io.Writer, title string, store *observation.Store, track *inference.Track) error {
	start, _, ok := store.TimeRange()
	if !ok {
		return ErrNoObservations
	}

	byCamera := map[string][]opts.ScatterData{}
	for i := 0; i < store.Len(); i++ {
		o := store.At(i)
		id := SourceCamera(o.Source)
		byCamera[id] = append(byCamera[id], opts.ScatterData{Value: []interface{}{o.Time - start, id}})
	}
	ids := make([]string, 0, len(byCamera))
	for id := range byCamera {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sightings := charts.NewScatter()
	sightings.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "1000px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Sightings", Subtitle: fmt.Sprintf("%d observations from %d cameras", store.Len(), len(ids))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "t - t0 (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: ids}),
	)
	for _, id := range ids {
		sightings.AddSeries(id, byCamera[id], charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}

	path := charts.NewScatter()
	path.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "600px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Estimated path", Subtitle: fmt.Sprintf("%d estimates", trackLen(track))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "x (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "y (m)", NameLocation: "middle", NameGap: 30}),
	)
	if track != nil {
		pts := make([]opts.ScatterData, 0, track.Len())
		for i := 0; i < track.Len(); i++ {
			m := track.Mean2D(i)
			pts = append(pts, opts.ScatterData{Value: []interface{}{m.X, m.Y, track.Time(i) - start}})
		}
		path.AddSeries("mean", pts, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	}

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(sightings, path)
	return page.Render(w)
}

func trackLen(t *inference.Track) int {
	if t == nil {
		return 0
	}
	return t.Len()
}
