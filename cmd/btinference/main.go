// Command btinference assembles camera detections into ray observations and
// renders them, together with an inferred track, as an animation.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/banshee-data/btinference/internal/camera"
	"github.com/banshee-data/btinference/internal/config"
	"github.com/banshee-data/btinference/internal/fsutil"
	"github.com/banshee-data/btinference/internal/inference"
	"github.com/banshee-data/btinference/internal/monitoring"
	"github.com/banshee-data/btinference/internal/observation"
	"github.com/banshee-data/btinference/internal/render"
	"github.com/banshee-data/btinference/internal/version"
)

// pathList is a flag.Value accepting comma separated paths, repeatable.
type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(v string) error {
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*p = append(*p, s)
		}
	}
	return nil
}

type options struct {
	calibPaths       []string
	tagPaths         []string
	calibTool        string
	tagTool          string
	trackPath        string
	out              string
	configPath       string
	htmlPath         string
	lenient          bool
	strictDuplicates bool
}

func main() {
	var (
		o           options
		calib, tags pathList
	)
	flag.Var(&calib, "calib", "Camera set directories holding calibration (comma separated, repeatable)")
	flag.Var(&tags, "tags", "Camera set directories holding tag detections (comma separated, repeatable)")
	flag.StringVar(&o.calibTool, "calib-tool", "btalignment", "Subdirectory name of the calibration tool")
	flag.StringVar(&o.tagTool, "tag-tool", "btviewer", "Subdirectory name of the detection tool")
	flag.StringVar(&o.trackPath, "track", "", "Inference output JSON (required)")
	flag.StringVar(&o.out, "o", "animation.mp4", "Output video; a .gif extension skips ffmpeg")
	flag.StringVar(&o.configPath, "config", "", "Render config JSON (optional)")
	flag.StringVar(&o.htmlPath, "html", "", "Also write an HTML timeline report to this path")
	flag.BoolVar(&o.lenient, "lenient", false, "Skip malformed detection records instead of failing")
	flag.BoolVar(&o.strictDuplicates, "strict-duplicates", false, "Fail when two calibration paths share a camera id")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}
	o.calibPaths, o.tagPaths = calib, tags
	if len(o.calibPaths) == 0 {
		log.Fatal("at least one -calib path is required")
	}
	if len(o.tagPaths) == 0 {
		o.tagPaths = o.calibPaths
	}
	if o.trackPath == "" {
		log.Fatal("-track is required")
	}

	runID := uuid.NewString()
	monitoring.SetLogger(monitoring.Tagged(runID[:8]))
	log.Printf("btinference %s run %s", version.Version, runID)

	if err := run(fsutil.OSFileSystem{}, o, runID); err != nil {
		log.Fatalf("btinference: %v", err)
	}
}

func run(fsys fsutil.FileSystem, o options, runID string) error {
	cfg := config.DefaultRenderConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadRenderConfig(fsys, o.configPath); err != nil {
			return err
		}
	}

	var camOpts []camera.Option
	if o.strictDuplicates {
		camOpts = append(camOpts, camera.WithStrictDuplicates())
	}
	cameras, err := camera.LoadRegistry(fsys, o.calibPaths, o.calibTool, camOpts...)
	if err != nil {
		return err
	}
	monitoring.Logf("loaded %d cameras: %s", cameras.Len(), strings.Join(cameras.IDs(), " "))

	var extOpts []observation.ExtractOption
	if o.lenient {
		extOpts = append(extOpts, observation.WithLenient())
	}
	store, err := observation.Extract(fsys, o.tagPaths, o.tagTool, cameras, extOpts...)
	if err != nil {
		return err
	}

	track, err := inference.LoadTrack(fsys, o.trackPath)
	if err != nil {
		return err
	}

	if o.htmlPath != "" {
		if err := writeReport(fsys, o.htmlPath, "btinference "+runID, store, track); err != nil {
			return err
		}
		monitoring.Logf("wrote timeline report %s", o.htmlPath)
	}

	anim, err := render.NewAnimation(store, track, cfg)
	if err != nil {
		return err
	}
	if err := render.NewRenderer(cfg).RenderFile(fsys, anim, o.out); err != nil {
		return err
	}
	monitoring.Logf("wrote %s", o.out)
	return nil
}

func writeReport(fsys fsutil.FileSystem, path, title string, store *observation.Store, track *inference.Track) error {
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	if err := render.WriteTimeline(f, title, store, track); err != nil {
		f.Close()
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return f.Close()
}
