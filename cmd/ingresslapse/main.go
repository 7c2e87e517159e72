// Command ingresslapse ingests an Ingress activity feed window into a local
// history store, then replays it through the world simulator and writes
// one rendered frame per visible change (or per time step) to an output
// directory.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/mhansen/ingresslapse/feed/ingest"
	"github.com/mhansen/ingresslapse/history"
	"github.com/mhansen/ingresslapse/render"
	"github.com/mhansen/ingresslapse/sim"
)

const (
	canvasWidth  = 1024
	canvasHeight = 1024
	outputWidth  = 1024
	outputHeight = 1024
	timeLayout   = "2006-01-02T15:04:05Z07:00"
)

var config = struct {
	FeedKey   string
	Lat, Lng  float64
	Zoom      float64
	Since     string
	Until     string
	DBPath    string
	OutDir    string
	StepSecs  int
	PerAction bool
	Verbose   bool
}{
	DBPath: "ingresslapse.db",
	OutDir: "frames",
	Zoom:   2000,
}

func init() {
	flag.StringVar(&config.FeedKey, "feed-key", "", "feed API cookie/key")
	flag.Float64Var(&config.Lat, "lat", 0, "latitude of the feed query center")
	flag.Float64Var(&config.Lng, "lng", 0, "longitude of the feed query center")
	flag.Float64Var(&config.Zoom, "zoom", config.Zoom, "pixels per degree used when projecting the map")
	flag.StringVar(&config.Since, "since", "", "RFC3339 lower bound of the time range to ingest and replay")
	flag.StringVar(&config.Until, "until", "", "RFC3339 upper bound of the time range to replay (defaults to now)")
	flag.StringVar(&config.DBPath, "db", config.DBPath, "path to the SQLite history database")
	flag.StringVar(&config.OutDir, "out", config.OutDir, "directory to write rendered frames into")
	flag.IntVar(&config.StepSecs, "step", 0, "time-stepped replay interval in seconds (0 selects per-action mode)")
	flag.BoolVar(&config.PerAction, "per-action", false, "force per-action replay mode even if -step is set")
	flag.BoolVar(&config.Verbose, "v", false, "enable verbose log output")
	flag.Parse()

	if config.Verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
}

func main() {
	ctx, shutdown := context.WithCancelCause(context.Background())
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt)
		<-stop
		slog.Info("received interrupt")
		shutdown(errors.New("exiting normally"))
	}()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info(context.Cause(ctx).Error())
			return
		}
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	since, err := parseTimeFlag(config.Since, time.Time{})
	if err != nil {
		return fmt.Errorf("parsing -since: %w", err)
	}
	until, err := parseTimeFlag(config.Until, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("parsing -until: %w", err)
	}

	store, err := history.Open(config.DBPath)
	if err != nil {
		return fmt.Errorf("opening history store: %w", err)
	}
	defer store.Close()

	client := ingest.NewClient(config.FeedKey)
	client.SetLog(func(msg string, args ...any) { slog.Debug(msg, args...) })

	slog.Info("ingesting feed", "lat", config.Lat, "lng", config.Lng, "since", since)
	if err := ingest.Run(ctx, client, store, ingest.Options{
		Lat:          config.Lat,
		Lng:          config.Lng,
		StopBeforeMs: since.UnixMilli(),
	}); err != nil {
		return fmt.Errorf("ingesting feed: %w", err)
	}

	portals, err := store.Portals()
	if err != nil {
		return fmt.Errorf("loading portal catalog: %w", err)
	}
	actions, err := store.Actions(since.UnixMilli(), until.UnixMilli())
	if err != nil {
		return fmt.Errorf("loading action log: %w", err)
	}
	slog.Info("replaying action log", "portals", len(portals), "actions", len(actions))

	summary := sim.Summarize(sim.New(portals).Snapshot())
	for faction, s := range summary.Factions {
		slog.Debug("initial territory", "faction", faction, "portals", s.Portals, "links", s.Links, "fields", s.Fields)
	}

	simulator := sim.New(portals)
	frames := sim.Replay(ctx, simulator, actions, sim.ReplayOptions{
		RecordingStart: since,
		StepSeconds:    replayStepSeconds(),
	})

	if err := os.MkdirAll(config.OutDir, 0750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	view := render.View{
		CenterLat:       config.Lat,
		CenterLng:       config.Lng,
		PixelsPerDegree: config.Zoom,
		Width:           canvasWidth,
		Height:          canvasHeight,
	}

	session := render.NewSession()
	written := 0
	for frame := range frames {
		canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
		fillBackground(canvas, color.RGBA{0x10, 0x10, 0x10, 0xff})

		if err := render.Frame(canvas, frame.Snapshot, frame.At, view); err != nil {
			return fmt.Errorf("rendering frame at %s: %w", frame.At, err)
		}

		out := render.Resize(canvas, outputWidth, outputHeight)

		name := session.NextFrameName("png")
		f, err := os.Create(filepath.Join(config.OutDir, name))
		if err != nil {
			return fmt.Errorf("creating frame file: %w", err)
		}
		err = render.EncodePNG(f, out)
		closeErr := f.Close()
		if err != nil {
			return fmt.Errorf("encoding frame %s: %w", name, err)
		}
		if closeErr != nil {
			return fmt.Errorf("closing frame file %s: %w", name, closeErr)
		}
		written++
		slog.Debug("wrote frame", "file", name, "at", frame.At)
	}

	slog.Info("replay complete", "frames", written)
	return nil
}

func replayStepSeconds() int {
	if config.PerAction {
		return 0
	}
	return config.StepSecs
}

func parseTimeFlag(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return time.Parse(timeLayout, value)
}

func fillBackground(img *image.RGBA, c color.RGBA) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}
