package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/pidgy/drafthud/core/config"
	"github.com/pidgy/drafthud/core/detect"
	"github.com/pidgy/drafthud/core/gamedata"
	"github.com/pidgy/drafthud/core/global"
	"github.com/pidgy/drafthud/core/history"
	"github.com/pidgy/drafthud/core/layout"
	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/ocr"
	"github.com/pidgy/drafthud/core/ocr/tesseract"
	"github.com/pidgy/drafthud/core/server"
	"github.com/pidgy/drafthud/core/stats"
	"github.com/pidgy/drafthud/system/capture"
	"github.com/pidgy/drafthud/system/ini"
	"github.com/pidgy/drafthud/system/save"
)

var flags struct {
	config  string
	file    string
	display int
	debug   bool
	profile bool
	once    bool
}

func init() {
	flag.StringVar(&flags.config, "config", config.File, "configuration file")
	flag.StringVar(&flags.file, "file", "", "read screenshots from a PNG file instead of a display")
	flag.IntVar(&flags.display, "display", -1, "display to capture, overrides the configuration")
	flag.BoolVar(&flags.debug, "debug", false, "enable debug logging and save isolation artifacts")
	flag.BoolVar(&flags.profile, "profile", false, "write a CPU profile to the saved directory")
	flag.BoolVar(&flags.once, "once", false, "run a single detection pass and exit")
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == ocr.WorkerArg {
		os.Exit(tesseract.Main())
	}

	flag.Parse()

	notify.Announce("[DraftHUD] Initializing...")

	err := run()
	if err != nil {
		notify.Error("[DraftHUD] %v", err)
		save.Logs()
		os.Exit(1)
	}
}

func run() error {
	err := config.Load(flags.config)
	if err != nil {
		return err
	}

	c := config.Current
	c.Debug = c.Debug || flags.debug
	if flags.file != "" {
		c.Capture.File = flags.file
	}
	if flags.display >= 0 {
		c.Capture.Display = flags.display
	}

	global.DebugMode = global.DebugMode || c.Debug

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if global.DebugMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if flags.profile {
		save.ProfileStart()
		defer save.ProfileStop()
	}

	err = ini.Open(c.Assets.Locales, ini.Locale(c.Language))
	if err != nil {
		notify.Warn(ini.Format("[DraftHUD] <ini:error:failed_load> locale %s (%v)"), c.Language, err)

		err = ini.Default(c.Assets.Locales)
		if err != nil {
			notify.Warn(ini.Format("[DraftHUD] <ini:error:failed_set> default locale (%v)"), err)
		}
	}

	def, err := layout.Load(c.Assets.Layout)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		notify.Warn("[DraftHUD] %s not found, using the default layout", c.Assets.Layout)
		def = layout.Default()
	}

	dict, err := gamedata.Load(c.Assets.GameData, c.Language)
	if err != nil {
		return err
	}

	h, err := history.Load(c.Assets.History)
	if err != nil {
		return err
	}

	pool, err := openOCR(&c)
	if err != nil {
		return err
	}
	defer pool.Close()

	screen, err := detect.New(detect.Options{
		Config:     &c,
		Layout:     def,
		OCR:        pool,
		Dictionary: dict,
		Picks:      h,
		PickText:   ini.PickText(),
	})
	if err != nil {
		return err
	}

	lib, err := screen.LoadPortraits()
	if err != nil {
		return err
	}

	missing := lib.Missing(dict.HeroIDs())
	if len(missing) > 0 {
		notify.Warn("[DraftHUD] %d heroes have no ban portrait (%s)", len(missing), strings.Join(missing, ", "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := capture.New(&c)

	if flags.once {
		return once(ctx, src, screen)
	}

	srv := server.New(c.Server.Address, screen)

	err = srv.Open(ctx)
	if err != nil {
		return err
	}

	screen.OnComplete(ctx, func(d detect.Draft) {
		err := h.Add(d.Map, d.Teams)
		if err != nil {
			notify.Warn("[History] Failed to record draft on %s (%v)", d.Map, err)
		}
	})

	notify.Debug("[DraftHUD] Server Address (%s)", c.Server.Address)
	notify.Debug("[DraftHUD] Assets (%s)", global.Assets())
	notify.Debug("[DraftHUD] OCR Workers (%d)", pool.Size())
	notify.Announce("[DraftHUD] Initialized")

	err = detect.Run(ctx, src, screen, c.Detection.Interval)
	if err != nil && ctx.Err() == nil {
		return err
	}

	notify.Announce("[DraftHUD] Closing...")

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = srv.Close(shutdown)
	if err != nil {
		notify.Warn(ini.Format("[DraftHUD] <ini:error:failed_stop> server (%v)"), err)
	}

	if global.DebugMode {
		dump, ok := screen.Events().Dump()
		if ok {
			notify.Debug("[DraftHUD] %s", dump)
		}
	}

	stats.Data()
	save.Logs()

	return nil
}

// openOCR starts the OCR pool, either in process or as re-executed workers.
func openOCR(c *config.Config) (*ocr.Pool, error) {
	spawn := ocr.LocalSpawner(tesseract.New)

	if c.OCR.Process {
		s, err := ocr.Self()
		if err != nil {
			return nil, err
		}
		spawn = s
	}

	pool, err := ocr.New(c.OCR.Workers, spawn, ocr.Timeout(c.OCR.Timeout))
	if err != nil {
		return nil, err
	}

	err = pool.Start()
	if err != nil {
		pool.Close()
		return nil, err
	}

	notify.System("[OCR] Started %d workers", pool.Size())

	return pool, nil
}

func once(ctx context.Context, src capture.Source, screen *detect.Screen) error {
	img, err := src.Capture()
	if err != nil {
		return err
	}

	_, err = screen.Detect(ctx, img)
	if err != nil {
		return err
	}

	d := screen.Draft()
	notify.Announce("[DraftHUD] %s, %s", d.Map, d.Phase)
	for _, t := range d.Teams {
		for _, b := range t.Bans {
			notify.Feed(t.Color.RGBA(), "[%s] Ban %d %s", t.Color.Title(), b.Index+1, b.Hero)
		}
		for _, p := range t.Players {
			notify.Feed(t.Color.RGBA(), "[%s] Player %d %s %s (locked %t)", t.Color.Title(), p.Index+1, p.Name, p.Hero, p.Locked)
		}
	}

	for _, p := range notify.Feeds() {
		os.Stdout.WriteString(p.String() + "\n")
	}

	return nil
}
