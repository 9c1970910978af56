package main

import (
	"cmp"
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ItsNotGoodName/x-framewm/internal/build"
	"github.com/ItsNotGoodName/x-framewm/internal/config"
	"github.com/ItsNotGoodName/x-framewm/internal/xwm"
	"github.com/ItsNotGoodName/x-framewm/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/google/uuid"
	"github.com/jezek/xgb"
	"github.com/jezek/xgbutil"
	"github.com/joho/godotenv"
	"github.com/phsym/console-slog"
)

type Options struct {
	Debug   bool   `doc:"enable debug"`
	Display string `doc:"X display to manage, defaults to $DISPLAY"`
	Config  string `doc:"config file" default:".x-framewm.yaml"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		InitLogger(options.Debug)

		OnServe(hooks, func(ctx context.Context) error {
			configFilePath, err := filepath.Abs(options.Config)
			if err != nil {
				return err
			}

			cfg, err := config.NewStore(config.NewYAML(configFilePath)).GetConfig()
			if err != nil {
				return err
			}
			if cfg.Debug && !options.Debug {
				InitLogger(true)
			}
			display := cmp.Or(options.Display, cfg.Display)

			slog.Info("Starting", "version", build.Current.String(), "display", display, "config", configFilePath)

			session, err := xwm.OpenSession(display)
			if err != nil {
				return err
			}
			defer session.Close()

			manager := xwm.NewManager(session)
			if err := manager.Setup(); err != nil {
				return err
			}

			super := sutureext.NewSimple("root")
			sutureext.Add(super, manager)

			return super.Serve(ctx)
		})
	})

	cli.Root().Version = build.Current.String()

	cli.Run()
}

var runID = uuid.NewString()

func InitLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})).With("run", runID))

	xgb.Logger = slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn)
	xgbutil.Logger = slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn)
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
