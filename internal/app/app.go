package app

import (
	"io"
	"log/slog"

	"github.com/vk/denobuild/internal/config"
	"github.com/vk/denobuild/internal/engine"
	"github.com/vk/denobuild/internal/fetch"
)

// App runs one build.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	cfg     *Config
	engine  engine.Engine
	fetcher *fetch.Fetcher
	loader  config.Loader
}

// NewApp returns an App writing the bundle analysis to outW and its own logs
// to logW. A nil eng selects esbuild.
func NewApp(outW, logW io.Writer, cfg *Config, eng engine.Engine) *App {
	if eng == nil {
		eng = engine.Esbuild{}
	}
	logger := newLogger(cfg.CLILogLevel, cfg.CLILogFormat, logW)
	fetcher := fetch.New(cfg.WorkingDir, fetch.DefaultTimeout)
	return &App{
		outW:    outW,
		logger:  logger,
		cfg:     cfg,
		engine:  eng,
		fetcher: fetcher,
		loader:  &config.FileLoader{Fetcher: fetcher},
	}
}
