package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/prxssh/slsk/internal/client"
	"github.com/prxssh/slsk/internal/config"
	"github.com/prxssh/slsk/pkg/utils/logging"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	setupLogger()

	c, err := client.NewClient()
	if err != nil {
		slog.Error("failed to initialize client", "error", err.Error())
		os.Exit(1)
	}

	go func() {
		if err := c.Connect(config.DefaultPath); err != nil {
			slog.Error("server connection ended", "error", err.Error())
		}
	}()

	err = wails.Run(&options.App{
		Title:            "slsk",
		Width:            1024,
		Height:           768,
		AssetServer:      &assetserver.Options{Assets: assets},
		OnStartup:        func(ctx context.Context) { c.Startup(ctx) },
		OnShutdown:       func(ctx context.Context) { c.Disconnect() },
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		Bind:             []any{c},
	})
	if err != nil {
		slog.Error("failed to start wails", "error", err.Error())
		os.Exit(1)
	}
}

func setupLogger() {
	opts := logging.DefaultOptions()
	opts.SlogOpts.Level = slog.LevelDebug
	opts.SlogOpts.AddSource = true

	h := logging.NewPrettyHandler(os.Stdout, &opts)
	l := slog.New(h)
	slog.SetDefault(l)
}
