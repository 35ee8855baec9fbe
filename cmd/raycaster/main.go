// Command raycaster renders a grid scene with GPU compute raycasting.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-raycaster/common"
	"github.com/Carmen-Shannon/oxy-raycaster/engine"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/level"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/loader"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu/gpugl"
	"github.com/Carmen-Shannon/oxy-raycaster/engine/window"
)

func main() {
	cfg, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logLevel := slog.LevelInfo
	if cfg.debug {
		logLevel = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if err := run(cfg); err != nil {
		common.Logger().Error("Raycaster stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config) error {
	log := common.Logger()

	win, err := window.NewWindow(
		window.WithTitle("oxy-raycaster"),
		window.WithWidth(cfg.size.width),
		window.WithHeight(cfg.size.height),
		window.WithMinWidth(minWindowWidth),
		window.WithMinHeight(minWindowHeight),
	)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	device, err := gpugl.NewDevice()
	if err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	ctx := gpu.NewContext(device, gpu.WithErrorMode(cfg.errorMode()))

	resources := os.DirFS(cfg.resDir)
	m, err := level.NewLoader(ctx, level.WithFS(resources)).Load(cfg.mapName)
	if err != nil {
		return err
	}
	defer m.Release()

	files := m.Textures()
	if len(files) == 0 {
		files = loader.DefaultTextures
	}
	textureLoader := loader.NewLoader(ctx, loader.WithFS(resources))
	textures, err := textureLoader.LoadTextureArray(files)
	if err != nil {
		return err
	}
	defer textures.Release()

	if icon, err := textureLoader.LoadImage(files[0]); err != nil {
		log.Warn("Failed to load window icon", "file", files[0], "error", err)
	} else {
		win.SetIcon(icon)
	}

	r, err := renderer.NewRenderer(ctx)
	if err != nil {
		return err
	}
	defer r.Release()

	eng, err := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithMap(m),
		engine.WithTextures(textures),
		engine.WithVSync(cfg.vsync),
		engine.WithProfiling(cfg.profile),
	)
	if err != nil {
		return err
	}

	log.Info("Starting raycaster", "map", m.Name(), "sprites", len(m.Sprites()), "textures", len(files))
	return eng.Run()
}
