package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-raycaster/engine/renderer/gpu"
)

const (
	minWindowWidth  = 133
	minWindowHeight = 100
)

var errWindowSize = errors.New("window size must be WxH or W,H")

// windowSize is a flag.Value accepting WxH or W,H.
type windowSize struct {
	width, height int
}

func (s *windowSize) String() string {
	return fmt.Sprintf("%dx%d", s.width, s.height)
}

func (s *windowSize) Set(value string) error {
	w, h, ok := strings.Cut(strings.ToLower(value), "x")
	if !ok {
		w, h, ok = strings.Cut(value, ",")
	}
	if !ok {
		return fmt.Errorf("%w: %q", errWindowSize, value)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return fmt.Errorf("%w: %q", errWindowSize, value)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return fmt.Errorf("%w: %q", errWindowSize, value)
	}
	if width < minWindowWidth || height < minWindowHeight {
		return fmt.Errorf("window size %dx%d is below the minimum %dx%d", width, height, minWindowWidth, minWindowHeight)
	}
	s.width, s.height = width, height
	return nil
}

type config struct {
	vsync    int
	mapName  string
	size     windowSize
	resDir   string
	debug    bool
	strictGL bool
	profile  bool
}

// errorMode picks the device error policy from the debug flags.
func (c *config) errorMode() gpu.ErrorMode {
	switch {
	case c.strictGL:
		return gpu.ErrorModeStrict
	case c.debug:
		return gpu.ErrorModeLog
	default:
		return gpu.ErrorModeSilent
	}
}

func parseFlags(args []string, output io.Writer) (*config, error) {
	cfg := &config{size: windowSize{width: 1333, height: 1000}}

	fs := flag.NewFlagSet("raycaster", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.IntVar(&cfg.vsync, "vsync", 1, "swap interval, 0 disables vsync")
	fs.StringVar(&cfg.mapName, "map", "default.yaml", "scene file under <res>/maps")
	fs.Var(&cfg.size, "window-size", "initial window size, WxH or W,H")
	fs.Var(&cfg.size, "s", "shorthand for --window-size")
	fs.StringVar(&cfg.resDir, "res", "res", "resource root")
	fs.BoolVar(&cfg.debug, "debug", false, "log device errors and debug messages")
	fs.BoolVar(&cfg.strictGL, "strict-gl", false, "stop on the first device error")
	fs.BoolVar(&cfg.profile, "profile", true, "log frame stats once per second")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return cfg, nil
}
