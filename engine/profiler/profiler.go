package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Carmen-Shannon/oxy-raycaster/common"
)

// Report is one interval's worth of statistics.
type Report struct {
	FPS       float64
	Position  mgl32.Vec2
	HeapMB    float64
	AllocRate float64
	GCCount   uint32
	SysMB     float64
}

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       float64
	started        bool
	updateInterval float64
	clock          func() float64
	logger         *slog.Logger
	memStats       runtime.MemStats
	lastTotalAlloc uint64
	last           Report
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithClock sets the time source in seconds.
//
// Parameters:
//   - clock: returns the current time in seconds
//
// Returns:
//   - ProfilerOption: functional option to set the clock
func WithClock(clock func() float64) ProfilerOption {
	return func(p *Profiler) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithInterval sets how often a report is produced.
//
// Parameters:
//   - interval: the report interval, ignored if not positive
//
// Returns:
//   - ProfilerOption: functional option to set the interval
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval.Seconds()
		}
	}
}

// WithLogger sets the logger reports are written to.
//
// Parameters:
//   - logger: the logger, nil falls back to the process logger
//
// Returns:
//   - ProfilerOption: functional option to set the logger
func WithLogger(logger *slog.Logger) ProfilerOption {
	return func(p *Profiler) {
		p.logger = logger
	}
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second and the clock to wall time.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	start := time.Now()
	p := &Profiler{
		updateInterval: 1,
		clock:          func() float64 { return time.Since(start).Seconds() },
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Tick should be called once per frame to track frame timing.
// Logs a report at Info when the update interval has elapsed.
//
// Parameters:
//   - position: the player position reported with the frame rate
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(position mgl32.Vec2) bool {
	now := p.clock()
	if !p.started {
		p.started = true
		p.lastTime = now
		runtime.ReadMemStats(&p.memStats)
		p.lastTotalAlloc = p.memStats.TotalAlloc
	}
	p.frameCount++

	elapsed := now - p.lastTime
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	p.last = Report{
		FPS:       float64(p.frameCount) / elapsed,
		Position:  position,
		HeapMB:    float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRate: float64(allocDelta) / 1024 / 1024 / elapsed,
		GCCount:   p.memStats.NumGC,
		SysMB:     float64(p.memStats.Sys) / 1024 / 1024,
	}

	p.log().Info("Frame stats",
		"fps", int(p.last.FPS),
		"x", position[0],
		"y", position[1],
		"heapMB", p.last.HeapMB,
		"allocMBps", p.last.AllocRate,
		"gc", p.last.GCCount,
		"sysMB", p.last.SysMB,
	)

	p.frameCount = 0
	p.lastTime = now
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recent report.
//
// Returns:
//   - Report: the last logged report, zero before the first one
func (p *Profiler) Last() Report {
	return p.last
}

func (p *Profiler) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return common.Logger()
}
