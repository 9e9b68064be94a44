// Package app wires the framework together: configuration, logging, the
// native toolkit, the worker pool, the script host and a demo counter.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/widgetry/internal/async/pool"
	"github.com/dshills/widgetry/internal/bridge"
	"github.com/dshills/widgetry/internal/component"
	"github.com/dshills/widgetry/internal/config"
	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/logging"
	"github.com/dshills/widgetry/internal/native"
	"github.com/dshills/widgetry/internal/native/simkit"
	"github.com/dshills/widgetry/internal/native/termkit"
	"github.com/dshills/widgetry/internal/script"
)

// Options configures the application. Non-zero fields override the
// configuration file and environment.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// Debug enables debug logging and event tracing.
	Debug bool

	// LogLevel sets the logging verbosity.
	LogLevel string

	// LogFile receives log output. The terminal toolkit discards logs
	// unless this is set.
	LogFile string

	// Toolkit selects "sim" or "term".
	Toolkit string

	// ScriptPath enables the script host and runs this file at startup.
	ScriptPath string

	// Watch reloads the configuration file when it changes.
	Watch bool
}

// Option customizes construction beyond Options.
type Option func(*Application)

// WithToolkit uses tk instead of the toolkit named in the configuration.
func WithToolkit(tk native.Toolkit) Option {
	return func(a *Application) {
		a.toolkit = tk
	}
}

// WithLogOutput sends log output to w.
func WithLogOutput(w io.Writer) Option {
	return func(a *Application) {
		a.logOutput = w
	}
}

// Application owns the framework's long-lived services.
type Application struct {
	opts Options

	mu  sync.RWMutex
	cfg *config.Config

	logger    *logging.Logger
	logOutput io.Writer
	logFile   *os.File
	tracer    *logging.Tracer
	registry  *bridge.Registry
	toolkit   native.Toolkit
	term      *termkit.Toolkit
	pool      *pool.Pool
	host      *script.Host
	watcher   *config.Watcher

	counter *Counter
	quit    *component.Button

	ready    chan struct{}
	setupErr error
	running  atomic.Bool
	closed   atomic.Bool
}

// New loads configuration and builds every service. Nothing touches the
// terminal until Run.
func New(opts Options, extra ...Option) (*Application, error) {
	a := &Application{opts: opts, ready: make(chan struct{})}
	for _, opt := range extra {
		opt(a)
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}
	a.cfg = cfg

	if err := a.initLogging(); err != nil {
		return nil, &InitError{Component: "logging", Err: err}
	}

	a.tracer = logging.NewTracer(a.logger, cfg.Debug)
	a.registry = bridge.NewRegistry()
	a.registry.SetTracer(a.tracer)

	if err := a.initToolkit(); err != nil {
		a.closeLog()
		return nil, &InitError{Component: "toolkit", Err: err}
	}

	a.pool = pool.New(
		pool.WithWorkerCount(cfg.Pool.Workers),
		pool.WithQueueSize(cfg.Pool.QueueSize),
	)
	if err := a.pool.Start(); err != nil {
		a.closeLog()
		return nil, &InitError{Component: "pool", Err: err}
	}

	if cfg.Script.Enabled {
		var stateOpts []script.StateOption
		if d, ok := cfg.Script.ExecutionTimeout(); ok {
			stateOpts = append(stateOpts, script.WithExecutionTimeout(d))
		}
		a.host = script.NewHost(script.WithLogger(a.logger), script.WithStateOptions(stateOpts...))
	}

	a.logger.Info("initialized toolkit=%s workers=%d", a.toolkit.Name(), cfg.Pool.Workers)
	return a, nil
}

func (a *Application) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	a.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *Application) applyOverrides(cfg *config.Config) {
	if a.opts.Debug {
		cfg.Debug = true
	}
	if a.opts.LogLevel != "" {
		cfg.LogLevel = a.opts.LogLevel
	}
	if a.opts.Toolkit != "" {
		cfg.Toolkit = a.opts.Toolkit
	}
	if a.opts.ScriptPath != "" {
		cfg.Script.Enabled = true
		cfg.Script.Path = a.opts.ScriptPath
	}
}

func (a *Application) initLogging() error {
	out := a.logOutput
	switch {
	case out != nil:
	case a.opts.LogFile != "":
		f, err := os.OpenFile(a.opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		a.logFile = f
		out = f
	case a.cfg.Toolkit == config.ToolkitTerm && a.toolkit == nil:
		out = io.Discard
	default:
		out = os.Stderr
	}

	a.logger = logging.New(logging.Config{Level: a.cfg.Level(), Output: out, Prefix: "widgetry"})
	logging.Set(a.logger)
	errs.SetHandler(&errs.LogHandler{Logger: a.logger})
	return nil
}

func (a *Application) initToolkit() error {
	if a.toolkit != nil {
		if term, ok := a.toolkit.(*termkit.Toolkit); ok {
			a.term = term
		}
		return nil
	}

	switch a.cfg.Toolkit {
	case config.ToolkitSim:
		a.toolkit = simkit.New(simkit.WithLogger(a.logger))
	case config.ToolkitTerm:
		term, err := termkit.New(termkit.WithLogger(a.logger))
		if err != nil {
			return err
		}
		a.term = term
		a.toolkit = term
	default:
		return fmt.Errorf("%w: %q", ErrUnknownToolkit, a.cfg.Toolkit)
	}
	return nil
}

// Run builds the UI on the toolkit loop and blocks until the loop stops,
// either through Shutdown, the quit button or ctx.
func (a *Application) Run(ctx context.Context) error {
	if !a.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer a.running.Store(false)

	if a.term != nil {
		if err := a.term.Init(); err != nil {
			return &InitError{Component: "terminal", Err: err}
		}
		defer a.term.Shutdown()
	}

	if a.opts.Watch && a.opts.ConfigPath != "" {
		w, err := config.Watch(a.opts.ConfigPath, a.onConfigChange, config.WithWatchLogger(a.logger))
		if err != nil {
			a.logger.Warn("config watch disabled: %v", err)
		} else {
			a.watcher = w
			defer func() { _ = w.Close() }()
		}
	}

	if err := a.toolkit.Post(a.setup); err != nil {
		return err
	}

	err := a.toolkit.Loop(ctx)
	a.teardown()

	if a.setupErr != nil {
		return a.setupErr
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// setup runs on the UI loop.
func (a *Application) setup() {
	defer close(a.ready)

	if err := a.buildUI(); err != nil {
		a.setupErr = err
		a.toolkit.Quit()
		return
	}
	if a.host != nil {
		if err := a.startScripts(); err != nil {
			a.setupErr = &InitError{Component: "script", Err: err}
			a.toolkit.Quit()
			return
		}
	}
	a.logger.Info("ready")
}

func (a *Application) buildUI() error {
	componentOpts := []component.Option{
		component.WithRegistry(a.registry),
		component.WithTracer(a.tracer),
	}

	counter, err := NewCounter(a.toolkit, a.pool,
		WithCounterTracer(a.tracer),
		WithComponentOptions(append(componentOpts, component.WithName("counter"))...),
	)
	if err != nil {
		return &InitError{Component: "counter", Err: err}
	}
	a.counter = counter

	quit, err := component.NewButton(a.toolkit, "Quit", append(componentOpts, component.WithName("quit"))...)
	if err != nil {
		return &InitError{Component: "quit button", Err: err}
	}
	quit.Clicked.Listen(func(*component.Button, native.MouseInfo) {
		a.logger.Info("quit requested")
		a.toolkit.Quit()
	})
	a.quit = quit

	if a.term != nil {
		_ = a.term.SetBounds(counter.Object(), 2, 1, 20, 3)
		_ = a.term.SetBounds(quit.Object(), 24, 1, 10, 3)
		a.term.Focus(counter.Object())
	}
	return nil
}

func (a *Application) startScripts() error {
	button := a.counter.Button()
	if err := script.ExposeProperty[int](a.host, "counter.count", a.counter.Count); err != nil {
		return err
	}
	if err := script.ExposeProperty[string](a.host, "counter.label", button.Text); err != nil {
		return err
	}
	if err := script.ExposeEvent(a.host, "counter.clicked", &button.Clicked); err != nil {
		return err
	}
	if err := script.ExposeEvent(a.host, "counter.count.changed", &a.counter.Count.Changed); err != nil {
		return err
	}
	if err := script.ExposeEvent(a.host, "counter.summarized", &a.counter.Summarized); err != nil {
		return err
	}

	path := a.Config().Script.Path
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		a.logger.Warn("script %s not found", path)
		return nil
	}
	return a.host.RunFile(path)
}

// teardown runs on the goroutine that ran the loop, after it stopped.
func (a *Application) teardown() {
	if a.counter != nil {
		_ = a.counter.Destroy()
	}
	if a.quit != nil && !a.quit.IsDestroyed() {
		_ = a.quit.Destroy()
	}
	if a.host != nil {
		_ = a.host.Close()
	}
	a.registry.ReleaseAll()
}

// onConfigChange runs on the watcher goroutine.
func (a *Application) onConfigChange(cfg *config.Config) {
	a.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		errs.Report(&errs.Error{Op: "app.Reload", Kind: errs.KindConfig, Err: err})
		return
	}

	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	a.logger.SetLevel(cfg.Level())
	a.tracer.SetEnabled(cfg.Debug)
	a.logger.Info("configuration reloaded debug=%t level=%s", cfg.Debug, cfg.Level())
}

// Ready is closed once the UI has been built on the loop.
func (a *Application) Ready() <-chan struct{} { return a.ready }

// Shutdown stops the loop, drains the worker pool and closes the log file.
// It is safe to call more than once and from any goroutine.
func (a *Application) Shutdown() {
	if !a.closed.CompareAndSwap(false, true) {
		return
	}
	a.toolkit.Quit()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.pool.Stop(ctx); err != nil && !errors.Is(err, pool.ErrNotRunning) {
		a.logger.Warn("pool stop: %v", err)
	}
	a.closeLog()
}

func (a *Application) closeLog() {
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

// IsRunning returns true while Run is executing.
func (a *Application) IsRunning() bool { return a.running.Load() }

// Config returns the current configuration.
func (a *Application) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Toolkit returns the native toolkit.
func (a *Application) Toolkit() native.Toolkit { return a.toolkit }

// Counter returns the demo counter. It is nil until Ready is closed.
func (a *Application) Counter() *Counter { return a.counter }

// QuitButton returns the quit button. It is nil until Ready is closed.
func (a *Application) QuitButton() *component.Button { return a.quit }

// Registry returns the bridge registry.
func (a *Application) Registry() *bridge.Registry { return a.registry }

// Tracer returns the event tracer.
func (a *Application) Tracer() *logging.Tracer { return a.tracer }

// Pool returns the background worker pool.
func (a *Application) Pool() *pool.Pool { return a.pool }

// Host returns the script host, or nil when scripts are disabled.
func (a *Application) Host() *script.Host { return a.host }
