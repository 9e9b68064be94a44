package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/widgetry/internal/config"
	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/logging"
	"github.com/dshills/widgetry/internal/native/simkit"
)

type runningApp struct {
	app  *Application
	tk   *simkit.Toolkit
	done chan error
	log  *bytes.Buffer
}

func startApp(t *testing.T, opts Options) *runningApp {
	t.Helper()
	t.Cleanup(func() {
		errs.SetHandler(nil)
		logging.Set(nil)
	})

	tk := simkit.New(simkit.WithLogger(logging.Null()))
	var buf bytes.Buffer
	opts.Toolkit = config.ToolkitSim
	a, err := New(opts, WithToolkit(tk), WithLogOutput(&buf))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	r := &runningApp{app: a, tk: tk, done: make(chan error, 1), log: &buf}
	go func() { r.done <- a.Run(context.Background()) }()
	t.Cleanup(func() {
		a.Shutdown()
		select {
		case <-r.done:
		case <-time.After(5 * time.Second):
			t.Error("Run() did not return after Shutdown")
		}
	})

	select {
	case <-a.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("application never became ready")
	}
	return r
}

func (r *runningApp) onLoop(t *testing.T, fn func()) {
	t.Helper()
	onLoop(t, r.tk, fn)
}

func TestApplication_ClickAndQuit(t *testing.T) {
	r := startApp(t, Options{})
	a := r.app

	if !a.IsRunning() {
		t.Error("IsRunning() = false while running")
	}
	if a.Host() != nil {
		t.Error("script host should be disabled by default")
	}

	summaries := make(chan string, 1)
	r.onLoop(t, func() {
		a.Counter().Summarized.Listen(func(_ *Counter, s string) { summaries <- s })
		r.tk.Click(a.Counter().Object(), 0, 0)
	})
	select {
	case s := <-summaries:
		if s != "1 click" {
			t.Errorf("summary = %q", s)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for summary")
	}

	if a.Registry().Len() == 0 {
		t.Error("bridge contexts should be registered while running")
	}

	r.onLoop(t, func() { r.tk.Click(a.QuitButton().Object(), 0, 0) })
	select {
	case err := <-r.done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
		r.done <- nil
	case <-time.After(5 * time.Second):
		t.Fatal("quit button did not stop the loop")
	}

	if n := a.Registry().Len(); n != 0 {
		t.Errorf("registry has %d contexts after Run, want 0", n)
	}
	if !strings.Contains(r.log.String(), "quit requested") {
		t.Errorf("log missing quit line: %q", r.log.String())
	}
}

func TestApplication_RunTwice(t *testing.T) {
	r := startApp(t, Options{})
	if err := r.app.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestApplication_Script(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.lua")
	code := `
widgetry.set("counter.label", "Press me")
widgetry.on("counter.count.changed", function(c) last = c.New end)
`
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}

	r := startApp(t, Options{ScriptPath: path})
	a := r.app
	if a.Host() == nil {
		t.Fatal("script host should be enabled")
	}

	r.onLoop(t, func() {
		if got := a.Counter().Button().Text.Get(); got != "Press me" {
			t.Errorf("label = %q, want set by script", got)
		}
		r.tk.Click(a.Counter().Object(), 0, 0)
		if got := a.Host().State().GetGlobal("last"); got != lua.LNumber(1) {
			t.Errorf("last = %v, want 1", got)
		}
	})
}

func TestApplication_MissingScriptIsNotFatal(t *testing.T) {
	r := startApp(t, Options{ScriptPath: filepath.Join(t.TempDir(), "none.lua")})
	if r.app.Counter() == nil {
		t.Error("counter should be built")
	}
	if !strings.Contains(r.log.String(), "not found") {
		t.Errorf("log missing warning: %q", r.log.String())
	}
}

func TestApplication_ScriptErrorStopsRun(t *testing.T) {
	t.Cleanup(func() {
		errs.SetHandler(nil)
		logging.Set(nil)
	})
	path := filepath.Join(t.TempDir(), "bad.lua")
	if err := os.WriteFile(path, []byte(`widgetry.set("counter.nope", 1)`), 0o644); err != nil {
		t.Fatal(err)
	}

	tk := simkit.New(simkit.WithLogger(logging.Null()))
	a, err := New(Options{Toolkit: config.ToolkitSim, ScriptPath: path}, WithToolkit(tk), WithLogOutput(&bytes.Buffer{}))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Shutdown()

	err = a.Run(context.Background())
	var ierr *InitError
	if !errors.As(err, &ierr) || ierr.Component != "script" {
		t.Errorf("Run() error = %v, want script InitError", err)
	}
}

func TestApplication_ContextCancelStopsRun(t *testing.T) {
	t.Cleanup(func() {
		errs.SetHandler(nil)
		logging.Set(nil)
	})
	tk := simkit.New(simkit.WithLogger(logging.Null()))
	a, err := New(Options{Toolkit: config.ToolkitSim}, WithToolkit(tk), WithLogOutput(&bytes.Buffer{}))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	<-a.Ready()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil on cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Options{Toolkit: "gtk"}, WithLogOutput(&bytes.Buffer{}))
	var ierr *InitError
	if !errors.As(err, &ierr) || ierr.Component != "config" {
		t.Fatalf("New() error = %v, want config InitError", err)
	}
	if !errors.Is(err, config.ErrInvalidValue) {
		t.Errorf("New() error = %v, want ErrInvalidValue", err)
	}
}

func TestNew_ConfigFileAndOverrides(t *testing.T) {
	t.Cleanup(func() {
		errs.SetHandler(nil)
		logging.Set(nil)
	})
	path := filepath.Join(t.TempDir(), "widgetry.yaml")
	content := "toolkit: sim\nlog_level: error\npool:\n  workers: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := New(Options{ConfigPath: path, Debug: true}, WithLogOutput(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer a.Shutdown()

	cfg := a.Config()
	if cfg.Pool.Workers != 3 || cfg.LogLevel != "error" || !cfg.Debug {
		t.Errorf("Config() = %+v", cfg)
	}
	if a.Toolkit().Name() != "sim" {
		t.Errorf("toolkit = %s, want sim", a.Toolkit().Name())
	}
	if !a.Tracer().Enabled() {
		t.Error("tracer should be enabled in debug mode")
	}
	if !a.Pool().IsRunning() {
		t.Error("pool should be running")
	}
}

func TestApplication_ConfigChange(t *testing.T) {
	t.Cleanup(func() {
		errs.SetHandler(nil)
		logging.Set(nil)
	})
	a, err := New(Options{Toolkit: config.ToolkitSim}, WithLogOutput(&bytes.Buffer{}))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Shutdown()

	if a.Tracer().Enabled() {
		t.Fatal("tracer should start disabled")
	}

	cfg := config.Default()
	cfg.Debug = true
	a.onConfigChange(cfg)
	if !a.Tracer().Enabled() {
		t.Error("tracer should be enabled after reload with debug")
	}
	if a.Config() != cfg {
		t.Error("Config() should return the reloaded configuration")
	}
	if a.Config().Toolkit != config.ToolkitSim {
		t.Errorf("Toolkit override lost on reload: %q", a.Config().Toolkit)
	}

	bad := config.Default()
	bad.Pool.Workers = 0
	a.onConfigChange(bad)
	if a.Config() != cfg {
		t.Error("invalid reload must keep the previous configuration")
	}
}

func TestApplication_ShutdownIdempotent(t *testing.T) {
	t.Cleanup(func() {
		errs.SetHandler(nil)
		logging.Set(nil)
	})
	a, err := New(Options{Toolkit: config.ToolkitSim}, WithLogOutput(&bytes.Buffer{}))
	if err != nil {
		t.Fatal(err)
	}
	a.Shutdown()
	a.Shutdown()
	if a.Pool().IsRunning() {
		t.Error("pool should be stopped")
	}
}
