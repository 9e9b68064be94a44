package script

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"
)

func TestState_DoString(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString("x = 1 + 2"); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := s.GetGlobal("x"); got != lua.LNumber(3) {
		t.Errorf("x = %v, want 3", got)
	}
}

func TestState_SafeLibraries(t *testing.T) {
	s := NewState()
	defer s.Close()

	for _, name := range []string{"os", "io", "debug", "package"} {
		if got := s.GetGlobal(name); got != lua.LNil {
			t.Errorf("global %s = %v, want nil", name, got)
		}
	}
	for _, name := range []string{"string", "table", "math"} {
		if got := s.GetGlobal(name); got.Type() != lua.LTTable {
			t.Errorf("global %s type = %s, want table", name, got.Type())
		}
	}
}

func TestState_SyntaxError(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString("this is not lua"); err == nil {
		t.Error("expected syntax error")
	}
}

func TestState_ExecutionTimeout(t *testing.T) {
	s := NewState(WithExecutionTimeout(50 * time.Millisecond))
	defer s.Close()

	start := time.Now()
	err := s.DoString("while true do end")
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Fatalf("DoString() error = %v, want ErrExecutionTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}

	// The state stays usable after a timeout.
	if err := s.DoString("y = 2"); err != nil {
		t.Errorf("DoString() after timeout error = %v", err)
	}
}

func TestState_Call(t *testing.T) {
	s := NewState()
	defer s.Close()

	if err := s.DoString("function add(a, b) return a + b, a * b end"); err != nil {
		t.Fatal(err)
	}

	results, err := s.Call(s.GetGlobal("add"), lua.LNumber(3), lua.LNumber(4))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(results) != 2 || results[0] != lua.LNumber(7) || results[1] != lua.LNumber(12) {
		t.Errorf("Call() = %v, want [7 12]", results)
	}
	if top := s.L.GetTop(); top != 0 {
		t.Errorf("stack top = %d after Call, want 0", top)
	}
}

func TestState_CallErrors(t *testing.T) {
	s := NewState()
	defer s.Close()

	if _, err := s.Call(lua.LNumber(1)); err == nil {
		t.Error("expected error calling a number")
	}

	if err := s.DoString(`function fail() error("boom") end`); err != nil {
		t.Fatal(err)
	}
	_, err := s.Call(s.GetGlobal("fail"))
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Call() error = %v, want boom", err)
	}
	if top := s.L.GetTop(); top != 0 {
		t.Errorf("stack top = %d after failed Call, want 0", top)
	}
}

func TestState_DoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "init.lua")
	if err := os.WriteFile(path, []byte("loaded = true"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewState()
	defer s.Close()

	if err := s.DoFile(path); err != nil {
		t.Fatalf("DoFile() error = %v", err)
	}
	if got := s.GetGlobal("loaded"); got != lua.LTrue {
		t.Errorf("loaded = %v, want true", got)
	}
}

func TestState_Closed(t *testing.T) {
	s := NewState()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if !s.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}

	if err := s.DoString("x = 1"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() error = %v, want ErrStateClosed", err)
	}
	if _, err := s.Call(lua.LNil); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Call() error = %v, want ErrStateClosed", err)
	}
	if got := s.GetGlobal("x"); got != lua.LNil {
		t.Errorf("GetGlobal() = %v, want nil", got)
	}
}
