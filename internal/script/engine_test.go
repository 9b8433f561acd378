package script

import (
	"errors"
	"testing"
	"time"
)

func TestBindAndRun(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)
	defer e.Close()

	src := `
		local fingers = ...
		if fingers == 3 then
			return "tool.pencil"
		end
		return "history.undo"
	`
	if err := e.Bind(3, src); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	action, err := e.Run(3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if action != "tool.pencil" {
		t.Errorf("Run(3) = %q, want %q", action, "tool.pencil")
	}
}

func TestRunReceivesFingerCount(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)
	defer e.Close()

	if err := e.Bind(4, `return "fingers." .. tostring(...)`); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	action, err := e.Run(4)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if action != "fingers.4" {
		t.Errorf("Run(4) = %q, want %q", action, "fingers.4")
	}
}

func TestScriptDeclines(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)
	defer e.Close()

	if err := e.Bind(3, `return nil`); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	action, err := e.Run(3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if action != "" {
		t.Errorf("Run() = %q for declining script, want empty", action)
	}
}

func TestBindRejectsBadScript(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)
	defer e.Close()

	if err := e.Bind(3, `return ((`); !errors.Is(err, ErrBadScript) {
		t.Errorf("Bind(bad source) error = %v, want ErrBadScript", err)
	}
	if e.Has(3) {
		t.Error("bad script was bound")
	}
}

func TestRunWithoutBinding(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)
	defer e.Close()

	if _, err := e.Run(5); !errors.Is(err, ErrNoBinding) {
		t.Errorf("Run(unbound) error = %v, want ErrNoBinding", err)
	}
}

func TestUnbind(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)
	defer e.Close()

	if err := e.Bind(3, `return "x"`); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	e.Unbind(3)
	if e.Has(3) {
		t.Error("Has(3) = true after Unbind")
	}
}

func TestSandboxStripsLoaders(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)
	defer e.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		src := `if ` + name + ` == nil then return "stripped" end return "present"`
		if err := e.Bind(3, src); err != nil {
			t.Fatalf("Bind() error = %v", err)
		}
		action, err := e.Run(3)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if action != "stripped" {
			t.Errorf("%s still reachable from scripts", name)
		}
	}
}

func TestSandboxKeepsSafeLibs(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)
	defer e.Close()

	if err := e.Bind(3, `return string.upper("ok") .. tostring(math.floor(1.9))`); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	action, err := e.Run(3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if action != "OK1" {
		t.Errorf("Run() = %q, want %q", action, "OK1")
	}
}

func TestRunawayScriptTimesOut(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CallTimeout = 10 * time.Millisecond
	e := NewEngine(cfg, nil)
	defer e.Close()

	if err := e.Bind(3, `while true do end`); err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if _, err := e.Run(3); err == nil {
		t.Error("Run(infinite loop) returned nil error, want timeout")
	}
}

func TestClosedEngine(t *testing.T) {
	e := NewEngine(DefaultConfig(), nil)
	e.Close()
	e.Close()

	if !e.IsClosed() {
		t.Fatal("IsClosed() = false after Close")
	}
	if err := e.Bind(3, `return "x"`); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Bind() after Close error = %v, want ErrEngineClosed", err)
	}
	if _, err := e.Run(3); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Run() after Close error = %v, want ErrEngineClosed", err)
	}
}
