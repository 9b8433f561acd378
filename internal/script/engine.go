// Package script runs user-defined Lua actions bound to multi-finger
// shortcut gestures. Scripts execute in a sandboxed state with the unsafe
// standard library stripped and a per-call timeout, and return the name of
// the action to perform.
package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine errors.
var (
	// ErrEngineClosed is returned when using a closed engine.
	ErrEngineClosed = errors.New("script: engine is closed")

	// ErrNoBinding indicates no script is bound for the finger count.
	ErrNoBinding = errors.New("script: no binding")

	// ErrBadScript indicates a script that failed to compile.
	ErrBadScript = errors.New("script: compile failed")
)

// Config tunes script execution.
type Config struct {
	// CallTimeout bounds one script invocation. A runaway script is
	// aborted through the Lua context, not the host goroutine.
	CallTimeout time.Duration

	// CallStackSize bounds Lua call depth.
	CallStackSize int
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		CallTimeout:   50 * time.Millisecond,
		CallStackSize: 64,
	}
}

// Engine owns one sandboxed Lua state and the finger-count bindings.
//
// gopher-lua's LState is not goroutine-safe, so every operation runs under
// the engine mutex.
type Engine struct {
	mu sync.Mutex

	cfg    Config
	logger *zap.Logger

	state    *lua.LState
	bindings map[int]*lua.LFunction
	closed   bool
}

// NewEngine creates an engine with a fresh sandboxed state.
func NewEngine(cfg Config, logger *zap.Logger) *Engine {
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultConfig().CallTimeout
	}
	if cfg.CallStackSize <= 0 {
		cfg.CallStackSize = DefaultConfig().CallStackSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	L := lua.NewState(lua.Options{
		SkipOpenLibs:  true,
		CallStackSize: cfg.CallStackSize,
	})
	openSafeLibs(L)
	stripUnsafeGlobals(L)

	return &Engine{
		cfg:      cfg,
		logger:   logger,
		state:    L,
		bindings: make(map[int]*lua.LFunction),
	}
}

// openSafeLibs loads only the side-effect-free standard modules.
func openSafeLibs(L *lua.LState) {
	for _, open := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(open.fn))
		L.Push(lua.LString(open.name))
		L.Call(1, 0)
	}
}

// stripUnsafeGlobals removes the loaders that could bypass the sandbox.
func stripUnsafeGlobals(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "print"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Bind compiles a script and associates it with a finger count, replacing
// any existing binding. The script receives the finger count as its
// argument and returns the action name to perform.
func (e *Engine) Bind(fingers int, source string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrEngineClosed
	}

	fn, err := e.state.LoadString(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadScript, err)
	}
	e.bindings[fingers] = fn
	return nil
}

// Unbind removes the binding for a finger count.
func (e *Engine) Unbind(fingers int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.bindings, fingers)
}

// Has reports whether a script is bound for the finger count.
func (e *Engine) Has(fingers int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bindings[fingers] != nil
}

// Run executes the script bound to a finger count and returns the action
// name it produced. An empty return value means the script declined.
func (e *Engine) Run(fingers int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return "", ErrEngineClosed
	}

	fn, ok := e.bindings[fingers]
	if !ok {
		return "", fmt.Errorf("%w: %d fingers", ErrNoBinding, fingers)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.CallTimeout)
	defer cancel()
	e.state.SetContext(ctx)
	defer e.state.RemoveContext()

	e.state.Push(fn)
	e.state.Push(lua.LNumber(fingers))
	if err := e.state.PCall(1, 1, nil); err != nil {
		e.logger.Warn("shortcut script failed",
			zap.Int("fingers", fingers),
			zap.Error(err),
		)
		return "", err
	}

	ret := e.state.Get(-1)
	e.state.Pop(1)
	if s, ok := ret.(lua.LString); ok {
		return string(s), nil
	}
	return "", nil
}

// Close releases the Lua state. Safe to call repeatedly.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.state.Close()
}

// IsClosed returns true if the engine has been closed.
func (e *Engine) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
