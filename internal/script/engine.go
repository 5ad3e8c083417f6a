// Package script runs the optional init.lua next to the config file. Scripts
// build keybinding actions with constructor functions and attach them to key
// chords with bind; callback(fn) turns a Lua function into an action the
// daemon can invoke later.
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/1broseidon/wintile/internal/binding"
)

var (
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("script engine closed")
	// ErrUnknownCallback is returned by Invoke for ids that were never registered.
	ErrUnknownCallback = errors.New("unknown callback")
)

const actionTypeName = "wintile.action"

// Engine owns a Lua state. gopher-lua states are not goroutine-safe, so every
// entry point holds mu.
type Engine struct {
	mu        sync.Mutex
	L         *lua.LState
	logger    *slog.Logger
	callbacks []*lua.LFunction
	bindings  []binding.Keybinding
	closed    bool
}

// New creates an engine with the base, table, string and math libraries and
// the wintile API installed as globals.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	e := &Engine{L: L, logger: logger}
	e.install()
	return e
}

// DoFile runs a script file.
func (e *Engine) DoFile(path string) error {
	return e.run(func() error { return e.L.DoFile(path) })
}

// DoString runs a chunk of Lua source.
func (e *Engine) DoString(src string) error {
	return e.run(func() error { return e.L.DoString(src) })
}

func (e *Engine) run(fn func() error) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// Invoke calls the callback registered under id.
func (e *Engine) Invoke(id int) error {
	return e.run(func() error {
		if id < 0 || id >= len(e.callbacks) {
			return fmt.Errorf("%w: %d", ErrUnknownCallback, id)
		}
		e.L.Push(e.callbacks[id])
		if err := e.L.PCall(0, 0, nil); err != nil {
			return fmt.Errorf("callback %d: %w", id, err)
		}
		return nil
	})
}

// Bindings returns the keybindings declared with bind, in declaration order.
func (e *Engine) Bindings() []binding.Keybinding {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]binding.Keybinding(nil), e.bindings...)
}

// Callbacks reports how many callbacks are registered.
func (e *Engine) Callbacks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.callbacks)
}

// Close releases the Lua state.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.closed {
		e.closed = true
		e.L.Close()
	}
}
