package script

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/event"
	"github.com/dshills/widgetry/internal/logging"
	"github.com/dshills/widgetry/internal/property"
)

// ModuleName is the global table scripts use.
const ModuleName = "widgetry"

type propertyBinding struct {
	get func(L *lua.LState) lua.LValue
	set func(lv lua.LValue) error
}

type eventBinding struct {
	attach func(fn *lua.LFunction) event.Subscription
}

// Host owns a Lua state and the names exposed to it.
type Host struct {
	state  *State
	logger *logging.Logger

	properties map[string]propertyBinding
	events     map[string]eventBinding
	subs       map[string]event.Subscription
}

// HostOption configures a Host.
type HostOption func(*hostConfig)

type hostConfig struct {
	logger *logging.Logger
	state  []StateOption
}

// WithLogger sets the logger scripts write to through widgetry.log.
func WithLogger(l *logging.Logger) HostOption {
	return func(c *hostConfig) {
		c.logger = l
	}
}

// WithStateOptions passes options to the underlying State.
func WithStateOptions(opts ...StateOption) HostOption {
	return func(c *hostConfig) {
		c.state = append(c.state, opts...)
	}
}

// NewHost creates a host with the widgetry module installed.
func NewHost(opts ...HostOption) *Host {
	cfg := hostConfig{logger: logging.Get()}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Host{
		state:      NewState(cfg.state...),
		logger:     cfg.logger.WithComponent("script"),
		properties: make(map[string]propertyBinding),
		events:     make(map[string]eventBinding),
		subs:       make(map[string]event.Subscription),
	}
	h.state.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"get":        h.luaGet,
		"set":        h.luaSet,
		"on":         h.luaOn,
		"off":        h.luaOff,
		"log":        h.luaLog,
		"properties": h.luaProperties,
		"events":     h.luaEvents,
	})
	return h
}

// State returns the Lua state.
func (h *Host) State() *State { return h.state }

// Run executes a chunk of Lua.
func (h *Host) Run(code string) error {
	if err := h.state.DoString(code); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}

// RunFile executes a Lua file.
func (h *Host) RunFile(path string) error {
	if err := h.state.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

// Subscriptions returns the number of live Lua handlers.
func (h *Host) Subscriptions() int { return len(h.subs) }

// Close detaches every Lua handler and closes the state.
func (h *Host) Close() error {
	for id, sub := range h.subs {
		sub.Cancel()
		delete(h.subs, id)
	}
	return h.state.Close()
}

// ExposeProperty registers r under name. Scripts may assign it when r also
// implements property.Writable.
func ExposeProperty[T any](h *Host, name string, r property.Readable[T]) error {
	if _, ok := h.properties[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	b := propertyBinding{
		get: func(L *lua.LState) lua.LValue { return toLua(L, r.Get()) },
	}
	if w, ok := r.(property.Writable[T]); ok {
		b.set = func(lv lua.LValue) error {
			v, err := fromLua[T](lv)
			if err != nil {
				return fmt.Errorf("set %q: %w", name, err)
			}
			w.Set(v)
			return nil
		}
	}
	h.properties[name] = b
	return nil
}

// ExposeEvent registers ch under name so scripts can attach handlers. Lua
// handlers receive the payload.
func ExposeEvent[S, P any](h *Host, name string, ch *event.Channel[S, P]) error {
	if _, ok := h.events[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	h.events[name] = eventBinding{
		attach: func(fn *lua.LFunction) event.Subscription {
			return ch.Attach(func(_ S, payload P) error {
				if h.state.IsClosed() {
					return ErrStateClosed
				}
				if _, err := h.state.Call(fn, toLua(h.state.L, payload)); err != nil {
					return &errs.Error{Op: "script.handler", Kind: errs.KindScript, Label: name, Err: err}
				}
				return nil
			})
		},
	}
	return nil
}

func (h *Host) luaGet(L *lua.LState) int {
	name := L.CheckString(1)
	b, ok := h.properties[name]
	if !ok {
		L.RaiseError("%v: property %q", ErrUnknownName, name)
		return 0
	}
	L.Push(b.get(L))
	return 1
}

func (h *Host) luaSet(L *lua.LState) int {
	name := L.CheckString(1)
	b, ok := h.properties[name]
	if !ok {
		L.RaiseError("%v: property %q", ErrUnknownName, name)
		return 0
	}
	if b.set == nil {
		L.RaiseError("%v: %q", ErrReadOnly, name)
		return 0
	}
	if err := b.set(L.Get(2)); err != nil {
		L.RaiseError("%s", err.Error())
	}
	return 0
}

func (h *Host) luaOn(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	b, ok := h.events[name]
	if !ok {
		L.RaiseError("%v: event %q", ErrUnknownName, name)
		return 0
	}
	sub := b.attach(fn)
	h.subs[sub.ID()] = sub
	L.Push(lua.LString(sub.ID()))
	return 1
}

func (h *Host) luaOff(L *lua.LState) int {
	id := L.CheckString(1)
	sub, ok := h.subs[id]
	if ok {
		sub.Cancel()
		delete(h.subs, id)
	}
	L.Push(lua.LBool(ok))
	return 1
}

func (h *Host) luaLog(L *lua.LState) int {
	h.logger.Info("%s", L.CheckString(1))
	return 0
}

func (h *Host) luaProperties(L *lua.LState) int {
	L.Push(namesTable(L, h.properties))
	return 1
}

func (h *Host) luaEvents(L *lua.LState) int {
	L.Push(namesTable(L, h.events))
	return 1
}

func namesTable[V any](L *lua.LState, m map[string]V) *lua.LTable {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	t := L.NewTable()
	for i, name := range names {
		t.RawSetInt(i+1, lua.LString(name))
	}
	return t
}
