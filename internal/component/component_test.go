package component

import (
	"errors"
	"testing"

	"github.com/dshills/widgetry/internal/bridge"
	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/event"
	"github.com/dshills/widgetry/internal/native"
	"github.com/dshills/widgetry/internal/native/simkit"
	"github.com/dshills/widgetry/internal/property"
)

func TestBase_CreateOnce(t *testing.T) {
	tk := simkit.New()
	b := NewBase(tk, "rect", WithRegistry(bridge.NewRegistry()))

	if b.Object() != nil {
		t.Error("Object() should be nil before Create")
	}
	first, err := b.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, _ := b.Create()
	if first != second {
		t.Error("Create() must return the same object on every call")
	}
	if first.Kind() != "rect" {
		t.Errorf("Kind() = %q", first.Kind())
	}
}

func TestBase_BridgeBeforeCreate(t *testing.T) {
	b := NewBase(simkit.New(), "rect", WithRegistry(bridge.NewRegistry()))
	var ch event.Channel[*native.Object, any]
	if _, err := b.Smart("clicked", &ch); !errors.Is(err, ErrNotCreated) {
		t.Errorf("Smart() before Create error = %v", err)
	}
	if err := b.Destroy(); !errors.Is(err, ErrNotCreated) {
		t.Errorf("Destroy() before Create error = %v", err)
	}
}

func TestBase_DestroyReleasesAfterNativeObject(t *testing.T) {
	tk := simkit.New()
	reg := bridge.NewRegistry()
	b := NewBase(tk, "rect", WithRegistry(reg), WithName("panel"))
	obj, _ := b.Create()

	var down event.Channel[*bridge.EventSource, any]
	var sig event.Channel[*native.Object, bridge.SignalInfo]
	c1, err := b.ObjectEvent(native.MouseDown, &down)
	if err != nil {
		t.Fatalf("ObjectEvent() error = %v", err)
	}
	c2, err := b.Signal("*", "*", &sig)
	if err != nil {
		t.Fatalf("Signal() error = %v", err)
	}
	if c1.Label() != "panel.mouse,down" {
		t.Errorf("label = %q", c1.Label())
	}

	destroyed := 0
	var aliveAtDestroy bool
	b.Destroyed.Listen(func(*Base, struct{}) {
		destroyed++
		aliveAtDestroy = tk.Alive(obj)
	})

	if err := b.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if destroyed != 1 {
		t.Errorf("Destroyed raised %d times", destroyed)
	}
	if aliveAtDestroy {
		t.Error("Destroyed must follow native deletion")
	}
	if !c1.Released() || !c2.Released() {
		t.Error("owned contexts should be released")
	}
	if reg.Len() != 0 {
		t.Errorf("registry Len() = %d", reg.Len())
	}
	if err := b.Destroy(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("second Destroy() error = %v", err)
	}
	if _, err := b.Create(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Create() after Destroy error = %v", err)
	}
}

func TestBase_NativeDeletion(t *testing.T) {
	tk := simkit.New()
	reg := bridge.NewRegistry()
	b := NewBase(tk, "rect", WithRegistry(reg))
	obj, _ := b.Create()
	var ch event.Channel[*native.Object, any]
	_, _ = b.Smart("clicked", &ch)

	destroyed := false
	b.Destroyed.Listen(func(*Base, struct{}) { destroyed = true })

	_ = tk.DestroyObject(obj)

	if !destroyed || !b.IsDestroyed() {
		t.Error("toolkit deletion should tear the component down")
	}
	if reg.Len() != 0 || b.Contexts() != 0 {
		t.Errorf("registry=%d owned=%d after native deletion", reg.Len(), b.Contexts())
	}
}

func TestBase_ItemSignal(t *testing.T) {
	tk := simkit.New()
	b := NewBase(tk, "list", WithRegistry(bridge.NewRegistry()))
	obj, _ := b.Create()
	item, _ := tk.NewItem(obj, "row")

	var ch event.Channel[*native.Item, bridge.SignalInfo]
	var got bridge.SignalInfo
	ch.Listen(func(_ *native.Item, si bridge.SignalInfo) { got = si })

	if _, err := b.ItemSignal(item, "selected", "*", &ch); err != nil {
		t.Fatalf("ItemSignal() error = %v", err)
	}
	tk.EmitItemSignal(item, "selected", "list")
	if got.Emission != "selected" {
		t.Errorf("got = %+v", got)
	}
}

func TestButton_TextProperty(t *testing.T) {
	tk := simkit.New()
	btn, err := NewButton(tk, "OK", WithRegistry(bridge.NewRegistry()))
	if err != nil {
		t.Fatalf("NewButton() error = %v", err)
	}

	if !property.Equal[string](btn.Text, "OK") {
		t.Errorf("Text = %q", btn.Text.Get())
	}
	if tk.Label(btn.Object()) != "OK" {
		t.Errorf("native label = %q", tk.Label(btn.Object()))
	}

	btn.Text.Set("Cancel")
	if tk.Label(btn.Object()) != "Cancel" {
		t.Errorf("native label = %q after Set", tk.Label(btn.Object()))
	}
}

func TestButton_Clicked(t *testing.T) {
	tk := simkit.New()
	btn, _ := NewButton(tk, "OK", WithRegistry(bridge.NewRegistry()))

	var log []string
	btn.Clicked.Listen(func(src *Button, mi native.MouseInfo) {
		if src != btn {
			t.Error("source should be the button")
		}
		log = append(log, "first")
	})
	btn.Clicked.Listen(func(*Button, native.MouseInfo) { log = append(log, "second") })

	tk.Click(btn.Object(), 1, 1)
	tk.EmitSmart(btn.Object(), "activated", nil)

	want := []string{"first", "second", "first", "second"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
}

func TestButton_DestroyStopsEvents(t *testing.T) {
	tk := simkit.New()
	btn, _ := NewButton(tk, "OK", WithRegistry(bridge.NewRegistry()))
	obj := btn.Object()
	clicks := 0
	btn.Clicked.Listen(func(*Button, native.MouseInfo) { clicks++ })

	if err := btn.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if n := tk.EmitSmart(obj, "clicked", native.MouseInfo{}); n != 0 {
		t.Errorf("%d callbacks still registered after destroy", n)
	}
	if clicks != 0 {
		t.Errorf("clicks = %d", clicks)
	}
	btn.Text.Set("gone")
	if btn.Text.Get() != "gone" {
		t.Error("property should still reach owner state after destroy")
	}
}

type reports struct {
	errs []*errs.Error
}

func (r *reports) HandleError(err *errs.Error) { r.errs = append(r.errs, err) }

func TestBase_DestroyedHandlerErrorReported(t *testing.T) {
	r := &reports{}
	errs.SetHandler(r)
	defer errs.SetHandler(nil)

	tk := simkit.New()
	b := NewBase(tk, "rect", WithRegistry(bridge.NewRegistry()), WithName("panel"))
	if _, err := b.Create(); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	boom := errors.New("boom")
	b.Destroyed.Attach(func(*Base, struct{}) error { return boom })

	if err := b.Destroy(); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if len(r.errs) != 1 {
		t.Fatalf("reports = %d, want 1", len(r.errs))
	}
	got := r.errs[0]
	if got.Op != "component.Destroy" || got.Kind != errs.KindLifetime || got.Label != "panel.destroyed" {
		t.Errorf("report = %+v", got)
	}
	if !errors.Is(got, boom) {
		t.Errorf("report error = %v, want it to wrap the handler error", got)
	}
}

type failingLabeler struct {
	*simkit.Toolkit
}

func (failingLabeler) SetLabel(*native.Object, string) error { return errors.New("no label") }

func TestButton_SetLabelFailureReported(t *testing.T) {
	r := &reports{}
	errs.SetHandler(r)
	defer errs.SetHandler(nil)

	tk := failingLabeler{simkit.New()}
	btn, err := NewButton(tk, "ok", WithRegistry(bridge.NewRegistry()), WithName("ok"))
	if err != nil {
		t.Fatalf("NewButton() error = %v", err)
	}
	btn.Text.Set("cancel")

	if len(r.errs) != 2 {
		t.Fatalf("reports = %d, want one per label update", len(r.errs))
	}
	for _, e := range r.errs {
		if e.Op != "component.SetText" || e.Kind != errs.KindBridge {
			t.Errorf("report = %+v", e)
		}
	}
}
