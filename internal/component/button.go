package component

import (
	"github.com/dshills/widgetry/internal/errs"
	"github.com/dshills/widgetry/internal/event"
	"github.com/dshills/widgetry/internal/native"
	"github.com/dshills/widgetry/internal/property"
)

// Button is a push button with a text property and a Clicked event.
type Button struct {
	*Base

	text string

	// Text is the button caption.
	Text *property.ValueRW[Button, string]

	// Clicked is raised when the button is clicked or activated from the
	// keyboard.
	Clicked event.Channel[*Button, native.MouseInfo]

	clicked   event.Channel[*native.Object, native.MouseInfo]
	activated event.Channel[*native.Object, any]
}

// NewButton creates a button and its native object.
func NewButton(tk native.Toolkit, text string, opts ...Option) (*Button, error) {
	b := &Button{Base: NewBase(tk, "button", opts...), text: text}
	b.Text = property.NewValueRW(b, (*Button).GetText, (*Button).SetText)
	b.Clicked.Configure(event.WithLabel(b.Name() + ".clicked"))

	if _, err := b.Create(); err != nil {
		return nil, err
	}
	b.clicked.Attach(func(_ *native.Object, mi native.MouseInfo) error {
		return b.Clicked.Raise(b, mi)
	})
	b.activated.Attach(func(*native.Object, any) error {
		return b.Clicked.Raise(b, native.MouseInfo{})
	})
	if _, err := SmartAs(b.Base, "clicked", &b.clicked); err != nil {
		return nil, err
	}
	if _, err := b.Smart("activated", &b.activated); err != nil {
		return nil, err
	}
	b.refresh()
	return b, nil
}

// GetText returns the caption.
func (b *Button) GetText() string { return b.text }

// SetText sets the caption and redraws it when the toolkit can.
func (b *Button) SetText(text string) {
	b.text = text
	b.refresh()
}

func (b *Button) refresh() {
	l, ok := b.Toolkit().(Labeler)
	if !ok || b.IsDestroyed() {
		return
	}
	if err := l.SetLabel(b.Object(), b.text); err != nil {
		errs.Report(&errs.Error{Op: "component.SetText", Kind: errs.KindBridge, Label: b.Name() + ".text", Err: err})
	}
}
