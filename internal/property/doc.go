// Package property binds a component's accessor and mutator methods into a
// single field-like handle.
//
// A property never stores its value. Every Get calls the owner's accessor
// and every Set calls the owner's mutator, so the property's value is exactly
// the owner's state. Properties are declared with method expressions:
//
//	type Label struct {
//	    text string
//	    Text *property.ValueRW[Label, string]
//	}
//
//	func NewLabel() *Label {
//	    l := &Label{}
//	    l.Text = property.NewValueRW(l, (*Label).GetText, (*Label).SetText)
//	    return l
//	}
//
// # Categories
//
// The accessor's shape selects the category:
//
//	Value          get func(*O) T    set func(*O, T)    Get returns T
//	Reference      get func(*O) *T   set func(*O, *T)   Get returns *T, never nil
//	ConstReference get func(*O) *T   set func(*O, T)    Get returns a copy of *T
//	Pointer        get func(*O) *T   set func(*O, *T)   Get returns *T, may be nil
//	ConstPointer   get func(*O) *T   set func(*O, *T)   Get returns a copy, zero if nil
//
// Reference and Pointer reads hand back the pointer so callers can reach
// through it (p.Get().Field). Const reads hand back copies.
//
// # Read-only and Read-write
//
// Each category has a read-only type and a read-write type that embeds it.
// Read-only types have no Set method, so assigning through one does not
// compile. A read-write property is usable wherever a Readable is expected.
//
// Properties hold a pointer to their owner and must not outlive it.
// They must not be copied; `go vet` reports copies.
package property
