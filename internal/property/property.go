package property

import "fmt"

// Readable is implemented by every property.
type Readable[T any] interface {
	Get() T
}

// Writable is implemented by read-write properties.
type Writable[T any] interface {
	Set(v T)
}

// ReadWriter is a property that can be read and assigned.
type ReadWriter[T any] interface {
	Readable[T]
	Writable[T]
}

// Category identifies how a property exposes its value.
type Category int

const (
	// CategoryValue returns and accepts values.
	CategoryValue Category = iota
	// CategoryReference returns a non-nil pointer; the setter takes an address.
	CategoryReference
	// CategoryConstReference returns copies; the setter takes a value.
	CategoryConstReference
	// CategoryPointer returns and accepts possibly-nil pointers.
	CategoryPointer
	// CategoryConstPointer returns copies of the pointee; the setter takes a pointer.
	CategoryConstPointer
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryValue:
		return "value"
	case CategoryReference:
		return "reference"
	case CategoryConstReference:
		return "const-reference"
	case CategoryPointer:
		return "pointer"
	case CategoryConstPointer:
		return "const-pointer"
	default:
		return "unknown"
	}
}

// Categorized is implemented by all bindings in this package.
type Categorized interface {
	Category() Category
}

// binding holds the non-owned owner pointer shared by every category.
type binding[O any] struct {
	_     noCopy
	owner *O
}

func newBinding[O any](owner *O, hasGetter bool) binding[O] {
	if owner == nil {
		panic(fmt.Sprintf("property: nil owner %T", owner))
	}
	if !hasGetter {
		panic(fmt.Sprintf("property: nil accessor for %T", owner))
	}
	return binding[O]{owner: owner}
}

// Owner returns the instance the property is bound to.
func (b *binding[O]) Owner() *O {
	return b.owner
}

// Equal reports whether the property's current value equals v.
// It calls the accessor once and never the mutator.
func Equal[T comparable](r Readable[T], v T) bool {
	return r.Get() == v
}

// EqualFunc is Equal for values that are not comparable with ==.
func EqualFunc[T any](r Readable[T], v T, eq func(a, b T) bool) bool {
	return eq(r.Get(), v)
}

// DerefEqual compares the pointee of a reference or pointer property with v.
// A nil pointer is never equal.
func DerefEqual[T comparable](r Readable[*T], v T) bool {
	p := r.Get()
	return p != nil && *p == v
}

// Func adapts a plain function to Readable.
type Func[T any] func() T

// Get implements Readable.
func (f Func[T]) Get() T { return f() }

// noCopy makes `go vet` report copies of a binding.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
