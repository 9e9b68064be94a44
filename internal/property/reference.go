package property

import "fmt"

// Ref is a read-only reference property. The accessor must never return nil.
type Ref[O, T any] struct {
	binding[O]
	get func(*O) *T
}

// NewRef binds a read-only reference property.
func NewRef[O, T any](owner *O, get func(*O) *T) *Ref[O, T] {
	return &Ref[O, T]{binding: newBinding(owner, get != nil), get: get}
}

// Get returns the referenced value without copying it.
// It panics if the owner's accessor returns nil.
func (p *Ref[O, T]) Get() *T {
	v := p.get(p.owner)
	if v == nil {
		panic(fmt.Sprintf("property: reference accessor on %T returned nil", p.owner))
	}
	return v
}

// Category returns CategoryReference.
func (p *Ref[O, T]) Category() Category { return CategoryReference }

// RefRW is a read-write reference property. The mutator receives the
// address of the new value.
type RefRW[O, T any] struct {
	Ref[O, T]
	set func(*O, *T)
}

// NewRefRW binds a read-write reference property.
func NewRefRW[O, T any](owner *O, get func(*O) *T, set func(*O, *T)) *RefRW[O, T] {
	if set == nil {
		panic("property: nil mutator")
	}
	return &RefRW[O, T]{
		Ref: Ref[O, T]{binding: newBinding(owner, get != nil), get: get},
		set: set,
	}
}

// Set passes the address v to the owner's mutator. A nil address panics.
func (p *RefRW[O, T]) Set(v *T) {
	if v == nil {
		panic("property: nil assigned to reference property")
	}
	p.set(p.owner, v)
}

// ConstRef is a read-only property that exposes a referenced value by copy.
type ConstRef[O, T any] struct {
	binding[O]
	get func(*O) *T
}

// NewConstRef binds a read-only const-reference property.
func NewConstRef[O, T any](owner *O, get func(*O) *T) *ConstRef[O, T] {
	return &ConstRef[O, T]{binding: newBinding(owner, get != nil), get: get}
}

// Get returns a copy of the referenced value.
func (p *ConstRef[O, T]) Get() T {
	v := p.get(p.owner)
	if v == nil {
		panic(fmt.Sprintf("property: reference accessor on %T returned nil", p.owner))
	}
	return *v
}

// Category returns CategoryConstReference.
func (p *ConstRef[O, T]) Category() Category { return CategoryConstReference }

// ConstRefRW is a read-write const-reference property; it is assigned by value.
type ConstRefRW[O, T any] struct {
	ConstRef[O, T]
	set func(*O, T)
}

// NewConstRefRW binds a read-write const-reference property.
func NewConstRefRW[O, T any](owner *O, get func(*O) *T, set func(*O, T)) *ConstRefRW[O, T] {
	if set == nil {
		panic("property: nil mutator")
	}
	return &ConstRefRW[O, T]{
		ConstRef: ConstRef[O, T]{binding: newBinding(owner, get != nil), get: get},
		set:      set,
	}
}

// Set calls the owner's mutator with v.
func (p *ConstRefRW[O, T]) Set(v T) {
	p.set(p.owner, v)
}
