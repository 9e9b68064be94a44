package property

// Pointer is a read-only pointer property; nil is a valid value.
type Pointer[O, T any] struct {
	binding[O]
	get func(*O) *T
}

// NewPointer binds a read-only pointer property.
func NewPointer[O, T any](owner *O, get func(*O) *T) *Pointer[O, T] {
	return &Pointer[O, T]{binding: newBinding(owner, get != nil), get: get}
}

// Get returns the pointer from the owner's accessor.
func (p *Pointer[O, T]) Get() *T {
	return p.get(p.owner)
}

// IsNil reports whether the accessor currently returns nil.
func (p *Pointer[O, T]) IsNil() bool {
	return p.get(p.owner) == nil
}

// Category returns CategoryPointer.
func (p *Pointer[O, T]) Category() Category { return CategoryPointer }

// PointerRW is a read-write pointer property.
type PointerRW[O, T any] struct {
	Pointer[O, T]
	set func(*O, *T)
}

// NewPointerRW binds a read-write pointer property.
func NewPointerRW[O, T any](owner *O, get func(*O) *T, set func(*O, *T)) *PointerRW[O, T] {
	if set == nil {
		panic("property: nil mutator")
	}
	return &PointerRW[O, T]{
		Pointer: Pointer[O, T]{binding: newBinding(owner, get != nil), get: get},
		set:     set,
	}
}

// Set passes v, which may be nil, to the owner's mutator.
func (p *PointerRW[O, T]) Set(v *T) {
	p.set(p.owner, v)
}

// ConstPointer is a read-only pointer property that only hands out copies.
type ConstPointer[O, T any] struct {
	binding[O]
	get func(*O) *T
}

// NewConstPointer binds a read-only const-pointer property.
func NewConstPointer[O, T any](owner *O, get func(*O) *T) *ConstPointer[O, T] {
	return &ConstPointer[O, T]{binding: newBinding(owner, get != nil), get: get}
}

// Get returns a copy of the pointee, or the zero value when nil.
func (p *ConstPointer[O, T]) Get() T {
	v, _ := p.Deref()
	return v
}

// Deref returns a copy of the pointee and whether the pointer was non-nil.
func (p *ConstPointer[O, T]) Deref() (T, bool) {
	ptr := p.get(p.owner)
	if ptr == nil {
		var zero T
		return zero, false
	}
	return *ptr, true
}

// IsNil reports whether the accessor currently returns nil.
func (p *ConstPointer[O, T]) IsNil() bool {
	return p.get(p.owner) == nil
}

// Category returns CategoryConstPointer.
func (p *ConstPointer[O, T]) Category() Category { return CategoryConstPointer }

// ConstPointerRW is a read-write const-pointer property.
type ConstPointerRW[O, T any] struct {
	ConstPointer[O, T]
	set func(*O, *T)
}

// NewConstPointerRW binds a read-write const-pointer property.
func NewConstPointerRW[O, T any](owner *O, get func(*O) *T, set func(*O, *T)) *ConstPointerRW[O, T] {
	if set == nil {
		panic("property: nil mutator")
	}
	return &ConstPointerRW[O, T]{
		ConstPointer: ConstPointer[O, T]{binding: newBinding(owner, get != nil), get: get},
		set:          set,
	}
}

// Set passes v, which may be nil, to the owner's mutator.
func (p *ConstPointerRW[O, T]) Set(v *T) {
	p.set(p.owner, v)
}
