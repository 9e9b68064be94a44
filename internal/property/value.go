package property

// Value is a read-only property of a plain value.
type Value[O, T any] struct {
	binding[O]
	get func(*O) T
}

// NewValue binds a read-only value property.
func NewValue[O, T any](owner *O, get func(*O) T) *Value[O, T] {
	return &Value[O, T]{binding: newBinding(owner, get != nil), get: get}
}

// Get calls the owner's accessor.
func (p *Value[O, T]) Get() T {
	return p.get(p.owner)
}

// Category returns CategoryValue.
func (p *Value[O, T]) Category() Category { return CategoryValue }

// ValueRW is a read-write property of a plain value.
type ValueRW[O, T any] struct {
	Value[O, T]
	set func(*O, T)
}

// NewValueRW binds a read-write value property.
func NewValueRW[O, T any](owner *O, get func(*O) T, set func(*O, T)) *ValueRW[O, T] {
	if set == nil {
		panic("property: nil mutator")
	}
	return &ValueRW[O, T]{
		Value: Value[O, T]{binding: newBinding(owner, get != nil), get: get},
		set:   set,
	}
}

// Set calls the owner's mutator.
func (p *ValueRW[O, T]) Set(v T) {
	p.set(p.owner, v)
}

// ReadOnly returns the read-only view of the property.
func (p *ValueRW[O, T]) ReadOnly() *Value[O, T] {
	return &p.Value
}
