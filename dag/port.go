package dag

import "reflect"

// OutputPort is the type-erased view of an Output. Only Output values
// implement it.
type OutputPort interface {
	PortName() string
	ValueType() reflect.Type
	readValue() any
}

// InputPort is the type-erased view of an Input. Only Input values
// implement it.
type InputPort interface {
	PortName() string
	ValueType() reflect.Type
	writeValue(v any)
}

// Output is a named read accessor for a value a unit produces.
type Output[T any] struct {
	name string
	read func() T
}

// NewOutput declares an output port.
func NewOutput[T any](name string, read func() T) Output[T] {
	return Output[T]{name: name, read: read}
}

// PortName returns the port's name.
func (o Output[T]) PortName() string { return o.name }

// ValueType returns the static type T.
func (o Output[T]) ValueType() reflect.Type { return reflect.TypeFor[T]() }

// Read returns the current value.
func (o Output[T]) Read() T { return o.read() }

func (o Output[T]) readValue() any { return o.read() }

func (o Output[T]) valid() bool { return o.read != nil }

// Input is a named write accessor for a value a unit consumes.
type Input[T any] struct {
	name  string
	write func(T)
}

// NewInput declares an input port.
func NewInput[T any](name string, write func(T)) Input[T] {
	return Input[T]{name: name, write: write}
}

// PortName returns the port's name.
func (i Input[T]) PortName() string { return i.name }

// ValueType returns the static type T.
func (i Input[T]) ValueType() reflect.Type { return reflect.TypeFor[T]() }

// Write delivers a value.
func (i Input[T]) Write(v T) { i.write(v) }

// writeValue accepts any value whose type is assignable to T. Assignability
// was checked when the edge was created.
func (i Input[T]) writeValue(v any) {
	if t, ok := v.(T); ok {
		i.write(t)
		return
	}
	var zero T
	if v == nil {
		i.write(zero)
		return
	}
	i.write(reflect.ValueOf(v).Convert(reflect.TypeFor[T]()).Interface().(T))
}

func (i Input[T]) valid() bool { return i.write != nil }

type validPort interface{ valid() bool }

func portValid(p any) bool {
	vp, ok := p.(validPort)
	return ok && vp.valid()
}
