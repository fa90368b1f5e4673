// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc

// Type is the wire tag identifying a value's variant. The numeric values are
// part of the FastRPC binary format and must never change.
type Type uint8

const (
	TypeInt            Type = 0x01
	TypeBool           Type = 0x02
	TypeDouble         Type = 0x03
	TypeString         Type = 0x04
	TypeDateTime       Type = 0x05
	TypeBinary         Type = 0x06
	TypeStruct         Type = 0x0A
	TypeArray          Type = 0x0B
	TypeNull           Type = 0x0C
	TypeMethodCall     Type = 0x0D
	TypeMethodResponse Type = 0x0E
	TypeFault          Type = 0x0F
)

// String returns the diagnostic type name.
func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	case TypeDouble:
		return "double"
	case TypeString:
		return "string"
	case TypeDateTime:
		return "dateTime"
	case TypeBinary:
		return "binary"
	case TypeStruct:
		return "struct"
	case TypeArray:
		return "array"
	case TypeNull:
		return "null"
	case TypeMethodCall:
		return "methodCall"
	case TypeMethodResponse:
		return "methodResponse"
	case TypeFault:
		return "fault"
	}
	return "unknown"
}

// Value is the polymorphic handle for every RPC datum. The set of
// implementations is closed: only this package can create values, and only
// through a Pool.
type Value interface {
	// Type returns the wire tag.
	Type() Type
	// TypeName returns the diagnostic type name.
	TypeName() string
	// CloneInto deep-copies the value into p.
	CloneInto(p *Pool) Value
	// Pool returns the owning pool, or nil for process-wide singletons.
	Pool() *Pool

	isValue()
}

// owned is embedded by every variant.
type owned struct {
	pool *Pool
}

func (o *owned) Pool() *Pool { return o.pool }
func (o *owned) isValue() {}

// Null is the nil value.
type Null struct{ owned }

func (*Null) Type() Type { return TypeNull }
func (*Null) TypeName() string { return TypeNull.String() }
func (*Null) CloneInto(p *Pool) Value { return p.NewNull() }

// Bool is a boolean value.
type Bool struct {
	owned
	value bool
}

func (*Bool) Type() Type { return TypeBool }
func (*Bool) TypeName() string { return TypeBool.String() }
func (v *Bool) Value() bool { return v.value }
func (v *Bool) CloneInto(p *Pool) Value { return p.NewBool(v.value) }

// Int is a signed 64-bit integer value.
type Int struct {
	owned
	value int64
}

func (*Int) Type() Type { return TypeInt }
func (*Int) TypeName() string { return TypeInt.String() }
func (v *Int) Value() int64 { return v.value }
func (v *Int) CloneInto(p *Pool) Value { return p.NewInt(v.value) }

// Double is a 64-bit floating point value.
type Double struct {
	owned
	value float64
}

func (*Double) Type() Type { return TypeDouble }
func (*Double) TypeName() string { return TypeDouble.String() }
func (v *Double) Value() float64 { return v.value }
func (v *Double) CloneInto(p *Pool) Value { return p.NewDouble(v.value) }

// String is a UTF-8 string value.
type String struct {
	owned
	value string
}

func (*String) Type() Type { return TypeString }
func (*String) TypeName() string { return TypeString.String() }
func (v *String) Value() string { return v.value }
func (v *String) CloneInto(p *Pool) Value { return p.NewString(v.value) }

// Binary is an opaque byte string. Its payload lives in memory obtained from
// the owning pool's allocator and is returned to it on Pool.Release.
type Binary struct {
	owned
	data []byte
}

func (*Binary) Type() Type { return TypeBinary }
func (*Binary) TypeName() string { return TypeBinary.String() }

// Bytes returns a view of the payload. The slice must not be retained past
// the owning pool's Release.
func (v *Binary) Bytes() []byte { return v.data }

// Len returns the payload size.
func (v *Binary) Len() int { return len(v.data) }

func (v *Binary) CloneInto(p *Pool) Value { return p.NewBinary(v.data) }

// MethodCall is a method name plus its positional parameters.
type MethodCall struct {
	owned
	name   string
	params *Array
}

func (*MethodCall) Type() Type { return TypeMethodCall }
func (*MethodCall) TypeName() string { return TypeMethodCall.String() }
func (v *MethodCall) Name() string { return v.name }
func (v *MethodCall) Params() *Array { return v.params }

func (v *MethodCall) CloneInto(p *Pool) Value {
	params := make([]Value, 0, v.params.Len())
	for _, item := range v.params.All() {
		params = append(params, p.Clone(item))
	}
	return p.NewMethodCall(v.name, params...)
}

// MethodResponse wraps the single result of a successful call.
type MethodResponse struct {
	owned
	result Value
}

func (*MethodResponse) Type() Type { return TypeMethodResponse }
func (*MethodResponse) TypeName() string { return TypeMethodResponse.String() }
func (v *MethodResponse) Result() Value { return v.result }

func (v *MethodResponse) CloneInto(p *Pool) Value {
	return p.NewMethodResponse(p.Clone(v.result))
}

// Fault is a failed call's status code and message.
type Fault struct {
	owned
	code    int64
	message string
}

func (*Fault) Type() Type { return TypeFault }
func (*Fault) TypeName() string { return TypeFault.String() }
func (v *Fault) Code() int64 { return v.code }
func (v *Fault) Message() string { return v.message }

// Err converts the fault into a *FaultError.
func (v *Fault) Err() error { return &FaultError{Code: v.code, Message: v.message} }

func (v *Fault) CloneInto(p *Pool) Value { return p.NewFault(v.code, v.message) }

// cast is the single downcast path. It never coerces between kinds.
func cast[T Value](v Value, want Type) (T, error) {
	var zero T
	if v == nil {
		return zero, &TypeError{Expected: want.String(), Actual: "nil"}
	}
	t, ok := v.(T)
	if !ok {
		return zero, &TypeError{Expected: want.String(), Actual: v.TypeName()}
	}
	return t, nil
}

func AsNull(v Value) (*Null, error) { return cast[*Null](v, TypeNull) }
func AsBool(v Value) (*Bool, error) { return cast[*Bool](v, TypeBool) }
func AsInt(v Value) (*Int, error) { return cast[*Int](v, TypeInt) }
func AsDouble(v Value) (*Double, error) { return cast[*Double](v, TypeDouble) }
func AsString(v Value) (*String, error) { return cast[*String](v, TypeString) }
func AsBinary(v Value) (*Binary, error) { return cast[*Binary](v, TypeBinary) }
func AsDateTime(v Value) (*DateTime, error) {
	return cast[*DateTime](v, TypeDateTime)
}
func AsStruct(v Value) (*Struct, error) { return cast[*Struct](v, TypeStruct) }
func AsArray(v Value) (*Array, error) { return cast[*Array](v, TypeArray) }
func AsMethodCall(v Value) (*MethodCall, error) {
	return cast[*MethodCall](v, TypeMethodCall)
}
func AsMethodResponse(v Value) (*MethodResponse, error) {
	return cast[*MethodResponse](v, TypeMethodResponse)
}
func AsFault(v Value) (*Fault, error) { return cast[*Fault](v, TypeFault) }
