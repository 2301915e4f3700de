package xmlrpc

import (
	"fmt"
	"reflect"
	"sort"
)

// Value is an XML-RPC value. The set of implementations is closed: Bool,
// Number, String, Array, *Struct and Nil. A nil Value is accepted as input
// placeholder for an omitted parameter and is transmitted as Nil.
type Value interface {
	isValue()
}

// Bool is an XML-RPC boolean.
type Bool bool

// Number is an XML-RPC int or double. Integral values are transmitted as int,
// all others as double.
type Number float64

// String is an XML-RPC string.
type String string

// Array is an ordered sequence of values.
type Array []Value

// Nil is the <nil/> extension value.
type Nil struct{}

func (Bool) isValue()    {}
func (Number) isValue()  {}
func (String) isValue()  {}
func (Array) isValue()   {}
func (Nil) isValue()     {}
func (*Struct) isValue() {}

// Member is a named value of a Struct.
type Member struct {
	Name  string
	Value Value
}

// Struct is an XML-RPC struct. Member names are unique and the insertion order
// is kept. The zero value is an empty struct.
type Struct struct {
	names  []string
	values map[string]Value
}

// NewStruct creates a struct from the specified members. A later member
// replaces an earlier one with the same name.
func NewStruct(members ...Member) *Struct {
	s := &Struct{}
	for _, m := range members {
		s.Set(m.Name, m.Value)
	}
	return s
}

// Set sets a member. If the name is already present, the value is replaced and
// the member keeps its position.
func (s *Struct) Set(name string, v Value) *Struct {
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	if _, ok := s.values[name]; !ok {
		s.names = append(s.names, name)
	}
	s.values[name] = v
	return s
}

// Get returns the value of a member.
func (s *Struct) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Len returns the number of members.
func (s *Struct) Len() int {
	return len(s.names)
}

// Names returns the member names in insertion order.
func (s *Struct) Names() []string {
	return append([]string(nil), s.names...)
}

// Members returns all members in insertion order.
func (s *Struct) Members() []Member {
	ms := make([]Member, len(s.names))
	for i, n := range s.names {
		ms[i] = Member{n, s.values[n]}
	}
	return ms
}

// TypeMismatchError is returned, if a native value can not be converted to an
// XML-RPC value.
type TypeMismatchError struct {
	Value interface{}
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("Conversion of type %[1]T with value %[1]v is not supported", e.Value)
}

// NewValue creates a value from a native data type. Supported types: nil, bool,
// all integer and float types, string, []string, []interface{},
// map[string]interface{} and Value. Map members are sorted by name.
func NewValue(in interface{}) (Value, error) {
	switch val := in.(type) {
	case nil:
		return Nil{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case []string:
		out := make(Array, len(val))
		for i, e := range val {
			out[i] = String(e)
		}
		return out, nil
	case []interface{}:
		out := make(Array, len(val))
		for i, e := range val {
			cv, err := NewValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case map[string]interface{}:
		names := make([]string, 0, len(val))
		for n := range val {
			names = append(names, n)
		}
		sort.Strings(names)
		out := &Struct{}
		for _, n := range names {
			cv, err := NewValue(val[n])
			if err != nil {
				return nil, err
			}
			out.Set(n, cv)
		}
		return out, nil
	}
	rv := reflect.ValueOf(in)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Number(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float()), nil
	}
	return nil, &TypeMismatchError{in}
}

// Native converts a value into a native data type: bool, float64, string,
// []interface{}, map[string]interface{} or nil.
func Native(v Value) interface{} {
	switch val := v.(type) {
	case Bool:
		return bool(val)
	case Number:
		return float64(val)
	case String:
		return string(val)
	case Array:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = Native(e)
		}
		return out
	case *Struct:
		out := make(map[string]interface{}, val.Len())
		for _, m := range val.Members() {
			out[m.Name] = Native(m.Value)
		}
		return out
	}
	return nil
}
