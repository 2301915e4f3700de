package xmlrpc

import (
	"fmt"
	"math"
)

// Query helps to extract values. The first encountered error is kept and
// shared with all derived queries.
type Query struct {
	value Value
	err   *error
	// faster lookup for structs
	lookup map[string]*Query
	// cache arrays
	array []*Query
}

// Q creates a new Query for the specified Value.
func Q(v Value) *Query {
	var err error
	return &Query{value: v, err: &err}
}

// Err returns the first encountered error.
func (q *Query) Err() error {
	return *q.err
}

func (q *Query) fail(format string, args ...interface{}) {
	if *q.err == nil {
		*q.err = fmt.Errorf(format, args...)
	}
}

// Int gets an integral number.
func (q *Query) Int() int {
	// previous error or empty optional?
	if q.Err() != nil || q.value == nil {
		return 0
	}
	n, ok := q.value.(Number)
	if !ok {
		q.fail("Not an int: %T", q.value)
		return 0
	}
	f := float64(n)
	// integers are exact up to 2^53
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		q.fail("Invalid int: %v", f)
		return 0
	}
	return int(f)
}

// Float64 gets a number.
func (q *Query) Float64() float64 {
	// previous error or empty optional?
	if q.Err() != nil || q.value == nil {
		return 0
	}
	n, ok := q.value.(Number)
	if !ok {
		q.fail("Not a number: %T", q.value)
		return 0
	}
	return float64(n)
}

// Bool gets a boolean.
func (q *Query) Bool() bool {
	// previous error or empty optional?
	if q.Err() != nil || q.value == nil {
		return false
	}
	b, ok := q.value.(Bool)
	if !ok {
		q.fail("Not a bool: %T", q.value)
		return false
	}
	return bool(b)
}

// String gets a string.
func (q *Query) String() string {
	// previous error or empty optional?
	if q.Err() != nil || q.value == nil {
		return ""
	}
	s, ok := q.value.(String)
	if !ok {
		q.fail("Not a string: %T", q.value)
		return ""
	}
	return string(s)
}

// IsEmpty returns true, if there is no previous error and the value is missing
// or Nil.
func (q *Query) IsEmpty() bool {
	if q.Err() != nil {
		return false
	}
	switch q.value.(type) {
	case nil, Nil:
		return true
	}
	return false
}

// Any returns the value as native data type (see Native).
func (q *Query) Any() interface{} {
	if q.Err() != nil {
		return nil
	}
	return Native(q.value)
}

// Map returns all members of a struct.
func (q *Query) Map() map[string]*Query {
	// previous error or empty optional?
	if q.Err() != nil || q.value == nil {
		return nil
	}
	// is map already created?
	if q.lookup != nil {
		return q.lookup
	}
	s, ok := q.value.(*Struct)
	if !ok || s == nil {
		q.fail("Not a struct: %T", q.value)
		return nil
	}
	q.lookup = make(map[string]*Query, s.Len())
	for _, m := range s.Members() {
		q.lookup[m.Name] = &Query{value: m.Value, err: q.err}
	}
	return q.lookup
}

// key gets the specified member from a struct.
func (q *Query) key(name string, must bool) *Query {
	m := q.Map()
	// previous error?
	if q.Err() != nil {
		return &Query{err: q.err}
	}
	f, ok := m[name]
	if !ok {
		if must {
			q.fail("Field not found: %s", name)
		}
		return &Query{err: q.err}
	}
	return f
}

// Key sets an error, if the specified member is missing.
func (q *Query) Key(name string) *Query {
	return q.key(name, true)
}

// TryKey does not set an error, if the specified member is missing.
func (q *Query) TryKey(name string) *Query {
	return q.key(name, false)
}

// Slice returns all array elements.
func (q *Query) Slice() []*Query {
	// previous error or empty optional?
	if q.Err() != nil || q.value == nil {
		return nil
	}
	// array already created?
	if q.array != nil {
		return q.array
	}
	a, ok := q.value.(Array)
	if !ok {
		q.fail("Not an array: %T", q.value)
		return nil
	}
	q.array = make([]*Query, len(a))
	for i, v := range a {
		q.array[i] = &Query{value: v, err: q.err}
	}
	return q.array
}

// Strings returns a string array.
func (q *Query) Strings() []string {
	s := q.Slice()
	if q.Err() != nil {
		return nil
	}
	r := make([]string, len(s))
	for i, e := range s {
		r[i] = e.String()
	}
	if q.Err() != nil {
		return nil
	}
	return r
}

// Idx returns the array element at i.
func (q *Query) Idx(i int) *Query {
	s := q.Slice()
	// previous error
	if q.Err() != nil {
		return &Query{err: q.err}
	}
	if q.value == nil {
		q.fail("Not an array: missing value")
		return &Query{err: q.err}
	}
	// check bounds
	if i < 0 || i >= len(s) {
		q.fail("Index out of bounds (array length: %d): %d", len(s), i)
		return &Query{err: q.err}
	}
	return s[i]
}

// Value returns the wrapped Value.
func (q *Query) Value() Value {
	return q.value
}
