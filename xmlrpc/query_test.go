package xmlrpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Int(t *testing.T) {
	cases := []struct {
		in        Value
		wanted    int
		errWanted bool
	}{
		{nil, 0, false},
		{String("1"), 0, true},
		{Number(1.5), 0, true},
		{Number(123), 123, false},
		{Number(-456), -456, false},
	}
	for _, c := range cases {
		q := Q(c.in)
		i := q.Int()
		assert.Equal(t, c.wanted, i)
		assert.Equal(t, c.errWanted, q.Err() != nil, "value %v", c.in)
	}
}

func TestQuery_Scalars(t *testing.T) {
	q := Q(Bool(true))
	assert.True(t, q.Bool())
	assert.NoError(t, q.Err())

	q = Q(Number(1))
	assert.False(t, q.Bool())
	assert.Error(t, q.Err())

	q = Q(Number(-1e3))
	assert.Equal(t, -1000.0, q.Float64())
	assert.NoError(t, q.Err())

	q = Q(String("abc"))
	assert.Equal(t, "abc", q.String())
	assert.Equal(t, 0.0, q.Float64())
	assert.Error(t, q.Err())
	// first error is kept
	assert.Contains(t, q.Err().Error(), "Not a number")
}

func TestQuery_IsEmpty(t *testing.T) {
	assert.True(t, Q(nil).IsEmpty())
	assert.True(t, Q(Nil{}).IsEmpty())
	assert.False(t, Q(String("")).IsEmpty())
}

func TestQuery_Key(t *testing.T) {
	e := Q(NewStruct())
	e.Key("unknown")
	assert.Error(t, e.Err())

	e = Q(NewStruct(
		Member{"name1", Number(123)},
		Member{"name2", String("abc")},
	))
	assert.Equal(t, 123, e.Key("name1").Int())
	assert.Equal(t, "abc", e.Key("name2").String())
	assert.NoError(t, e.Err())

	s := e.Key("name2").Key("unknown").Key("unknown2").String()
	assert.Error(t, e.Err())
	assert.Equal(t, "", s)
}

func TestQuery_TryKey(t *testing.T) {
	e := Q(NewStruct(Member{"name1", Number(123)}))
	assert.Equal(t, 123, e.TryKey("name1").Int())
	assert.Equal(t, 0, e.TryKey("unknown").Int())
	assert.NoError(t, e.Err())
	assert.Equal(t, 0, e.TryKey("name1").TryKey("unknown").Int())
	assert.Error(t, e.Err())
}

func TestQuery_Array(t *testing.T) {
	e := Q(Array{String("abc"), Number(4)})
	assert.Len(t, e.Slice(), 2)
	assert.Equal(t, "abc", e.Idx(0).String())
	assert.Equal(t, 4, e.Idx(1).Int())
	assert.NoError(t, e.Err())
	e.Idx(2)
	assert.Error(t, e.Err())

	e = Q(Array{String("abc"), Number(4)})
	e.Slice()[0].Int()
	assert.Error(t, e.Err())

	e = Q(Number(123.456))
	e.Slice()
	assert.Error(t, e.Err())
}

func TestQuery_Strings(t *testing.T) {
	e := Q(Array{String("abc"), String("def")})
	assert.Equal(t, []string{"abc", "def"}, e.Strings())
	assert.NoError(t, e.Err())

	e = Q(Array{String("abc"), Number(1)})
	assert.Nil(t, e.Strings())
	assert.Error(t, e.Err())
}

func TestQuery_Any(t *testing.T) {
	cases := []struct {
		v    Value
		want interface{}
	}{
		{Number(123), 123.0},
		{Bool(true), true},
		{String("abc"), "abc"},
		{Array{Number(1)}, []interface{}{1.0}},
		{nil, nil},
	}
	for _, c := range cases {
		e := Q(c.v)
		assert.Equal(t, c.want, e.Any())
		assert.NoError(t, e.Err())
	}
}
