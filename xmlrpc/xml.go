package xmlrpc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"
)

// xmlHeader starts every generated method call.
const xmlHeader = `<?xml version="1.0"?>`

// methodCall represents an XML-RPC method call on the wire.
type methodCall struct {
	XMLName    xml.Name    `xml:"methodCall"`
	MethodName string      `xml:"methodName"`
	Params     *wireParams `xml:"params"`
}

// methodResponse represents an XML-RPC method response on the wire.
type methodResponse struct {
	XMLName xml.Name    `xml:"methodResponse"`
	Params  *wireParams `xml:"params"`
	Fault   *wireValue  `xml:"fault>value"`
}

type wireParams struct {
	Param []*wireParam `xml:"param"`
}

type wireParam struct {
	Value *wireValue `xml:"value"`
}

// wireValue holds exactly one of the typed fields. A value without typed
// element carries its text in Flat.
type wireValue struct {
	Boolean *string     `xml:"boolean"`
	Int     *string     `xml:"int"`
	I4      *string     `xml:"i4"`
	I8      *string     `xml:"i8"`
	Double  *string     `xml:"double"`
	String  *string     `xml:"string"`
	Array   *wireArray  `xml:"array"`
	Struct  *wireStruct `xml:"struct"`
	Nil     *struct{}   `xml:"nil"`
	Flat    string      `xml:",chardata"`
	Unknown []anyElem   `xml:",any"`
}

type anyElem struct {
	XMLName xml.Name
}

type wireArray struct {
	Data *wireData `xml:"data"`
}

type wireData struct {
	Values []*wireValue `xml:"value"`
}

type wireStruct struct {
	Members []*wireMember `xml:"member"`
}

type wireMember struct {
	Name  *string    `xml:"name"`
	Value *wireValue `xml:"value"`
}

// MalformedError is returned, if an XML-RPC message does not have the expected
// structure or contains invalid values.
type MalformedError struct {
	Msg string
	Err error
}

func (e *MalformedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Malformed XML-RPC message: %s: %v", e.Msg, e.Err)
	}
	return "Malformed XML-RPC message: " + e.Msg
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

func malformed(format string, args ...interface{}) error {
	return &MalformedError{Msg: fmt.Sprintf(format, args...)}
}

// Encoder converts values to XML-RPC messages. The zero value produces
// XML-RPC conformant booleans.
type Encoder struct {
	// TextBooleans emits true/false instead of 1/0.
	TextBooleans bool
}

// SerializeMethodCall builds an XML-RPC method call with the default Encoder.
func SerializeMethodCall(method string, params ...Value) ([]byte, error) {
	var e Encoder
	return e.MethodCall(method, params...)
}

// MethodCall builds an XML-RPC method call. The params element is omitted, if
// there are no parameters.
func (e *Encoder) MethodCall(method string, params ...Value) ([]byte, error) {
	if method == "" {
		return nil, errors.New("Empty method name")
	}
	call := &methodCall{MethodName: method}
	if len(params) > 0 {
		ps, err := e.params(params)
		if err != nil {
			return nil, err
		}
		call.Params = ps
	}
	var buf bytes.Buffer
	if err := writeXML(&buf, xmlHeader, call); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeResponse writes a method response carrying a single value.
func (e *Encoder) encodeResponse(w io.Writer, header string, v Value) error {
	ps, err := e.params([]Value{v})
	if err != nil {
		return err
	}
	return writeXML(w, header, &methodResponse{Params: ps})
}

// encodeFault writes a fault response.
func (e *Encoder) encodeFault(w io.Writer, header string, f *MethodError) error {
	fv, err := e.value(NewStruct(
		Member{"faultCode", Number(f.Code)},
		Member{"faultString", String(f.Message)},
	))
	if err != nil {
		return err
	}
	return writeXML(w, header, &methodResponse{Fault: fv})
}

func writeXML(w io.Writer, header string, v interface{}) error {
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("Encoding of XML-RPC message failed: %w", err)
	}
	return nil
}

func (e *Encoder) params(params []Value) (*wireParams, error) {
	ps := make([]*wireParam, len(params))
	for i, p := range params {
		wv, err := e.value(p)
		if err != nil {
			return nil, err
		}
		ps[i] = &wireParam{wv}
	}
	return &wireParams{ps}, nil
}

func (e *Encoder) value(v Value) (*wireValue, error) {
	switch val := v.(type) {
	case nil, Nil:
		return &wireValue{Nil: &struct{}{}}, nil
	case Bool:
		var s string
		switch {
		case e.TextBooleans:
			s = strconv.FormatBool(bool(val))
		case bool(val):
			s = "1"
		default:
			s = "0"
		}
		return &wireValue{Boolean: &s}, nil
	case String:
		s := string(val)
		return &wireValue{String: &s}, nil
	case Number:
		tag, s := formatNumber(float64(val))
		if tag == "int" {
			return &wireValue{Int: &s}, nil
		}
		return &wireValue{Double: &s}, nil
	case Array:
		vs := make([]*wireValue, len(val))
		for i, elem := range val {
			wv, err := e.value(elem)
			if err != nil {
				return nil, err
			}
			vs[i] = wv
		}
		return &wireValue{Array: &wireArray{&wireData{vs}}}, nil
	case *Struct:
		if val == nil {
			return &wireValue{Nil: &struct{}{}}, nil
		}
		ms := make([]*wireMember, 0, val.Len())
		for _, m := range val.Members() {
			wv, err := e.value(m.Value)
			if err != nil {
				return nil, err
			}
			name := m.Name
			ms = append(ms, &wireMember{&name, wv})
		}
		return &wireValue{Struct: &wireStruct{ms}}, nil
	}
	return nil, &TypeMismatchError{v}
}

// formatNumber returns the element name and text for a number.
func formatNumber(f float64) (string, string) {
	switch {
	case math.IsInf(f, 1):
		return "double", "inf"
	case math.IsInf(f, -1):
		return "double", "-inf"
	case math.IsNaN(f):
		return "double", "nan"
	case f == 0:
		// also negative zero
		return "int", "0"
	case f == math.Trunc(f):
		return "int", strconv.FormatFloat(f, 'f', -1, 64)
	}
	return "double", strconv.FormatFloat(f, 'f', -1, 64)
}

func newDecoder(data []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}

// DeserializeMethodResponse parses an XML-RPC method response and returns the
// single return value. A fault response is returned as *MethodError, a
// response without return value as *MalformedError.
func DeserializeMethodResponse(data []byte) (Value, error) {
	resp := &methodResponse{}
	if err := newDecoder(data).Decode(resp); err != nil {
		return nil, &MalformedError{Msg: "Invalid method response", Err: err}
	}
	if resp.Fault != nil {
		fv, err := resp.Fault.toValue()
		if err != nil {
			return nil, err
		}
		q := Q(fv)
		code := q.Key("faultCode").Int()
		message := q.Key("faultString").String()
		if q.Err() != nil {
			return nil, &MalformedError{Msg: "Invalid fault response", Err: q.Err()}
		}
		return nil, &MethodError{code, message}
	}
	if resp.Params == nil {
		return nil, malformed("Missing params element")
	}
	// only the first return value is used
	if len(resp.Params.Param) == 0 {
		return nil, malformed("Missing param element")
	}
	wv := resp.Params.Param[0].Value
	if wv == nil {
		return nil, malformed("Missing value element")
	}
	return wv.toValue()
}

// DeserializeMethodCall parses an XML-RPC method call.
func DeserializeMethodCall(data []byte) (string, Array, error) {
	call := &methodCall{}
	if err := newDecoder(data).Decode(call); err != nil {
		return "", nil, &MalformedError{Msg: "Invalid method call", Err: err}
	}
	if call.MethodName == "" {
		return "", nil, malformed("Missing method name")
	}
	args := Array{}
	if call.Params != nil {
		for _, p := range call.Params.Param {
			if p.Value == nil {
				return "", nil, malformed("Missing value element")
			}
			v, err := p.Value.toValue()
			if err != nil {
				return "", nil, err
			}
			args = append(args, v)
		}
	}
	return call.MethodName, args, nil
}

func (w *wireValue) toValue() (Value, error) {
	if len(w.Unknown) > 0 {
		return nil, malformed("Unsupported value type: %s", w.Unknown[0].XMLName.Local)
	}
	var v Value
	var err error
	found := 0
	set := func(fv Value, ferr error) {
		found++
		v, err = fv, ferr
	}
	if w.Boolean != nil {
		set(parseBool(*w.Boolean))
	}
	if w.Int != nil {
		set(parseInt(*w.Int))
	}
	if w.I4 != nil {
		set(parseInt(*w.I4))
	}
	if w.I8 != nil {
		set(parseInt(*w.I8))
	}
	if w.Double != nil {
		set(parseDouble(*w.Double))
	}
	if w.String != nil {
		set(String(*w.String), nil)
	}
	if w.Array != nil {
		set(w.Array.toValue())
	}
	if w.Struct != nil {
		set(w.Struct.toValue())
	}
	if w.Nil != nil {
		set(Nil{}, nil)
	}
	switch found {
	case 0:
		// untyped values are strings
		return String(w.Flat), nil
	case 1:
		return v, err
	}
	return nil, malformed("Value with %d types", found)
}

func parseBool(s string) (Value, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "1" || strings.EqualFold(s, "true"):
		return Bool(true), nil
	case s == "0" || strings.EqualFold(s, "false"):
		return Bool(false), nil
	}
	return nil, malformed("Invalid boolean: %s", s)
}

// parseInt also accepts integral values beyond 64 bits, which are sent for
// large integral numbers.
func parseInt(s string) (Value, error) {
	t := strings.TrimSpace(s)
	i, err := strconv.ParseInt(t, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		if d, ferr := strconv.ParseFloat(t, 64); ferr == nil {
			return Number(d), nil
		}
	}
	if err != nil {
		return nil, malformed("Invalid int: %s", s)
	}
	return Number(i), nil
}

// parseDouble also accepts inf, -inf and nan.
func parseDouble(s string) (Value, error) {
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, malformed("Invalid double: %s", s)
	}
	return Number(d), nil
}

func (a *wireArray) toValue() (Value, error) {
	if a.Data == nil {
		return Array{}, nil
	}
	out := make(Array, len(a.Data.Values))
	for i, wv := range a.Data.Values {
		v, err := wv.toValue()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *wireStruct) toValue() (Value, error) {
	out := &Struct{}
	for _, m := range s.Members {
		if m.Name == nil {
			return nil, malformed("Struct member without name")
		}
		if m.Value == nil {
			return nil, malformed("Struct member without value: %s", *m.Name)
		}
		v, err := m.Value.toValue()
		if err != nil {
			return nil, err
		}
		// last one wins
		out.Set(*m.Name, v)
	}
	return out, nil
}
