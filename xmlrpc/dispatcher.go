package xmlrpc

import (
	"fmt"
	"sort"
	"sync"
)

// Dispatcher dispatches a received XML-RPC call to registered handlers.
type Dispatcher interface {
	AddSystemMethods()
	Handle(name string, m Method)
	HandleFunc(name string, f func(Array) (Value, error))
	HandleUnknownFunc(f func(string, Array) (Value, error))
	SetHelp(name, help string)
	Dispatch(methodName string, args Array) (Value, error)
}

// A Method is dispatched from a Handler. The argument contains the
// parameters of the call.
type Method interface {
	Call(args Array) (Value, error)
}

// MethodFunc is an adapter to use ordinary functions as Method's.
type MethodFunc func(Array) (Value, error)

// Call implements interface Method.
func (m MethodFunc) Call(args Array) (Value, error) {
	return m(args)
}

// BasicDispatcher dispatches an XML-RPC call to a registered function.
type BasicDispatcher struct {
	mutex   sync.RWMutex
	methods map[string]Method
	help    map[string]string
	unknown func(string, Array) (Value, error)
}

// Handle registers a Method.
func (d *BasicDispatcher) Handle(name string, m Method) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.methods == nil {
		d.methods = make(map[string]Method)
	}
	d.methods[name] = m
}

// HandleFunc registers an ordinary function as Method.
func (d *BasicDispatcher) HandleFunc(name string, f func(Array) (Value, error)) {
	d.Handle(name, MethodFunc(f))
}

// HandleUnknownFunc registers an ordinary function to handle unknown methods
// names.
func (d *BasicDispatcher) HandleUnknownFunc(f func(string, Array) (Value, error)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.unknown = f
}

// SetHelp sets the text returned by system.methodHelp.
func (d *BasicDispatcher) SetHelp(name, help string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.help == nil {
		d.help = make(map[string]string)
	}
	d.help[name] = help
}

// AddSystemMethods adds system.multicall, system.listMethods,
// system.methodHelp and system.methodSignature.
func (d *BasicDispatcher) AddSystemMethods() {
	d.HandleFunc("system.multicall", d.multicall)
	d.SetHelp("system.multicall", "Executes multiple calls in one request. "+
		"Takes an array of structs with the members methodName and params.")

	d.HandleFunc(
		"system.listMethods",
		func(Array) (Value, error) {
			svrLog.Debug("Call of method system.listMethods received")
			d.mutex.RLock()
			names := make([]string, 0, len(d.methods))
			for name := range d.methods {
				names = append(names, name)
			}
			d.mutex.RUnlock()

			sort.Strings(names)
			out := make(Array, len(names))
			for i, n := range names {
				out[i] = String(n)
			}
			return out, nil
		},
	)
	d.SetHelp("system.listMethods", "Returns the names of all methods.")

	d.HandleFunc(
		"system.methodHelp",
		func(args Array) (Value, error) {
			q := Q(args)
			name := q.Idx(0).String()
			if q.Err() != nil {
				return nil, fmt.Errorf("Invalid system.methodHelp: %v", q.Err())
			}
			svrLog.Debugf("Call of method system.methodHelp for %s received", name)
			d.mutex.RLock()
			defer d.mutex.RUnlock()
			return String(d.help[name]), nil
		},
	)
	d.SetHelp("system.methodHelp", "Returns the description of a method.")

	// attention: signatures are not tracked.
	d.HandleFunc(
		"system.methodSignature",
		func(Array) (Value, error) {
			return String("undef"), nil
		},
	)
}

// multicall executes each call independently. Results are wrapped in an array
// with one element, failures are returned as fault structs.
func (d *BasicDispatcher) multicall(args Array) (Value, error) {
	q := Q(args)
	calls := q.Idx(0).Slice()
	if q.Err() != nil {
		return nil, fmt.Errorf("Invalid system.multicall: %v", q.Err())
	}
	svrLog.Debugf("Call of method system.multicall with %d elements received", len(calls))
	results := make(Array, len(calls))
	for i, c := range calls {
		// separate error state for each call
		call := Q(c.Value())
		methodName := call.Key("methodName").String()
		params := Array{}
		if ps := call.TryKey("params"); !ps.IsEmpty() {
			for _, p := range ps.Slice() {
				params = append(params, p.Value())
			}
		}
		var res Value
		var err error
		if call.Err() != nil {
			err = fmt.Errorf("Invalid call in system.multicall: %v", call.Err())
		} else {
			res, err = d.Dispatch(methodName, params)
		}
		if err != nil {
			f := faultOf(err)
			results[i] = NewStruct(
				Member{"faultCode", Number(f.Code)},
				Member{"faultString", String(f.Message)},
			)
		} else {
			results[i] = Array{res}
		}
	}
	return results, nil
}

// Dispatch dispatches a method call to a registered function.
func (d *BasicDispatcher) Dispatch(methodName string, args Array) (Value, error) {
	d.mutex.RLock()
	method, ok := d.methods[methodName]
	unknown := d.unknown
	d.mutex.RUnlock()

	if !ok {
		if unknown == nil {
			unknown = func(name string, _ Array) (Value, error) {
				return nil, fmt.Errorf("Unknown method: %s", name)
			}
		}
		return unknown(methodName, args)
	}
	return method.Call(args)
}
