/*
Package echo provides the methods of the simple XML-RPC sample backend. Each
method returns its argument unchanged.
*/
package echo

import (
	"fmt"

	"github.com/mdzio/go-logging"

	"github.com/mdzio/go-urcap/xmlrpc"
)

var log = logging.Get("echo")

// Method names
const (
	StringMethod  = "echo_string_method"
	IntegerMethod = "echo_integer_method"
	StructMethod  = "echo_struct_method"
)

// Register adds the echo methods to the dispatcher.
func Register(d xmlrpc.Dispatcher) {
	d.HandleFunc(StringMethod, func(args xmlrpc.Array) (xmlrpc.Value, error) {
		return echo(StringMethod, args, func(q *xmlrpc.Query) { _ = q.String() })
	})
	d.SetHelp(StringMethod, "Echos the string sent to the method.")

	d.HandleFunc(IntegerMethod, func(args xmlrpc.Array) (xmlrpc.Value, error) {
		return echo(IntegerMethod, args, func(q *xmlrpc.Query) { _ = q.Int() })
	})
	d.SetHelp(IntegerMethod, "Echos the integer sent to the method.")

	d.HandleFunc(StructMethod, func(args xmlrpc.Array) (xmlrpc.Value, error) {
		return echo(StructMethod, args, func(q *xmlrpc.Query) { _ = q.Map() })
	})
	d.SetHelp(StructMethod, "Echos the struct sent to the method.")
}

// echo checks the argument with the accessor and returns it.
func echo(method string, args xmlrpc.Array, check func(*xmlrpc.Query)) (xmlrpc.Value, error) {
	q := xmlrpc.Q(args)
	if len(q.Slice()) != 1 {
		return nil, fmt.Errorf("%s expects 1 argument, got %d", method, len(args))
	}
	arg := q.Idx(0)
	check(arg)
	if q.Err() != nil {
		return nil, fmt.Errorf("Invalid argument for %s: %v", method, q.Err())
	}
	log.Debugf("Received %v, sending it back", xmlrpc.Native(arg.Value()))
	return arg.Value(), nil
}
