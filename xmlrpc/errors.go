package xmlrpc

import (
	"errors"
	"fmt"
	"net"
)

// MethodError encapsulates an XML-RPC fault response. Methods served by a
// Handler can return a MethodError to control the fault code.
type MethodError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (f *MethodError) Error() string {
	return fmt.Sprintf("XML-RPC fault (code: %d, message: %s)", f.Code, f.Message)
}

// ConnectionError is returned, if the server could not be reached at all.
type ConnectionError struct {
	Method string
	URL    string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("XML-RPC call \"%s\" to %s failed to connect", e.Method, e.URL)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is returned, if the server responded with a non-success HTTP
// status.
type HTTPStatusError struct {
	Method     string
	URL        string
	StatusCode int
	StatusText string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("XML-RPC call \"%s\" to %s returned %d: \"%s\"", e.Method, e.URL, e.StatusCode, e.StatusText)
}

// isConnectFailure reports whether a transport error happened while
// establishing the connection.
func isConnectFailure(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && (opErr.Op == "dial" || opErr.Op == "proxyconnect") {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// faultOf converts an error returned by a method into a fault.
func faultOf(err error) *MethodError {
	var fault *MethodError
	if errors.As(err, &fault) {
		return fault
	}
	return &MethodError{Code: -1, Message: err.Error()}
}
