package xmlrpc

import (
	"time"

	"github.com/mdzio/go-lib/conc"
)

// RetryingCaller retries failed calls. Fault responses are not retried, since
// the server has processed the call.
type RetryingCaller struct {
	// Caller that is called multiple times if it returns an error.
	Caller Caller

	// Number of retries. 0 disables retries.
	RetryCount int

	// Delay between retries.
	RetryDelay time.Duration

	// The repeated calls can be cancelled with this context. If nil, the
	// retries can not be cancelled.
	Context conc.Context
}

// Call implements Caller.
func (c *RetryingCaller) Call(method string, params ...Value) (Value, error) {
	// retry counter
	rcnt := 0
	for {
		// try a call
		value, err := c.Caller.Call(method, params...)
		// on success, return value
		if err == nil {
			return value, nil
		}
		if _, ok := err.(*MethodError); ok {
			return nil, err
		}
		// give up when the retries have been used up
		rcnt++
		if rcnt > c.RetryCount {
			return nil, err
		}
		clnLog.Debugf("Call of method %s failed, retry in %s: %v", method, c.RetryDelay, err)
		// wait before the next call
		if c.Context == nil {
			time.Sleep(c.RetryDelay)
		} else if errc := c.Context.Sleep(c.RetryDelay); errc != nil {
			// return last error
			return nil, err
		}
	}
}
