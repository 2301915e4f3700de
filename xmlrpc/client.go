package xmlrpc

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mdzio/go-logging"
)

// max. size of a valid response, if not specified: 10 MB
const responseSizeLimit = 10 * 1024 * 1024

// Caller is an interface for calling XML-RPC functions.
type Caller interface {
	Call(method string, params ...Value) (Value, error)
}

var clnLog = logging.Get("xmlrpc-client")

// Client provides access to an XML-RPC server. A Client has no mutable state
// and can be used concurrently.
type Client struct {
	// URL of the XML-RPC server
	Addr string

	// Additional or overriding HTTP headers. Content-Type defaults to
	// text/xml.
	Header http.Header

	// HTTP client used for the requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client

	// Max. size of a response. If 0, 10 MB are allowed.
	ResponseSizeLimit int64

	// Encoder for the request. The zero value encodes XML-RPC conformant.
	Encoder Encoder
}

// Call executes a remote procedure call. Call implements Caller.
func (c *Client) Call(method string, params ...Value) (Value, error) {
	start := time.Now()
	res, err := c.call(method, params)
	observeCall(method, start, err)
	return res, err
}

func (c *Client) call(method string, params []Value) (Value, error) {
	clnLog.Tracef("Calling method %s on %s", method, c.Addr)

	// encode request to xml
	reqBuf, err := c.Encoder.MethodCall(method, params...)
	if err != nil {
		return nil, fmt.Errorf("Encoding of request %s for %s failed: %w", method, c.Addr, err)
	}
	if clnLog.TraceEnabled() {
		clnLog.Tracef("Request XML: %s", reqBuf)
	}

	// http post
	httpReq, err := http.NewRequest(http.MethodPost, c.Addr, bytes.NewReader(reqBuf))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "text/xml")
	for name, values := range c.Header {
		httpReq.Header.Del(name)
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	httpResp, err := httpClient.Do(httpReq)
	if err != nil {
		if isConnectFailure(err) {
			clnLog.Debugf("Connecting to %s failed: %v", c.Addr, err)
			return nil, &ConnectionError{Method: method, URL: c.Addr, Err: err}
		}
		return nil, err
	}
	defer httpResp.Body.Close()

	// check status
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &HTTPStatusError{
			Method:     method,
			URL:        c.Addr,
			StatusCode: httpResp.StatusCode,
			StatusText: statusText(httpResp),
		}
	}

	// read response
	limit := c.ResponseSizeLimit
	if limit == 0 {
		limit = responseSizeLimit
	}
	respBuf, err := io.ReadAll(io.LimitReader(httpResp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("Reading of response failed from %s: %w", c.Addr, err)
	}
	if clnLog.TraceEnabled() {
		// attention: log message is probably not UTF-8 encoded!
		clnLog.Tracef("Response XML: %s", respBuf)
	}

	// decode response from xml
	res, err := DeserializeMethodResponse(respBuf)
	if err != nil {
		if _, ok := err.(*MethodError); ok {
			clnLog.Debugf("Method %s on %s returned fault: %v", method, c.Addr, err)
		}
		return nil, err
	}
	return res, nil
}

// statusText returns the reason phrase of the response.
func statusText(resp *http.Response) string {
	txt := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode))
	txt = strings.TrimSpace(txt)
	if txt == "" {
		txt = http.StatusText(resp.StatusCode)
	}
	return txt
}
