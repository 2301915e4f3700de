package xmlrpc

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/mdzio/go-logging"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// max. size of a valid request, if not specified: 10 MB
const requestSizeLimit = 10 * 1024 * 1024

var svrLog = logging.Get("xmlrpc-server")

// Handler implements a http.Handler which can handle XML-RPC requests. Remote
// calls are dispatched to the registered Method's.
type Handler struct {
	Dispatcher

	// Max. size of a request. If 0, 10 MB are allowed.
	RequestSizeLimit int64

	// Latin1 sends responses ISO-8859-1 encoded. Characters outside of
	// ISO-8859-1 are sent as character references.
	Latin1 bool

	// Encoder for the responses.
	Encoder Encoder
}

func (h *Handler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	svrLog.Tracef("Request received from %s, URI %s", req.RemoteAddr, req.RequestURI)

	if req.Method != http.MethodPost {
		serverCalls.WithLabelValues(resultError).Inc()
		http.Error(resp, "Only POST requests are supported", http.StatusMethodNotAllowed)
		return
	}

	// read request
	limit := h.RequestSizeLimit
	if limit == 0 {
		limit = requestSizeLimit
	}
	reqBuf, err := io.ReadAll(http.MaxBytesReader(resp, req.Body, limit))
	if err != nil {
		svrLog.Errorf("Reading of request failed from %s: %v", req.RemoteAddr, err)
		serverCalls.WithLabelValues(resultError).Inc()
		http.Error(resp, "Reading of request failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	if svrLog.TraceEnabled() {
		svrLog.Tracef("Request XML: %s", reqBuf)
	}

	// decode request from xml
	methodName, args, err := DeserializeMethodCall(reqBuf)
	if err != nil {
		svrLog.Errorf("Decoding of request from %s failed: %v", req.RemoteAddr, err)
		serverCalls.WithLabelValues(resultMalformed).Inc()
		http.Error(resp, "Decoding of request failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	svrLog.Debugf("Call of method %s received from %s", methodName, req.RemoteAddr)

	// build response
	var respBuf bytes.Buffer
	var w io.Writer = &respBuf
	header := xmlHeader
	if h.Latin1 {
		w = encoding.HTMLEscapeUnsupported(charmap.ISO8859_1.NewEncoder()).Writer(&respBuf)
		header = "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n"
	}
	res, err := h.Dispatch(methodName, args)
	if err == nil {
		err = h.Encoder.encodeResponse(w, header, res)
		if err == nil {
			serverCalls.WithLabelValues(resultOK).Inc()
		}
	}
	if err != nil {
		svrLog.Warningf("Sending error response to %s: %v", req.RemoteAddr, err)
		serverCalls.WithLabelValues(resultFault).Inc()
		respBuf.Reset()
		err = h.Encoder.encodeFault(w, header, faultOf(err))
	}
	if c, ok := w.(io.Closer); ok && err == nil {
		// flush the character encoder
		err = c.Close()
	}
	if err != nil {
		svrLog.Errorf("Encoding of response for %s failed: %v", req.RemoteAddr, err)
		http.Error(resp, "Encoding of response failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if svrLog.TraceEnabled() {
		// attention: log message is probably ISO8859-1 encoded!
		svrLog.Tracef("Response XML: %s", respBuf.String())
	}

	// send response
	resp.Header().Set("Content-Type", "text/xml")
	resp.Header().Set("Content-Length", strconv.Itoa(respBuf.Len()))
	if _, err = resp.Write(respBuf.Bytes()); err != nil {
		svrLog.Warningf("Sending of response for %s failed: %v", req.RemoteAddr, err)
	}
}
