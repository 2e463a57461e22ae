package responseformat

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vmihailenco/msgpack/v5"
)

// Output formats understood by Encode and by the format query parameter.
const (
	FormatJSON    = "json"
	FormatMsgPack = "msgpack"
)

// Formatter handles encoding and writing responses in JSON or MessagePack format
type Formatter struct{}

// NewFormatter creates a new response formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

// WriteResponse writes the response in the appropriate format based on the query parameter
// JSON is the default format. MessagePack is used when format=msgpack is specified
func (f *Formatter) WriteResponse(w http.ResponseWriter, req *http.Request, data any, headers map[string]string) error {
	return f.WriteStatusResponse(w, req, http.StatusOK, data, headers)
}

// WriteStatusResponse is WriteResponse with an explicit status code.
func (f *Formatter) WriteStatusResponse(w http.ResponseWriter, req *http.Request, status int, data any, headers map[string]string) error {
	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if req.URL.Query().Get("format") == FormatMsgPack {
		w.Header().Set("Content-Type", "application/x-msgpack")
		w.WriteHeader(status)
		return encodeMsgPack(w, data)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes {"error": message} with the given status code.
func (f *Formatter) WriteError(w http.ResponseWriter, req *http.Request, status int, message string) error {
	return f.WriteStatusResponse(w, req, status, map[string]string{"error": message}, nil)
}

// Encode writes data to w in format. JSON output is indented for terminals.
func Encode(w io.Writer, format string, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatMsgPack:
		return encodeMsgPack(w, data)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func encodeMsgPack(w io.Writer, data any) error {
	enc := msgpack.NewEncoder(w)
	enc.UseCompactInts(true)
	return enc.Encode(data)
}
