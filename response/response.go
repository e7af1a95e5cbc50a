package response

import (
	"fmt"
	"io"
	"strconv"
)

const (
	StatusOK                  = 200
	StatusBadRequest          = 400
	StatusForbidden           = 403
	StatusNotFound            = 404
	StatusMethodNotAllowed    = 405
	StatusInternalServerError = 500
)

var statusText = map[int]string{
	StatusOK:                  "OK",
	StatusBadRequest:          "Bad Request",
	StatusForbidden:           "Forbidden",
	StatusNotFound:            "Not Found",
	StatusMethodNotAllowed:    "Method Not Allowed",
	StatusInternalServerError: "Internal Server Error",
}

// ChunkSize bounds the buffer used to stream file bodies, so
// memory per connection stays flat regardless of file size.
const ChunkSize = 32 << 10

type headerPair struct {
	k, v string
}

// A Response is a status line, a header set, and at most one body
// source: either an in-memory buffer or a reader streamed out in
// ChunkSize pieces. It is written to the connection exactly once.
type Response struct {
	Status  int
	headers []headerPair
	body    []byte
	stream  io.ReadCloser
}

func (res *Response) SetHeader(k, v string) {
	res.headers = append(res.headers, headerPair{k, v})
}

func (res *Response) setBody(data []byte, contentType string) {
	res.body = data
	res.SetHeader("Content-Type", contentType)
	res.SetHeader("Content-Length", strconv.Itoa(len(data)))
}

// WriteTo serializes the response onto w. The status line and
// headers go first; a streamed body is then copied through a
// fixed-size buffer. The body source is closed on every path,
// however little of the response made it out.
func (res *Response) WriteTo(w io.Writer) error {
	if res.stream != nil {
		defer res.stream.Close()
	}
	text, ok := statusText[res.Status]
	if !ok {
		text = "Internal Server Error"
	}
	head := fmt.Sprintf("HTTP/1.0 %d %s\r\n", res.Status, text)
	if _, err := io.WriteString(w, head); err != nil {
		return err
	}
	for _, pair := range res.headers {
		if _, err := fmt.Fprintf(w, "%s: %s\r\n", pair.k, pair.v); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\r\n"); err != nil {
		return err
	}
	if res.stream != nil {
		buf := make([]byte, ChunkSize)
		if _, err := io.CopyBuffer(w, res.stream, buf); err != nil {
			return err
		}
		return nil
	}
	if len(res.body) > 0 {
		if _, err := w.Write(res.body); err != nil {
			return err
		}
	}
	return nil
}

// Error builds a small HTML error page for the given status.
// 405 carries no body.
func Error(status int) *Response {
	res := &Response{Status: status}
	if status == StatusMethodNotAllowed {
		return res
	}
	page := fmt.Sprintf("<h1>%d %s</h1>", status, statusText[status])
	res.setBody([]byte(page), "text/html")
	return res
}
