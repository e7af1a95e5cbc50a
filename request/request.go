package request

import (
	"bufio"
	"errors"
	"strings"
)

// MaxHeaderBytes is the budget for the request line plus the
// entire header block. A client that sends more before the
// terminating blank line is cut off with ErrTooLarge.
const MaxHeaderBytes = 8 << 10

var ErrMalformed = errors.New("malformed request line")
var ErrTooLarge = errors.New("request header block too large")

// A Request is the parsed first line of an incoming message.
// The target keeps its raw escapes; decoding is the resolver's job.
type Request struct {
	Method string
	Target string
}

// Read parses one request off rd: the request line, then headers
// up to the terminating blank line. Header fields are consumed and
// discarded. Transport errors from rd pass through untouched so the
// caller can tell a dead connection from a bad client.
func Read(rd *bufio.Reader) (*Request, error) {
	budget := MaxHeaderBytes

	line, err := readLine(rd, &budget)
	if err != nil {
		return nil, err
	}

	req, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}

	// Drain the header block. We serve one request per connection
	// and never act on header values, but the block must still be
	// bounded and well terminated.
	for {
		line, err := readLine(rd, &budget)
		if err != nil {
			return nil, err
		}
		if line == "" {
			return req, nil
		}
	}
}

func parseRequestLine(line string) (*Request, error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, ErrMalformed
	}
	method, target, version := parts[0], parts[1], parts[2]
	if method == "" || target == "" {
		return nil, ErrMalformed
	}
	if !validVersion(version) {
		return nil, ErrMalformed
	}
	return &Request{Method: method, Target: target}, nil
}

// validVersion accepts HTTP/<digits>.<digits> and nothing else.
func validVersion(v string) bool {
	rest, ok := strings.CutPrefix(v, "HTTP/")
	if !ok {
		return false
	}
	major, minor, ok := strings.Cut(rest, ".")
	return ok && isDigits(major) && isDigits(minor)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// readLine reads up to CRLF (bare LF tolerated), charging the
// consumed bytes against *budget.
func readLine(rd *bufio.Reader, budget *int) (string, error) {
	var sb strings.Builder
	for {
		if *budget <= 0 {
			return "", ErrTooLarge
		}
		b, err := rd.ReadByte()
		if err != nil {
			return "", err
		}
		*budget--
		if b == '\n' {
			return strings.TrimSuffix(sb.String(), "\r"), nil
		}
		sb.WriteByte(b)
	}
}
