package session

import (
	"bufio"
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/krishnarg04/file-server/fspath"
	"github.com/krishnarg04/file-server/pkg/countio"
	"github.com/krishnarg04/file-server/pkg/metrics"
	"github.com/krishnarg04/file-server/request"
	"github.com/krishnarg04/file-server/response"
)

// A Handler runs one connection through
// ReadRequest -> Resolve -> Render -> Write -> Closed.
type Handler struct {
	Resolver    *fspath.Resolver
	ReadTimeout time.Duration
}

// Serve processes exactly one request on conn and closes it. The
// deferred close is the only close, so every path through here
// releases the connection exactly once. Nothing escapes to the
// caller: every failure either becomes an error response or ends
// the connection quietly.
func (h *Handler) Serve(conn net.Conn) {
	defer conn.Close()

	logger := log.WithFields(log.Fields{"peer": conn.RemoteAddr().String()})
	state := StateReadRequest

	// A stalled client may not hold a worker past the deadline.
	if h.ReadTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(h.ReadTimeout))
	}

	req, err := request.Read(bufio.NewReader(conn))

	var res *response.Response
	switch {
	case err == nil:
		state = state.Next()
		res, state = h.route(req, state, logger)
	case errors.Is(err, request.ErrMalformed), errors.Is(err, request.ErrTooLarge), isTimeout(err):
		res, state = response.Error(response.StatusBadRequest), state.Failed()
	default:
		// Transport failure. There is no one left to answer.
		logger.WithField("state", state).Debugf("read failed: %v", err)
		return
	}

	out := countio.NewWriter(conn)
	if err := res.WriteTo(out); err != nil {
		// Headers may already be on the wire; the response is
		// truncated and the connection simply closes.
		logger.WithFields(log.Fields{"state": state, "bytes": out.Count()}).
			Debugf("write failed: %v", err)
		return
	}

	metrics.Responses.WithLabelValues(strconv.Itoa(res.Status)).Inc()
	logger.WithFields(log.Fields{"status": res.Status, "bytes": out.Count()}).Info("served")
}

// route turns a parsed request into a response, mapping each
// pipeline error to its status here and nowhere else.
func (h *Handler) route(req *request.Request, state ConnState, logger *log.Entry) (*response.Response, ConnState) {
	if req.Method != "GET" {
		return response.Error(response.StatusMethodNotAllowed), state.Failed()
	}

	resolved, err := h.Resolver.Resolve(req.Target)
	switch {
	case err == nil:
	case errors.Is(err, fspath.ErrTraversal):
		logger.WithField("target", req.Target).Warn("rejected path traversal attempt")
		return response.Error(response.StatusForbidden), state.Failed()
	case errors.Is(err, fspath.ErrBadEscape):
		return response.Error(response.StatusBadRequest), state.Failed()
	case errors.Is(err, fspath.ErrNotFound):
		return response.Error(response.StatusNotFound), state.Failed()
	default:
		logger.Errorf("resolve %q: %v", req.Target, err)
		return response.Error(response.StatusInternalServerError), state.Failed()
	}

	state = state.Next() // Render
	if resolved.IsDir {
		return response.Directory(resolved.Path, displayPath(req.Target)), state.Next()
	}
	return response.File(resolved.Path), state.Next()
}

// displayPath is the decoded, query-less form of the target, used
// for the listing title and hrefs. The resolver already proved
// the escapes decode.
func displayPath(target string) string {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		target = target[:i]
	}
	decoded, err := url.PathUnescape(target)
	if err != nil {
		return target
	}
	if decoded == "" {
		return "/"
	}
	return decoded
}

func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
