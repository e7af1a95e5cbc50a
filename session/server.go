package session

import (
	"errors"
	"net"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/krishnarg04/file-server/fspath"
	"github.com/krishnarg04/file-server/pkg/metrics"
	"github.com/krishnarg04/file-server/pool"
)

const (
	DefaultWorkers     = 4
	DefaultReadTimeout = 5 * time.Second

	// Queue depth scales with worker count when not set: deep
	// enough to ride out bursts, shallow enough that a flood hits
	// backpressure instead of memory.
	queueDepthPerWorker = 4
)

type Config struct {
	// Addr is the listen address, e.g. "127.0.0.1:8123".
	Addr string
	// Root is the directory to serve.
	Root string
	// Workers is the fixed worker count; DefaultWorkers when zero.
	Workers int
	// QueueDepth bounds the pending-connection queue;
	// queueDepthPerWorker * Workers when zero.
	QueueDepth int
	// ReadTimeout bounds reading the request line and headers;
	// DefaultReadTimeout when zero.
	ReadTimeout time.Duration
}

// A Server owns the listening socket and hands accepted
// connections to a fixed worker pool.
type Server struct {
	cfg     Config
	handler *Handler
	pool    *pool.Pool

	mu sync.Mutex
	ln net.Listener
}

func New(cfg Config) (*Server, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = queueDepthPerWorker * cfg.Workers
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}

	resolver, err := fspath.NewResolver(cfg.Root)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:     cfg,
		handler: &Handler{Resolver: resolver, ReadTimeout: cfg.ReadTimeout},
		pool:    pool.New(cfg.Workers, cfg.QueueDepth),
	}, nil
}

func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve starts the workers and runs the accept loop until the
// listener closes. Each accepted connection becomes one Job; when
// the queue is full the Submit call blocks, so acceptance itself
// is the backpressure point.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.pool.Start()

	log.Infof("server starting with %d workers", s.cfg.Workers)
	log.Infof("serving files from: %s", s.handler.Resolver.Root())
	log.Infof("listening on http://%s", ln.Addr())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Errorf("accept: %v", err)
			continue
		}
		if !s.pool.Submit(func() { s.handler.Serve(conn) }) {
			conn.Close()
			return nil
		}
	}
}

// Addr reports the bound listener address, nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops accepting, drains queued connections, and joins the
// workers.
func (s *Server) Close() error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.pool.Shutdown()
	return err
}

// ServeMetrics exposes the prometheus registry on addr in a
// background goroutine. Purely additive; the file-serving path
// does not depend on it.
func ServeMetrics(addr string) {
	go func() {
		if err := metrics.Serve(addr); err != nil {
			log.Errorf("metrics listener: %v", err)
		}
	}()
}
