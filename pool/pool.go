package pool

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/krishnarg04/file-server/pkg/metrics"
)

// A Job is one unit of work: a closure around a single accepted
// connection. Exactly one worker runs it.
type Job func()

// A Pool is a fixed set of long-lived workers pulling Jobs off a
// shared bounded queue. Queue hand-off is the only coordination
// between the accept loop and the workers.
type Pool struct {
	workers int
	jobs    chan Job
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New sizes a pool with `workers` workers and a queue holding up
// to `queueDepth` waiting Jobs. Workers do not run until Start.
func New(workers, queueDepth int) *Pool {
	if workers <= 0 {
		panic("pool: worker count must be positive")
	}
	if queueDepth < 0 {
		panic("pool: negative queue depth")
	}
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, queueDepth),
	}
}

// Start launches the workers. Call once.
func (p *Pool) Start() {
	for id := 0; id < p.workers; id++ {
		p.wg.Add(1)
		go p.work(id)
	}
}

// Submit enqueues a Job, blocking while the queue is full. That
// block is the backpressure: the accept loop stalls instead of
// piling up connections in memory. Submit reports false once the
// pool has shut down.
func (p *Pool) Submit(job Job) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	// Send under the lock so Shutdown cannot close the channel
	// between the check and the send.
	defer p.mu.Unlock()
	p.jobs <- job
	metrics.JobsSubmitted.Inc()
	metrics.QueueDepth.Set(float64(len(p.jobs)))
	return true
}

// Shutdown stops intake, lets the workers drain whatever is
// queued, and joins them.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		metrics.QueueDepth.Set(float64(len(p.jobs)))
		log.WithFields(log.Fields{"worker": id}).Debug("got a job; executing")
		p.run(id, job)
		metrics.JobsCompleted.Inc()
	}
}

// run executes one Job behind a recover so a panicking handler
// takes down its own connection and nothing else; the worker
// moves on to the next Job.
func (p *Pool) run(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			metrics.PanicsRecovered.Inc()
			log.WithFields(log.Fields{"worker": id, "panic": r}).
				Error("recovered panic in job; worker continues")
		}
	}()
	job()
}
