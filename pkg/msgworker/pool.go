package msgworker

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Job is one unit of outbound work, usually a delayed chatbot response.
type Job struct {
	InstanceID string
	ChatID     string
	Handler    func(ctx context.Context) error
}

// Pool runs jobs on a fixed set of workers, each with its own queue. Jobs
// for the same (instance, chat) pair always hash to the same worker, so
// replies to one customer are processed in dispatch order even when the
// pool is busy.
type Pool struct {
	workers  []*worker
	wg       sync.WaitGroup
	stopOnce sync.Once

	// mu serializes TryDispatch against Stop closing the queues, so a
	// concurrent dispatch can never send on a closed channel.
	mu      sync.RWMutex
	stopped bool

	dispatched int64
	processed  int64
	dropped    int64
	errors     int64
}

type worker struct {
	id    int
	queue chan Job
}

// NewPool creates a pool with the given worker count and per-worker queue
// size. Zero or negative values fall back to sane defaults.
func NewPool(numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 10
	}
	if queueSize <= 0 {
		queueSize = 100
	}

	p := &Pool{workers: make([]*worker, numWorkers)}
	for i := range p.workers {
		p.workers[i] = &worker{id: i, queue: make(chan Job, queueSize)}
	}
	return p
}

// Start launches the workers; they run until ctx is cancelled or Stop is
// called and their queues drain.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		p.wg.Add(1)
		go p.run(ctx, w)
	}
}

func (p *Pool) run(ctx context.Context, w *worker) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			p.process(ctx, w, job)
		}
	}
}

func (p *Pool) process(ctx context.Context, w *worker, job Job) {
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&p.errors, 1)
			logrus.WithFields(logrus.Fields{
				"worker_id":   w.id,
				"instance_id": job.InstanceID,
				"chat_id":     job.ChatID,
			}).Errorf("panic in job handler: %v", r)
		}
	}()

	if err := job.Handler(ctx); err != nil {
		atomic.AddInt64(&p.errors, 1)
	}
	atomic.AddInt64(&p.processed, 1)
}

// TryDispatch enqueues the job without blocking. It returns false when the
// target worker's queue is full or the pool is stopped; the caller decides
// whether dropping is acceptable.
func (p *Pool) TryDispatch(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return false
	}

	w := p.workers[p.workerFor(job.InstanceID, job.ChatID)]
	select {
	case w.queue <- job:
		atomic.AddInt64(&p.dispatched, 1)
		return true
	default:
		atomic.AddInt64(&p.dropped, 1)
		return false
	}
}

// workerFor hashes the chat key to a worker index. FNV-1a keeps the same
// chat on the same worker across dispatches.
func (p *Pool) workerFor(instanceID, chatID string) int {
	h := fnv.New32a()
	h.Write([]byte(instanceID))
	h.Write([]byte("|"))
	h.Write([]byte(chatID))
	return int(h.Sum32() % uint32(len(p.workers)))
}

// Stop rejects new dispatches and waits for in-flight jobs to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped = true
		for _, w := range p.workers {
			close(w.queue)
		}
		p.mu.Unlock()
		p.wg.Wait()
	})
}

// Stats is a point-in-time snapshot of the pool counters, exposed by the
// health endpoint.
type Stats struct {
	NumWorkers int   `json:"num_workers"`
	Dispatched int64 `json:"dispatched"`
	Processed  int64 `json:"processed"`
	Dropped    int64 `json:"dropped"`
	Errors     int64 `json:"errors"`
}

func (p *Pool) Stats() Stats {
	return Stats{
		NumWorkers: len(p.workers),
		Dispatched: atomic.LoadInt64(&p.dispatched),
		Processed:  atomic.LoadInt64(&p.processed),
		Dropped:    atomic.LoadInt64(&p.dropped),
		Errors:     atomic.LoadInt64(&p.errors),
	}
}
