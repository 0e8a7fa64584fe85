package llm

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"football-agent/internal/metrics"
)

// Priority levels (just 2)
type Priority int

const (
	PriorityCritical   Priority = 0 // On-demand reports
	PriorityBackground Priority = 1 // Live recommendation loops
)

func (p Priority) String() string {
	if p == PriorityCritical {
		return "critical"
	}
	return "background"
}

var (
	ErrQueueFull    = errors.New("model queue full")
	ErrQueueStopped = errors.New("model queue stopped")
)

// QueueConfig controls queue behavior
type QueueConfig struct {
	MaxConcurrent       int
	CriticalQueueSize   int
	BackgroundQueueSize int
}

func DefaultQueueConfig() QueueConfig {
	return QueueConfig{
		MaxConcurrent:       2,
		CriticalQueueSize:   20,
		BackgroundQueueSize: 100,
	}
}

type job struct {
	ctx      context.Context
	prompt   string
	gen      *GenerationConfig
	priority Priority
	done     chan Result
}

// Queue bounds concurrent calls to a Generator. Critical work is always
// dispatched before background work; a full queue rejects immediately.
type Queue struct {
	next Generator

	critical   chan *job
	background chan *job
	semaphore  chan struct{}

	stopCh   chan struct{}
	stopped  chan struct{} // closed once Stop has drained the queues
	stopOnce sync.Once
	wg       sync.WaitGroup

	logger *zap.Logger
}

func NewQueue(next Generator, cfg QueueConfig, logger *zap.Logger) *Queue {
	def := DefaultQueueConfig()
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.CriticalQueueSize <= 0 {
		cfg.CriticalQueueSize = def.CriticalQueueSize
	}
	if cfg.BackgroundQueueSize <= 0 {
		cfg.BackgroundQueueSize = def.BackgroundQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &Queue{
		next:       next,
		critical:   make(chan *job, cfg.CriticalQueueSize),
		background: make(chan *job, cfg.BackgroundQueueSize),
		semaphore:  make(chan struct{}, cfg.MaxConcurrent),
		stopCh:     make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger.Named("llm-queue"),
	}

	q.wg.Add(1)
	go q.dispatcher()

	q.logger.Info("started", zap.Int("concurrent_slots", cfg.MaxConcurrent))
	return q
}

// With returns a Generator that submits at priority p.
func (q *Queue) With(p Priority) Generator {
	return queuedGenerator{q: q, priority: p}
}

type queuedGenerator struct {
	q        *Queue
	priority Priority
}

func (g queuedGenerator) Generate(ctx context.Context, prompt string, gen *GenerationConfig) Result {
	return g.q.Submit(ctx, g.priority, prompt, gen)
}

// Submit enqueues one call and waits for its result or ctx.
func (q *Queue) Submit(ctx context.Context, p Priority, prompt string, gen *GenerationConfig) Result {
	j := &job{ctx: ctx, prompt: prompt, gen: gen, priority: p, done: make(chan Result, 1)}

	queue := q.background
	if p == PriorityCritical {
		queue = q.critical
	}

	select {
	case <-q.stopCh:
		return Result{Err: ErrQueueStopped}
	default:
	}

	select {
	case queue <- j:
		metrics.QueueDepth(p.String(), len(queue))
	default:
		metrics.QueueDropped(p.String())
		q.logger.Warn("queue full, dropping request", zap.Stringer("priority", p))
		return Result{Err: ErrQueueFull}
	}

	return q.wait(ctx, j)
}

// wait returns the job's result. A job that slipped in after Stop drained
// the queues is never dispatched, so it fails with ErrQueueStopped.
func (q *Queue) wait(ctx context.Context, j *job) Result {
	select {
	case r := <-j.done:
		return r
	case <-ctx.Done():
		return Result{Err: ctx.Err()}
	case <-q.stopped:
		select {
		case r := <-j.done:
			return r
		default:
			return Result{Err: ErrQueueStopped}
		}
	}
}

// dispatcher waits for a free slot, then takes the next job (critical
// first, then background).
func (q *Queue) dispatcher() {
	defer q.wg.Done()

	for {
		select {
		case <-q.stopCh:
			return
		case q.semaphore <- struct{}{}:
		}

		var j *job
		select {
		case j = <-q.critical:
		default:
			select {
			case <-q.stopCh:
				<-q.semaphore
				return
			case j = <-q.critical:
			case j = <-q.background:
			}
		}

		q.wg.Add(1)
		go q.process(j)
	}
}

func (q *Queue) process(j *job) {
	defer func() {
		<-q.semaphore
		q.wg.Done()
	}()
	metrics.QueueDepth(j.priority.String(), len(q.queueFor(j.priority)))

	if err := j.ctx.Err(); err != nil {
		j.done <- Result{Err: err}
		return
	}
	j.done <- q.next.Generate(j.ctx, j.prompt, j.gen)
}

func (q *Queue) queueFor(p Priority) chan *job {
	if p == PriorityCritical {
		return q.critical
	}
	return q.background
}

// Stop shuts the dispatcher down and waits for in-flight calls. Jobs still
// queued fail with ErrQueueStopped.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stopCh)
		q.wg.Wait()
		for _, queue := range []chan *job{q.critical, q.background} {
			for drained := false; !drained; {
				select {
				case j := <-queue:
					j.done <- Result{Err: ErrQueueStopped}
				default:
					drained = true
				}
			}
		}
		close(q.stopped)
		q.logger.Info("stopped")
	})
}
