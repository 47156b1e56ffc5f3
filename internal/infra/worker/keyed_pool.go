// File: internal/infra/worker/keyed_pool.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

var (
	ErrQueueFull   = errors.New("worker queue full")
	ErrPoolStopped = errors.New("worker pool stopped")
)

type Task func(ctx context.Context) error

// KeyedPool runs tasks on a fixed set of workers. Tasks submitted with the same
// key always land on the same worker, so they run one at a time in submission order.
type KeyedPool struct {
	wg     sync.WaitGroup
	shards []chan Task
	log    *zerolog.Logger

	mu      sync.RWMutex
	stopped bool
}

func NewKeyedPool(workers, queueSize int, logger *zerolog.Logger) *KeyedPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = 4
	}
	shards := make([]chan Task, workers)
	for i := range shards {
		shards[i] = make(chan Task, queueSize)
	}
	poolLog := logger.With().Str("component", "KeyedPool").Logger()
	return &KeyedPool{shards: shards, log: &poolLog}
}

// Start launches one goroutine per shard. Tasks receive ctx.
func (p *KeyedPool) Start(ctx context.Context) {
	for i, ch := range p.shards {
		p.wg.Add(1)
		go func(id int, jobs <-chan Task) {
			defer p.wg.Done()
			for task := range jobs {
				if err := p.run(ctx, task); err != nil {
					p.log.Error().Err(err).Int("worker", id).Msg("task error")
				}
			}
		}(i, ch)
	}
}

func (p *KeyedPool) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panic: %v", r)
		}
	}()
	return task(ctx)
}

// Submit queues task on the worker owning key without blocking.
func (p *KeyedPool) Submit(key int64, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.shards[p.shard(key)] <- task:
		return nil
	default:
		// drop when saturated; webhook callers must not block
		return ErrQueueFull
	}
}

// Stop refuses new tasks, lets workers drain their queues and waits for them.
func (p *KeyedPool) Stop() {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		for _, ch := range p.shards {
			close(ch)
		}
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *KeyedPool) shard(key int64) int {
	return int(uint64(key) % uint64(len(p.shards)))
}
