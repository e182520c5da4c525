// Package workerpool runs the service's detached background tasks on a
// bounded ants pool.
package workerpool

import (
	"context"
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pitabwire/util"
	"github.com/rs/xid"
)

// Options defines configurable options for the service's internal worker pool.
type Options struct {
	PoolCount          int
	SinglePoolCapacity int
	ExpiryDuration     time.Duration
	Nonblocking        bool
	PanicHandler       func(any)
	Logger             *util.LogEntry
}

// Option defines a function that configures worker pool options.
type Option func(*Options)

// WithPoolCount sets the number of worker pools.
func WithPoolCount(count int) Option {
	return func(opts *Options) {
		opts.PoolCount = count
	}
}

// WithSinglePoolCapacity sets the capacity for a single worker pool.
func WithSinglePoolCapacity(capacity int) Option {
	return func(opts *Options) {
		opts.SinglePoolCapacity = capacity
	}
}

// WithPoolExpiryDuration sets the expiry duration for idle workers.
func WithPoolExpiryDuration(duration time.Duration) Option {
	return func(opts *Options) {
		opts.ExpiryDuration = duration
	}
}

// WithPoolNonblocking sets the non-blocking option for the pool.
func WithPoolNonblocking(nonblocking bool) Option {
	return func(opts *Options) {
		opts.Nonblocking = nonblocking
	}
}

// WithPoolPanicHandler sets a panic handler for the pool.
func WithPoolPanicHandler(handler func(any)) Option {
	return func(opts *Options) {
		opts.PanicHandler = handler
	}
}

// WithPoolLogger sets a logger for the pool.
func WithPoolLogger(logger *util.LogEntry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func setupPool(wopts *Options) (pool, error) {
	var antsOpts []ants.Option
	if wopts.ExpiryDuration > 0 {
		antsOpts = append(antsOpts, ants.WithExpiryDuration(wopts.ExpiryDuration))
	}
	antsOpts = append(antsOpts, ants.WithNonblocking(wopts.Nonblocking))
	if wopts.PanicHandler != nil {
		antsOpts = append(antsOpts, ants.WithPanicHandler(wopts.PanicHandler))
	}
	if wopts.Logger != nil {
		antsOpts = append(antsOpts, ants.WithLogger(wopts.Logger))
	}

	if wopts.PoolCount <= 1 {
		p, err := ants.NewPool(wopts.SinglePoolCapacity, antsOpts...)
		if err != nil {
			return nil, err
		}
		return &singlePoolWrapper{pool: p}, nil
	}

	mp, err := ants.NewMultiPool(wopts.PoolCount, wopts.SinglePoolCapacity, ants.LeastTasks, antsOpts...)
	if err != nil {
		return nil, err
	}
	return &multiPoolWrapper{multiPool: mp}, nil
}

type pool interface {
	Submit(ctx context.Context, task func()) error
	Shutdown()
}

// singlePoolWrapper adapts *ants.Pool to the pool interface.
type singlePoolWrapper struct {
	pool *ants.Pool
}

func (w *singlePoolWrapper) Submit(ctx context.Context, task func()) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return w.pool.Submit(task)
}

func (w *singlePoolWrapper) Shutdown() {
	w.pool.Release()
}

// multiPoolWrapper adapts *ants.MultiPool to the pool interface.
type multiPoolWrapper struct {
	multiPool *ants.MultiPool
}

func (w *multiPoolWrapper) Submit(ctx context.Context, task func()) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	return w.multiPool.Submit(task)
}

func (w *multiPoolWrapper) Shutdown() {
	w.multiPool.Free()
}

// Manager hands detached tasks to the underlying pool. Tasks are
// fire-and-forget: failures surface only in logs, never to the submitter.
type Manager interface {
	// Submit schedules task on the pool. The name tags log lines, the task id
	// is generated per submission.
	Submit(ctx context.Context, name string, task func(ctx context.Context)) error

	Shutdown()
}

type manager struct {
	pool pool
}

// NewManager creates a worker pool manager from the supplied options.
func NewManager(ctx context.Context, opts ...Option) (Manager, error) {
	wopts := &Options{
		SinglePoolCapacity: 100,
		PoolCount:          1,
		ExpiryDuration:     time.Second,
		Nonblocking:        true,
		Logger:             util.Log(ctx),
	}

	for _, opt := range opts {
		opt(wopts)
	}

	p, err := setupPool(wopts)
	if err != nil {
		return nil, err
	}

	return &manager{pool: p}, nil
}

func (m *manager) Submit(ctx context.Context, name string, task func(ctx context.Context)) error {
	if task == nil {
		return errors.New("task is nil")
	}

	taskID := xid.New().String()

	return m.pool.Submit(ctx, func() {
		log := util.Log(ctx).WithField("task", name).WithField("id", taskID)

		defer func() {
			if recovered := recover(); recovered != nil {
				log.WithField("panic", recovered).Error("task panicked")
			}
		}()

		task(ctx)
		log.Debug("task completed")
	})
}

func (m *manager) Shutdown() {
	m.pool.Shutdown()
}
