package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/0xPolygon/cdk-txrelay/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-collections/collections/queue"
)

const defaultBlockTag = "pending"

var (
	// ErrNonceQuery wraps the error returned when reading the transaction count fails
	ErrNonceQuery = errors.New("nonce query failed")
	// ErrSequencerStopped is returned to requests issued before Start or after Stop
	ErrSequencerStopped = errors.New("nonce sequencer stopped")
)

// NonceReader returns the transaction count of an address at the given block tag
type NonceReader interface {
	TransactionCount(ctx context.Context, addr common.Address, blockTag string) (uint64, error)
}

// SendFunc uses the nonce assigned by Sequence. release reports that the
// nonce never reached the endpoint, so it can be handed out again.
type SendFunc func(ctx context.Context, nonce uint64) (release bool, err error)

type taskKind int

const (
	acquireTask taskKind = iota
	releaseTask
	pendingTask
)

type taskResult struct {
	nonce uint64
	ok    bool
	err   error
}

type task struct {
	ctx   context.Context
	kind  taskKind
	addr  common.Address
	nonce uint64
	send  SendFunc
	resCh chan taskResult
}

// Sequencer hands out nonces one request at a time, in arrival order, for
// every address. A single worker goroutine owns the per-address state.
type Sequencer struct {
	logger   *log.Logger
	reader   NonceReader
	blockTag string

	mu      sync.Mutex
	queue   *queue.Queue
	wake    chan struct{}
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	// last assigned nonce per address, only touched by the worker
	nonces map[common.Address]uint64
}

// New creates a stopped sequencer
func New(logger *log.Logger, reader NonceReader, cfg Config) *Sequencer {
	blockTag := cfg.BlockTag
	if blockTag == "" {
		blockTag = defaultBlockTag
	}
	return &Sequencer{
		logger:   logger,
		reader:   reader,
		blockTag: blockTag,
		queue:    queue.New(),
		wake:     make(chan struct{}, 1),
		nonces:   make(map[common.Address]uint64),
	}
}

// Start launches the worker, which runs until Stop or until ctx is done.
// Calling it on a running sequencer is a no-op.
func (s *Sequencer) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.running = true
	go s.work(ctx, s.done)
	s.logger.Debugf("nonce sequencer started, block tag %s", s.blockTag)
}

// Stop terminates the worker and answers queued requests with ErrSequencerStopped.
// It waits for the request being serviced, if any.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Debug("nonce sequencer stopped")
}

// Acquire returns the nonce to use for the next transaction of addr.
// Requests are serviced strictly in arrival order.
func (s *Sequencer) Acquire(ctx context.Context, addr common.Address) (uint64, error) {
	res := s.submit(&task{ctx: ctx, kind: acquireTask, addr: addr})
	return res.nonce, res.err
}

// Sequence assigns the next nonce of addr and calls send with it before any
// later request is serviced, so sends reach the endpoint in nonce order.
// The nonce is given back when send asks for it. The error of send is
// returned as is.
func (s *Sequencer) Sequence(ctx context.Context, addr common.Address, send SendFunc) (uint64, error) {
	res := s.submit(&task{ctx: ctx, kind: acquireTask, addr: addr, send: send})
	return res.nonce, res.err
}

// Release gives back nonce when it is the last one assigned to addr, so the
// next Acquire can hand it out again. Any other value is ignored.
func (s *Sequencer) Release(ctx context.Context, addr common.Address, nonce uint64) error {
	res := s.submit(&task{ctx: ctx, kind: releaseTask, addr: addr, nonce: nonce})
	return res.err
}

// Pending returns the next nonce the sequencer would assign to addr from its
// own state. ok is false when addr has no state.
func (s *Sequencer) Pending(ctx context.Context, addr common.Address) (uint64, bool, error) {
	res := s.submit(&task{ctx: ctx, kind: pendingTask, addr: addr})
	return res.nonce, res.ok, res.err
}

// submit queues t and waits for the worker to answer it. The wait does not
// watch ctx: the worker always answers, so an assigned nonce is never lost.
func (s *Sequencer) submit(t *task) taskResult {
	t.resCh = make(chan taskResult, 1)

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return taskResult{err: ErrSequencerStopped}
	}
	s.queue.Enqueue(t)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return <-t.resCh
}

func (s *Sequencer) next() *task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Len() == 0 {
		return nil
	}
	t, _ := s.queue.Dequeue().(*task)
	return t
}

func (s *Sequencer) work(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		for s.queue.Len() > 0 {
			t, _ := s.queue.Dequeue().(*task)
			t.resCh <- taskResult{err: ErrSequencerStopped}
		}
		s.mu.Unlock()
		close(done)
	}()
	for {
		t := s.next()
		if t == nil {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
				continue
			}
		}
		if ctx.Err() != nil {
			t.resCh <- taskResult{err: ErrSequencerStopped}
			continue
		}
		t.resCh <- s.service(t)
	}
}

func (s *Sequencer) service(t *task) taskResult {
	if err := t.ctx.Err(); err != nil {
		return taskResult{err: err}
	}
	switch t.kind {
	case acquireTask:
		res := s.acquire(t)
		if res.err != nil || t.send == nil {
			return res
		}
		release, err := t.send(t.ctx, res.nonce)
		if release {
			s.release(t.addr, res.nonce)
		}
		res.err = err
		return res
	case releaseTask:
		s.release(t.addr, t.nonce)
		return taskResult{}
	case pendingTask:
		last, ok := s.nonces[t.addr]
		if !ok {
			return taskResult{}
		}
		return taskResult{nonce: last + 1, ok: true}
	default:
		return taskResult{err: fmt.Errorf("unknown task kind %d", t.kind)}
	}
}

func (s *Sequencer) acquire(t *task) taskResult {
	count, err := s.reader.TransactionCount(t.ctx, t.addr, s.blockTag)
	if err != nil {
		s.logger.Warnf("error reading transaction count of %s: %v", t.addr.Hex(), err)
		return taskResult{err: fmt.Errorf("%w: %w", ErrNonceQuery, err)}
	}

	last, ok := s.nonces[t.addr]
	var nonce uint64
	if !ok || count > last {
		nonce = count
	} else {
		nonce = last + 1
	}
	s.nonces[t.addr] = nonce
	s.logger.Debugf("assigned nonce %d to %s (chain count %d)", nonce, t.addr.Hex(), count)
	return taskResult{nonce: nonce}
}

func (s *Sequencer) release(addr common.Address, nonce uint64) {
	last, ok := s.nonces[addr]
	if !ok || last != nonce {
		return
	}
	if nonce == 0 {
		delete(s.nonces, addr)
	} else {
		s.nonces[addr] = nonce - 1
	}
	s.logger.Debugf("released nonce %d of %s", nonce, addr.Hex())
}
