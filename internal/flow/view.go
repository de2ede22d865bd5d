package flow

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotMounted = errors.New("view is not mounted")
	ErrInFlight   = errors.New("operation already in progress")
)

// lifecycle tracks whether a view is mounted. Operations take a token when
// they start and may commit their result only while the token is current,
// so responses that arrive after Unmount are dropped.
type lifecycle struct {
	mu      sync.Mutex
	mounted bool
	gen     uint64
	ctx     context.Context
	cancel  context.CancelFunc
}

// mount marks the view active. It returns false when it already was.
func (l *lifecycle) mount(parent context.Context) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mounted {
		return false
	}
	l.ctx, l.cancel = context.WithCancel(parent)
	l.mounted = true
	l.gen++
	return true
}

func (l *lifecycle) unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return
	}
	l.mounted = false
	l.gen++
	l.cancel()
}

// begin returns a context that is also canceled on unmount, plus the token
// to check before committing.
func (l *lifecycle) begin(ctx context.Context) (context.Context, context.CancelFunc, uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.mounted {
		return nil, nil, 0, ErrNotMounted
	}
	opCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(l.ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}, l.gen, nil
}

// current reports whether work started with tok may still commit.
func (l *lifecycle) current(tok uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mounted && l.gen == tok
}

func (l *lifecycle) isMounted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mounted
}
