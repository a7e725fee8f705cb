package game

import (
	"context"
	"sync"
	"time"
)

// Loop owns one Session and runs it on a single goroutine. Player events
// and timer callbacks are queued on one channel and handled in arrival
// order.
type Loop struct {
	session *Session
	events  chan func()
	done    chan struct{}
	stop    sync.Once
}

// NewLoop builds a session on a real clock whose callbacks are posted to
// the loop. Call Run to start processing.
func NewLoop(cfg Config, opts ...Option) (*Loop, error) {
	l := &Loop{
		events: make(chan func(), 64),
		done:   make(chan struct{}),
	}
	opts = append([]Option{WithClock(NewRealClock(l.post))}, opts...)

	s, err := NewSession(cfg, opts...)
	if err != nil {
		return nil, err
	}
	l.session = s
	return l, nil
}

func (l *Loop) ID() string { return l.session.ID() }

func (l *Loop) Kind() Kind { return l.session.Kind() }

// Run processes events until ctx is done or Close is called, then closes
// the session.
func (l *Loop) Run(ctx context.Context) error {
	defer l.session.Close()
	for {
		select {
		case <-ctx.Done():
			l.Close()
			return ctx.Err()
		case <-l.done:
			return nil
		case fn := <-l.events:
			fn()
		}
	}
}

func (l *Loop) post(fn func()) {
	select {
	case l.events <- fn:
	case <-l.done:
	}
}

// Input queues a player event stamped with the current time.
func (l *Loop) Input(in Input) {
	if in.At.IsZero() {
		in.At = time.Now()
	}
	l.post(func() { l.session.Input(in) })
}

func (l *Loop) Start() {
	l.post(func() {
		if err := l.session.Start(); err != nil {
			l.session.log.Warn("start rejected", "error", err)
		}
	})
}

func (l *Loop) Restart() {
	l.post(func() {
		if err := l.session.Restart(); err != nil {
			l.session.log.Warn("restart rejected", "error", err)
		}
	})
}

// Do runs fn on the loop goroutine.
func (l *Loop) Do(fn func(*Session)) {
	l.post(func() { fn(l.session) })
}

// Close stops the loop. It is safe to call more than once.
func (l *Loop) Close() {
	l.stop.Do(func() { close(l.done) })
}

// Done is closed once Close has been called.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
