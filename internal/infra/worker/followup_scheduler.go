package worker

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "followup_ticks_total",
			Help: "Follow-up scheduler ticks by outcome",
		},
		[]string{"outcome"},
	)

	notificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "followup_notifications_created_total",
			Help: "Notifications created by the follow-up pipeline",
		},
	)
)

// TickRunner is one pass of the due-follow-up pipeline.
type TickRunner interface {
	Execute(ctx context.Context) (int, error)
}

// FollowUpScheduler drives the pipeline at a fixed cadence. Ticks run
// synchronously inside the loop goroutine, so two ticks never overlap;
// when a tick outlasts the interval the ticker simply drops the missed
// fires. A failed tick is logged and the loop keeps going; transient
// store errors heal themselves on the next scan.
type FollowUpScheduler struct {
	pipeline     TickRunner
	tickInterval time.Duration
	tickTimeout  time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

const (
	DefaultTickInterval = 10 * time.Second
	defaultTickTimeout  = 30 * time.Second
)

func NewFollowUpScheduler(pipeline TickRunner, tickInterval time.Duration) *FollowUpScheduler {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	return &FollowUpScheduler{
		pipeline:     pipeline,
		tickInterval: tickInterval,
		tickTimeout:  defaultTickTimeout,
	}
}

// Start launches the loop. Calling Start on a running scheduler is a no-op.
func (s *FollowUpScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, s.done)
	log.Printf("follow-up scheduler started (interval %s)", s.tickInterval)
}

// Stop halts the loop and waits for an in-flight tick to finish. Calling
// Stop on a stopped scheduler is a no-op.
func (s *FollowUpScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	log.Printf("follow-up scheduler stopped")
}

func (s *FollowUpScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *FollowUpScheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *FollowUpScheduler) tick(parent context.Context) {
	defer func() {
		if r := recover(); r != nil {
			ticksTotal.WithLabelValues("panic").Inc()
			log.Printf("follow-up scheduler: tick panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(parent, s.tickTimeout)
	defer cancel()

	created, err := s.pipeline.Execute(ctx)
	if err != nil {
		ticksTotal.WithLabelValues("error").Inc()
		log.Printf("follow-up scheduler: tick failed: %v", err)
		return
	}

	ticksTotal.WithLabelValues("ok").Inc()
	if created > 0 {
		notificationsCreated.Add(float64(created))
		log.Printf("follow-up scheduler: created %d notifications", created)
	}
}
