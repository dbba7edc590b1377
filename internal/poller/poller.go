// ABOUTME: Bounded polling of asynchronous judging results
// ABOUTME: One loop per submission id; attempt-count timeout; idempotent cancel

package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/loco-dev/loco-client/internal/api"
)

// State is the lifecycle of one poll loop.
type State int

const (
	StateIdle State = iota
	StatePolling
	StateTerminal
	StateTimedOut
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateTerminal:
		return "terminal"
	case StateTimedOut:
		return "timed_out"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// StatusFetcher fetches the current status of a submission. The gateway
// client satisfies this.
type StatusFetcher interface {
	GetSubmission(ctx context.Context, id int) (*api.Submission, error)
}

// Options tunes one poll loop. OnUpdate fires for every observed status,
// terminal or not; OnTimeout fires instead of a final OnUpdate when the
// attempt budget runs out first. Both may be nil.
type Options struct {
	Interval    time.Duration
	MaxAttempts int
	OnUpdate    func(*api.Submission)
	OnTimeout   func()
}

// Poll is a handle on one running loop.
type Poll struct {
	submissionID int

	mu       sync.Mutex
	state    State
	attempts int
	last     api.SubmissionStatus

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// State returns the loop's current lifecycle state.
func (p *Poll) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Attempts returns how many ticks have consumed budget so far.
func (p *Poll) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

// LastStatus returns the most recently observed submission status.
func (p *Poll) LastStatus() api.SubmissionStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Done is closed when the loop has fully exited, whatever the reason.
func (p *Poll) Done() <-chan struct{} {
	return p.done
}

// Cancel stops the loop. Safe to call from any state, any number of times.
// No OnUpdate or OnTimeout fires after Cancel.
func (p *Poll) Cancel() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		if p.state == StatePolling || p.state == StateIdle {
			p.state = StateCancelled
		}
		p.mu.Unlock()
		close(p.stop)
	})
}

// cancelled reports whether Cancel has been requested. Checked at every
// suspension resumption point before acting on a result.
func (p *Poll) cancelled() bool {
	select {
	case <-p.stop:
		return true
	default:
		return false
	}
}

// Manager enforces at most one active poll loop per submission id.
type Manager struct {
	fetcher StatusFetcher
	clock   Clock
	logger  *slog.Logger

	defaultInterval time.Duration
	defaultAttempts int

	mu     sync.Mutex
	active map[int]*Poll
}

// NewManager creates a poll manager. defaultInterval and defaultAttempts are
// used when Options leaves them zero. Pass nil clock for wall-clock time and
// nil logger for default.
func NewManager(fetcher StatusFetcher, defaultInterval time.Duration, defaultAttempts int, clock Clock, logger *slog.Logger) *Manager {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		fetcher:         fetcher,
		clock:           clock,
		logger:          logger.With("component", "poller"),
		defaultInterval: defaultInterval,
		defaultAttempts: defaultAttempts,
		active:          make(map[int]*Poll),
	}
}

// Start begins polling a submission. If a loop for the same submission id is
// already active it is cancelled first, so duplicate timers never coexist.
func (m *Manager) Start(ctx context.Context, submissionID int, opts Options) *Poll {
	if opts.Interval == 0 {
		opts.Interval = m.defaultInterval
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = m.defaultAttempts
	}

	p := &Poll{
		submissionID: submissionID,
		state:        StatePolling,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}

	m.mu.Lock()
	if prev, ok := m.active[submissionID]; ok {
		prev.Cancel()
		m.logger.Debug("cancelled previous poll", "submission_id", submissionID)
	}
	m.active[submissionID] = p
	m.mu.Unlock()

	m.logger.Info("poll started",
		"submission_id", submissionID,
		"interval", opts.Interval,
		"max_attempts", opts.MaxAttempts)

	go m.run(ctx, p, opts)
	return p
}

// CancelAll stops every active loop. Used on teardown.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	polls := make([]*Poll, 0, len(m.active))
	for _, p := range m.active {
		polls = append(polls, p)
	}
	m.mu.Unlock()

	for _, p := range polls {
		p.Cancel()
	}
}

// Active reports whether a loop is currently registered for the submission.
func (m *Manager) Active(submissionID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[submissionID]
	return ok
}

// run is the poll loop. Every tick consumes one attempt, whether the fetch
// succeeds, fails transiently, or observes a non-terminal status.
func (m *Manager) run(ctx context.Context, p *Poll, opts Options) {
	defer close(p.done)
	defer m.remove(p)

	ticker := m.clock.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Cancel()
			return
		case <-p.stop:
			return
		case <-ticker.C():
			p.mu.Lock()
			p.attempts++
			attempt := p.attempts
			p.mu.Unlock()

			sub, err := m.fetcher.GetSubmission(ctx, p.submissionID)

			// Cancel may have landed while the fetch was in flight
			if p.cancelled() {
				return
			}

			if err != nil {
				// Transient failure: consumes the attempt, loop continues
				m.logger.Warn("poll fetch failed",
					"submission_id", p.submissionID,
					"attempt", attempt,
					"error", err)
			} else {
				p.mu.Lock()
				p.last = sub.Status
				p.mu.Unlock()

				if sub.Status.Terminal() {
					p.setState(StateTerminal)
					m.logger.Info("poll finished",
						"submission_id", p.submissionID,
						"status", sub.Status,
						"attempts", attempt)
					if opts.OnUpdate != nil {
						opts.OnUpdate(sub)
					}
					return
				}

				if opts.OnUpdate != nil {
					opts.OnUpdate(sub)
				}
			}

			if attempt >= opts.MaxAttempts {
				p.setState(StateTimedOut)
				m.logger.Warn("poll timed out",
					"submission_id", p.submissionID,
					"attempts", attempt)
				if opts.OnTimeout != nil {
					opts.OnTimeout()
				}
				return
			}
		}
	}
}

func (p *Poll) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// remove unregisters the poll unless a newer loop has replaced it.
func (m *Manager) remove(p *Poll) {
	m.mu.Lock()
	if m.active[p.submissionID] == p {
		delete(m.active, p.submissionID)
	}
	m.mu.Unlock()
}
