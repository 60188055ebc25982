package chat

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/tdfdash/internal/ai"
	"github.com/KaramelBytes/tdfdash/internal/source"
	"github.com/KaramelBytes/tdfdash/internal/stages"
	"github.com/KaramelBytes/tdfdash/internal/utils"
)

// DefaultSummaryBudget caps the estimated tokens of dataset summary placed in
// the system prompt.
const DefaultSummaryBudget = 1500

// Registry owns the shared data source and the live sessions.
type Registry struct {
	mu       sync.RWMutex
	rt       ai.Runtime
	cur      *lease
	base     []stages.Row
	opt      Options
	system   string
	sessions map[string]*Session
}

// lease counts the questions using a source so that a replaced source is
// closed only once they finish.
type lease struct {
	src     source.Source
	mu      sync.Mutex
	refs    int
	retired bool
}

func (l *lease) acquire() {
	l.mu.Lock()
	l.refs++
	l.mu.Unlock()
}

func (l *lease) release() {
	l.mu.Lock()
	l.refs--
	done := l.retired && l.refs == 0
	l.mu.Unlock()
	if done {
		l.close()
	}
}

// retire closes the source now if idle, otherwise on the last release.
func (l *lease) retire() {
	l.mu.Lock()
	if l.retired {
		l.mu.Unlock()
		return
	}
	l.retired = true
	done := l.refs == 0
	l.mu.Unlock()
	if done {
		l.close()
	}
}

func (l *lease) isRetired() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.retired
}

func (l *lease) close() {
	if err := l.src.Close(); err != nil {
		logrus.WithField("source", l.src.Name()).Warnf("close source: %v", err)
	}
}

// NewRegistry builds a registry over src whose full table is base. The
// registry takes ownership of src; release it with Close.
func NewRegistry(rt ai.Runtime, src source.Source, base []stages.Row, opt Options) *Registry {
	if opt.Greeting == "" {
		opt.Greeting = DefaultGreeting
	}
	if opt.DataDescription == "" {
		opt.DataDescription = DefaultDataDescription
	}
	if opt.SummaryBudget <= 0 {
		opt.SummaryBudget = DefaultSummaryBudget
	}
	opt.Summary = utils.TruncateToTokenLimit(opt.Summary, opt.SummaryBudget)
	r := &Registry{rt: rt, cur: &lease{src: src}, base: base, opt: opt, sessions: map[string]*Session{}}
	r.system = systemPrompt(opt.DataDescription, src.Table(), opt.Summary)
	return r
}

// Create starts a new session over the full dataset.
func (r *Registry) Create() *Session {
	s := &Session{ID: uuid.NewString(), Created: time.Now(), reg: r}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Delete forgets a session.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Base returns the full, unfiltered dataset.
func (r *Registry) Base() []stages.Row {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.base
}

// Source returns the current data source.
func (r *Registry) Source() source.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cur.src
}

// Swap installs a reloaded source and dataset and reruns every session
// filter against it. The previous source is closed once the questions
// still querying it finish.
func (r *Registry) Swap(ctx context.Context, src source.Source, base []stages.Row, summary string) {
	next := &lease{src: src}
	next.acquire()
	defer next.release()

	r.mu.Lock()
	old := r.cur
	r.cur, r.base = next, base
	r.opt.Summary = utils.TruncateToTokenLimit(summary, r.opt.SummaryBudget)
	r.system = systemPrompt(r.opt.DataDescription, src.Table(), r.opt.Summary)
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()
	old.retire()

	for _, s := range sessions {
		s.refilter(ctx, src)
	}
}

// Close retires the current source. It is closed once in-flight questions
// finish.
func (r *Registry) Close() {
	r.mu.RLock()
	cur := r.cur
	r.mu.RUnlock()
	cur.retire()
}

// SystemPrompt returns the instructions sent with every request.
func (r *Registry) SystemPrompt() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.system
}

// Greeting returns the configured greeting.
func (r *Registry) Greeting() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.opt.Greeting
}

// acquire snapshots the request settings and leases the current source.
// The caller releases the lease.
func (r *Registry) acquire() (ai.Runtime, *lease, Options, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	r.cur.acquire()
	return r.rt, r.cur, r.opt, r.system
}

// query runs q against the current source.
func (r *Registry) query(ctx context.Context, q string) ([]stages.Row, error) {
	_, l, _, _ := r.acquire()
	defer l.release()
	return l.src.Query(ctx, q)
}
