// Package chat lets users question and filter the dashboard data in plain
// language. Each session keeps its own history and filtered dataset; filters
// are SQL queries produced by the model and run against the data source.
package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/tdfdash/internal/ai"
	"github.com/KaramelBytes/tdfdash/internal/source"
	"github.com/KaramelBytes/tdfdash/internal/stages"
	"github.com/KaramelBytes/tdfdash/internal/utils"
)

// DefaultHistoryBudget caps the estimated tokens of history sent per turn.
const DefaultHistoryBudget = 6000

// Options configures sessions created by a Registry.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
	// HistoryBudget bounds the history tokens per request; 0 means DefaultHistoryBudget.
	HistoryBudget   int
	Greeting        string
	DataDescription string
	// Summary is optional dataset context appended to the system prompt.
	Summary string
	// SummaryBudget bounds the summary tokens; 0 means DefaultSummaryBudget.
	SummaryBudget int
}

// Reply is the outcome of one question.
type Reply struct {
	Text string `json:"text"`
	// SQL is the filter the model proposed, if any.
	SQL string `json:"sql,omitempty"`
	// QueryError is set when SQL could not be applied; the dataset is unchanged.
	QueryError string `json:"query_error,omitempty"`
	Rows       int    `json:"rows"`
	Filtered   bool   `json:"filtered"`
	RequestID  string `json:"request_id,omitempty"`
}

// Session is one conversation with its current view of the data.
// It is safe for concurrent use.
type Session struct {
	ID      string
	Created time.Time

	reg     *Registry
	mu      sync.Mutex
	history []ai.Message
	rows    []stages.Row
	filter  string
	// epoch changes on Reset so answers to earlier questions are discarded.
	epoch int
}

// Greeting returns the text to show before the first question.
func (s *Session) Greeting() string { return s.reg.Greeting() }

// Rows returns the session's current dataset.
func (s *Session) Rows() []stages.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter == "" {
		return s.reg.Base()
	}
	return s.rows
}

// Filter returns the SQL currently applied, or "".
func (s *Session) Filter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// History returns a copy of the conversation so far.
func (s *Session) History() []ai.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ai.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Reset drops the filter and the conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.rows = nil
	s.filter = ""
	s.epoch++
}

// Ask sends question with the session history. A SQL block in the answer is
// run against the source and, on success, becomes the session's dataset.
func (s *Session) Ask(ctx context.Context, question string) (*Reply, error) {
	return s.ask(ctx, question, nil)
}

// AskStream is Ask with the answer passed to onDelta as it arrives. Runtimes
// without streaming deliver the whole answer in one call.
func (s *Session) AskStream(ctx context.Context, question string, onDelta func(string)) (*Reply, error) {
	if onDelta == nil {
		onDelta = func(string) {}
	}
	return s.ask(ctx, question, onDelta)
}

// ask holds the session lock only to snapshot and to commit, so readers of
// the dataset are not blocked while the model answers.
func (s *Session) ask(ctx context.Context, question string, onDelta func(string)) (*Reply, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question is empty")
	}
	rt, l, opt, system := s.reg.acquire()
	defer l.release()

	turn := ai.Message{Role: ai.RoleUser, Content: question}
	s.mu.Lock()
	epoch := s.epoch
	history := make([]ai.Message, len(s.history), len(s.history)+1)
	copy(history, s.history)
	s.mu.Unlock()
	history = append(history, turn)

	req := ai.GenerateRequest{
		Model:       opt.Model,
		Messages:    requestMessages(system, history, opt.HistoryBudget),
		MaxTokens:   opt.MaxTokens,
		Temperature: opt.Temperature,
	}
	text, requestID, err := generate(ctx, rt, req, onDelta)
	if err != nil {
		return nil, fmt.Errorf("chat: %w", err)
	}

	reply := &Reply{Text: text, SQL: ExtractSQL(text), RequestID: requestID}
	var rows []stages.Row
	if reply.SQL != "" {
		rows, err = l.src.Query(ctx, reply.SQL)
		if err == nil && l.isRetired() {
			// the data was reloaded while the model answered
			rows, err = s.reg.query(ctx, reply.SQL)
		}
		if err != nil {
			reply.QueryError = err.Error()
			logrus.WithFields(logrus.Fields{"session": s.ID, "sql": reply.SQL}).Warnf("filter rejected: %v", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch == epoch {
		s.history = append(s.history, turn, ai.Message{Role: ai.RoleAssistant, Content: text})
		if reply.SQL != "" && reply.QueryError == "" {
			s.rows, s.filter = rows, reply.SQL
			logrus.WithFields(logrus.Fields{"session": s.ID, "rows": len(rows)}).Debug("filter applied")
		}
	}
	reply.Filtered = s.filter != ""
	if reply.Filtered {
		reply.Rows = len(s.rows)
	} else {
		reply.Rows = len(s.reg.Base())
	}
	return reply, nil
}

// generate returns the full answer text and the provider request id.
func generate(ctx context.Context, rt ai.Runtime, req ai.GenerateRequest, onDelta func(string)) (string, string, error) {
	if onDelta != nil {
		if sr, ok := rt.(ai.StreamRuntime); ok {
			var sb strings.Builder
			err := sr.GenerateStream(ctx, req, func(d string) {
				sb.WriteString(d)
				onDelta(d)
			})
			return sb.String(), "", err
		}
	}
	resp, err := rt.Generate(ctx, req)
	if err != nil {
		return "", "", err
	}
	text := resp.Text()
	if onDelta != nil {
		onDelta(text)
	}
	return text, resp.RequestID, nil
}

// requestMessages returns the system prompt plus the newest history that
// fits budget.
func requestMessages(system string, history []ai.Message, budget int) []ai.Message {
	if budget <= 0 {
		budget = DefaultHistoryBudget
	}
	texts := make([]string, len(history))
	for i, m := range history {
		texts[i] = m.Content
	}
	start := utils.KeepNewest(texts, budget)
	out := make([]ai.Message, 0, len(history)-start+1)
	out = append(out, ai.Message{Role: ai.RoleSystem, Content: system})
	return append(out, history[start:]...)
}

// refilter reruns the session filter against src after the data changed.
func (s *Session) refilter(ctx context.Context, src source.Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter == "" {
		return
	}
	rows, err := src.Query(ctx, s.filter)
	if err != nil {
		logrus.WithField("session", s.ID).Warnf("dropping filter after reload: %v", err)
		s.rows, s.filter = nil, ""
		return
	}
	s.rows = rows
}
