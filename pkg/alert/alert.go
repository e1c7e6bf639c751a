package alert

import (
	"context"
	"errors"
	"fmt"
)

// Notification is the data sent to alert destinations when a tracked
// blog/keyword pair moves.
type Notification struct {
	BlogID         string `json:"blog_id"`
	Keyword        string `json:"keyword"`
	ProbabilityMid int    `json:"probability_mid"`
	PreviousMid    int    `json:"previous_mid"`
	RankBest       int    `json:"rank_best"`
	RankWorst      int    `json:"rank_worst"`
	Difficulty     string `json:"difficulty"`
	Message        string `json:"message"`
}

// Delta returns the signed probability movement since the last analysis.
func (n *Notification) Delta() int {
	return n.ProbabilityMid - n.PreviousMid
}

// Notifier delivers alerts to a specific destination.
type Notifier interface {
	Name() string
	Send(ctx context.Context, n *Notification) error
}

// Manager broadcasts notifications to all registered notifiers.
type Manager struct {
	notifiers []Notifier
}

// NewManager creates a new alert manager.
func NewManager(notifiers []Notifier) *Manager {
	return &Manager{notifiers: notifiers}
}

// HasNotifiers returns true if at least one notifier is configured.
func (m *Manager) HasNotifiers() bool {
	return len(m.notifiers) > 0
}

// Broadcast sends a notification to all registered notifiers.
func (m *Manager) Broadcast(ctx context.Context, n *Notification) error {
	var errs []error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", notifier.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func direction(delta int) string {
	if delta >= 0 {
		return "up"
	}
	return "down"
}

// Summary renders the one-line movement description used as the default
// notification message.
func Summary(n *Notification) string {
	return fmt.Sprintf("%s / %q: ranking probability %s %d points to %d%% (expected position %d-%d, difficulty %s)",
		n.BlogID, n.Keyword, direction(n.Delta()), abs(n.Delta()), n.ProbabilityMid,
		n.RankBest, n.RankWorst, n.Difficulty)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
