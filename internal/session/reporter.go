package session

import (
	"sync"

	apperrors "workitem-resolver-backend/internal/errors"
	"workitem-resolver-backend/internal/logger"
)

// Reporter records resolver errors. Every error goes to the log sink; a
// bounded budget of important ones additionally surfaces as user-visible
// notifications so cascading failures do not flood the user. The budget is
// a plain decrementing counter, not per error kind, and is replenished by
// creating a fresh reporter on session re-creation.
type Reporter struct {
	mu       sync.Mutex
	budget   int
	notifier *Notifier
}

// NewReporter creates a reporter with the given notification budget
func NewReporter(budget int, notifier *Notifier) *Reporter {
	return &Reporter{
		budget:   budget,
		notifier: notifier,
	}
}

// Report logs err and, while the budget lasts, surfaces important errors as
// notifications. Not-found results are silent: they are expected and cached.
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}

	if apperrors.IsNotFound(err) {
		logger.New().WithError(err).Debug("Lookup returned no result")
		return
	}

	entry := logger.New().WithError(err)
	switch {
	case apperrors.IsConfiguration(err):
		entry.Error("Configuration error")
	case apperrors.IsAuthentication(err):
		entry.Error("Authentication error")
	case apperrors.IsTransport(err):
		entry.Warn("Transport error")
	default:
		entry.Error("Resolver error")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.budget <= 0 {
		return
	}
	r.budget--

	r.notifier.PublishNotification(err.Error())
}

// Remaining returns the notification budget left
func (r *Reporter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.budget
}
