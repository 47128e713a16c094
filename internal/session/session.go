package session

import (
	"encoding/base64"
	"sync"

	"workitem-resolver-backend/internal/cache"
	"workitem-resolver-backend/internal/client"
	"workitem-resolver-backend/internal/config"
	apperrors "workitem-resolver-backend/internal/errors"
	"workitem-resolver-backend/internal/logger"
)

// Session is the authenticated, connectivity-verified context under which
// all resolver operations execute. It owns the cache store: session
// re-creation produces a whole new Session with empty caches, never a merge
// into the old one. Calls already in flight against an old session finish
// against that session's store.
type Session struct {
	cfg      *config.Config
	notifier *Notifier
	reporter *Reporter
	store    cache.CacheService

	mu          sync.RWMutex
	client      *client.PolarionClient
	initialized bool
}

// NewSession builds a session with empty caches. The session is unusable
// for lookups until Initialize succeeds.
func NewSession(cfg *config.Config, notifier *Notifier) *Session {
	return &Session{
		cfg:      cfg,
		notifier: notifier,
		reporter: NewReporter(cfg.NotificationBudget, notifier),
		store:    cache.NewInMemoryCache(cfg.RefreshInterval(), cache.DefaultCacheConfig().CleanupInterval),
	}
}

// Initialize resolves authentication material, builds the transport client
// and verifies connectivity with a lightweight probe. It performs no
// retries; callers decide whether to re-invoke. Every outcome emits a
// connectivity-changed event.
func (s *Session) Initialize() error {
	if err := s.initialize(); err != nil {
		s.setInitialized(false)
		s.reporter.Report(err)
		s.notifier.PublishConnectivity(false)
		return err
	}

	s.setInitialized(true)
	s.notifier.PublishConnectivity(true)
	logger.New().WithField("service_url", s.cfg.ServiceURL).Info("Session initialized")
	return nil
}

func (s *Session) initialize() error {
	if s.cfg.ServiceURL == "" {
		return apperrors.ErrServiceURLMissing
	}

	header, err := s.authorizationHeader()
	if err != nil {
		// Configuration failure, surfaced before any network call
		return err
	}

	polarion := client.NewPolarionClient(s.cfg.ServiceURL, header, s.cfg.RequestTimeout())
	if err := polarion.Probe(); err != nil {
		return err
	}

	s.mu.Lock()
	s.client = polarion
	s.mu.Unlock()

	return nil
}

// authorizationHeader resolves the Authorization header value. Token mode
// requires a token and fails loudly on an empty one. Basic credentials take
// precedence otherwise; a configured token still serves as fallback so a
// partially configured environment can connect.
func (s *Session) authorizationHeader() (string, error) {
	if s.cfg.TokenAuth() {
		if s.cfg.Token == "" {
			return "", apperrors.ErrTokenMissing
		}
		return "Bearer " + s.cfg.Token, nil
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(s.cfg.Username + ":" + s.cfg.Password))
		return "Basic " + credentials, nil
	}

	if s.cfg.Token != "" {
		return "Bearer " + s.cfg.Token, nil
	}

	return "", apperrors.ErrCredentialsMissing
}

// Initialized reports whether the session passed its connectivity probe
func (s *Session) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

func (s *Session) setInitialized(v bool) {
	s.mu.Lock()
	s.initialized = v
	s.mu.Unlock()
}

// Client returns the transport client. Nil until Initialize has succeeded
// at least once.
func (s *Session) Client() *client.PolarionClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// Store returns the session's cache store
func (s *Session) Store() cache.CacheService {
	return s.store
}

// Reporter returns the session's error reporter
func (s *Session) Reporter() *Reporter {
	return s.reporter
}

// Config returns the configuration the session was built with
func (s *Session) Config() *config.Config {
	return s.cfg
}
