package service

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"workitem-resolver-backend/internal/cache"
	"workitem-resolver-backend/internal/client"
	"workitem-resolver-backend/internal/config"
	apperrors "workitem-resolver-backend/internal/errors"
	"workitem-resolver-backend/internal/logger"
	"workitem-resolver-backend/internal/session"
)

// sessionBundle groups a session with the typed cache tiers and resolvers
// built over its store. Re-creation swaps the whole bundle; calls in flight
// against an old bundle complete against that bundle's caches.
type sessionBundle struct {
	sess  *session.Session
	items *cache.TierCache[WorkItem]
	icons *IconService
	enums *EnumerationService
}

// WorkItemService resolves short work item identifiers into fully hydrated
// items. It composes the session manager, enumeration resolvers and the
// icon fetcher, backed by the item cache tier, and owns the failure/restart
// policy.
type WorkItemService struct {
	cfg      *config.Config
	notifier *session.Notifier
	restart  *restartPolicy
	flight   singleflight.Group

	mu     sync.RWMutex
	bundle *sessionBundle
}

// NewWorkItemService creates the resolver with a fresh, uninitialized
// session. Call InitializeSession before resolving.
func NewWorkItemService(cfg *config.Config, notifier *session.Notifier) *WorkItemService {
	return &WorkItemService{
		cfg:      cfg,
		notifier: notifier,
		restart:  newRestartPolicy(cfg.RestartThreshold),
		bundle:   newSessionBundle(cfg, notifier),
	}
}

func newSessionBundle(cfg *config.Config, notifier *session.Notifier) *sessionBundle {
	sess := session.NewSession(cfg, notifier)
	ttl := cfg.RefreshInterval()
	icons := NewIconService(sess, ttl)

	return &sessionBundle{
		sess:  sess,
		items: cache.NewTierCache[WorkItem](sess.Store(), ttl),
		icons: icons,
		enums: NewEnumerationService(sess, icons, ttl),
	}
}

func (s *WorkItemService) currentBundle() *sessionBundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bundle
}

// InitializeSession establishes the current session (no retries)
func (s *WorkItemService) InitializeSession() error {
	return s.currentBundle().sess.Initialize()
}

// SessionInitialized reports whether the current session is usable
func (s *WorkItemService) SessionInitialized() bool {
	return s.currentBundle().sess.Initialized()
}

// ExceptionCount returns the consecutive transport exception count
func (s *WorkItemService) ExceptionCount() int {
	return s.restart.Count()
}

// NotificationBudget returns the remaining user-visible notification budget
func (s *WorkItemService) NotificationBudget() int {
	return s.currentBundle().sess.Reporter().Remaining()
}

// Resolve returns the hydrated work item for an identifier. Sentinel
// outcomes: ErrSessionNotReady when the session is dead (the cache is
// neither consulted nor mutated), ErrWorkItemNotFound for an absent item.
// Transport and auth failures never propagate; they are reported, counted
// where applicable, and degrade to the absent result.
func (s *WorkItemService) Resolve(itemID string) (*WorkItem, error) {
	if itemID == "" {
		return nil, apperrors.ErrMissingWorkItemID
	}

	b := s.currentBundle()
	if !b.sess.Initialized() {
		return nil, apperrors.ErrSessionNotReady
	}

	key := cache.WorkItemKey(itemID)
	if entry, ok := b.items.Lookup(key); ok {
		if !entry.Found {
			return nil, apperrors.ErrWorkItemNotFound
		}
		item := entry.Value
		return &item, nil
	}

	// Coalesce concurrent resolves for the same cold key into one fetch
	v, _, _ := s.flight.Do(key, func() (interface{}, error) {
		if entry, ok := b.items.Lookup(key); ok {
			if !entry.Found {
				return (*WorkItem)(nil), nil
			}
			item := entry.Value
			return &item, nil
		}
		return s.fetchAndCache(b, key, itemID), nil
	})

	item, _ := v.(*WorkItem)
	if item == nil {
		return nil, apperrors.ErrWorkItemNotFound
	}
	return item, nil
}

// fetchAndCache queries the service and stores the result, even an absent
// one, with a fresh timestamp. That unconditional store is what prevents
// repeated failed lookups from re-querying on every call within the
// refresh window.
func (s *WorkItemService) fetchAndCache(b *sessionBundle, key, itemID string) *WorkItem {
	polarion := b.sess.Client()
	if polarion == nil {
		return nil
	}

	var record *client.WorkItemRecord
	var err error
	if s.cfg.ProjectScope != "" {
		record, err = polarion.GetWorkItem(s.cfg.ProjectScope, itemID)
	} else {
		record, err = polarion.QueryWorkItem(itemID)
	}

	if err != nil {
		switch {
		case apperrors.IsNotFound(err):
			// Expected outcome, cached as absent without noise
			logger.New().WithField("workitem_id", itemID).Debug("Work item not found")
		case apperrors.IsAuthentication(err):
			// Not a transient condition: reported, never exception-counted
			b.sess.Reporter().Report(err)
		default:
			b.sess.Reporter().Report(err)
			b.items.StoreAbsent(key)
			if s.restart.RecordFailure() {
				s.recreateSession()
			}
			return nil
		}
		b.items.StoreAbsent(key)
		return nil
	}

	item := s.hydrate(b, record)
	b.items.StoreValue(key, *item)
	return item
}

// hydrate turns a normalized transport record into a display-ready item by
// delegating the raw enumeration ids to the enumeration resolvers.
func (s *WorkItemService) hydrate(b *sessionBundle, record *client.WorkItemRecord) *WorkItem {
	item := &WorkItem{
		ID:      record.ID,
		Title:   record.Title,
		Project: ProjectInfo{ID: record.ProjectID},
		Status:  StatusInfo{ID: record.StatusID},
		Type:    TypeInfo{ID: record.TypeID},
		Author:  AuthorInfo{ID: record.AuthorID},
	}

	if record.StatusID != "" {
		display := b.enums.StatusDisplay(record.ProjectID, record.TypeID, record.StatusID)
		item.Status.Name = display.Name
		item.Status.Color = display.Color
		item.Status.IconPath = display.IconPath
	}

	if record.TypeID != "" {
		display := b.enums.TypeDisplay(record.ProjectID, record.TypeID)
		item.Type.Name = display.Name
		item.Type.IconPath = display.IconPath
	}

	if record.AuthorID != "" {
		user := b.enums.UserDisplay(record.AuthorID)
		item.Author.Name = user.Name
		item.Author.Email = user.Email
		item.Author.Initials = user.Initials
	}

	if record.Description != "" {
		item.Description = &Description{Content: record.Description}
	}

	return item
}

// ResolveURL returns the public browser URL for an identifier
func (s *WorkItemService) ResolveURL(itemID string) (string, error) {
	item, err := s.Resolve(itemID)
	if err != nil {
		return "", err
	}

	polarion := s.currentBundle().sess.Client()
	if polarion == nil {
		return "", apperrors.ErrSessionNotReady
	}

	return polarion.ItemURL(item.Project.ID, item.ID), nil
}

// FetchAttachment resolves the item to learn its project, then downloads
// the attachment as base64
func (s *WorkItemService) FetchAttachment(itemID, attachmentID string) (string, error) {
	if attachmentID == "" {
		return "", apperrors.ErrMissingAttachmentID
	}

	item, err := s.Resolve(itemID)
	if err != nil {
		return "", err
	}

	payload, ok := s.currentBundle().icons.FetchAttachment(item.Project.ID, item.ID, attachmentID)
	if !ok {
		return "", apperrors.ErrAttachmentNotFound
	}

	return payload, nil
}

// ClearCache discards every cached entry of the current session
func (s *WorkItemService) ClearCache() error {
	return s.currentBundle().sess.Store().Clear()
}

// recreateSession replaces the session wholesale: new session, fresh
// caches, exception counter reset, notification budget replenished. The
// new session is initialized immediately; its outcome is observable through
// the connectivity events it publishes.
func (s *WorkItemService) recreateSession() {
	logger.New().Warn("Exception threshold exceeded, re-creating session")

	fresh := newSessionBundle(s.cfg, s.notifier)

	s.mu.Lock()
	s.bundle = fresh
	s.mu.Unlock()

	s.restart.Reset()

	if err := fresh.sess.Initialize(); err != nil {
		logger.New().WithError(err).Warn("Session re-creation failed to initialize")
	}
}
