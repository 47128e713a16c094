package service

import (
	"encoding/base64"
	"path"
	"strings"
	"time"

	"workitem-resolver-backend/internal/cache"
	"workitem-resolver-backend/internal/logger"
	"workitem-resolver-backend/internal/session"
)

// IconService downloads binary resources (status icons, type icons, work
// item attachments), base64-encodes them and caches by resource key.
// Failures are logged and degrade to absent; nothing propagates to callers.
type IconService struct {
	sess        *session.Session
	icons       *cache.TierCache[string]
	attachments *cache.TierCache[string]
}

// NewIconService creates an icon/attachment fetcher over the session's store
func NewIconService(sess *session.Session, ttl time.Duration) *IconService {
	return &IconService{
		sess:        sess,
		icons:       cache.NewTierCache[string](sess.Store(), ttl),
		attachments: cache.NewTierCache[string](sess.Store(), ttl),
	}
}

// FetchIcon resolves an icon URL into a data URI, cache-first by URL.
// The second return value is false when the icon is unavailable; failed
// downloads are cached as absent so they are not retried within the
// refresh window.
func (s *IconService) FetchIcon(iconURL string) (string, bool) {
	if iconURL == "" {
		return "", false
	}

	key := cache.IconKey(iconURL)
	if entry, ok := s.icons.Lookup(key); ok {
		return entry.Value, entry.Found
	}

	polarion := s.sess.Client()
	if polarion == nil {
		return "", false
	}

	data, err := polarion.DownloadBinary(iconURL)
	if err != nil {
		logger.New().WithField("icon_url", iconURL).WithError(err).Warn("Failed to download icon")
		s.icons.StoreAbsent(key)
		return "", false
	}

	dataURI := "data:" + mimeTypeForIcon(iconURL) + ";base64," + base64.StdEncoding.EncodeToString(data)
	s.icons.StoreValue(key, dataURI)

	return dataURI, true
}

// FetchAttachment downloads a work item attachment through the
// project-scoped endpoint and returns its base64 payload, cache-first by
// (workitemId, attachmentId).
func (s *IconService) FetchAttachment(projectID, itemID, attachmentID string) (string, bool) {
	key := cache.AttachmentKey(itemID, attachmentID)
	if entry, ok := s.attachments.Lookup(key); ok {
		return entry.Value, entry.Found
	}

	polarion := s.sess.Client()
	if polarion == nil {
		return "", false
	}

	data, err := polarion.DownloadAttachment(projectID, itemID, attachmentID)
	if err != nil {
		logger.New().
			WithField("workitem_id", itemID).
			WithField("attachment_id", attachmentID).
			WithError(err).
			Warn("Failed to download attachment")
		s.attachments.StoreAbsent(key)
		return "", false
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	s.attachments.StoreValue(key, encoded)

	return encoded, true
}

// mimeTypeForIcon infers the MIME type from the URL's file extension.
// Unknown extensions default to PNG.
func mimeTypeForIcon(iconURL string) string {
	trimmed := iconURL
	if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
		trimmed = trimmed[:idx]
	}

	switch strings.ToLower(strings.TrimPrefix(path.Ext(trimmed), ".")) {
	case "gif":
		return "image/gif"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "svg":
		return "image/svg+xml"
	default:
		return "image/png"
	}
}
