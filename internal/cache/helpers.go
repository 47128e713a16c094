package cache

import (
	"strings"
)

// CacheKeyBuilder helps construct consistent cache keys
type CacheKeyBuilder struct {
	namespace string
	parts     []string
}

// NewCacheKeyBuilder creates a new key builder with a namespace
func NewCacheKeyBuilder(namespace string) *CacheKeyBuilder {
	return &CacheKeyBuilder{
		namespace: namespace,
		parts:     make([]string, 0),
	}
}

// Add adds a part to the cache key
func (b *CacheKeyBuilder) Add(part string) *CacheKeyBuilder {
	b.parts = append(b.parts, part)
	return b
}

// Build constructs the final cache key
func (b *CacheKeyBuilder) Build() string {
	if b.namespace == "" {
		return strings.Join(b.parts, ":")
	}
	return b.namespace + ":" + strings.Join(b.parts, ":")
}

// WorkItemKey generates a cache key for a work item lookup
func WorkItemKey(itemID string) string {
	return NewCacheKeyBuilder("workitem").Add(itemID).Build()
}

// AttachmentKey generates a cache key for an attachment download
func AttachmentKey(itemID, attachmentID string) string {
	return NewCacheKeyBuilder("attachment").Add(itemID).Add(attachmentID).Build()
}

// StatusEnumKey generates a cache key for a status enumeration scope
func StatusEnumKey(projectID, typeID string) string {
	return NewCacheKeyBuilder("status").Add(projectID).Add(typeID).Build()
}

// TypeEnumKey generates a cache key for a project's type enumeration
func TypeEnumKey(projectID string) string {
	return NewCacheKeyBuilder("type").Add(projectID).Build()
}

// IconKey generates a cache key for an icon download
func IconKey(iconURL string) string {
	return NewCacheKeyBuilder("icon").Add(iconURL).Build()
}

// UserKey generates a cache key for a user lookup
func UserKey(userID string) string {
	return NewCacheKeyBuilder("user").Add(userID).Build()
}
