package service

import (
	"time"

	"workitem-resolver-backend/internal/cache"
	"workitem-resolver-backend/internal/logger"
	"workitem-resolver-backend/internal/session"
)

// EnumerationService translates raw status/type/user identifiers into
// display-friendly records via secondary endpoints, cached per scope. All
// three sub-resolvers apply the same lookup-or-fallback rule: an id with no
// enumeration entry comes back as {Name: id} rather than failing.
type EnumerationService struct {
	sess     *session.Session
	icons    *IconService
	statuses *cache.TierCache[map[string]EnumDisplay]
	types    *cache.TierCache[map[string]EnumDisplay]
	users    *cache.TierCache[UserDisplay]
}

// NewEnumerationService creates the enumeration resolvers over the
// session's store
func NewEnumerationService(sess *session.Session, icons *IconService, ttl time.Duration) *EnumerationService {
	return &EnumerationService{
		sess:     sess,
		icons:    icons,
		statuses: cache.NewTierCache[map[string]EnumDisplay](sess.Store(), ttl),
		types:    cache.NewTierCache[map[string]EnumDisplay](sess.Store(), ttl),
		users:    cache.NewTierCache[UserDisplay](sess.Store(), ttl),
	}
}

// StatusDisplay resolves a status id for the (project, type) scope
func (s *EnumerationService) StatusDisplay(projectID, typeID, statusID string) EnumDisplay {
	if statusID == "" {
		return EnumDisplay{}
	}
	if projectID == "" || typeID == "" {
		return EnumDisplay{Name: statusID}
	}

	mapping := s.statusMapping(projectID, typeID)
	if display, ok := mapping[statusID]; ok {
		return display
	}
	return EnumDisplay{Name: statusID}
}

// TypeDisplay resolves a type id for the project scope
func (s *EnumerationService) TypeDisplay(projectID, typeID string) EnumDisplay {
	if typeID == "" {
		return EnumDisplay{}
	}
	if projectID == "" {
		return EnumDisplay{Name: typeID}
	}

	mapping := s.typeMapping(projectID)
	if display, ok := mapping[typeID]; ok {
		return display
	}
	return EnumDisplay{Name: typeID}
}

// UserDisplay resolves a user id into display data. On failure or missing
// data the raw id is cached as a conservative fallback.
func (s *EnumerationService) UserDisplay(userID string) UserDisplay {
	if userID == "" {
		return UserDisplay{}
	}

	key := cache.UserKey(userID)
	if entry, ok := s.users.Lookup(key); ok && entry.Found {
		return entry.Value
	}

	display := UserDisplay{Name: userID}

	polarion := s.sess.Client()
	if polarion == nil {
		return display
	}

	user, err := polarion.GetUser(userID)
	if err != nil {
		logger.New().WithField("user_id", userID).WithError(err).Warn("Failed to fetch user")
	} else if user.Name != "" {
		display = UserDisplay{Name: user.Name, Email: user.Email, Initials: user.Initials}
	}

	s.users.StoreValue(key, display)
	return display
}

// statusMapping returns the status id -> display mapping for the scope,
// fetching and caching it on first demand. A failed fetch caches an empty
// mapping (still timestamped) so repeated requests within the refresh
// window do not hammer the endpoint.
func (s *EnumerationService) statusMapping(projectID, typeID string) map[string]EnumDisplay {
	key := cache.StatusEnumKey(projectID, typeID)
	if entry, ok := s.statuses.Lookup(key); ok && entry.Found {
		return entry.Value
	}

	mapping := make(map[string]EnumDisplay)

	polarion := s.sess.Client()
	if polarion == nil {
		return mapping
	}

	options, err := polarion.GetStatusOptions(projectID, typeID)
	if err != nil {
		logger.New().
			WithField("project_id", projectID).
			WithField("type_id", typeID).
			WithError(err).
			Warn("Failed to fetch status options")
	} else {
		for _, option := range options {
			display := EnumDisplay{Name: option.Name, Color: option.Color}
			if option.IconURL != "" {
				if dataURI, ok := s.icons.FetchIcon(option.IconURL); ok {
					display.IconPath = dataURI
				}
			}
			mapping[option.ID] = display
		}
	}

	s.statuses.StoreValue(key, mapping)
	return mapping
}

// typeMapping returns the type id -> display mapping for the project,
// following the same fetch-and-cache pattern as statusMapping.
func (s *EnumerationService) typeMapping(projectID string) map[string]EnumDisplay {
	key := cache.TypeEnumKey(projectID)
	if entry, ok := s.types.Lookup(key); ok && entry.Found {
		return entry.Value
	}

	mapping := make(map[string]EnumDisplay)

	polarion := s.sess.Client()
	if polarion == nil {
		return mapping
	}

	options, err := polarion.GetTypeOptions(projectID)
	if err != nil {
		logger.New().WithField("project_id", projectID).WithError(err).Warn("Failed to fetch type enumeration")
	} else {
		for _, option := range options {
			display := EnumDisplay{Name: option.Name}
			if option.IconURL != "" {
				if dataURI, ok := s.icons.FetchIcon(option.IconURL); ok {
					display.IconPath = dataURI
				}
			}
			mapping[option.ID] = display
		}
	}

	s.types.StoreValue(key, mapping)
	return mapping
}
