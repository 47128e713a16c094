package client

import (
	"encoding/json"
	"fmt"
	"strings"
)

// WorkItemRecord is the canonical, normalized form of a work item response.
// The raw enumeration ids it carries (type, status, author) are resolved
// into display records by the enumeration resolvers.
type WorkItemRecord struct {
	ID          string
	Title       string
	TypeID      string
	StatusID    string
	AuthorID    string
	ProjectID   string
	Description string
}

// EnumOption is one entry of a status or type enumeration.
type EnumOption struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	IconURL string `json:"iconURL"`
}

// UserRecord is the normalized form of a user lookup response.
type UserRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Initials string `json:"initials"`
}

// The service answers in two recognized shapes: a flat record with scalar
// fields, and a JSON:API style record carrying "attributes" and
// "relationships". Both may arrive bare or wrapped in a "data" envelope
// (object or collection). Anything else is rejected at this boundary.

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type wireWorkItem struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Type          json.RawMessage    `json:"type"`
	Status        json.RawMessage    `json:"status"`
	Author        json.RawMessage    `json:"author"`
	Project       json.RawMessage    `json:"project"`
	Description   json.RawMessage    `json:"description"`
	Attributes    *wireAttributes    `json:"attributes"`
	Relationships *wireRelationships `json:"relationships"`
}

type wireAttributes struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	Description json.RawMessage `json:"description"`
}

type wireRelationships struct {
	Author  wireRelationship `json:"author"`
	Project wireRelationship `json:"project"`
}

type wireRelationship struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// parseWorkItemResponse normalizes a work item response body. A nil record
// with nil error means the service answered with an empty collection.
func parseWorkItemResponse(body []byte) (*WorkItemRecord, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	raw := env.Data
	if len(raw) == 0 {
		// No envelope at all; treat the body as a bare record
		raw = body
	}

	if isJSONArray(raw) {
		var records []json.RawMessage
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("failed to decode collection: %w", err)
		}
		if len(records) == 0 {
			return nil, nil
		}
		// First match wins
		raw = records[0]
	}

	return normalizeWorkItem(raw)
}

func normalizeWorkItem(raw json.RawMessage) (*WorkItemRecord, error) {
	var item wireWorkItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to decode work item record: %w", err)
	}

	if item.Attributes != nil {
		return normalizeNested(&item)
	}

	return normalizeFlat(&item)
}

func normalizeNested(item *wireWorkItem) (*WorkItemRecord, error) {
	attrs := item.Attributes

	record := &WorkItemRecord{
		ID:          attrs.ID,
		Title:       attrs.Title,
		TypeID:      attrs.Type,
		StatusID:    attrs.Status,
		Description: descriptionContent(attrs.Description),
	}

	// JSON:API records carry a composite "project/item" top-level id
	if record.ID == "" {
		if idx := strings.LastIndex(item.ID, "/"); idx >= 0 {
			record.ID = item.ID[idx+1:]
		} else {
			record.ID = item.ID
		}
	}

	if item.Relationships != nil {
		record.AuthorID = item.Relationships.Author.Data.ID
		record.ProjectID = item.Relationships.Project.Data.ID
	}

	if record.ID == "" {
		return nil, fmt.Errorf("unrecognized work item response shape: nested record without id")
	}

	return record, nil
}

func normalizeFlat(item *wireWorkItem) (*WorkItemRecord, error) {
	if item.ID == "" {
		return nil, fmt.Errorf("unrecognized work item response shape: no id and no attributes")
	}

	return &WorkItemRecord{
		ID:          item.ID,
		Title:       item.Title,
		TypeID:      scalarOrID(item.Type),
		StatusID:    scalarOrID(item.Status),
		AuthorID:    scalarOrID(item.Author),
		ProjectID:   scalarOrID(item.Project),
		Description: descriptionContent(item.Description),
	}, nil
}

// scalarOrID extracts an identifier that may arrive as a bare string, an
// {"id": ...} object, or a JSON:API {"data": {"id": ...}} relationship.
func scalarOrID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		ID   string `json:"id"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.ID != "" {
			return obj.ID
		}
		return obj.Data.ID
	}

	return ""
}

// descriptionContent extracts description text that may arrive as a bare
// string, {"content": ...} or the service's {"type", "value"} rich-text form.
func descriptionContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var obj struct {
		Content string `json:"content"`
		Value   string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Content != "" {
			return obj.Content
		}
		return obj.Value
	}

	return ""
}

// parseEnumOptions normalizes an enumeration response. Options arrive
// either as a "data" collection (flat or with "attributes"), or embedded in
// a single enumeration record under attributes.options.
func parseEnumOptions(body []byte) ([]EnumOption, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	raw := env.Data
	if len(raw) == 0 {
		raw = body
	}

	if isJSONArray(raw) {
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("failed to decode options collection: %w", err)
		}

		options := make([]EnumOption, 0, len(entries))
		for _, entry := range entries {
			option, err := normalizeEnumOption(entry)
			if err != nil {
				return nil, err
			}
			options = append(options, option)
		}
		return options, nil
	}

	var record struct {
		Attributes struct {
			Options []EnumOption `json:"options"`
		} `json:"attributes"`
		Options []EnumOption `json:"options"`
	}
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("unrecognized enumeration response shape: %w", err)
	}

	if len(record.Attributes.Options) > 0 {
		return record.Attributes.Options, nil
	}
	return record.Options, nil
}

func normalizeEnumOption(raw json.RawMessage) (EnumOption, error) {
	var nested struct {
		ID         string      `json:"id"`
		Attributes *EnumOption `json:"attributes"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil {
		return EnumOption{}, fmt.Errorf("failed to decode enumeration option: %w", err)
	}

	if nested.Attributes != nil {
		option := *nested.Attributes
		if option.ID == "" {
			option.ID = nested.ID
		}
		return option, nil
	}

	var flat EnumOption
	if err := json.Unmarshal(raw, &flat); err != nil {
		return EnumOption{}, fmt.Errorf("failed to decode enumeration option: %w", err)
	}
	return flat, nil
}

// parseUserResponse normalizes a user lookup response (flat or nested).
func parseUserResponse(body []byte) (*UserRecord, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	raw := env.Data
	if len(raw) == 0 {
		raw = body
	}

	var nested struct {
		ID         string      `json:"id"`
		Attributes *UserRecord `json:"attributes"`
	}
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("failed to decode user record: %w", err)
	}

	if nested.Attributes != nil {
		user := *nested.Attributes
		if user.ID == "" {
			user.ID = nested.ID
		}
		return &user, nil
	}

	var flat UserRecord
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("failed to decode user record: %w", err)
	}
	if flat.ID == "" {
		return nil, fmt.Errorf("unrecognized user response shape: no id")
	}
	return &flat, nil
}

func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}
