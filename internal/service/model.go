package service

// WorkItem is a fully hydrated work item. Instances are immutable once
// constructed; a refresh replaces the cached value wholesale.
type WorkItem struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Type        TypeInfo     `json:"type"`
	Author      AuthorInfo   `json:"author"`
	Status      StatusInfo   `json:"status"`
	Description *Description `json:"description,omitempty"`
	Project     ProjectInfo  `json:"project"`
}

// TypeInfo describes the work item's type with resolved display data
type TypeInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	IconPath string `json:"iconPath,omitempty"`
}

// StatusInfo describes the work item's status with resolved display data
type StatusInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Color    string `json:"color,omitempty"`
	IconPath string `json:"iconPath,omitempty"`
}

// AuthorInfo describes the work item's author
type AuthorInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Initials string `json:"initials,omitempty"`
}

// Description carries the item's description content
type Description struct {
	Content string `json:"content"`
}

// ProjectInfo identifies the project a work item belongs to
type ProjectInfo struct {
	ID string `json:"id"`
}

// EnumDisplay is a display-friendly record for one enumeration entry
// (status or type). IconPath is a data URI when the option's icon could be
// resolved.
type EnumDisplay struct {
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	IconPath string `json:"iconPath,omitempty"`
}

// UserDisplay is a display-friendly record for a user id
type UserDisplay struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Initials string `json:"initials,omitempty"`
}
