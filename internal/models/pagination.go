package models

import (
	"fmt"
	"strings"
)

// Tab is a named filter preset on the list screens.
type Tab int

const (
	TabAll Tab = iota
	TabActive
	TabDeleted
	TabExpired
)

var tabNames = map[Tab]string{
	TabAll:     "all",
	TabActive:  "active",
	TabDeleted: "deleted",
	TabExpired: "expired",
}

// String returns the tab identifier used on the wire.
func (t Tab) String() string {
	if name, ok := tabNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tab(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t Tab) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tab) UnmarshalText(text []byte) error {
	parsed, err := ParseTab(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseTab accepts tab names ("deleted") and numeric tab keys ("2").
func ParseTab(raw string) (Tab, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	for tab, name := range tabNames {
		if value == name || value == fmt.Sprintf("%d", int(tab)) {
			return tab, nil
		}
	}
	if value == "inactive" {
		return TabExpired, nil
	}
	return TabAll, fmt.Errorf("unknown tab %q", raw)
}

// Filter is the query predicate derived from a tab and keyword.
type Filter struct {
	Keyword   string `json:"keyword"`
	IsDeleted bool   `json:"isDeleted"`
	IsActive  *bool  `json:"isActive,omitempty"`
}

// ListQuery is what a list screen sends to the backend.
type ListQuery struct {
	Filter
	PageNumber int    `json:"pageNumber"`
	PageSize   int    `json:"pageSize"`
	SortBy     string `json:"sortBy"`
	SortDir    string `json:"sortDir"`
}

// Pageable is the pageable block of a backend page.
type Pageable struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// Page is the paged result shape returned by the backend list endpoints.
type Page[T any] struct {
	Content       []T      `json:"content"`
	Pageable      Pageable `json:"pageable"`
	TotalPages    int      `json:"totalPages"`
	TotalElements int      `json:"totalElements"`
}

// Pagination is the pagination state exposed with every list view.
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	PageSize     int  `json:"pageSize"`
	TotalPages   int  `json:"totalPages"`
	TotalRecords int  `json:"totalRecords"`
	HasPrevious  bool `json:"hasPrevious"`
	HasNext      bool `json:"hasNext"`
}

// Action is a per-record operation offered on a list screen.
type Action string

const (
	ActionEditRoles       Action = "edit-roles"
	ActionToggleStatus    Action = "toggle-status"
	ActionSoftDelete      Action = "soft-delete"
	ActionRestore         Action = "restore"
	ActionPermanentDelete Action = "permanent-delete"
)
