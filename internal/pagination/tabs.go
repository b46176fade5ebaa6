package pagination

import "github.com/noah-isme/admin-console/internal/models"

// FilterForTab derives the query predicate for a tab. It is a pure function.
//
//	All      isDeleted=false  isActive absent
//	Active   isDeleted=false  isActive=true
//	Deleted  isDeleted=true   isActive absent
//	Expired  isDeleted=false  isActive=false
func FilterForTab(tab models.Tab, keyword string) models.Filter {
	filter := models.Filter{Keyword: keyword}
	switch tab {
	case models.TabActive:
		filter.IsActive = boolPtr(true)
	case models.TabDeleted:
		filter.IsDeleted = true
	case models.TabExpired:
		filter.IsActive = boolPtr(false)
	}
	return filter
}

var tabActions = map[models.Tab][]models.Action{
	models.TabAll:     {models.ActionEditRoles, models.ActionToggleStatus, models.ActionSoftDelete},
	models.TabActive:  {models.ActionEditRoles, models.ActionSoftDelete},
	models.TabDeleted: {models.ActionRestore, models.ActionPermanentDelete},
	models.TabExpired: {models.ActionToggleStatus},
}

// ActionsForTab returns the per-record actions offered on a tab.
func ActionsForTab(tab models.Tab) []models.Action {
	actions := tabActions[tab]
	out := make([]models.Action, len(actions))
	copy(out, actions)
	return out
}

// ActionAllowed reports whether the action is offered on the tab.
func ActionAllowed(tab models.Tab, action models.Action) bool {
	for _, a := range tabActions[tab] {
		if a == action {
			return true
		}
	}
	return false
}

func boolPtr(v bool) *bool {
	return &v
}
