package models

import "sort"

// RoleName is a backend role identifier such as ROLE_ADMIN.
type RoleName string

const (
	RoleAdmin     RoleName = "ROLE_ADMIN"
	RoleNormal    RoleName = "ROLE_NORMAL"
	RoleWorker    RoleName = "ROLE_WORKER"
	RoleSuperUser RoleName = "ROLE_SUPER_USER"
)

// Role is a backend role as returned by the role catalog and on accounts.
type Role struct {
	ID   int64    `json:"id"`
	Name RoleName `json:"name"`
}

// AccountStatus carries the activation flag of an account.
type AccountStatus struct {
	IsActive bool `json:"isActive"`
}

// Account is a user or worker record owned by the backend.
type Account struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Username      string         `json:"username"`
	Roles         []Role         `json:"roles"`
	AccountStatus *AccountStatus `json:"accountStatus,omitempty"`
	IsDeleted     bool           `json:"isDeleted"`
	ImageName     string         `json:"imageName,omitempty"`
}

// RecordID implements pagination.Record.
func (a Account) RecordID() int64 {
	return a.ID
}

// Active reports the account status; a missing status counts as inactive.
func (a Account) Active() bool {
	return a.AccountStatus != nil && a.AccountStatus.IsActive
}

// HasRole reports whether the account holds the role.
func (a *Account) HasRole(name RoleName) bool {
	if a == nil {
		return false
	}
	for _, r := range a.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the account holds at least one of the roles.
func (a *Account) HasAnyRole(names ...RoleName) bool {
	for _, name := range names {
		if a.HasRole(name) {
			return true
		}
	}
	return false
}

// RoleIDs returns the ids of the account roles in ascending order.
func (a *Account) RoleIDs() []int64 {
	if a == nil {
		return nil
	}
	ids := make([]int64, 0, len(a.Roles))
	for _, r := range a.Roles {
		ids = append(ids, r.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
