package models

// RoleChangeAction selects how a role change is applied by the backend.
type RoleChangeAction string

const (
	RoleChangeReplace RoleChangeAction = "REPLACE"
	RoleChangeAssign  RoleChangeAction = "ASSIGN"
	RoleChangeRemove  RoleChangeAction = "REMOVE"
)

// RoleChangeRequest is the payload of the role endpoints.
type RoleChangeRequest struct {
	UserID  int64            `json:"userId"`
	RoleIDs []int64          `json:"roleIds"`
	Action  RoleChangeAction `json:"action"`
}
