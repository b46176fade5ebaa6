package models

// Session is the console-side authentication state of one browser.
type Session struct {
	ID              string   `json:"-"`
	IsAuthenticated bool     `json:"isAuthenticated"`
	Token           string   `json:"-"`
	User            *Account `json:"user"`
}

// AnonymousSession returns an unauthenticated session bound to the console session id.
func AnonymousSession(id string) *Session {
	return &Session{ID: id}
}

// HasRole reports whether the session user holds the role.
func (s *Session) HasRole(name RoleName) bool {
	if s == nil || !s.IsAuthenticated {
		return false
	}
	return s.User.HasRole(name)
}

// UserID returns the authenticated user id or zero.
func (s *Session) UserID() int64 {
	if s == nil || s.User == nil {
		return 0
	}
	return s.User.ID
}
