package domain

import (
	"time"

	"chat_sync_service/pkg/encrypt"
)

// MemberStatus marks whether a member may sign in
type MemberStatus int

const (
	// MemberStatusOffLine registered, not signed in
	MemberStatusOffLine MemberStatus = iota
	// MemberStatusOnLine holds an active session
	MemberStatusOnLine
	// MemberStatusBan blocked from signing in
	MemberStatusBan
	// MemberStatusDelete soft-deleted account
	MemberStatusDelete
)

// Member is one registered chat user
type Member struct {
	ID       int64
	MemberID string
	Email    string
	Nickname string
	Password string
	Status   MemberStatus
}

// MemberSession is the redis-backed login session
type MemberSession struct {
	Token        string    `json:"Token"`
	MemberID     string    `json:"MemberID"`
	CreatedAt    time.Time `json:"CreatedAt"`
	LastActivity time.Time `json:"LastActivity"`
	ExpiredAt    time.Time `json:"ExpiredAt"`
}

// IsPasswordMatch verifies the plain password against the stored hash
func (m *Member) IsPasswordMatch(inputPwd string) error {
	return encrypt.ComparePassword(m.Password, inputPwd)
}

// IsExpired reports whether the session passed its deadline
func (s *MemberSession) IsExpired() bool {
	return time.Now().After(s.ExpiredAt)
}

// MemberQuery combines lookup conditions, nil fields are skipped
type MemberQuery struct {
	ID       *int64  `db:"id"`
	MemberID *string `db:"member_id"`
	Email    *string `db:"email"`
}
