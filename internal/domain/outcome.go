package domain

import "time"

// JoinStatus описывает итог одной попытки вступления.
type JoinStatus string

const (
	StatusJoined           JoinStatus = "joined"
	StatusAlreadyMember    JoinStatus = "already_member"
	StatusRateLimited      JoinStatus = "rate_limited"
	StatusInvalidOrExpired JoinStatus = "invalid_or_expired"
	StatusBanned           JoinStatus = "banned"
	StatusFailed           JoinStatus = "failed"
)

// Statuses lists every status in report order.
var Statuses = []JoinStatus{
	StatusJoined,
	StatusAlreadyMember,
	StatusRateLimited,
	StatusInvalidOrExpired,
	StatusBanned,
	StatusFailed,
}

// IsMember: аккаунт теперь (или уже был) участником.
func (s JoinStatus) IsMember() bool {
	return s == StatusJoined || s == StatusAlreadyMember
}

// IsRetryable reports whether the target is worth re-feeding into a new run.
func (s JoinStatus) IsRetryable() bool {
	return s == StatusRateLimited || s == StatusFailed
}

// JoinOutcome описывает результат одной попытки.
type JoinOutcome struct {
	Target      JoinTarget `json:"target"`
	Status      JoinStatus `json:"status"`
	Detail      string     `json:"detail,omitempty"`
	WaitSeconds int        `json:"wait_seconds,omitempty"` // только для rate_limited
	GroupName   *string    `json:"group_name,omitempty"`
	MemberCount *int       `json:"member_count,omitempty"`
	AttemptedAt time.Time  `json:"attempted_at"`
}
