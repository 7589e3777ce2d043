package constants

import "time"

// Session and context keys
const (
	ContextKeyUserID          = "user_id"
	SessionCookieName         = "committee_session"
	SessionKeyStagedCommittee = "new_committee_number"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Committee lifecycle
const (
	EndTenureConfirmation       = "CONFIRM"
	MaxCommitteeNumberLength    = 50
	DefaultCommitteeNumberTTL   = 365 * 24 * time.Hour
	CommitteeTransitionLockName = "committee-transition"
	AutoAssignedIDPrefix        = "exec_"
	IdempotencyKeyHeader        = "Idempotency-Key"
	MaxIdempotencyKeyLength     = 100
)
