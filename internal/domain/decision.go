package domain

import "time"

// Decision is the viewer's verdict on a shown candidate.
type Decision string

const (
	DecisionLike Decision = "like"
	DecisionSkip Decision = "skip"
)

func (d Decision) Valid() bool {
	return d == DecisionLike || d == DecisionSkip
}

// LikeEdge is a directed like between two users. At most one edge exists per
// ordered pair; liking again is a no-op. An edge A→B together with B→A is a
// match, a derived predicate that is never stored separately.
type LikeEdge struct {
	FromUserID int64     `json:"from_user_id" db:"from_user_id"`
	ToUserID   int64     `json:"to_user_id" db:"to_user_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// SkipEdge marks a candidate as already shown and rejected; its only purpose
// is exclusion from future candidate selection.
type SkipEdge struct {
	FromUserID int64     `json:"from_user_id" db:"from_user_id"`
	ToUserID   int64     `json:"to_user_id" db:"to_user_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
