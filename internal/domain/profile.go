package domain

import "time"

// Gender values accepted at the gender step.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Looking values accepted at the looking step.
const (
	LookingFriends      = "friends"
	LookingSupport      = "support"
	LookingConversation = "conversation"
	LookingRelationship = "relationship"
)

// Profile is a fully committed questionnaire. Partially filled profiles never
// exist as rows: the onboarding flow buffers answers in a session and commits
// everything at once.
type Profile struct {
	UserID      int64     `json:"user_id" db:"user_id"`
	Gender      string    `json:"gender" db:"gender"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Age         int       `json:"age" db:"age"`
	City        string    `json:"city" db:"city"`
	Looking     string    `json:"looking" db:"looking"`
	About       string    `json:"about" db:"about"`
	PhotoRef    *string   `json:"photo_ref" db:"photo_ref"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// HasPhoto reports whether the profile carries a photo reference. A NULL
// photo_ref means the user skipped the photo step.
func (p *Profile) HasPhoto() bool {
	return p.PhotoRef != nil && *p.PhotoRef != ""
}

// CandidateFilter narrows candidate selection. All fields default to off;
// filtering is an explicit deployment choice, not implied by profile data.
type CandidateFilter struct {
	SameCity    bool
	SameLooking bool
	// AgeBandYears widens the viewer's age into [age-band, age+band].
	// Zero disables the age window.
	AgeBandYears int
}

func (f CandidateFilter) Enabled() bool {
	return f.SameCity || f.SameLooking || f.AgeBandYears > 0
}
