package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Step identifies one question of the onboarding chain.
type Step string

const (
	StepGender  Step = "gender"
	StepName    Step = "name"
	StepAge     Step = "age"
	StepCity    Step = "city"
	StepPhoto   Step = "photo"
	StepLooking Step = "looking"
	StepAbout   Step = "about"
	StepConfirm Step = "confirm"

	// StepDone is the implicit terminal state: the session is committed and
	// destroyed, so it never appears in a stored session.
	StepDone Step = "done"
)

// InputKind tells which payload a step consumes.
type InputKind int

const (
	InputText InputKind = iota
	// InputPhoto steps accept a photo reference or an explicit text skip.
	InputPhoto
)

// Answers confirm-step values.
const (
	AnswerConfirm = "confirm"
	AnswerRestart = "restart"
	AnswerSkip    = "skip"
)

var validate = validator.New()

// StepSpec declares a step's payload kind, its validation rule and its
// successor. The whole chain is defined here once instead of being scattered
// across handler conditionals.
type StepSpec struct {
	Kind     InputKind
	Next     Step
	Validate func(text string) error
}

var stepSpecs = map[Step]StepSpec{
	StepGender: {
		Kind: InputText,
		Next: StepName,
		Validate: func(text string) error {
			if err := validate.Var(text, "required,oneof=male female"); err != nil {
				return NewValidationError(StepGender, "pick one of the offered options")
			}
			return nil
		},
	},
	StepName: {
		Kind: InputText,
		Next: StepAge,
		Validate: func(text string) error {
			if err := validate.Var(text, "required,min=2,max=100"); err != nil {
				return NewValidationError(StepName, "a name is 2 to 100 characters")
			}
			return nil
		},
	},
	StepAge: {
		Kind: InputText,
		Next: StepCity,
		Validate: func(text string) error {
			n, err := strconv.Atoi(text)
			if err != nil {
				return NewValidationError(StepAge, "write your age in digits")
			}
			if err := validate.Var(n, "gte=16,lte=100"); err != nil {
				return NewValidationError(StepAge, "age must be between 16 and 100")
			}
			return nil
		},
	},
	StepCity: {
		Kind: InputText,
		Next: StepPhoto,
		Validate: func(text string) error {
			if err := validate.Var(text, "required,min=2,max=100"); err != nil {
				return NewValidationError(StepCity, "a city is 2 to 100 characters")
			}
			return nil
		},
	},
	StepPhoto: {
		Kind: InputPhoto,
		Next: StepLooking,
		// Photo references are opaque transport tokens, stored verbatim.
		Validate: func(string) error { return nil },
	},
	StepLooking: {
		Kind: InputText,
		Next: StepAbout,
		Validate: func(text string) error {
			if err := validate.Var(text, "required,oneof=friends support conversation relationship"); err != nil {
				return NewValidationError(StepLooking, "pick one of the offered options")
			}
			return nil
		},
	},
	StepAbout: {
		Kind: InputText,
		Next: StepConfirm,
		Validate: func(text string) error {
			if err := validate.Var(text, "required,max=500"); err != nil {
				return NewValidationError(StepAbout, "a few words about yourself, up to 500 characters")
			}
			return nil
		},
	},
	StepConfirm: {
		Kind: InputText,
		Next: StepDone,
		Validate: func(text string) error {
			if err := validate.Var(text, "required,oneof=confirm restart"); err != nil {
				return NewValidationError(StepConfirm, "confirm or restart")
			}
			return nil
		},
	},
}

// FirstStep is where begin and restart enter the chain.
const FirstStep = StepGender

// SpecFor returns the declaration of a step.
func SpecFor(step Step) (StepSpec, bool) {
	s, ok := stepSpecs[step]
	return s, ok
}

// Steps returns the chain in order.
func Steps() []Step {
	return []Step{StepGender, StepName, StepAge, StepCity, StepPhoto, StepLooking, StepAbout, StepConfirm}
}

// AnswerBag buffers validated answers while a session is mid-flow. PhotoSet
// distinguishes "answered: none" (skip) from "not yet answered".
type AnswerBag struct {
	Gender   string `json:"gender,omitempty"`
	Name     string `json:"name,omitempty"`
	Age      int    `json:"age,omitempty"`
	City     string `json:"city,omitempty"`
	PhotoRef string `json:"photo_ref,omitempty"`
	PhotoSet bool   `json:"photo_set,omitempty"`
	Looking  string `json:"looking,omitempty"`
	About    string `json:"about,omitempty"`
}

// Value stores the bag as JSONB.
func (a AnswerBag) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan reads the bag back from a JSONB column.
func (a *AnswerBag) Scan(src interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = AnswerBag{}
		return nil
	default:
		return fmt.Errorf("unsupported answers column type %T", src)
	}
}

// OnboardingSession is the per-user transient state of the questionnaire.
// At most one exists per user; CurrentStep decides how the next inbound
// payload is interpreted.
type OnboardingSession struct {
	UserID      int64     `json:"user_id" db:"user_id"`
	CurrentStep Step      `json:"current_step" db:"current_step"`
	Answers     AnswerBag `json:"answers" db:"answers"`
	EditMode    bool      `json:"edit_mode" db:"edit_mode"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewSession opens a fresh session at the first step.
func NewSession(userID int64) *OnboardingSession {
	return &OnboardingSession{UserID: userID, CurrentStep: FirstStep}
}

// NewEditSession opens a session pre-seeded from the committed profile. The
// profile row stays untouched until the new chain commits.
func NewEditSession(p *Profile) *OnboardingSession {
	s := &OnboardingSession{UserID: p.UserID, CurrentStep: FirstStep, EditMode: true}
	s.Answers = AnswerBag{
		Gender:   p.Gender,
		Name:     p.DisplayName,
		Age:      p.Age,
		City:     p.City,
		Looking:  p.Looking,
		About:    p.About,
		PhotoSet: true,
	}
	if p.PhotoRef != nil {
		s.Answers.PhotoRef = *p.PhotoRef
	}
	return s
}

// Apply validates text against the current step, stores it and advances.
// A rejected answer leaves the session unchanged.
func (s *OnboardingSession) Apply(text string) error {
	spec, ok := stepSpecs[s.CurrentStep]
	if !ok {
		return NewValidationError(s.CurrentStep, "unknown step")
	}
	text = strings.TrimSpace(text)

	if spec.Kind == InputPhoto {
		// At the photo step only the explicit skip is a valid text answer.
		if text != AnswerSkip {
			return ErrWrongInputKind
		}
		s.Answers.PhotoRef = ""
		s.Answers.PhotoSet = true
		s.CurrentStep = spec.Next
		return nil
	}

	if err := spec.Validate(text); err != nil {
		return err
	}

	switch s.CurrentStep {
	case StepGender:
		s.Answers.Gender = text
	case StepName:
		s.Answers.Name = text
	case StepAge:
		s.Answers.Age, _ = strconv.Atoi(text)
	case StepCity:
		s.Answers.City = text
	case StepLooking:
		s.Answers.Looking = text
	case StepAbout:
		s.Answers.About = text
	case StepConfirm:
		if text == AnswerRestart {
			s.Restart()
			return nil
		}
	}
	s.CurrentStep = spec.Next
	return nil
}

// ApplyPhoto stores a photo reference; only valid at the photo step.
func (s *OnboardingSession) ApplyPhoto(ref string) error {
	spec, ok := stepSpecs[s.CurrentStep]
	if !ok || spec.Kind != InputPhoto {
		return ErrWrongInputKind
	}
	s.Answers.PhotoRef = ref
	s.Answers.PhotoSet = true
	s.CurrentStep = spec.Next
	return nil
}

// Restart re-enters the chain from the first step keeping collected answers
// as pre-seed.
func (s *OnboardingSession) Restart() {
	s.CurrentStep = FirstStep
}

// Complete reports whether every required field has been answered.
func (s *OnboardingSession) Complete() bool {
	a := s.Answers
	return a.Gender != "" && a.Name != "" && a.Age > 0 && a.City != "" &&
		a.Looking != "" && a.About != "" && a.PhotoSet
}

// ToProfile materializes the answer bag into a committable profile.
func (s *OnboardingSession) ToProfile() *Profile {
	p := &Profile{
		UserID:      s.UserID,
		Gender:      s.Answers.Gender,
		DisplayName: s.Answers.Name,
		Age:         s.Answers.Age,
		City:        s.Answers.City,
		Looking:     s.Answers.Looking,
		About:       s.Answers.About,
	}
	if s.Answers.PhotoRef != "" {
		ref := s.Answers.PhotoRef
		p.PhotoRef = &ref
	}
	return p
}
