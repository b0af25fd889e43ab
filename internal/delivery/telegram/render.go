package telegram

import (
	"fmt"
	"strings"

	"github.com/dmitrv/soulmate-bot/internal/domain"
)

// Button labels shown on reply keyboards. Labels are presentation; the
// canonical step answers live in the domain package.
const (
	btnGuy  = "🙋‍♂️ Guy"
	btnGirl = "🙋‍♀️ Girl"

	btnFriends      = "Find friends"
	btnSupport      = "Looking for support"
	btnConversation = "Just conversation"
	btnRelationship = "Open to a relationship"

	btnSkipPhoto = "Skip"

	btnConfirm = "✅ Confirm"
	btnRestart = "✏️ Start over"

	btnBrowse    = "🔎 Browse profiles"
	btnMyProfile = "👤 My profile"
)

// answerAliases maps button labels to canonical step answers. Free text that
// is not an alias passes through untouched and hits step validation.
var answerAliases = map[string]string{
	btnGuy:  domain.GenderMale,
	btnGirl: domain.GenderFemale,

	btnFriends:      domain.LookingFriends,
	btnSupport:      domain.LookingSupport,
	btnConversation: domain.LookingConversation,
	btnRelationship: domain.LookingRelationship,

	btnSkipPhoto: domain.AnswerSkip,

	btnConfirm: domain.AnswerConfirm,
	btnRestart: domain.AnswerRestart,
}

func canonicalAnswer(text string) string {
	if v, ok := answerAliases[strings.TrimSpace(text)]; ok {
		return v
	}
	return strings.TrimSpace(text)
}

var lookingLabels = map[string]string{
	domain.LookingFriends:      "looking for friends",
	domain.LookingSupport:      "looking for support",
	domain.LookingConversation: "up for a conversation",
	domain.LookingRelationship: "open to a relationship",
}

// stepPrompt returns the question text for a step.
func stepPrompt(step domain.Step) string {
	switch step {
	case domain.StepGender:
		return "Who are you?"
	case domain.StepName:
		return "What's your name?\nA name or a nickname, whatever you like."
	case domain.StepAge:
		return "How old are you?"
	case domain.StepCity:
		return "Where are you from?\nCity or country."
	case domain.StepPhoto:
		return "Want to add a photo?\nProfiles with a photo get noticed more, but it's optional."
	case domain.StepLooking:
		return "Who would you like to find?"
	case domain.StepAbout:
		return "Tell a few words about yourself."
	default:
		return ""
	}
}

// formatProfile renders a profile card in HTML.
func formatProfile(p *domain.Profile) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("<b>%s</b>, %d", escape(p.DisplayName), p.Age))
	parts = append(parts, escape(p.City))
	if label, ok := lookingLabels[p.Looking]; ok {
		parts = append(parts, label)
	}
	if p.About != "" {
		parts = append(parts, "")
		parts = append(parts, escape(p.About))
	}
	return strings.Join(parts, "\n")
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
