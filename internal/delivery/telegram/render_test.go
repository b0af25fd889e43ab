package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrv/soulmate-bot/internal/domain"
)

func TestCanonicalAnswer(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{btnGuy, domain.GenderMale},
		{btnGirl, domain.GenderFemale},
		{btnSkipPhoto, domain.AnswerSkip},
		{btnConfirm, domain.AnswerConfirm},
		{btnRestart, domain.AnswerRestart},
		{btnRelationship, domain.LookingRelationship},
		{"  " + btnGuy + "  ", domain.GenderMale},
		{"free text stays", "free text stays"},
		{"  padded  ", "padded"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, canonicalAnswer(tc.in))
	}
}

func TestFormatProfileEscapesHTML(t *testing.T) {
	p := &domain.Profile{
		DisplayName: "<script>Ann & Co",
		Age:         30,
		City:        "River<side>",
		Looking:     domain.LookingFriends,
		About:       "1 < 2 & 3 > 2",
	}
	out := formatProfile(p)

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;Ann &amp; Co")
	assert.Contains(t, out, "River&lt;side&gt;")
	assert.Contains(t, out, "looking for friends")
	assert.Contains(t, out, "1 &lt; 2 &amp; 3 &gt; 2")
}

func TestFormatProfileOmitsEmptyAbout(t *testing.T) {
	p := &domain.Profile{DisplayName: "Bob", Age: 25, City: "Hilltown", Looking: domain.LookingSupport}
	out := formatProfile(p)
	assert.Equal(t, "<b>Bob</b>, 25\nHilltown\nlooking for support", out)
}

func TestStepPromptCoversEveryAskableStep(t *testing.T) {
	for _, step := range domain.Steps() {
		if step == domain.StepConfirm {
			continue
		}
		assert.NotEmpty(t, stepPrompt(step), "step %s has no prompt", step)
	}
}
