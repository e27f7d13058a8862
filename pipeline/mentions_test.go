package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCandidates(t *testing.T) {
	reply := `You might like the *Trail Runner Pro* or the "Cloud Walker 2" for daily wear. ` +
		`Both pair well with our Merino Ankle Socks.`

	candidates := ExtractCandidates(reply)
	assert.Contains(t, candidates, "Trail Runner Pro")
	assert.Contains(t, candidates, "Cloud Walker 2")
	assert.Contains(t, candidates, "Merino Ankle Socks")
}

func TestExtractCandidates_SentenceFurnitureDropped(t *testing.T) {
	reply := "The store opens Monday Morning. Thanks For Asking!"

	candidates := ExtractCandidates(reply)
	for _, c := range candidates {
		assert.NotContains(t, []string{"The", "Monday Morning", "Thanks For Asking"}, c)
	}
}

func TestExtractCandidates_Deduplicates(t *testing.T) {
	reply := `The *Trail Runner Pro* is great. Yes, the "Trail Runner Pro" again.`

	candidates := ExtractCandidates(reply)
	count := 0
	for _, c := range candidates {
		if c == "Trail Runner Pro" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestExtractCandidates_Empty(t *testing.T) {
	assert.Empty(t, ExtractCandidates("ok, sounds good, see you then"))
}

func TestShouldDetectMentions(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"recommendation request", "Can you recommend running shoes under $100?", true},
		{"price question", "How much is the Trail Runner Pro?", true},
		{"stock check", "Do you have the Cloud Walker 2 in stock?", true},
		{"gift shopping", "I need a gift for my sister", true},
		{"opening hours question", "What are your opening hours on Monday?", false},
		{"location question", "Where is your store located?", false},
		{"return policy question", "What's your return policy?", false},
		{"small talk", "thanks, that's all!", false},
		{"store question wins over price wording", "How much does shipping cost to your address?", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldDetectMentions(tt.message))
		})
	}
}

// An hours answer full of capitalized runs still yields heuristic
// candidates; the user-message gate is what keeps the confirmation LLM
// pass from firing on it.
func TestShouldDetectMentions_GatesInformationalReplies(t *testing.T) {
	userMessage := "When are you open?"
	botReply := "We're open from Main Street Mall hours: Monday Through Friday, 9 AM Until 5 PM."

	assert.NotEmpty(t, ExtractCandidates(botReply))
	assert.False(t, ShouldDetectMentions(userMessage))
}
