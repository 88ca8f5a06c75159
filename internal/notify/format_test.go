package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/epasquet/boursobot/internal/models"
)

func TestTransliterate(t *testing.T) {
	cases := map[string]string{
		"Forums agités":              "Forums agites",
		"pré-ouverture déçue":        "pre-ouverture decue",
		"Ça remonte à l'année août":  "Ca remonte a l'annee aout",
		"plain ascii stays":          "plain ascii stays",
		"€ symbole non décomposable": " symbole non decomposable",
	}
	for in, want := range cases {
		assert.Equal(t, want, Transliterate(in))
	}
}

func TestForumBody(t *testing.T) {
	body := ForumBody(40, []models.ForumAlert{
		{Ticker: "AIR", Name: "Airbus", Posts: 150, Baseline: 98.4},
	})
	assert.Equal(t, "40 actions crawlees\nAIR Airbus: 150 posts instead of about 98.4", body)
}

func TestForumBodyNoAlerts(t *testing.T) {
	assert.Equal(t, "40 actions crawlees", ForumBody(40, nil))
}

func TestPreopenBody(t *testing.T) {
	body := PreopenBody(40, []models.PreopenAlert{
		{Ticker: "AIR", Name: "Airbus", PreviousClose: 100, Preopen: 89},
	})
	assert.Equal(t, "40 actions crawlees\nAIR Airbus: facteur -11.0% entre pre ouv et veille", body)
}

func TestNewsBody(t *testing.T) {
	body := NewsBody(40, []models.NewsAlert{
		{Ticker: "AIR", Name: "Airbus", Title: "Record deliveries"},
		{Ticker: "AM", Name: "Dassault", Title: "New contract"},
	})
	assert.Equal(t, "40 actions crawlees\n\nAIR Airbus Record deliveries\n\nAM Dassault New contract", body)
}

func TestSubjectsCarryTimestamp(t *testing.T) {
	now := time.Date(2024, time.March, 15, 8, 5, 9, 0, time.UTC)
	assert.Equal(t, "Forums agites 2024-03-15 08:05", ForumSubject(now))
	assert.Equal(t, "Alertes pre ouvertures 2024-03-15 08:05", PreopenSubject(now))
	assert.Equal(t, "Recent news boursorama 2024-03-15 - 08:05:09", NewsSubject(now))
}

func TestBuildMessageIsCRLFDelimited(t *testing.T) {
	msg := string(buildMessage("bot@example.org", []string{"a@example.org", "b@example.org"}, "Sujet", "ligne une\nligne deux"))
	assert.Contains(t, msg, "From: bot@example.org\r\n")
	assert.Contains(t, msg, "To: a@example.org, b@example.org\r\n")
	assert.Contains(t, msg, "Subject: Sujet\r\n")
	assert.Contains(t, msg, "\r\n\r\nligne une\nligne deux\r\n")
}
