package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/epasquet/boursobot/internal/models"
)

const stampLayout = "2006-01-02 15:04"

// The mail wording below intentionally mirrors the historical alerts so
// downstream mailbox filters keep matching.

func ForumSubject(now time.Time) string {
	return "Forums agites " + now.Format(stampLayout)
}

func ForumBody(crawled int, alerts []models.ForumAlert) string {
	lines := []string{fmt.Sprintf("%d actions crawlees", crawled)}
	for _, a := range alerts {
		lines = append(lines, fmt.Sprintf("%s %s: %.0f posts instead of about %.1f",
			a.Ticker, a.Name, a.Posts, a.Baseline))
	}
	return strings.Join(lines, "\n")
}

func PreopenSubject(now time.Time) string {
	return "Alertes pre ouvertures " + now.Format(stampLayout)
}

func PreopenBody(crawled int, alerts []models.PreopenAlert) string {
	lines := []string{fmt.Sprintf("%d actions crawlees", crawled)}
	for _, a := range alerts {
		factor := a.Preopen/a.PreviousClose - 1
		lines = append(lines, fmt.Sprintf("%s %s: facteur %+.1f%% entre pre ouv et veille",
			a.Ticker, a.Name, factor*100))
	}
	return strings.Join(lines, "\n")
}

func NewsSubject(now time.Time) string {
	return fmt.Sprintf("Recent news boursorama %s - %s",
		now.Format("2006-01-02"), now.Format("15:04:05"))
}

func NewsBody(crawled int, alerts []models.NewsAlert) string {
	items := make([]string, 0, len(alerts))
	for _, a := range alerts {
		items = append(items, fmt.Sprintf("%s %s %s", a.Ticker, a.Name, a.Title))
	}
	return fmt.Sprintf("%d actions crawlees\n\n%s", crawled, strings.Join(items, "\n\n"))
}
