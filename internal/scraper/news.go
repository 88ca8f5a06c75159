package scraper

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/epasquet/boursobot/internal/models"
	"github.com/epasquet/boursobot/internal/notify"
	"github.com/epasquet/boursobot/internal/trace"
)

// RunNewsCycle checks every ticker's news page for an article younger than
// the recency window and collects one alert per fresh headline. Fresh
// headlines are also appended to a plain-text journal under the base
// directory. Same isolation as the forum cycle: one bad page skips that
// ticker only.
func (r *Runner) RunNewsCycle(ref time.Time) []models.NewsAlert {
	recency := time.Duration(r.cfg.Thresholds.NewsRecencyHours) * time.Hour
	stocks := r.cfg.ActiveStocks()

	r.appendNewsJournal(fmt.Sprintf("%s - %s", ref.Format("2006-01-02"), ref.Format("15:04:05")))

	var alerts []models.NewsAlert
	for _, ticker := range sortedTickers(stocks) {
		name := stocks[ticker]

		alert, err := r.processNews(ticker, name, ref, recency)
		if err != nil {
			log.Printf("Unable to crawl news for stock %s-%s: %v", ticker, name, err)
		} else if alert != nil {
			log.Printf("Recent news for %s (%s)", name, ticker)
			r.appendNewsJournal(fmt.Sprintf("Recent news for %s (%s): %s", name, ticker, alert.Title))
			alerts = append(alerts, *alert)
		}

		r.pause()
	}

	trace.Debugf("news alerts: %v", alerts)
	return alerts
}

func (r *Runner) processNews(ticker, name string, ref time.Time, recency time.Duration) (*models.NewsAlert, error) {
	doc, err := r.fetchDocument(r.cfg.NewsURL(ticker))
	if err != nil {
		return nil, err
	}

	latest := doc.Find(classSelector(r.cfg.Selectors.NewsAuthor)).First()
	if latest.Length() == 0 {
		// no news at all for this ticker
		return nil, nil
	}

	stampNodes := latest.Find(classSelector(r.cfg.Selectors.NewsTime))
	if stampNodes.Length() < 2 {
		return nil, &MalformedDateError{Text: latest.Text(), Reason: "news byline is missing its date or time fragment"}
	}
	published, err := ParseNewsStamp(stampNodes.Eq(0).Text(), stampNodes.Eq(1).Text())
	if err != nil {
		return nil, err
	}

	if ref.Sub(published) >= recency {
		return nil, nil
	}

	title := strings.TrimSpace(doc.Find(classSelector(r.cfg.Selectors.NewsTitle)).First().Text())
	return &models.NewsAlert{Ticker: ticker, Name: name, Title: notify.Transliterate(title)}, nil
}

// appendNewsJournal adds one line to recent_news.txt; journal trouble is
// logged, never fatal.
func (r *Runner) appendNewsJournal(line string) {
	path := filepath.Join(r.cfg.App.BaseDir, "recent_news.txt")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("Failed to open news journal %s: %v", path, err)
		return
	}
	defer file.Close()
	if _, err := fmt.Fprintln(file, line); err != nil {
		log.Printf("Failed to append to news journal: %v", err)
	}
}
