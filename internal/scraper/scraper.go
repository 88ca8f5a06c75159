// Package scraper fetches board and news pages, extracts their timing and
// volume signals, and drives the per-ticker batch cycle.
package scraper

import (
	"fmt"
	"log"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/epasquet/boursobot/internal/analyzer"
	"github.com/epasquet/boursobot/internal/config"
	"github.com/epasquet/boursobot/internal/models"
	"github.com/epasquet/boursobot/internal/store"
	"github.com/epasquet/boursobot/internal/trace"
)

// Runner walks the configured ticker list once per cycle. Each ticker runs
// fetch → extract → aggregate → merge → detect to completion before the
// next one starts; any failure inside a ticker's cycle is logged and the
// batch moves on. One malformed page must never abort the run.
type Runner struct {
	cfg       *config.Config
	fetcher   Fetcher
	store     store.HistoryStore
	extractor *Extractor
	rng       *rand.Rand
}

func NewRunner(cfg *config.Config, fetcher Fetcher, st store.HistoryStore) *Runner {
	return &Runner{
		cfg:       cfg,
		fetcher:   fetcher,
		store:     st,
		extractor: NewExtractor(cfg.Selectors),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RunForumCycle processes every configured ticker once, using ref as the
// run's reference time for all date comparisons.
func (r *Runner) RunForumCycle(ref time.Time) *models.RunReport {
	report := &models.RunReport{Started: ref}
	stocks := r.cfg.ActiveStocks()

	for _, ticker := range sortedTickers(stocks) {
		name := stocks[ticker]
		trace.Debugf("processing %s", ticker)

		forumAlert, preopenAlert, err := r.processTicker(ticker, name, ref)
		if err != nil {
			log.Printf("Failed processing stock %s: %v", ticker, err)
			report.Failed++
		} else {
			report.Processed++
			if forumAlert != nil {
				report.ForumAlerts = append(report.ForumAlerts, *forumAlert)
			}
			if preopenAlert != nil {
				report.PreopenAlerts = append(report.PreopenAlerts, *preopenAlert)
			}
		}

		r.pause()
	}

	report.Duration = time.Since(ref)
	log.Printf("Cycle done: %d processed, %d failed, %d forum alerts, %d preopen alerts in %.1fs",
		report.Processed, report.Failed, len(report.ForumAlerts), len(report.PreopenAlerts),
		report.Duration.Seconds())
	return report
}

func (r *Runner) processTicker(ticker, name string, ref time.Time) (*models.ForumAlert, *models.PreopenAlert, error) {
	doc, err := r.fetchDocument(r.cfg.ForumURL(ticker))
	if err != nil {
		return nil, nil, err
	}

	snap, err := r.extractor.Extract(doc, ticker, name, ref)
	if err != nil {
		return nil, nil, err
	}
	counters := analyzer.Summarize(snap, ref)

	forumRows, err := r.mergeForumHistory(ticker, counters, ref)
	if err != nil {
		return nil, nil, err
	}

	// the indicative value only exists during the pre-open window
	var quote models.PreopenQuote
	if ref.Hour() == r.cfg.Thresholds.PreopenHour {
		quote = r.extractor.FindCloseAndPreopen(doc, ticker)
		if quote.Ok {
			if err := r.mergePreopenHistory(ticker, quote, ref); err != nil {
				return nil, nil, err
			}
		}
	}

	baseline, current := analyzer.ForumBaseline(forumRows, ref.Hour(), ref, r.cfg.Thresholds.WindowDays)
	trace.Debugf("%s: n_posts baseline %.2f, current %.2f", ticker, baseline, current)

	var forumAlert *models.ForumAlert
	if analyzer.IsForumAnomalous(baseline, current, r.cfg.Thresholds.ForumMultiplier) {
		forumAlert = &models.ForumAlert{Ticker: ticker, Name: name, Posts: current, Baseline: baseline}
	}

	var preopenAlert *models.PreopenAlert
	if quote.Ok && analyzer.IsPreopenAnomalous(quote.PreviousClose, quote.Preopen,
		r.cfg.Thresholds.PreopenLow, r.cfg.Thresholds.PreopenHigh) {
		preopenAlert = &models.PreopenAlert{Ticker: ticker, Name: name,
			PreviousClose: quote.PreviousClose, Preopen: quote.Preopen}
	}

	return forumAlert, preopenAlert, nil
}

func (r *Runner) fetchDocument(url string) (*goquery.Document, error) {
	html, err := trace.TracedValue("fetch", func() (string, error) {
		return r.fetcher.Fetch(url)
	}, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

func (r *Runner) mergeForumHistory(ticker string, counters models.ForumCounters, ref time.Time) ([]models.ForumHistoryEntry, error) {
	return trace.TracedValue("mergeForumHistory", func() ([]models.ForumHistoryEntry, error) {
		existing, err := r.store.LoadForum(ticker)
		if err != nil {
			return nil, err
		}
		merged := store.MergeForum(existing, models.ForumHistoryEntry{
			Date:                ref,
			Hour:                ref.Hour(),
			Minute:              ref.Minute(),
			NewTopics:           counters.NewTopics,
			NewTopicsAnswers:    counters.NewTopicsAnswers,
			TopicsAnsweredToday: counters.TopicsAnsweredToday,
			Posts:               counters.Posts,
		})
		if err := r.store.SaveForum(ticker, merged); err != nil {
			return nil, err
		}
		return merged, nil
	}, ticker)
}

func (r *Runner) mergePreopenHistory(ticker string, quote models.PreopenQuote, ref time.Time) error {
	return trace.Traced("mergePreopenHistory", func() error {
		existing, err := r.store.LoadPreopen(ticker)
		if err != nil {
			return err
		}
		merged := store.MergePreopen(existing, models.PreopenHistoryEntry{
			Date:          ref,
			Hour:          ref.Hour(),
			Minute:        ref.Minute(),
			PreviousClose: quote.PreviousClose,
			Preopen:       quote.Preopen,
		})
		return r.store.SavePreopen(ticker, merged)
	}, ticker)
}

// pause sleeps a uniform random slice of the configured maximum between
// tickers to keep the outbound request rate polite.
func (r *Runner) pause() {
	if r.cfg.Scrape.MaxDelay <= 0 {
		return
	}
	time.Sleep(time.Duration(r.rng.Float64() * float64(r.cfg.Scrape.MaxDelay)))
}

func sortedTickers(stocks map[string]string) []string {
	tickers := make([]string, 0, len(stocks))
	for ticker := range stocks {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)
	return tickers
}
