package scraper

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epasquet/boursobot/internal/config"
	"github.com/epasquet/boursobot/internal/models"
	"github.com/epasquet/boursobot/internal/store"
)

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Fetch(url string) (string, error) {
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no such page: %s", url)
	}
	return page, nil
}

func testConfig(t *testing.T, stocks map[string]string) *config.Config {
	t.Helper()
	return &config.Config{
		App: config.AppConfig{BaseDir: t.TempDir()},
		Scrape: config.ScrapeConfig{
			ForumURLTemplate: "http://forum.test/%s/",
			NewsURLTemplate:  "http://news.test/%s/",
		},
		Selectors: testSelectors,
		Thresholds: config.ThresholdConfig{
			ForumMultiplier:  1.1,
			PreopenLow:       0.9,
			PreopenHigh:      1.1,
			WindowDays:       60,
			PreopenHour:      8,
			NewsRecencyHours: 14,
		},
		Stocks: stocks,
	}
}

const goodPage = `
	<div class="topic-cell">sujet •14:32</div>
	<div class="answer-cell">14:40 par
</div>
	<div class="count-cell">12</div>
	<div class="topic-cell">sujet •09:10</div>
	<div class="answer-cell">09:30 par
</div>
	<div class="count-cell">8</div>`

// badPage has a topic without a reply count, so extraction must fail
const badPage = `
	<div class="topic-cell">sujet •14:32</div>
	<div class="answer-cell">14:40 par
</div>`

func TestRunForumCycleIsolatesTickerFailures(t *testing.T) {
	cfg := testConfig(t, map[string]string{"GOOD": "Good SA", "BAD": "Bad SA"})
	st := store.NewCSVStore(t.TempDir())
	fetcher := &fakeFetcher{pages: map[string]string{
		"http://forum.test/GOOD/": goodPage,
		"http://forum.test/BAD/":  badPage,
	}}

	runner := NewRunner(cfg, fetcher, st)
	ref := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	report := runner.RunForumCycle(ref)

	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Failed)

	goodRows, err := st.LoadForum("GOOD")
	require.NoError(t, err)
	require.Len(t, goodRows, 1)
	assert.Equal(t, 20, goodRows[0].Posts)
	assert.Equal(t, 2, goodRows[0].NewTopics)
	assert.Equal(t, 2, goodRows[0].TopicsAnsweredToday)

	badRows, err := st.LoadForum("BAD")
	require.NoError(t, err)
	assert.Empty(t, badRows, "failed ticker must not persist anything")
}

func TestRunForumCycleIsIdempotentWithinSlot(t *testing.T) {
	cfg := testConfig(t, map[string]string{"GOOD": "Good SA"})
	st := store.NewCSVStore(t.TempDir())
	fetcher := &fakeFetcher{pages: map[string]string{"http://forum.test/GOOD/": goodPage}}
	runner := NewRunner(cfg, fetcher, st)

	ref := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	runner.RunForumCycle(ref)
	first, err := st.LoadForum("GOOD")
	require.NoError(t, err)

	// a retried run later in the same hour slot must not add or change rows
	runner.RunForumCycle(ref.Add(20 * time.Minute))
	second, err := st.LoadForum("GOOD")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunForumCycleRaisesForumAlert(t *testing.T) {
	cfg := testConfig(t, map[string]string{"GOOD": "Good SA"})
	st := store.NewCSVStore(t.TempDir())
	ref := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	// quiet history: 5 posts at this hour every day
	var history []models.ForumHistoryEntry
	for days := 5; days >= 1; days-- {
		history = append(history, models.ForumHistoryEntry{
			Date: ref.AddDate(0, 0, -days), Hour: 10, Posts: 5,
		})
	}
	require.NoError(t, st.SaveForum("GOOD", history))

	fetcher := &fakeFetcher{pages: map[string]string{"http://forum.test/GOOD/": goodPage}}
	report := NewRunner(cfg, fetcher, st).RunForumCycle(ref)

	require.Len(t, report.ForumAlerts, 1)
	alert := report.ForumAlerts[0]
	assert.Equal(t, "GOOD", alert.Ticker)
	assert.InDelta(t, 20, alert.Posts, 1e-9)
	assert.Less(t, alert.Baseline, alert.Posts)
}

func TestRunForumCyclePreopenHour(t *testing.T) {
	page := goodPage + `
		<span class="close-value">100</span>
		<span class="preopen-value">89</span>`

	cfg := testConfig(t, map[string]string{"GOOD": "Good SA"})
	st := store.NewCSVStore(t.TempDir())
	fetcher := &fakeFetcher{pages: map[string]string{"http://forum.test/GOOD/": page}}

	ref := time.Date(2024, time.March, 15, 8, 5, 0, 0, time.UTC)
	report := NewRunner(cfg, fetcher, st).RunForumCycle(ref)

	require.Len(t, report.PreopenAlerts, 1)
	assert.InDelta(t, 100, report.PreopenAlerts[0].PreviousClose, 1e-9)
	assert.InDelta(t, 89, report.PreopenAlerts[0].Preopen, 1e-9)

	rows, err := st.LoadPreopen("GOOD")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 8, rows[0].Hour)
	assert.Equal(t, 5, rows[0].Minute)
}

func TestRunForumCycleOutsidePreopenHour(t *testing.T) {
	page := goodPage + `
		<span class="close-value">100</span>
		<span class="preopen-value">50</span>`

	cfg := testConfig(t, map[string]string{"GOOD": "Good SA"})
	st := store.NewCSVStore(t.TempDir())
	fetcher := &fakeFetcher{pages: map[string]string{"http://forum.test/GOOD/": page}}

	ref := time.Date(2024, time.March, 15, 11, 0, 0, 0, time.UTC)
	report := NewRunner(cfg, fetcher, st).RunForumCycle(ref)

	assert.Empty(t, report.PreopenAlerts, "preopen check must not run outside the preopen hour")
	rows, err := st.LoadPreopen("GOOD")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRunNewsCycleCollectsFreshHeadlines(t *testing.T) {
	ref := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.Local)
	newsPage := `
		<div class="news-author">
			<span class="news-time">15.03.2024</span>
			<span class="news-time">08:30</span>
		</div>
		<div class="news-title">Résultats annuels en forte hausse</div>`
	stalePage := `
		<div class="news-author">
			<span class="news-time">01.01.2024</span>
			<span class="news-time">08:30</span>
		</div>
		<div class="news-title">Vieille nouvelle</div>`

	cfg := testConfig(t, map[string]string{"FRESH": "Fresh SA", "STALE": "Stale SA"})
	cfg.Selectors.NewsAuthor = "news-author"
	cfg.Selectors.NewsTime = "news-time"
	cfg.Selectors.NewsTitle = "news-title"

	fetcher := &fakeFetcher{pages: map[string]string{
		"http://news.test/FRESH/": newsPage,
		"http://news.test/STALE/": stalePage,
	}}
	st := store.NewCSVStore(t.TempDir())

	alerts := NewRunner(cfg, fetcher, st).RunNewsCycle(ref)
	require.Len(t, alerts, 1)
	assert.Equal(t, "FRESH", alerts[0].Ticker)
	assert.Equal(t, "Resultats annuels en forte hausse", alerts[0].Title)
}
