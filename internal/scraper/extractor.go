package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/epasquet/boursobot/internal/config"
	"github.com/epasquet/boursobot/internal/models"
)

var digitsRe = regexp.MustCompile("[0-9]+")

// Extractor reads the structured signals out of a fetched page. Elements
// are picked by their full class attribute value; the board's markup keys
// every cell kind on one long multi-class string.
type Extractor struct {
	selectors config.SelectorConfig
}

func NewExtractor(selectors config.SelectorConfig) *Extractor {
	return &Extractor{selectors: selectors}
}

// classSelector matches an element whose class attribute equals value
// exactly, not merely contains the classes.
func classSelector(value string) string {
	return fmt.Sprintf("[class=%q]", value)
}

// Extract pulls the three aligned sequences (topic stamps, last-answer
// stamps, reply counts) from a forum page and validates their alignment.
// Any parse failure aborts the whole snapshot; a half-read page must never
// feed the history.
func (e *Extractor) Extract(doc *goquery.Document, ticker, name string, ref time.Time) (*models.Snapshot, error) {
	var (
		topicTimes  []time.Time
		answerTimes []time.Time
		replyCounts []int
		firstErr    error
	)

	doc.Find(classSelector(e.selectors.Topic)).EachWithBreak(func(i int, s *goquery.Selection) bool {
		t, err := ParseTopicStamp(s.Text(), ref)
		if err != nil {
			firstErr = fmt.Errorf("topic %d: %w", i, err)
			return false
		}
		topicTimes = append(topicTimes, t)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}

	doc.Find(classSelector(e.selectors.LastAnswer)).EachWithBreak(func(i int, s *goquery.Selection) bool {
		t, err := ParseLastAnswerStamp(s.Text(), ref)
		if err != nil {
			firstErr = fmt.Errorf("last answer %d: %w", i, err)
			return false
		}
		answerTimes = append(answerTimes, t)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}

	doc.Find(classSelector(e.selectors.Answers)).EachWithBreak(func(i int, s *goquery.Selection) bool {
		n, err := parseReplyCount(s.Text())
		if err != nil {
			firstErr = fmt.Errorf("reply count %d: %w", i, err)
			return false
		}
		replyCounts = append(replyCounts, n)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}

	return models.NewSnapshot(ticker, name, topicTimes, answerTimes, replyCounts)
}

// parseReplyCount takes the first run of digits in the cell; the cell text
// wraps the number in icons and whitespace.
func parseReplyCount(text string) (int, error) {
	m := digitsRe.FindString(text)
	if m == "" {
		return 0, &MissingCountError{Text: strings.TrimSpace(text)}
	}
	return strconv.Atoi(m)
}
