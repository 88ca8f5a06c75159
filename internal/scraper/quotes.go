package scraper

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/epasquet/boursobot/internal/models"
	"github.com/epasquet/boursobot/internal/trace"
)

// FindCloseAndPreopen reads the previous close and the pre-open indicative
// value off the instrument faceplate. The indicative value only renders
// during the pre-open window; missing or unparsable values are reported as
// a not-available pair rather than an error, since the caller treats that
// as the normal off-hours case.
func (e *Extractor) FindCloseAndPreopen(doc *goquery.Document, ticker string) models.PreopenQuote {
	closeVal, ok1 := firstFloat(doc, classSelector(e.selectors.Close))
	preopenVal, ok2 := firstFloat(doc, classSelector(e.selectors.Preopen))
	if !ok1 || !ok2 {
		trace.Warnf("failed to read close/preopen pair for %s", ticker)
		return models.PreopenQuote{}
	}
	return models.PreopenQuote{PreviousClose: closeVal, Preopen: preopenVal, Ok: true}
}

func firstFloat(doc *goquery.Document, selector string) (float64, bool) {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return 0, false
	}
	text := strings.TrimSpace(sel.Text())
	// quotes render with a non-breaking thin space as thousands separator
	// and may use a comma decimal
	text = strings.NewReplacer(" ", "", " ", "", " ", "", ",", ".").Replace(text)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
