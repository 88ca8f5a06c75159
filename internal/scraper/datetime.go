package scraper

import (
	"strconv"
	"strings"
	"time"

	"github.com/epasquet/boursobot/internal/trace"
)

// topicSeparator splits the cell text of a topic row into author, date and
// time fragments.
const topicSeparator = "•"

// lastAnswerMarker is the literal suffix ("par" plus the line break before
// the author link) that ends the time token of a last-answer cell.
const lastAnswerMarker = "par\n"

// monthsConverter maps the French month abbreviations the board renders to
// calendar months.
var monthsConverter = map[string]time.Month{
	"janv": time.January,
	"févr": time.February,
	"mars": time.March,
	"avr":  time.April,
	"mai":  time.May,
	"juin": time.June,
	"juil": time.July,
	"août": time.August,
	"sept": time.September,
	"oct":  time.October,
	"nov":  time.November,
	"déc":  time.December,
}

// ParseTopicStamp converts the text of a topic cell into the topic's
// creation time. Two fragments mean the topic is from today and only a
// clock is shown; three fragments carry an explicit "DD mmm. YYYY" date.
func ParseTopicStamp(text string, ref time.Time) (time.Time, error) {
	parts := strings.Split(text, topicSeparator)
	trace.Debugf("topic stamp fragments: %q", parts)
	if len(parts) <= 1 {
		return time.Time{}, &MalformedDateError{Text: text, Reason: "topic stamp has no separator"}
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}

	if len(parts) == 2 {
		hour, minute, err := parseClock(parts[1])
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(ref.Year(), ref.Month(), ref.Day(), hour, minute, 0, 0, ref.Location()), nil
	}

	dateFields := strings.Fields(strings.TrimSpace(parts[1]))
	if len(dateFields) != 3 {
		return time.Time{}, &MalformedDateError{Text: text, Reason: "topic date does not have day, month and year"}
	}
	day, err := strconv.Atoi(dateFields[0])
	if err != nil {
		return time.Time{}, &MalformedDateError{Text: dateFields[0], Reason: "day of month is not numeric"}
	}
	month, ok := monthsConverter[strings.SplitN(dateFields[1], ".", 2)[0]]
	if !ok {
		return time.Time{}, &MalformedDateError{Text: dateFields[1], Reason: "unknown month abbreviation"}
	}
	year, err := strconv.Atoi(dateFields[2])
	if err != nil {
		return time.Time{}, &MalformedDateError{Text: dateFields[2], Reason: "year is not numeric"}
	}
	hour, minute, err := parseClock(parts[2])
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, month, day, hour, minute, 0, 0, ref.Location()), nil
}

// ParseLastAnswerStamp converts the text of a last-answer cell. The cell
// ends with a "par <author>" suffix; where the marker sits tells the two
// layouts apart: first token for an answer from today, third token when an
// explicit day and month precede the clock.
//
// The year is never shown, so it is inferred from ref: same year, unless
// the parsed month is numerically greater than ref's month, which is read
// as December-seen-in-January and assigned to the previous year. That
// heuristic is wrong for gaps of more than a month, but a board's last
// answer is always recent.
func ParseLastAnswerStamp(text string, ref time.Time) (time.Time, error) {
	tokens := strings.Split(text, " ")
	// The marker is usually glued to the clock by a non-breaking space, but
	// some renderings separate it with a plain one. Fold a detached marker
	// back onto the preceding token so the position checks below see one
	// shape.
	if n := len(tokens); n > 1 && tokens[n-1] == lastAnswerMarker {
		tokens[n-2] += lastAnswerMarker
		tokens = tokens[:n-1]
	}
	trace.Debugf("last answer fragments: %q", tokens)

	var (
		day   int
		month time.Month
		clock string
	)
	switch {
	case strings.HasSuffix(tokens[0], lastAnswerMarker):
		day, month = ref.Day(), ref.Month()
		clock = strings.TrimSuffix(tokens[0], lastAnswerMarker)
	case len(tokens) > 2 && strings.HasSuffix(tokens[2], lastAnswerMarker):
		var err error
		day, err = strconv.Atoi(tokens[0])
		if err != nil {
			return time.Time{}, &MalformedDateError{Text: tokens[0], Reason: "day of month is not numeric"}
		}
		var ok bool
		month, ok = monthsConverter[strings.SplitN(tokens[1], ".", 2)[0]]
		if !ok {
			return time.Time{}, &MalformedDateError{Text: tokens[1], Reason: "unknown month abbreviation"}
		}
		clock = strings.TrimSuffix(tokens[2], lastAnswerMarker)
	default:
		return time.Time{}, &UnsupportedLastAnswerError{Tokens: tokens}
	}

	hour, minute, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	year := ref.Year()
	if month > ref.Month() {
		year--
	}
	return time.Date(year, month, day, hour, minute, 0, 0, ref.Location()), nil
}

// ParseNewsStamp converts the "DD.MM.YYYY" and "HH:MM" fragments of a news
// byline. Both are absolute; no inference from the reference date.
func ParseNewsStamp(dateText, timeText string) (time.Time, error) {
	dateParts := strings.Split(strings.TrimSpace(dateText), ".")
	if len(dateParts) != 3 {
		return time.Time{}, &MalformedDateError{Text: dateText, Reason: "news date is not DD.MM.YYYY"}
	}
	day, err := strconv.Atoi(dateParts[0])
	if err != nil {
		return time.Time{}, &MalformedDateError{Text: dateParts[0], Reason: "day of month is not numeric"}
	}
	monthNum, err := strconv.Atoi(dateParts[1])
	if err != nil {
		return time.Time{}, &MalformedDateError{Text: dateParts[1], Reason: "month is not numeric"}
	}
	year, err := strconv.Atoi(dateParts[2])
	if err != nil {
		return time.Time{}, &MalformedDateError{Text: dateParts[2], Reason: "year is not numeric"}
	}
	hour, minute, err := parseClock(timeText)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(monthNum), day, hour, minute, 0, 0, time.Local), nil
}

func parseClock(text string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(text), ":", 2)
	if len(parts) != 2 {
		return 0, 0, &MalformedDateError{Text: text, Reason: "time is not HH:MM"}
	}
	hour, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, &MalformedDateError{Text: text, Reason: "hour is not numeric"}
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, &MalformedDateError{Text: text, Reason: "minute is not numeric"}
	}
	return hour, minute, nil
}
