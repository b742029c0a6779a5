// Package dates parses Russian free-text date expressions into calendar
// dates and inclusive date ranges. The resolver is immutable after
// construction and safe for concurrent use.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// MinYear and MaxYear bound the accepted calendar years. Anything
	// outside this window is treated as a parse failure rather than a
	// plausible date.
	MinYear = 1970
	MaxYear = 2100

	// openRangeLookbackDays is the implicit window applied when only an
	// upper bound is given ("по 5 ноября 2025"): the lower bound is set
	// this many days before the upper bound. Product decision carried
	// over from the original text-parsing logic.
	openRangeLookbackDays = 7
)

// CalendarDate is a validated Gregorian calendar date.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// Time returns the date at UTC midnight.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date shifted by n calendar days.
func (d CalendarDate) AddDays(n int) CalendarDate {
	t := d.Time().AddDate(0, 0, n)
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Before reports whether d is strictly earlier than other.
func (d CalendarDate) Before(other CalendarDate) bool {
	return d.Time().Before(other.Time())
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DateRange is an inclusive date range with Start <= End.
type DateRange struct {
	Start CalendarDate
	End   CalendarDate
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// DateParseError reports a date expression that matched none of the
// supported forms or failed calendar validation.
type DateParseError struct {
	Text string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unparseable date expression: %q", e.Text)
}

// RangeParseError reports a range expression that matched none of the
// supported forms.
type RangeParseError struct {
	Text string
}

func (e *RangeParseError) Error() string {
	return fmt.Sprintf("unparseable date range expression: %q", e.Text)
}

var (
	isoRe    = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dottedRe = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
	yearRe   = regexp.MustCompile(`^\d{4}$`)
	dayRe    = regexp.MustCompile(`^\d{1,2}$`)

	// "1-5 ноября 2025" — two day tokens sharing one month and year.
	sharedMonthRangeRe = regexp.MustCompile(`(\d{1,2})\s*[-–—]\s*(\d{1,2})\s+(\S+)\s+(\d{4})`)

	tokenSplitRe = regexp.MustCompile(`[\s.,]+`)
)

// Resolver parses date expressions against a fixed locale month table.
type Resolver struct {
	months map[string]time.Month
}

// NewRussian returns a resolver for Russian date expressions.
func NewRussian() *Resolver {
	return &Resolver{months: russianMonths}
}

// russianMonths maps lowercase month names, genitive and nominative, plus
// common abbreviations, to month numbers.
var russianMonths = map[string]time.Month{
	"января": time.January, "февраля": time.February, "марта": time.March,
	"апреля": time.April, "мая": time.May, "июня": time.June,
	"июля": time.July, "августа": time.August, "сентября": time.September,
	"октября": time.October, "ноября": time.November, "декабря": time.December,

	"январь": time.January, "февраль": time.February, "март": time.March,
	"апрель": time.April, "май": time.May, "июнь": time.June,
	"июль": time.July, "август": time.August, "сентябрь": time.September,
	"октябрь": time.October, "ноябрь": time.November, "декабрь": time.December,

	"янв": time.January, "фев": time.February, "февр": time.February,
	"мар": time.March, "апр": time.April, "июн": time.June,
	"июл": time.July, "авг": time.August, "сен": time.September,
	"сент": time.September, "окт": time.October, "ноя": time.November,
	"нояб": time.November, "дек": time.December,
}

// monthByName resolves a month-name token, case-insensitively, with any
// trailing dot stripped.
func (r *Resolver) monthByName(token string) (time.Month, bool) {
	token = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(token)), ".")
	m, ok := r.months[token]
	return m, ok
}

// ParseDate parses a single date expression. Three forms are tried in
// order: ISO YYYY-MM-DD, "<day> <month-name> <year>", and DD.MM.YYYY.
func (r *Resolver) ParseDate(text string) (CalendarDate, error) {
	trimmed := strings.TrimSpace(text)

	if m := isoRe.FindStringSubmatch(trimmed); m != nil {
		return makeDate(text, atoi(m[1]), time.Month(atoi(m[2])), atoi(m[3]))
	}

	if d, ok := r.parseTokenized(trimmed); ok {
		return makeDate(text, d.Year, d.Month, d.Day)
	}

	if m := dottedRe.FindStringSubmatch(trimmed); m != nil {
		return makeDate(text, atoi(m[3]), time.Month(atoi(m[2])), atoi(m[1]))
	}

	return CalendarDate{}, &DateParseError{Text: text}
}

// parseTokenized handles "<day> <month-name> <year>". Tokens are split on
// whitespace, dot and comma runs; the year is located by scanning for a
// 4-digit token, and the two tokens immediately preceding it are taken as
// day and month name.
func (r *Resolver) parseTokenized(text string) (CalendarDate, bool) {
	tokens := tokenSplitRe.Split(text, -1)
	filtered := tokens[:0]
	for _, t := range tokens {
		if t != "" {
			filtered = append(filtered, t)
		}
	}
	tokens = filtered

	for i, tok := range tokens {
		if !yearRe.MatchString(tok) || i < 2 {
			continue
		}
		dayTok, monthTok := tokens[i-2], tokens[i-1]
		if !dayRe.MatchString(dayTok) {
			continue
		}
		month, ok := r.monthByName(monthTok)
		if !ok {
			continue
		}
		return CalendarDate{Year: atoi(tok), Month: month, Day: atoi(dayTok)}, true
	}
	return CalendarDate{}, false
}

// ParseRange parses a date-range expression. Forms are tried in order:
// shared-month "1-5 ноября 2025", connector "с X по Y", open-ended
// "по Y" / "до Y" (7-day lookback), and finally a single date collapsed
// to a zero-width range.
func (r *Resolver) ParseRange(text string) (DateRange, error) {
	trimmed := strings.TrimSpace(text)

	if m := sharedMonthRangeRe.FindStringSubmatch(trimmed); m != nil {
		if month, ok := r.monthByName(m[3]); ok {
			year := atoi(m[4])
			start, err1 := makeDate(text, year, month, atoi(m[1]))
			end, err2 := makeDate(text, year, month, atoi(m[2]))
			if err1 == nil && err2 == nil && !end.Before(start) {
				return DateRange{Start: start, End: end}, nil
			}
		}
	}

	if rng, ok := r.parseConnectorRange(trimmed); ok {
		return rng, nil
	}

	if rng, ok := r.parseOpenRange(trimmed); ok {
		return rng, nil
	}

	if d, err := r.ParseDate(trimmed); err == nil {
		return DateRange{Start: d, End: d}, nil
	}

	return DateRange{}, &RangeParseError{Text: text}
}

// parseConnectorRange handles "с X по Y": the two connector words split
// the text into three segments, and segments 2 and 3 must each parse as a
// single date.
func (r *Resolver) parseConnectorRange(text string) (DateRange, bool) {
	fields := strings.Fields(text)

	startIdx := -1
	for i, f := range fields {
		switch strings.ToLower(f) {
		case "с", "от":
			startIdx = i
		}
		if startIdx >= 0 {
			break
		}
	}
	if startIdx < 0 {
		return DateRange{}, false
	}

	endIdx := -1
	for i := startIdx + 1; i < len(fields); i++ {
		switch strings.ToLower(fields[i]) {
		case "по", "до":
			endIdx = i
		}
		if endIdx >= 0 {
			break
		}
	}
	if endIdx < 0 || endIdx == startIdx+1 || endIdx == len(fields)-1 {
		return DateRange{}, false
	}

	startText := strings.Join(fields[startIdx+1:endIdx], " ")
	endText := strings.Join(fields[endIdx+1:], " ")

	start, err := r.ParseDate(startText)
	if err != nil {
		return DateRange{}, false
	}
	end, err := r.ParseDate(endText)
	if err != nil {
		return DateRange{}, false
	}
	if end.Before(start) {
		return DateRange{}, false
	}
	return DateRange{Start: start, End: end}, true
}

// parseOpenRange handles "по Y" / "до Y": only the upper bound is given,
// and the lower bound defaults to openRangeLookbackDays before it.
func (r *Resolver) parseOpenRange(text string) (DateRange, bool) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return DateRange{}, false
	}
	switch strings.ToLower(fields[0]) {
	case "по", "до":
	default:
		return DateRange{}, false
	}

	end, err := r.ParseDate(strings.Join(fields[1:], " "))
	if err != nil {
		return DateRange{}, false
	}
	return DateRange{Start: end.AddDays(-openRangeLookbackDays), End: end}, true
}

// makeDate validates the candidate triple: day in [1,31], year in bounds,
// and the triple must form a real calendar date (Feb 30 is rejected).
func makeDate(original string, year int, month time.Month, day int) (CalendarDate, error) {
	if year < MinYear || year > MaxYear || month < time.January || month > time.December || day < 1 || day > 31 {
		return CalendarDate{}, &DateParseError{Text: original}
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return CalendarDate{}, &DateParseError{Text: original}
	}
	return CalendarDate{Year: year, Month: month, Day: day}, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
