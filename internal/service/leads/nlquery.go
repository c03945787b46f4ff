package leads

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aoe-motors/lead-tracker/internal/domain"
)

// Metric is what an analytics question counts.
type Metric string

const (
	MetricTotal     Metric = "total"
	MetricHot       Metric = "hot"
	MetricWarm      Metric = "warm"
	MetricCold      Metric = "cold"
	MetricLost      Metric = "lost"
	MetricConverted Metric = "converted"
	MetricFollowUp  Metric = "follow up"
)

// Keywords are matched in this order; the first hit wins.
var metricOrder = []Metric{MetricHot, MetricWarm, MetricCold, MetricLost, MetricConverted, MetricFollowUp}

var metricDesc = map[Metric]string{
	MetricTotal:     "leads",
	MetricHot:       "hot leads",
	MetricWarm:      "warm leads",
	MetricCold:      "cold leads",
	MetricLost:      "lost leads",
	MetricConverted: "converted leads",
	MetricFollowUp:  "leads requiring follow-up",
}

var (
	lastDays   = regexp.MustCompile(`last\s+(\d+)\s+days?`)
	lastWeeks  = regexp.MustCompile(`last\s+(\d+)\s+weeks?`)
	lastMonths = regexp.MustCompile(`last\s+(\d+)\s+months?`)
	lastWeek   = regexp.MustCompile(`last\s+week\b`)
)

// Query is a parsed analytics question. A zero Since means all time.
type Query struct {
	Metric    Metric
	Since     time.Time
	Until     time.Time
	RangeText string
}

// ParseQuery interprets a free-text question against the keyword table.
// Relative ranges ("last 3 weeks") override "today" and "yesterday".
func ParseQuery(text string, now time.Time) Query {
	text = strings.ToLower(text)
	q := Query{Metric: MetricTotal, RangeText: " of all time"}

	for _, m := range metricOrder {
		if strings.Contains(text, string(m)) {
			q.Metric = m
			break
		}
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch {
	case strings.Contains(text, "today"):
		q.Since, q.Until, q.RangeText = midnight, now, " today"
	case strings.Contains(text, "yesterday"):
		start := midnight.AddDate(0, 0, -1)
		q.Since, q.Until, q.RangeText = start, start.AddDate(0, 0, 1), " yesterday"
	}

	if n, unit, ok := relativeRange(text); ok {
		perUnit := 30
		switch unit {
		case "days":
			perUnit = 1
		case "weeks":
			perUnit = 7
		}
		days := maxRangeDays
		if n <= maxRangeDays/perUnit {
			days = n * perUnit
		}
		q.Since, q.Until = now.AddDate(0, 0, -days), now
		q.RangeText = fmt.Sprintf(" in the last %d %s", n, unit)
	} else if lastWeek.MatchString(text) {
		q.Since, q.Until, q.RangeText = now.AddDate(0, 0, -7), now, " in the last week"
	}
	return q
}

// maxRangeDays bounds "last N units" look-backs (about 27,000 years), far
// beyond any booking, so oversized N counts everything instead of
// overflowing.
const maxRangeDays = 10_000_000

func relativeRange(text string) (int, string, bool) {
	for _, r := range []struct {
		re   *regexp.Regexp
		unit string
	}{{lastDays, "days"}, {lastWeeks, "weeks"}, {lastMonths, "months"}} {
		if m := r.re.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return n, r.unit, true
		}
	}
	return 0, "", false
}

// Filter applies the query's metric and range to base.
func (q Query) Filter(base CountFilter) CountFilter {
	f := base
	switch q.Metric {
	case MetricHot:
		f.Tier = string(domain.TierHot)
	case MetricWarm:
		f.Tier = string(domain.TierWarm)
	case MetricCold:
		f.Tier = string(domain.TierCold)
	case MetricLost:
		f.ActionStatus = domain.StatusLost
	case MetricConverted:
		f.ActionStatus = domain.StatusConverted
	case MetricFollowUp:
		f.ActionStatus = domain.StatusFollowUp
	}
	f.Since, f.Until = q.Since, q.Until
	return f
}

// Answer formats the count for q as a sentence.
func Answer(q Query, n int) string {
	return fmt.Sprintf("You have %d %s%s.", n, metricDesc[q.Metric], q.RangeText)
}
