package recheck

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// Minutes in each range, roughly.
const (
	minutesPerHour  = 60
	minutesPerDay   = 24 * minutesPerHour
	minutesPerWeek  = 7 * minutesPerDay
	minutesPerMonth = 30 * minutesPerDay
	minutesPerYear  = 365 * minutesPerDay
)

// ageBucket is one row of the summary table: a record whose age in minutes
// is at most threshold falls in the first such bucket.
type ageBucket struct {
	threshold int64
	label     string
}

// summaryBuckets is ordered by threshold; the final entry is the open-ended
// overflow bucket. Constructed once, never mutated.
var summaryBuckets = []ageBucket{
	{1 * minutesPerDay, "< 1 Day"},
	{3 * minutesPerDay, "< 3 Days"},
	{1 * minutesPerWeek, "< 1 Week"},
	{3 * minutesPerWeek, "< 3 Weeks"},
	{3 * minutesPerMonth, "< 3 Months"},
	{1 * minutesPerYear, "< 1 Year"},
	{3 * minutesPerYear, "< 3 Years"},
	{10 * minutesPerYear, "< 10 Years"},
	{math.MaxInt64, "10 Years +"},
}

// TimeField selects which Record timestamp a summary measures age from.
type TimeField int

const (
	// ByChange measures from ChangeTime (how old the resource content is).
	ByChange TimeField = iota
	// ByCheck measures from CheckTime (how long since the last check).
	ByCheck
)

// BucketCount pairs a bucket label with the number of records in it.
type BucketCount struct {
	Label string
	Count int
}

// ErrFutureTimestamp reports a record timestamp later than now. It signals
// a corrupted or clock-skewed store and is never silently corrected.
var ErrFutureTimestamp = errors.New("record timestamp is in the future")

// Summarize histograms records by the age of the selected timestamp
// relative to now. When excludeArchived is set, archived records are
// skipped. The returned counts are always all nine buckets in threshold
// order, even for empty input.
func Summarize(records map[string]Record, field TimeField, excludeArchived bool, now time.Time) ([]BucketCount, error) {
	counts := make([]BucketCount, len(summaryBuckets))
	for i, b := range summaryBuckets {
		counts[i].Label = b.label
	}

	for name, rec := range records {
		if excludeArchived && rec.Archived {
			continue
		}
		ts := rec.ChangeTime
		if field == ByCheck {
			ts = rec.CheckTime
		}
		elapsed := int64(now.Sub(ts) / time.Minute)
		if elapsed < 0 {
			return nil, fmt.Errorf("record %q: timestamp %s is after now: %w",
				name, ts.UTC().Format(time.RFC3339), ErrFutureTimestamp)
		}
		ix := sort.Search(len(summaryBuckets), func(i int) bool {
			return summaryBuckets[i].threshold >= elapsed
		})
		counts[ix].Count++
	}
	return counts, nil
}
