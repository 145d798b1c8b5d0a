package transcript

import "time"

// EpochOffsetYears is the distance between the Unix epoch and the
// 2001-01-01 epoch the message store counts from.
const EpochOffsetYears = 31

// TimeLayout is how message times appear in transcripts.
const TimeLayout = "2006-01-02 15:04:05"

// Normalizer converts store timestamps to wall-clock times in a location.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer returns a Normalizer for loc, or time.Local when loc is nil.
func NewNormalizer(loc *time.Location) Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return Normalizer{loc: loc}
}

// Time reads raw as Unix seconds and then moves the calendar date forward by
// EpochOffsetYears. This is a calendar shift, not seconds arithmetic, so it is
// off from the true instant by the leap days in between. Fractional seconds
// are dropped; a Feb 29 that lands on a non-leap year becomes Mar 1.
func (n Normalizer) Time(raw float64) time.Time {
	t := time.Unix(int64(raw), 0).In(n.loc)
	return time.Date(t.Year()+EpochOffsetYears, t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, n.loc)
}

// Format returns raw rendered with TimeLayout.
func (n Normalizer) Format(raw float64) string {
	return n.Time(raw).Format(TimeLayout)
}
