package services

import (
	"time"

	"sds/internal/models"
	"sds/internal/providers"
	"sds/internal/structures"
)

// TimeZoneNormalizer converts dates between the site's reporting
// timezone and the gateway's local-timezone convention while preserving
// wall-clock components. Conversions are total functions: malformed
// input comes back unchanged with a diagnostic, never an error.
type TimeZoneNormalizer struct {
	siteTZ  *time.Location
	localTZ *time.Location
	logger  providers.Logger
}

func NewTimeZoneNormalizer(conf *structures.Config, logger providers.Logger) (*TimeZoneNormalizer, error) {
	siteTZ, err := time.LoadLocation(conf.Stats.SiteTimezone)
	if err != nil {
		return nil, err
	}
	return &TimeZoneNormalizer{siteTZ: siteTZ, localTZ: time.Local, logger: logger}, nil
}

// newTimeZoneNormalizer pins both zones, used by tests to avoid
// depending on the host timezone.
func newTimeZoneNormalizer(siteTZ, localTZ *time.Location, logger providers.Logger) *TimeZoneNormalizer {
	return &TimeZoneNormalizer{siteTZ: siteTZ, localTZ: localTZ, logger: logger}
}

func (n *TimeZoneNormalizer) SiteTimezone() *time.Location {
	return n.siteTZ
}

// ToLocal reinterprets the wall-clock components of date as seen in the
// site timezone as if they were local-timezone components. The gateway
// expects dates in the local convention even though the app reasons in
// site-reporting time.
func (n *TimeZoneNormalizer) ToLocal(date time.Time) time.Time {
	return n.reinterpret(date, n.siteTZ, n.localTZ)
}

// ToSiteTZ is the inverse of ToLocal.
func (n *TimeZoneNormalizer) ToSiteTZ(date time.Time) time.Time {
	return n.reinterpret(date, n.localTZ, n.siteTZ)
}

func (n *TimeZoneNormalizer) reinterpret(date time.Time, from, to *time.Location) time.Time {
	if date.IsZero() {
		n.logger.Warnf(providers.TypeApp, "timezone conversion skipped for zero date")
		return date
	}
	seen := date.In(from)
	return time.Date(seen.Year(), seen.Month(), seen.Day(), seen.Hour(), seen.Minute(), seen.Second(), 0, to)
}

// NormalizeInterval converts an end-exclusive site-time interval into
// the inclusive local-convention bounds the gateway expects.
func (n *TimeZoneNormalizer) NormalizeInterval(interval models.DateInterval) models.DateInterval {
	return models.DateInterval{
		Start: n.ToLocal(interval.Start),
		End:   n.ToLocal(interval.End.Add(-time.Second)),
	}
}

// ContainsCurrentDate reports whether [interval.Start, interval.End)
// overlaps today's site-local calendar day.
func (n *TimeZoneNormalizer) ContainsCurrentDate(interval models.DateInterval, now time.Time) bool {
	startOfToday := models.GranularityDay.BucketStart(now, n.siteTZ)
	startOfTomorrow := startOfToday.AddDate(0, 0, 1)
	return interval.End.After(startOfToday) && interval.Start.Before(startOfTomorrow)
}

// IsToday reports whether date falls within today's site-local day.
func (n *TimeZoneNormalizer) IsToday(date, now time.Time) bool {
	return models.GranularityDay.SameBucket(date, now, n.siteTZ)
}
