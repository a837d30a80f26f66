package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sds/internal/models"
	"sds/internal/testutil"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func testNormalizer(t *testing.T) *TimeZoneNormalizer {
	t.Helper()
	site := mustLoad(t, "America/New_York")
	local := mustLoad(t, "Europe/Berlin")
	return newTimeZoneNormalizer(site, local, &testutil.MockLogger{})
}

func TestToLocal_PreservesWallClock(t *testing.T) {
	n := testNormalizer(t)
	in := time.Date(2024, 3, 15, 9, 30, 0, 0, n.siteTZ)

	out := n.ToLocal(in)
	assert.Equal(t, 9, out.Hour())
	assert.Equal(t, 30, out.Minute())
	assert.Equal(t, "Europe/Berlin", out.Location().String())
}

func TestToSiteTZ_InvertsToLocal(t *testing.T) {
	n := testNormalizer(t)
	in := time.Date(2024, 3, 15, 9, 30, 0, 0, n.siteTZ)

	round := n.ToSiteTZ(n.ToLocal(in))
	assert.True(t, in.Equal(round))
}

func TestToLocal_ZeroDatePassesThrough(t *testing.T) {
	logger := &testutil.MockLogger{}
	n := newTimeZoneNormalizer(mustLoad(t, "America/New_York"), time.UTC, logger)

	out := n.ToLocal(time.Time{})
	assert.True(t, out.IsZero())
	require.Len(t, logger.Logs, 1)
	assert.Equal(t, "warn", logger.Logs[0].Level)
}

func TestNormalizeInterval_EndBecomesInclusive(t *testing.T) {
	n := testNormalizer(t)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, n.siteTZ)
	end := time.Date(2024, 3, 8, 0, 0, 0, 0, n.siteTZ)

	out := n.NormalizeInterval(models.DateInterval{Start: start, End: end})
	assert.Equal(t, 1, out.Start.Day())
	// End is pulled back one second, landing on the last instant of day 7.
	assert.Equal(t, 7, out.End.Day())
	assert.Equal(t, 23, out.End.Hour())
	assert.Equal(t, 59, out.End.Minute())
}

func TestContainsCurrentDate(t *testing.T) {
	n := testNormalizer(t)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, n.siteTZ)

	historical := models.DateInterval{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, n.siteTZ),
		End:   time.Date(2024, 2, 8, 0, 0, 0, 0, n.siteTZ),
	}
	assert.False(t, n.ContainsCurrentDate(historical, now))

	spanning := models.DateInterval{
		Start: time.Date(2024, 3, 10, 0, 0, 0, 0, n.siteTZ),
		End:   time.Date(2024, 3, 17, 0, 0, 0, 0, n.siteTZ),
	}
	assert.True(t, n.ContainsCurrentDate(spanning, now))

	endsToday := models.DateInterval{
		Start: time.Date(2024, 3, 8, 0, 0, 0, 0, n.siteTZ),
		End:   time.Date(2024, 3, 15, 0, 0, 0, 1, n.siteTZ),
	}
	assert.True(t, n.ContainsCurrentDate(endsToday, now))
}

func TestIsToday(t *testing.T) {
	n := testNormalizer(t)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, n.siteTZ)

	assert.True(t, n.IsToday(time.Date(2024, 3, 15, 0, 0, 0, 0, n.siteTZ), now))
	assert.False(t, n.IsToday(time.Date(2024, 3, 14, 23, 0, 0, 0, n.siteTZ), now))
}
