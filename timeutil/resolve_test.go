package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"online-voting-backend/apperrors"
)

func TestResolveInstant(t *testing.T) {
	date := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	instant, err := ResolveInstant(date, "2:30 PM", "UTC")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 10, 10, 14, 30, 0, 0, time.UTC), instant)
}

func TestResolveInstant_Midnight(t *testing.T) {
	date := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	instant, err := ResolveInstant(date, "12:00 AM", "UTC")
	assert.NoError(t, err)
	assert.Equal(t, 0, instant.Hour())
}

func TestResolveInstant_Noon(t *testing.T) {
	date := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	instant, err := ResolveInstant(date, "12:00 PM", "UTC")
	assert.NoError(t, err)
	assert.Equal(t, 12, instant.Hour())
}

func TestResolveInstant_DiscardsTimeOfDay(t *testing.T) {
	// 日期参数自带的时间部分必须被忽略
	date := time.Date(2024, 10, 10, 23, 59, 58, 0, time.UTC)

	instant, err := ResolveInstant(date, "2:30 PM", "UTC")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 10, 10, 14, 30, 0, 0, time.UTC), instant)
}

func TestResolveInstant_Timezone(t *testing.T) {
	date := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	// 纽约10月10日处于EDT (UTC-4)
	instant, err := ResolveInstant(date, "2:30 PM", "America/New_York")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 10, 10, 18, 30, 0, 0, time.UTC), instant)
}

func TestResolveInstant_DSTTransition(t *testing.T) {
	// 2024-11-03美东夏令时结束，当天下午EST (UTC-5)
	date := time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC)

	instant, err := ResolveInstant(date, "3:00 PM", "America/New_York")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 11, 3, 20, 0, 0, 0, time.UTC), instant)
}

func TestResolveInstant_DefaultTimezone(t *testing.T) {
	date := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	instant, err := ResolveInstant(date, "2:30 PM", "")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 10, 10, 14, 30, 0, 0, time.UTC), instant)
}

func TestResolveInstant_CaseAndWhitespace(t *testing.T) {
	date := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	instant, err := ResolveInstant(date, "  2:30 pm  ", "UTC")
	assert.NoError(t, err)
	assert.Equal(t, 14, instant.Hour())
}

func TestResolveInstant_Invalid(t *testing.T) {
	date := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		clock string
		tz    string
	}{
		{"missing meridiem", "2:30", "UTC"},
		{"bad meridiem", "2:30 XX", "UTC"},
		{"missing minute", "2 PM", "UTC"},
		{"non-numeric hour", "ab:30 PM", "UTC"},
		{"non-numeric minute", "2:xx PM", "UTC"},
		{"hour out of range", "13:00 PM", "UTC"},
		{"minute out of range", "2:75 PM", "UTC"},
		{"empty", "", "UTC"},
		{"bad timezone", "2:30 PM", "Not/AZone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instant, err := ResolveInstant(date, tt.clock, tt.tz)
			assert.Error(t, err)
			assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
			assert.True(t, instant.IsZero(), "invalid input must yield the zero instant")
		})
	}
}

func TestResolveDateString(t *testing.T) {
	instant, err := ResolveDateString("2024-10-10", "2:30 PM", "UTC")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 10, 10, 14, 30, 0, 0, time.UTC), instant)

	_, err = ResolveDateString("10/10/2024", "2:30 PM", "UTC")
	assert.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
