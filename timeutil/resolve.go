// Package timeutil 把日历日期、12小时制时间字符串和IANA时区
// 合成为一个可与"now"比较的UTC时间点。
package timeutil

import (
	"strconv"
	"strings"
	"time"

	"online-voting-backend/apperrors"
)

// DateLayout 日历日期格式
const DateLayout = "2006-01-02"

// ResolveInstant combines a calendar date, a clock string ("H:MM AM|PM",
// case-insensitive, surrounding whitespace ignored) and an IANA timezone
// name into an absolute UTC instant. Only the calendar portion of date is
// used; any time-of-day it carries is replaced by the parsed clock string.
// On failure the zero time is returned together with a validation error, so
// callers must check the error before comparing the instant.
func ResolveInstant(date time.Time, clock string, tz string) (time.Time, error) {
	hour, minute, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, apperrors.Validationf("unknown timezone %q", tz)
	}

	y, m, d := date.Date()
	// time.Date处理夏令时转换，避免手动做偏移运算
	return time.Date(y, m, d, hour, minute, 0, 0, loc).UTC(), nil
}

// ResolveDateString 先解析"2006-01-02"格式的日期字符串再合成时间点
func ResolveDateString(date string, clock string, tz string) (time.Time, error) {
	day, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, apperrors.Validationf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return ResolveInstant(day, clock, tz)
}

// parseClock 解析"H:MM AM|PM"为24小时制的时和分
func parseClock(clock string) (hour, minute int, err error) {
	parts := strings.Fields(strings.ToUpper(strings.TrimSpace(clock)))
	if len(parts) != 2 {
		return 0, 0, apperrors.Validationf("invalid time %q, expected \"H:MM AM/PM\"", clock)
	}

	meridiem := parts[1]
	if meridiem != "AM" && meridiem != "PM" {
		return 0, 0, apperrors.Validationf("invalid meridiem %q in time %q", meridiem, clock)
	}

	hm := strings.Split(parts[0], ":")
	if len(hm) != 2 {
		return 0, 0, apperrors.Validationf("invalid time %q, expected \"H:MM AM/PM\"", clock)
	}

	hour, err = strconv.Atoi(hm[0])
	if err != nil || hour < 1 || hour > 12 {
		return 0, 0, apperrors.Validationf("invalid hour in time %q", clock)
	}
	minute, err = strconv.Atoi(hm[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, apperrors.Validationf("invalid minute in time %q", clock)
	}

	// PM把1-11点加12，12 PM保持12；12 AM是午夜0点
	if meridiem == "PM" && hour != 12 {
		hour += 12
	}
	if meridiem == "AM" && hour == 12 {
		hour = 0
	}

	return hour, minute, nil
}
