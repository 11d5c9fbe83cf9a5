package referral

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// ISOLayout is the timestamp form stored and returned for order times.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// excelEpochOffset is the serial day number of 1970-01-01 in the
// spreadsheet calendar that starts on 1899-12-30.
const excelEpochOffset = 25569

// maxSerial is 9999-12-31, the last day spreadsheets can represent.
const maxSerial = 2958465

var ErrBadDate = errors.New("unrecognised date")

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
}

// SerialToTime converts a spreadsheet serial day number to UTC.
// Fractions carry the time of day. serial must be within 1..maxSerial.
func SerialToTime(serial float64) time.Time {
	ms := math.Round((serial - excelEpochOffset) * 86400 * 1000)
	return time.UnixMilli(int64(ms)).UTC()
}

// ParseOrderTime accepts ISO strings, common date forms and serial numbers.
func ParseOrderTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrBadDate
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || f < 1 || f >= maxSerial+1 {
			return time.Time{}, ErrBadDate
		}
		return SerialToTime(f), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrBadDate
}
