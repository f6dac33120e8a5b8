package service

import (
	"math"
	"time"

	"github.com/iliyamo/football-field-booking/internal/model"
)

// IsWeekend reports whether the calendar date falls on Saturday or Sunday.
// date is expected at midnight UTC as produced by model.ParseDate.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// PriceFor returns the price of a slot on a date.  A slot without an
// explicit price for that day type is charged at the field's hourly rate
// for the slot duration, rounded to the nearest unit.
func PriceFor(slot *model.TimeSlot, field *model.Field, date time.Time) int64 {
	price := slot.WeekdayPrice
	if IsWeekend(date) {
		price = slot.WeekendPrice
	}
	if price > 0 || field == nil {
		return price
	}
	start, end, err := slot.Range()
	if err != nil || end <= start {
		return 0
	}
	return int64(math.Round(float64(field.PricePerHour) * float64(end-start) / 60))
}
