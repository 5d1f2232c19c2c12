package model

import (
	"sort"
	"time"

	"dogotel/errs"
	"dogotel/utils"
)

const DateLayout = "2006-01-02"

const day = 24 * time.Hour

// ParseDateTime accepts RFC 3339 timestamps and plain YYYY-MM-DD dates. Stays
// are counted in nights, so the result is always midnight UTC of the calendar
// day the value falls on in UTC.
func ParseDateTime(field string, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return StartOfDay(t), nil
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	return time.Time{}, errs.InvalidInput("%s must be a valid date, got %q", field, value)
}

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func StartOfDay(t time.Time) time.Time {
	return t.UTC().Truncate(day)
}

// Nights counts the whole days between check-in and check-out.
func Nights(checkIn time.Time, checkOut time.Time) int {
	return int(checkOut.Sub(checkIn) / day)
}

// Overlaps is the half-open interval test: [a0,a1) and [b0,b1) conflict iff
// each starts strictly before the other ends.
func Overlaps(a0, a1, b0, b1 time.Time) bool {
	return a0.Before(b1) && b0.Before(a1)
}

// IsStayAvailable reports whether no active booking overlaps [checkIn, checkOut).
func IsStayAvailable(bookings []Booking, checkIn time.Time, checkOut time.Time) bool {
	for _, booking := range bookings {
		if booking.Status.IsActive() && Overlaps(booking.CheckIn, booking.CheckOut, checkIn, checkOut) {
			return false
		}
	}
	return true
}

// StayConflicts reports whether any recorded stay overlaps [checkIn, checkOut).
func StayConflicts(stays []Stay, checkIn time.Time, checkOut time.Time) bool {
	for _, stay := range stays {
		if Overlaps(stay.CheckIn, stay.CheckOut, checkIn, checkOut) {
			return true
		}
	}
	return false
}

// ExpiredStays returns the ids of stays checked out on or before today. They
// can no longer overlap a booking, which never starts before today.
func ExpiredStays(stays []Stay, today time.Time) []string {
	var expired []string
	for _, stay := range stays {
		if !stay.CheckOut.After(StartOfDay(today)) {
			expired = append(expired, stay.BookingId)
		}
	}
	sort.Strings(expired)
	return expired
}

// IsDateOccupied reports whether an active booking covers the night of date.
func IsDateOccupied(bookings []Booking, date time.Time) bool {
	date = StartOfDay(date)
	return !IsStayAvailable(bookings, date, date.Add(day))
}

// UnavailableDates lists every night held by an active booking, sorted and
// without duplicates.
func UnavailableDates(bookings []Booking) []string {
	dates := utils.NewMapSet[string]()
	for _, booking := range bookings {
		if !booking.Status.IsActive() {
			continue
		}
		for cur := booking.CheckIn; cur.Before(booking.CheckOut); cur = cur.Add(day) {
			dates.Add(FormatDate(cur))
		}
	}
	return utils.SortedSlice(dates)
}

// UnavailableRanges returns one range per active booking, ending on the last
// occupied night.
func UnavailableRanges(bookings []Booking) []DateRange {
	ranges := []DateRange{}
	for _, booking := range bookings {
		if !booking.Status.IsActive() {
			continue
		}
		ranges = append(ranges, DateRange{
			Start: FormatDate(booking.CheckIn),
			End:   FormatDate(booking.CheckOut.Add(-day)),
		})
	}
	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return ranges
}
