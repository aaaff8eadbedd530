package school

import (
	"time"
	_ "time/tzdata"

	"go-school/internal/geo"
)

// Config is the attendance configuration of one school as seen by the attendance flows.
// Location is nil when geofencing is disabled.
type Config struct {
	SchoolID  string     `json:"school_id"`
	Name      string     `json:"name"`
	Mode      Mode       `json:"attendance_mode"`
	Route     Route      `json:"route"`
	Location  *geo.Fence `json:"location,omitempty"`
	Address   *string    `json:"address,omitempty"`
	Timezone  string     `json:"timezone"`
	LateAfter string     `json:"late_after"`
}

// TimeLocation resolves the school's timezone, UTC when it cannot be loaded.
func (c Config) TimeLocation() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LateCutoff returns the instant on day after which a check-in counts as late.
// ok is false when no cutoff is configured.
func (c Config) LateCutoff(day time.Time) (cutoff time.Time, ok bool) {
	if c.LateAfter == "" {
		return time.Time{}, false
	}
	hm, err := time.Parse("15:04", c.LateAfter)
	if err != nil {
		return time.Time{}, false
	}
	loc := c.TimeLocation()
	d := day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), hm.Hour(), hm.Minute(), 0, 0, loc), true
}

type UpdateLocationRequest struct {
	Latitude     *float64 `json:"latitude" binding:"required"`
	Longitude    *float64 `json:"longitude" binding:"required"`
	RadiusMeters *float64 `json:"radius_meters"`
	Address      *string  `json:"address"`
}

type UpdateAttendanceSettingsRequest struct {
	AttendanceMode string  `json:"attendance_mode" binding:"required"`
	LateAfter      *string `json:"late_after"`
	Timezone       *string `json:"timezone"`
}

type AddressResult struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
