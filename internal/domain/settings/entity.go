package settings

import "time"

// Settings is the single admin-managed configuration row consumed by the
// attendance core: the geofence radius, working hours, and whether
// employees see their own recorded location accuracy.
type Settings struct {
	RadiusMeters              float64
	WorkingHoursStart         string
	WorkingHoursEnd           string
	AllowEmployeeLocationView bool
	UpdatedAt                 time.Time
}

// Defaults mirrors the values the dashboard ships with.
func Defaults() Settings {
	return Settings{
		RadiusMeters:              200,
		WorkingHoursStart:         "06:00",
		WorkingHoursEnd:           "22:00",
		AllowEmployeeLocationView: true,
	}
}
