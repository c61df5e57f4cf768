package dto

import "time"

// ReportLocationRequest carries either an acquired position or the
// browser geolocation failure code. Exactly one of the pairs is set.
type ReportLocationRequest struct {
	Latitude    *float64 `json:"latitude,omitempty" binding:"omitempty,min=-90,max=90"`
	Longitude   *float64 `json:"longitude,omitempty" binding:"omitempty,min=-180,max=180"`
	FailureCode string   `json:"failure_code,omitempty" validate:"omitempty,is-geo-failure"`
}

type LocationResponse struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Fallback  bool      `json:"fallback"` // true when the default city center was substituted
	LocatedAt time.Time `json:"located_at"`
}

type NearbyProvidersRequest struct {
	Role      string   `form:"role" binding:"required,oneof=mechanic tow"`
	Latitude  *float64 `form:"latitude" binding:"omitempty,min=-90,max=90"`
	Longitude *float64 `form:"longitude" binding:"omitempty,min=-180,max=180"`
	Limit     int      `form:"limit" binding:"omitempty,min=1,max=100"`
}

type NearbyProviderResponse struct {
	UserID     string   `json:"user_id"`
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	City       string   `json:"city"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	IsOnline   bool     `json:"is_online"`
	Rating     float64  `json:"rating"`
	DistanceKm float64  `json:"distance_km"`
}
