package domain

import (
	"errors"
	"time"
)

// ErrRecordNotFound is returned by repositories when a record id does not exist.
var ErrRecordNotFound = errors.New("record not found")

// Restaurant linked to one order. Coordinates are nil until resolved
// upstream; a restaurant without both coordinates produces no segment
// endpoints.
type Restaurant struct {
	Name string
	Lat  *float64
	Lon  *float64
}

// Order is one linked sub-order of a record: a pickup point, a main
// restaurant, and zero or more additional restaurants visited after it.
type Order struct {
	ID         string
	PickupLat  *float64
	PickupLon  *float64
	Main       Restaurant
	Additional []Restaurant
}

type Customer struct {
	Name string
	Lat  *float64
	Lon  *float64
}

// Record is a delivery income record. It exclusively owns its persisted
// segment list; only a reconciliation run for this record mutates it.
type Record struct {
	ID        string
	Orders    []Order
	Customers []Customer
	Segments  []Segment
}

// CacheEntry is one computed distance result keyed by rounded geometry.
// Entries are written once per computation and expire rather than update
// in place.
type CacheEntry struct {
	DistanceMeters  float64   `json:"distance_meters"`
	DistanceMiles   float64   `json:"distance_miles"`
	DurationSeconds int       `json:"duration_seconds"`
	DurationText    string    `json:"duration_text"`
	ExpiresAt       time.Time `json:"expires_at"`
}
