package models

import "time"

// BookingType is the kind of shift event a booking records
type BookingType string

const (
	BookingTypeOn  BookingType = "on"
	BookingTypeOff BookingType = "off"
)

// IsValid reports whether t is a known booking type
func (t BookingType) IsValid() bool {
	return t == BookingTypeOn || t == BookingTypeOff
}

// Photo points to an object uploaded to the photo bucket
type Photo struct {
	ID        int64     `json:"id"`
	S3Key     string    `json:"s3_key"`
	CreatedAt time.Time `json:"created_at"`
}

// Booking represents a single check-in or check-out for a shift
type Booking struct {
	ID         int64       `json:"id"`
	ShiftID    int64       `json:"shift_id"`
	Type       BookingType `json:"type"`
	Lat        *float64    `json:"lat"`
	Lng        *float64    `json:"lng"`
	PhotoID    *int64      `json:"photo_id"`
	CapturedAt time.Time   `json:"captured_at"`
}

// BookingView is a booking as returned to clients, with a signed photo URL
type BookingView struct {
	Booking
	PhotoURL *string `json:"photo_url"`
}
