package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"shift-booking-backend/internal/models"
)

// Validation error codes returned to clients
const (
	CodeMissingRequiredField = "missing_required_field"
	CodeInvalidShiftID       = "invalid_shift_id"
	CodeInvalidType          = "invalid_type"
	CodeInvalidCoordinate    = "invalid_coordinate"
)

// ValidationError is a rejected booking request, reported before any write
type ValidationError struct {
	Code  string
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Field)
}

// CreateBookingInput is a validated booking request
type CreateBookingInput struct {
	ShiftID  int64
	Type     models.BookingType
	Lat      *float64
	Lng      *float64
	PhotoKey string
	// TakenAt is nil when the client sent no usable capture time.
	TakenAt *time.Time
}

// maxEpochMillis bounds numeric taken_at to 100,000,000 days either side of
// the Unix epoch.
const maxEpochMillis int64 = 8_640_000_000_000_000

// minTakenAt is the earliest instant a timestamptz column accepts.
var minTakenAt = time.Date(-4712, time.January, 1, 0, 0, 0, 0, time.UTC)

var takenAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseCreateBookingInput validates a decoded JSON object. Checks run in a
// fixed order and the first failure wins: required fields, type, lat, lng,
// then the shift id format. An unparseable or out of range taken_at is
// dropped rather than rejected.
func ParseCreateBookingInput(raw map[string]any) (*CreateBookingInput, error) {
	shiftRaw, typeRaw := raw["shift_id"], raw["type"]
	if isBlank(shiftRaw) {
		return nil, &ValidationError{Code: CodeMissingRequiredField, Field: "shift_id"}
	}
	if isBlank(typeRaw) {
		return nil, &ValidationError{Code: CodeMissingRequiredField, Field: "type"}
	}

	typeStr, _ := typeRaw.(string)
	bookingType := models.BookingType(typeStr)
	if !bookingType.IsValid() {
		return nil, &ValidationError{Code: CodeInvalidType, Field: "type"}
	}

	lat, ok := parseCoordinate(raw["lat"])
	if !ok {
		return nil, &ValidationError{Code: CodeInvalidCoordinate, Field: "lat"}
	}
	lng, ok := parseCoordinate(raw["lng"])
	if !ok {
		return nil, &ValidationError{Code: CodeInvalidCoordinate, Field: "lng"}
	}

	shiftID, ok := parseInt(shiftRaw)
	if !ok {
		return nil, &ValidationError{Code: CodeInvalidShiftID, Field: "shift_id"}
	}

	photoKey, _ := raw["photo_key"].(string)

	return &CreateBookingInput{
		ShiftID:  shiftID,
		Type:     bookingType,
		Lat:      lat,
		Lng:      lng,
		PhotoKey: strings.TrimSpace(photoKey),
		TakenAt:  parseTakenAt(raw["taken_at"]),
	}, nil
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func parseInt(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(n.String(), 10, 64)
		return i, err == nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// parseCoordinate returns (nil, true) for an absent value and (nil, false)
// for a value that does not coerce to a finite number.
func parseCoordinate(v any) (*float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil, true
	case json.Number:
		parsed, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return nil, false
		}
		f = parsed
	case float64:
		f = n
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return nil, true
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		f = parsed
	default:
		return nil, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return &f, true
}

// parseTakenAt accepts timestamp strings or Unix milliseconds
func parseTakenAt(v any) *time.Time {
	var t time.Time
	switch n := v.(type) {
	case string:
		s := strings.TrimSpace(n)
		parsed := false
		for _, layout := range takenAtLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				t, parsed = ts, true
				break
			}
		}
		if !parsed {
			return nil
		}
	case json.Number:
		ms, err := n.Int64()
		if err != nil || ms > maxEpochMillis || ms < -maxEpochMillis {
			return nil
		}
		t = time.UnixMilli(ms)
	case float64:
		if math.IsNaN(n) || math.Abs(n) > float64(maxEpochMillis) {
			return nil
		}
		t = time.UnixMilli(int64(n))
	default:
		return nil
	}

	t = t.UTC()
	if t.Before(minTakenAt) {
		return nil
	}
	return &t
}
