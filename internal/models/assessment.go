// ABOUTME: Assessment model for physical measurements taken at the centre.
// ABOUTME: One assessment per member per calendar date; every measurement is optional.
package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the ISO-8601 calendar date format used for assessment dates.
const DateLayout = "2006-01-02"

// Measurement names an optional numeric field of an assessment.
type Measurement string

const (
	MeasurementHeight        Measurement = "height"
	MeasurementBMI           Measurement = "bmi"
	MeasurementBloodPressure Measurement = "blood_pressure"
	MeasurementHeartRate     Measurement = "heart_rate"
	MeasurementWeight        Measurement = "weight"
)

// AllMeasurements lists the measurements in display order.
var AllMeasurements = []Measurement{
	MeasurementHeight,
	MeasurementBMI,
	MeasurementBloodPressure,
	MeasurementHeartRate,
	MeasurementWeight,
}

// MeasurementUnits maps measurements to their display units.
var MeasurementUnits = map[Measurement]string{
	MeasurementHeight:        "cm",
	MeasurementBMI:           "kg/m²",
	MeasurementBloodPressure: "mmHg",
	MeasurementHeartRate:     "bpm",
	MeasurementWeight:        "kg",
}

// Assessment represents one physical assessment of a member.
type Assessment struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Date          time.Time `json:"assessment_date"`
	Height        *float64  `json:"height,omitempty"`
	BMI           *float64  `json:"bmi,omitempty"`
	BloodPressure *float64  `json:"blood_pressure,omitempty"`
	HeartRate     *float64  `json:"heart_rate,omitempty"`
	Weight        *float64  `json:"weight,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewAssessment creates an Assessment for the member on the given date.
// The time-of-day part of date is discarded.
func NewAssessment(email string, date time.Time) *Assessment {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &Assessment{
		ID:        uuid.New(),
		Email:     NormalizeEmail(email),
		Date:      DateOnly(date),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithHeight sets the height in centimetres.
func (a *Assessment) WithHeight(v float64) *Assessment {
	a.Height = &v
	return a
}

// WithBMI sets the body mass index.
func (a *Assessment) WithBMI(v float64) *Assessment {
	a.BMI = &v
	return a
}

// WithBloodPressure sets the blood pressure reading.
func (a *Assessment) WithBloodPressure(v float64) *Assessment {
	a.BloodPressure = &v
	return a
}

// WithHeartRate sets the resting heart rate.
func (a *Assessment) WithHeartRate(v float64) *Assessment {
	a.HeartRate = &v
	return a
}

// WithWeight sets the weight in kilograms.
func (a *Assessment) WithWeight(v float64) *Assessment {
	a.Weight = &v
	return a
}

// DateString returns the assessment date as YYYY-MM-DD.
func (a *Assessment) DateString() string {
	return a.Date.Format(DateLayout)
}

// Measurements returns the measurement fields keyed by name.
func (a *Assessment) Measurements() map[Measurement]*float64 {
	return map[Measurement]*float64{
		MeasurementHeight:        a.Height,
		MeasurementBMI:           a.BMI,
		MeasurementBloodPressure: a.BloodPressure,
		MeasurementHeartRate:     a.HeartRate,
		MeasurementWeight:        a.Weight,
	}
}

// Clear removes measurement m and reports whether m is a known measurement.
func (a *Assessment) Clear(m Measurement) bool {
	switch m {
	case MeasurementHeight:
		a.Height = nil
	case MeasurementBMI:
		a.BMI = nil
	case MeasurementBloodPressure:
		a.BloodPressure = nil
	case MeasurementHeartRate:
		a.HeartRate = nil
	case MeasurementWeight:
		a.Weight = nil
	default:
		return false
	}
	return true
}

// Validate checks the key fields and that every present measurement is a non-negative number.
func (a *Assessment) Validate() error {
	if strings.TrimSpace(a.Email) == "" {
		return errors.New("email is required")
	}
	if a.Date.IsZero() {
		return errors.New("assessment date is required")
	}
	for name, v := range a.Measurements() {
		if v == nil {
			continue
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			return fmt.Errorf("%s must be a non-negative number", name)
		}
	}
	return nil
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
	}
	return t, nil
}
