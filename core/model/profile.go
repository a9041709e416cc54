package model

import (
	"fmt"
	"math"
)

// Default dimensions of a load profile: three days of hourly values.
const (
	DefaultDays  = 3
	DefaultHours = 24
)

// Shape describes the dimensions of a LoadProfile.
type Shape struct {
	Days  int `json:"days"`
	Hours int `json:"hours"`
}

// DefaultShape returns the 3x24 shape used by the reference data set.
func DefaultShape() Shape { return Shape{Days: DefaultDays, Hours: DefaultHours} }

// Cells returns the number of values a profile of this shape holds.
func (s Shape) Cells() int { return s.Days * s.Hours }

// Validate checks both dimensions are positive.
func (s Shape) Validate() error {
	if s.Days <= 0 || s.Hours <= 0 {
		return Malformed("shape.validate", "", "days and hours must be positive, got %dx%d", s.Days, s.Hours)
	}
	return nil
}

func (s Shape) String() string { return fmt.Sprintf("%dx%d", s.Days, s.Hours) }

// LoadProfile holds load values indexed by [day][hour].
type LoadProfile [][]float64

// NewLoadProfile returns a zero-filled profile of the given shape.
func NewLoadProfile(s Shape) LoadProfile {
	p := make(LoadProfile, s.Days)
	for d := range p {
		p[d] = make([]float64, s.Hours)
	}
	return p
}

// Shape returns the profile dimensions. The hour count is taken from the
// first day; Validate reports ragged profiles.
func (p LoadProfile) Shape() Shape {
	if len(p) == 0 {
		return Shape{}
	}
	return Shape{Days: len(p), Hours: len(p[0])}
}

// Validate checks the profile has exactly the expected shape and only
// finite non-negative values.
func (p LoadProfile) Validate(want Shape) error {
	if len(p) != want.Days {
		return Malformed("profile.validate", "", "expected %d days, got %d", want.Days, len(p))
	}
	for d, row := range p {
		if len(row) != want.Hours {
			return Malformed("profile.validate", "", "day %d: expected %d hours, got %d", d, want.Hours, len(row))
		}
		for h, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return Malformed("profile.validate", "", "day %d hour %d: invalid load %v", d, h, v)
			}
		}
	}
	return nil
}

// Total returns the sum of all values in the profile.
func (p LoadProfile) Total() float64 {
	var sum float64
	for _, row := range p {
		for _, v := range row {
			sum += v
		}
	}
	return sum
}

// Clone returns a deep copy of the profile.
func (p LoadProfile) Clone() LoadProfile {
	if p == nil {
		return nil
	}
	cp := make(LoadProfile, len(p))
	for d, row := range p {
		cp[d] = append([]float64(nil), row...)
	}
	return cp
}
