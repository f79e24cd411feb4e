package domain

import (
	"bytes"
	"math"
	"strconv"
)

// Num is a numeric cell value. NaN marks a missing value.
type Num float64

// Missing returns the missing value.
func Missing() Num {
	return Num(math.NaN())
}

// IsMissing reports whether the value is absent.
func (n Num) IsMissing() bool {
	return math.IsNaN(float64(n))
}

// Valid reports whether the value is present.
func (n Num) Valid() bool {
	return !n.IsMissing()
}

// Float returns the raw float64, NaN included.
func (n Num) Float() float64 {
	return float64(n)
}

// Or returns the value, or def when missing.
func (n Num) Or(def float64) float64 {
	if n.IsMissing() {
		return def
	}
	return float64(n)
}

// MarshalJSON encodes missing values as null.
func (n Num) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'f', -1, 64), nil
}

// UnmarshalJSON decodes null as a missing value.
func (n *Num) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Missing()
		return nil
	}
	f, err := strconv.ParseFloat(string(bytes.Trim(data, `"`)), 64)
	if err != nil {
		return err
	}
	*n = Num(f)
	return nil
}

// AllMissing reports whether every value is missing.
func AllMissing(values ...Num) bool {
	for _, v := range values {
		if v.Valid() {
			return false
		}
	}
	return true
}

// AnyMissing reports whether at least one value is missing.
func AnyMissing(values ...Num) bool {
	for _, v := range values {
		if v.IsMissing() {
			return true
		}
	}
	return false
}
