package scheduler

import "time"

// Time is milliseconds since the UNIX epoch (spec.md §4.5).
type Time int64

// Now returns the current wall-clock time.
func Now() Time {
	return Time(time.Now().UnixMilli())
}

// Add advances t by d.
func (t Time) Add(d time.Duration) Time {
	return t + Time(d.Milliseconds())
}

// ToLocal truncates t to the 16-bit wire-local representation.
func (t Time) ToLocal() uint16 {
	return uint16(t)
}

// ToGlobal restores a full timestamp from a 16-bit local-time field given
// the current global base: base + (local - base as u16) as i16 as i64,
// recovering ±32s around base (spec.md §4.5 verbatim).
func ToGlobal(local uint16, base Time) Time {
	delta := int16(local - uint16(base))
	return base + Time(delta)
}
