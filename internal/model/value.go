package model

import (
	"encoding/json"
	"math"
	"strconv"
)

// Sentinel markers rendered in place of a number.
const (
	NotAvailable = "N/A"
	ErrorMarker  = "Error"
)

// ValueState tells a reported number apart from the two sentinels.
// The zero value is StateMissing so an unset Value reads as N/A.
type ValueState int

const (
	StateMissing ValueState = iota
	StatePresent
	StateError
)

// Value is a single report cell.
type Value struct {
	Number float64
	State  ValueState
}

// Num wraps a reported number. NaN and infinities are treated as missing.
func Num(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NA()
	}
	return Value{Number: v, State: StatePresent}
}

func NA() Value  { return Value{State: StateMissing} }
func Err() Value { return Value{State: StateError} }

func (v Value) Present() bool { return v.State == StatePresent }
func (v Value) IsError() bool { return v.State == StateError }

// Float returns the number and whether it is present.
func (v Value) Float() (float64, bool) {
	return v.Number, v.State == StatePresent
}

func (v Value) String() string {
	switch v.State {
	case StatePresent:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case StateError:
		return ErrorMarker
	default:
		return NotAvailable
	}
}

// MarshalJSON emits the number when present and the sentinel string otherwise.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.State == StatePresent {
		return json.Marshal(v.Number)
	}
	return json.Marshal(v.String())
}

// ParseValue reverses String: sentinels map back to their states and anything
// unparseable is N/A.
func ParseValue(s string) Value {
	switch s {
	case ErrorMarker:
		return Err()
	case NotAvailable, "":
		return NA()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return NA()
	}
	return Num(f)
}
