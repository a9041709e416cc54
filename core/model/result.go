package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// BusProfile is the allocated load profile for one Load entry of a bus.
type BusProfile struct {
	Bus     string
	Profile LoadProfile
}

// AllocationResult lists allocated profiles in node order, then weightdict
// order within a node. A bus with several Load entries appears once per entry.
type AllocationResult []BusProfile

// Buses returns the bus identifier of every entry, in order.
func (r AllocationResult) Buses() []string {
	out := make([]string, len(r))
	for i, bp := range r {
		out[i] = bp.Bus
	}
	return out
}

// Total returns the sum of every allocated value.
func (r AllocationResult) Total() float64 {
	var sum float64
	for _, bp := range r {
		sum += bp.Profile.Total()
	}
	return sum
}

// MarshalJSON encodes the result as an array of single-key objects
// mapping the bus identifier to its [day][hour] table.
func (r AllocationResult) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, bp := range r {
		if i > 0 {
			buf.WriteString(", ")
		}
		key, err := json.Marshal(bp.Bus)
		if err != nil {
			return nil, err
		}
		table := bp.Profile
		if table == nil {
			table = LoadProfile{}
		}
		val, err := json.Marshal([][]float64(table))
		if err != nil {
			return nil, fmt.Errorf("bus %s: %w", bp.Bus, err)
		}
		buf.WriteByte('{')
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes the array-of-single-key-objects form.
func (r *AllocationResult) UnmarshalJSON(data []byte) error {
	var raw []map[string]LoadProfile
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(AllocationResult, 0, len(raw))
	for i, m := range raw {
		if len(m) != 1 {
			return Malformed("result.decode", "", "entry %d: expected one bus key, got %d", i, len(m))
		}
		for bus, p := range m {
			out = append(out, BusProfile{Bus: bus, Profile: p})
		}
	}
	*r = out
	return nil
}

// RunMeta identifies one allocation run for writers and metrics sinks.
type RunMeta struct {
	RunID       string
	Nodes       int
	Shape       Shape
	TotalWeight float64
	StartDate   time.Time
	CreatedAt   time.Time
}
