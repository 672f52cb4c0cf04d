package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed marks a snapshot whose shape cannot be turned into charts.
var ErrMalformed = errors.New("malformed input")

// Field names a raw sample array inside a Window.
type Field string

const (
	FieldMoisture    Field = "moisture"
	FieldTemperature Field = "temperature"
	FieldHumidity    Field = "humidity"
	FieldLevel       Field = "level"
	FieldWeight      Field = "weight"
	FieldWater       Field = "water"
)

// Fields lists every field a Window can carry.
var Fields = []Field{FieldMoisture, FieldTemperature, FieldHumidity, FieldLevel, FieldWeight, FieldWater}

// Known reports whether f is one of Fields.
func (f Field) Known() bool {
	for _, k := range Fields {
		if f == k {
			return true
		}
	}
	return false
}

// Snapshot models the JSON document served by the station's /data endpoint.
type Snapshot struct {
	Data      *Window        `json:"data"`
	MinData   *Window        `json:"mindata,omitempty"`
	Config    Configs        `json:"config,omitempty"`
	WaterTime []WateringTime `json:"watertime,omitempty"`
}

// Window is one fetched run of samples, newest last. Time is the hour-of-day
// (data) or minute-of-hour (mindata) of the last sample.
type Window struct {
	Moisture    Channels `json:"moisture,omitempty"`
	Temperature Channels `json:"temperature,omitempty"`
	Humidity    Channels `json:"humidity,omitempty"`
	Level       Channels `json:"level,omitempty"`
	Weight      Channels `json:"weight,omitempty"`
	Water       Channels `json:"water,omitempty"`
	Time        *int     `json:"time"`
}

// Field returns the channels stored under f, or false when the key is missing
// from the document.
func (w *Window) Field(f Field) (Channels, bool) {
	if w == nil {
		return nil, false
	}
	var c Channels
	switch f {
	case FieldMoisture:
		c = w.Moisture
	case FieldTemperature:
		c = w.Temperature
	case FieldHumidity:
		c = w.Humidity
	case FieldLevel:
		c = w.Level
	case FieldWeight:
		c = w.Weight
	case FieldWater:
		c = w.Water
	}
	return c, c != nil
}

// Channels holds the sample arrays of one field. A flat JSON array decodes to
// a single channel; an array of arrays decodes to one channel per probe. The
// station marshals probes it never sampled as null, those decode to empty
// channels. A null field decodes to an empty, non-nil Channels.
type Channels [][]float64

// UnmarshalJSON accepts both the flat and the per-probe layout and rejects
// null or non-numeric samples.
func (c *Channels) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*c = Channels{}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: sample data must be an array: %v", ErrMalformed, err)
	}

	if perProbe(raw) {
		out := make(Channels, len(raw))
		for i, r := range raw {
			if isNull(r) {
				out[i] = []float64{}
				continue
			}
			vals, err := decodeSamples(r)
			if err != nil {
				return fmt.Errorf("channel %d: %w", i, err)
			}
			out[i] = vals
		}
		*c = out
		return nil
	}

	vals, err := decodeSamples(b)
	if err != nil {
		return err
	}
	*c = Channels{vals}
	return nil
}

// perProbe reports whether every element is an array or null.
func perProbe(raw []json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	for _, r := range raw {
		r = bytes.TrimSpace(r)
		if !isNull(r) && (len(r) == 0 || r[0] != '[') {
			return false
		}
	}
	return true
}

func isNull(r json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(r), []byte("null"))
}

func decodeSamples(b []byte) ([]float64, error) {
	var ptrs []*float64
	if err := json.Unmarshal(b, &ptrs); err != nil {
		return nil, fmt.Errorf("%w: non-numeric sample: %v", ErrMalformed, err)
	}
	vals := make([]float64, len(ptrs))
	for i, p := range ptrs {
		if p == nil {
			return nil, fmt.Errorf("%w: null sample at index %d", ErrMalformed, i)
		}
		vals[i] = *p
	}
	return vals, nil
}

// ChannelConfig holds the watering thresholds of one plant. Pointer fields
// distinguish a missing key from a zero value.
type ChannelConfig struct {
	Low   *float64 `json:"low"`
	Dst   *float64 `json:"dst"`
	Range *float64 `json:"range"`
	Max   *float64 `json:"max"`

	WaterHour  *int `json:"hour,omitempty"`
	WaterStart *int `json:"start,omitempty"`
}

// Configs is the config section of a snapshot: a single object on
// single-plant stations, an ordered array on multi-plant ones.
type Configs []ChannelConfig

// UnmarshalJSON accepts an object or an array of objects.
func (c *Configs) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = nil
		return nil
	}
	if len(b) > 0 && b[0] == '{' {
		var one ChannelConfig
		if err := json.Unmarshal(b, &one); err != nil {
			return fmt.Errorf("%w: config: %v", ErrMalformed, err)
		}
		*c = Configs{one}
		return nil
	}
	var many []ChannelConfig
	if err := json.Unmarshal(b, &many); err != nil {
		return fmt.Errorf("%w: config: %v", ErrMalformed, err)
	}
	*c = many
	return nil
}

// WateringTime is the fitted pump model the station keeps per plant.
type WateringTime struct {
	Scale  int `json:"scale"`
	Offset int `json:"offset"`
}

// Parse decodes a snapshot document.
func Parse(b []byte) (Snapshot, error) {
	return Decode(bytes.NewReader(b))
}

// Decode reads a snapshot document from r.
func Decode(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		if errors.Is(err, ErrMalformed) {
			return Snapshot{}, err
		}
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return snap, nil
}
