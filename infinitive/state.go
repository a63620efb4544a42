package infinitive

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Mode is the thermostat's operating mode as reported by Infinitive
type Mode int

const (
	ModeUnknown Mode = iota
	ModeOff
	ModeHeat
	ModeElectric
	ModeHeatPump
	ModeCool
	ModeAuto
)

var modeNames = map[Mode]string{
	ModeOff:      "off",
	ModeHeat:     "heat",
	ModeElectric: "electric",
	ModeHeatPump: "heatpump",
	ModeCool:     "cool",
	ModeAuto:     "auto",
}

// ParseMode never fails, anything Infinitive sends that we don't know about is ModeUnknown
func ParseMode(s string) Mode {
	for m, name := range modeNames {
		if name == s {
			return m
		}
	}
	return ModeUnknown
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// IsHeat is true for all the heating variants (gas, electric strip, heat pump)
func (m Mode) IsHeat() bool {
	return m == ModeHeat || m == ModeElectric || m == ModeHeatPump
}

// State is the contents of /api/zone/1/config
// temperatures are in F, humidity in percent
type State struct {
	CurrentTemp     float64 `json:"currentTemp"`
	CurrentHumidity float64 `json:"currentHumidity"`
	OutdoorTemp     float64 `json:"outdoorTemp"`
	Mode            string  `json:"mode"`
	FanMode         string  `json:"fanMode"`
	Hold            bool    `json:"hold"`
	HeatSetpoint    float64 `json:"heatSetpoint"`
	CoolSetpoint    float64 `json:"coolSetpoint"`
}

// ParsedMode returns the typed form of s.Mode, the raw string stays in s.Mode
func (s *State) ParsedMode() Mode {
	return ParseMode(s.Mode)
}

// wireState is used to detect missing fields; Infinitive sends more than we use, extras are ignored
type wireState struct {
	CurrentTemp     *float64 `json:"currentTemp"`
	CurrentHumidity *float64 `json:"currentHumidity"`
	OutdoorTemp     *float64 `json:"outdoorTemp"`
	Mode            *string  `json:"mode"`
	FanMode         *string  `json:"fanMode"`
	Hold            *bool    `json:"hold"`
	HeatSetpoint    *float64 `json:"heatSetpoint"`
	CoolSetpoint    *float64 `json:"coolSetpoint"`
}

// DecodeState validates and decodes a zone config body. Either every field is present and
// correctly typed or a *SchemaValidationError is returned.
func DecodeState(body []byte) (*State, error) {
	var w wireState
	if err := json.Unmarshal(body, &w); err != nil {
		var ute *json.UnmarshalTypeError
		if errors.As(err, &ute) {
			return nil, &SchemaValidationError{
				Field:  ute.Field,
				Reason: fmt.Sprintf("expected %s, got %s", ute.Type, ute.Value),
			}
		}
		return nil, &SchemaValidationError{Reason: err.Error()}
	}

	missing := func(field string) error {
		return &SchemaValidationError{Field: field, Reason: "missing"}
	}

	switch {
	case w.CurrentTemp == nil:
		return nil, missing("currentTemp")
	case w.CurrentHumidity == nil:
		return nil, missing("currentHumidity")
	case w.OutdoorTemp == nil:
		return nil, missing("outdoorTemp")
	case w.Mode == nil:
		return nil, missing("mode")
	case w.FanMode == nil:
		return nil, missing("fanMode")
	case w.Hold == nil:
		return nil, missing("hold")
	case w.HeatSetpoint == nil:
		return nil, missing("heatSetpoint")
	case w.CoolSetpoint == nil:
		return nil, missing("coolSetpoint")
	}

	return &State{
		CurrentTemp:     *w.CurrentTemp,
		CurrentHumidity: *w.CurrentHumidity,
		OutdoorTemp:     *w.OutdoorTemp,
		Mode:            *w.Mode,
		FanMode:         *w.FanMode,
		Hold:            *w.Hold,
		HeatSetpoint:    *w.HeatSetpoint,
		CoolSetpoint:    *w.CoolSetpoint,
	}, nil
}

// Update is a partial State used for PUT, only the set fields are sent.
// Infinitive only accepts whole degrees F for the setpoints.
type Update struct {
	Mode         *string `json:"mode,omitempty"`
	FanMode      *string `json:"fanMode,omitempty"`
	Hold         *bool   `json:"hold,omitempty"`
	HeatSetpoint *int    `json:"heatSetpoint,omitempty"`
	CoolSetpoint *int    `json:"coolSetpoint,omitempty"`
}

func String(s string) *string { return &s }
func Bool(b bool) *bool       { return &b }
func Int(i int) *int          { return &i }
