package ihkb

import (
	"math"
	"strconv"

	"github.com/brutella/hap/characteristic"

	"github.com/cloudkucooland/HomeKitBridges/InfinitiveHKBridge/infinitive"
)

// Threshold selects which setpoint a threshold write goes to
type Threshold int

const (
	CoolingThreshold Threshold = iota
	HeatingThreshold
)

// Infinitive doesn't say whether the system is actually running, so infer it from the
// gap between the current temperature and the relevant setpoint.
func DeriveCurrentHeatingCooling(s *infinitive.State) int {
	mode := s.ParsedMode()

	switch {
	case mode == infinitive.ModeOff:
		return characteristic.CurrentHeatingCoolingStateOff
	case mode.IsHeat():
		if s.CurrentTemp < s.HeatSetpoint {
			return characteristic.CurrentHeatingCoolingStateHeat
		}
		return characteristic.CurrentHeatingCoolingStateOff
	case mode == infinitive.ModeCool:
		if s.CurrentTemp > s.CoolSetpoint {
			return characteristic.CurrentHeatingCoolingStateCool
		}
		return characteristic.CurrentHeatingCoolingStateOff
	}

	// auto, and anything we don't recognize
	if s.CurrentTemp < s.HeatSetpoint {
		return characteristic.CurrentHeatingCoolingStateHeat
	}
	if s.CurrentTemp > s.CoolSetpoint {
		return characteristic.CurrentHeatingCoolingStateCool
	}
	return characteristic.CurrentHeatingCoolingStateOff
}

func DeriveTargetHeatingCooling(s *infinitive.State) (int, error) {
	mode := s.ParsedMode()

	switch {
	case mode == infinitive.ModeOff:
		return characteristic.TargetHeatingCoolingStateOff, nil
	case mode.IsHeat():
		return characteristic.TargetHeatingCoolingStateHeat, nil
	case mode == infinitive.ModeCool:
		return characteristic.TargetHeatingCoolingStateCool, nil
	case mode == infinitive.ModeAuto:
		return characteristic.TargetHeatingCoolingStateAuto, nil
	}
	return 0, &UnrecognizedModeError{Mode: s.Mode}
}

// every mode or temperature change from HomeKit puts the schedule on hold and the fan on auto
func holdUpdate() infinitive.Update {
	return infinitive.Update{
		FanMode: infinitive.String("auto"),
		Hold:    infinitive.Bool(true),
	}
}

func BuildModeWriteUpdate(target int) (infinitive.Update, error) {
	u := holdUpdate()

	switch target {
	case characteristic.TargetHeatingCoolingStateOff:
		u.Mode = infinitive.String(infinitive.ModeOff.String())
	case characteristic.TargetHeatingCoolingStateHeat:
		u.Mode = infinitive.String(infinitive.ModeHeat.String())
	case characteristic.TargetHeatingCoolingStateCool:
		u.Mode = infinitive.String(infinitive.ModeCool.String())
	case characteristic.TargetHeatingCoolingStateAuto:
		u.Mode = infinitive.String(infinitive.ModeAuto.String())
	default:
		return infinitive.Update{}, &UnrecognizedModeError{Mode: strconv.Itoa(target)}
	}
	return u, nil
}

// DeriveTargetTemperature returns degrees F; 0 means off (no active target).
// In auto it reports whichever threshold is currently in control.
func DeriveTargetTemperature(s *infinitive.State) (float64, error) {
	mode := s.ParsedMode()

	switch {
	case mode == infinitive.ModeOff:
		return 0, nil
	case mode.IsHeat():
		return s.HeatSetpoint, nil
	case mode == infinitive.ModeCool:
		return s.CoolSetpoint, nil
	case mode == infinitive.ModeAuto:
		if s.CurrentTemp < s.HeatSetpoint {
			return s.HeatSetpoint, nil
		}
		return s.CoolSetpoint, nil
	}
	return 0, &UnrecognizedModeError{Mode: s.Mode}
}

// BuildTargetTemperatureWriteUpdate only moves a setpoint in heat or cool. Auto uses both
// setpoints so a single target is ambiguous there; only hold and fan are re-asserted.
func BuildTargetTemperatureWriteUpdate(mode infinitive.Mode, tempF float64) infinitive.Update {
	u := holdUpdate()

	switch mode {
	case infinitive.ModeHeat:
		u.HeatSetpoint = infinitive.Int(roundF(tempF))
	case infinitive.ModeCool:
		u.CoolSetpoint = infinitive.Int(roundF(tempF))
	}
	return u
}

// threshold writes leave hold and fan alone
func BuildThresholdWriteUpdate(kind Threshold, tempF float64) infinitive.Update {
	if kind == CoolingThreshold {
		return infinitive.Update{CoolSetpoint: infinitive.Int(roundF(tempF))}
	}
	return infinitive.Update{HeatSetpoint: infinitive.Int(roundF(tempF))}
}

func roundF(f float64) int {
	return int(math.Round(f))
}
