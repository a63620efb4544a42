package ihkb

import (
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"
)

// hap's service.Thermostat only has the required characteristics, Infinitive also reports humidity
// and the auto-mode thresholds
type infinitiveThermostat struct {
	*service.S

	CurrentHeatingCoolingState  *characteristic.CurrentHeatingCoolingState
	TargetHeatingCoolingState   *characteristic.TargetHeatingCoolingState
	CurrentTemperature          *characteristic.CurrentTemperature
	TargetTemperature           *characteristic.TargetTemperature
	TemperatureDisplayUnits     *characteristic.TemperatureDisplayUnits
	CurrentRelativeHumidity     *characteristic.CurrentRelativeHumidity
	CoolingThresholdTemperature *characteristic.CoolingThresholdTemperature
	HeatingThresholdTemperature *characteristic.HeatingThresholdTemperature
}

func newInfinitiveThermostat() *infinitiveThermostat {
	s := infinitiveThermostat{}
	s.S = service.New(service.TypeThermostat)

	s.CurrentHeatingCoolingState = characteristic.NewCurrentHeatingCoolingState()
	s.AddC(s.CurrentHeatingCoolingState.C)

	s.TargetHeatingCoolingState = characteristic.NewTargetHeatingCoolingState()
	s.AddC(s.TargetHeatingCoolingState.C)

	s.CurrentTemperature = characteristic.NewCurrentTemperature()
	s.CurrentTemperature.SetMinValue(-50)
	s.AddC(s.CurrentTemperature.C)

	// 0 is reported while off
	s.TargetTemperature = characteristic.NewTargetTemperature()
	s.TargetTemperature.SetMinValue(0)
	s.AddC(s.TargetTemperature.C)

	s.TemperatureDisplayUnits = characteristic.NewTemperatureDisplayUnits()
	s.TemperatureDisplayUnits.SetValue(characteristic.TemperatureDisplayUnitsFahrenheit)
	s.AddC(s.TemperatureDisplayUnits.C)

	s.CurrentRelativeHumidity = characteristic.NewCurrentRelativeHumidity()
	s.AddC(s.CurrentRelativeHumidity.C)

	// Infinitive setpoints run from 40F to 99F, wider than hap's defaults
	s.CoolingThresholdTemperature = characteristic.NewCoolingThresholdTemperature()
	s.CoolingThresholdTemperature.SetMinValue(4)
	s.CoolingThresholdTemperature.SetMaxValue(38)
	s.AddC(s.CoolingThresholdTemperature.C)

	s.HeatingThresholdTemperature = characteristic.NewHeatingThresholdTemperature()
	s.HeatingThresholdTemperature.SetMinValue(4)
	s.HeatingThresholdTemperature.SetMaxValue(38)
	s.AddC(s.HeatingThresholdTemperature.C)

	return &s
}
