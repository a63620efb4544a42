package ihkb

import (
	"context"
	"net/http"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/log"

	"github.com/cloudkucooland/HomeKitBridges/InfinitiveHKBridge/infinitive"
)

// Thermostat is the HomeKit face of the Infinitive zone. Every read goes to the client (which caches
// for a moment), nothing is kept locally.
type Thermostat struct {
	*accessory.A

	Thermostat *infinitiveThermostat
	client     *infinitive.Client
}

func NewThermostat(c *infinitive.Client, name string) *Thermostat {
	t := Thermostat{client: c}

	info := accessory.Info{
		Name:         name,
		SerialNumber: c.URL(),
		Manufacturer: "Carrier",
		Model:        "Infinitive",
	}
	t.A = accessory.New(info, accessory.TypeThermostat)
	t.A.Id = thermostatID

	t.Thermostat = newInfinitiveThermostat()
	t.AddS(t.Thermostat.S)

	th := t.Thermostat
	th.CurrentHeatingCoolingState.ValueRequestFunc = valueRequest("CurrentHeatingCoolingState", t.CurrentHeatingCoolingState, storeInt(th.CurrentHeatingCoolingState.Int))
	th.TargetHeatingCoolingState.ValueRequestFunc = valueRequest("TargetHeatingCoolingState", t.TargetHeatingCoolingState, storeInt(th.TargetHeatingCoolingState.Int))
	th.CurrentTemperature.ValueRequestFunc = valueRequest("CurrentTemperature", t.CurrentTemperature, th.CurrentTemperature.SetValue)
	th.TargetTemperature.ValueRequestFunc = valueRequest("TargetTemperature", t.TargetTemperature, th.TargetTemperature.SetValue)
	th.TemperatureDisplayUnits.ValueRequestFunc = valueRequest("TemperatureDisplayUnits", t.TemperatureDisplayUnits, storeInt(th.TemperatureDisplayUnits.Int))
	th.CurrentRelativeHumidity.ValueRequestFunc = valueRequest("CurrentRelativeHumidity", t.CurrentRelativeHumidity, th.CurrentRelativeHumidity.SetValue)
	th.CoolingThresholdTemperature.ValueRequestFunc = valueRequest("CoolingThresholdTemperature", t.CoolingThresholdTemperature, th.CoolingThresholdTemperature.SetValue)
	th.HeatingThresholdTemperature.ValueRequestFunc = valueRequest("HeatingThresholdTemperature", t.HeatingThresholdTemperature, th.HeatingThresholdTemperature.SetValue)

	th.TargetHeatingCoolingState.OnSetRemoteValue(func(v int) error {
		log.Info.Printf("setting target state to %d from handler", v)
		return t.SetTargetHeatingCoolingState(context.Background(), v)
	})
	th.TargetTemperature.OnSetRemoteValue(func(v float64) error {
		log.Info.Printf("setting target temperature to %f from handler", v)
		return t.SetTargetTemperature(context.Background(), v)
	})
	th.CoolingThresholdTemperature.OnSetRemoteValue(func(v float64) error {
		log.Info.Printf("setting cooling threshold to %f from handler", v)
		return t.SetCoolingThresholdTemperature(context.Background(), v)
	})
	th.HeatingThresholdTemperature.OnSetRemoteValue(func(v float64) error {
		log.Info.Printf("setting heating threshold to %f from handler", v)
		return t.SetHeatingThresholdTemperature(context.Background(), v)
	})
	th.TemperatureDisplayUnits.OnSetRemoteValue(func(v int) error {
		return t.SetTemperatureDisplayUnits(context.Background(), v)
	})

	return &t
}

// valueRequest adapts a getter to hap's ValueRequestFunc. The fetched value is also stored in the
// characteristic: hap drops a write equal to the stored value, so it has to track the thermostat.
func valueRequest[T any](what string, get func(context.Context) (T, error), store func(T)) func(*http.Request) (interface{}, int) {
	return func(r *http.Request) (interface{}, int) {
		ctx := context.Background()
		if r != nil {
			ctx = r.Context()
		}
		v, err := get(ctx)
		if err != nil {
			return nil, hapStatus(what, err)
		}
		store(v)
		return v, hap.JsonStatusSuccess
	}
}

func storeInt(c *characteristic.Int) func(int) {
	return func(v int) {
		if err := c.SetValue(v); err != nil {
			log.Info.Printf("unable to store %d: %s", v, err.Error())
		}
	}
}

func (t *Thermostat) CurrentHeatingCoolingState(ctx context.Context) (int, error) {
	s, err := t.client.FetchState(ctx)
	if err != nil {
		return 0, err
	}
	return DeriveCurrentHeatingCooling(s), nil
}

func (t *Thermostat) TargetHeatingCoolingState(ctx context.Context) (int, error) {
	s, err := t.client.FetchState(ctx)
	if err != nil {
		return 0, err
	}
	return DeriveTargetHeatingCooling(s)
}

// SetTargetHeatingCoolingState changes the mode. When switching to heat or cool HomeKit is shown the
// setpoint that mode will use.
func (t *Thermostat) SetTargetHeatingCoolingState(ctx context.Context, target int) error {
	u, err := BuildModeWriteUpdate(target)
	if err != nil {
		return err
	}

	old, err := t.client.FetchState(ctx)
	if err != nil {
		return err
	}

	if err := t.client.SetState(ctx, u); err != nil {
		return err
	}

	switch target {
	case characteristic.TargetHeatingCoolingStateHeat:
		t.Thermostat.TargetTemperature.SetValue(infinitive.ToCelsius(old.HeatSetpoint))
	case characteristic.TargetHeatingCoolingStateCool:
		t.Thermostat.TargetTemperature.SetValue(infinitive.ToCelsius(old.CoolSetpoint))
	}

	t.refreshCurrentState(ctx)
	return nil
}

func (t *Thermostat) CurrentTemperature(ctx context.Context) (float64, error) {
	s, err := t.client.FetchState(ctx)
	if err != nil {
		return 0, err
	}
	return infinitive.ToCelsius(s.CurrentTemp), nil
}

// TargetTemperature is in C, 0 while off
func (t *Thermostat) TargetTemperature(ctx context.Context) (float64, error) {
	s, err := t.client.FetchState(ctx)
	if err != nil {
		return 0, err
	}
	return targetCelsius(s)
}

func targetCelsius(s *infinitive.State) (float64, error) {
	f, err := DeriveTargetTemperature(s)
	if err != nil {
		return 0, err
	}
	if s.ParsedMode() == infinitive.ModeOff {
		return 0, nil
	}
	return infinitive.ToCelsius(f), nil
}

func (t *Thermostat) SetTargetTemperature(ctx context.Context, c float64) error {
	s, err := t.client.FetchState(ctx)
	if err != nil {
		return err
	}

	u := BuildTargetTemperatureWriteUpdate(s.ParsedMode(), infinitive.ToFahrenheit(c))
	if err := t.client.SetState(ctx, u); err != nil {
		return err
	}

	t.refreshCurrentState(ctx)
	return nil
}

// Infinitive always works in F
func (t *Thermostat) TemperatureDisplayUnits(_ context.Context) (int, error) {
	return characteristic.TemperatureDisplayUnitsFahrenheit, nil
}

func (t *Thermostat) SetTemperatureDisplayUnits(_ context.Context, units int) error {
	log.Debug.Printf("ignoring display units change to %d", units)
	return nil
}

func (t *Thermostat) CurrentRelativeHumidity(ctx context.Context) (float64, error) {
	s, err := t.client.FetchState(ctx)
	if err != nil {
		return 0, err
	}
	return s.CurrentHumidity, nil
}

func (t *Thermostat) CoolingThresholdTemperature(ctx context.Context) (float64, error) {
	s, err := t.client.FetchState(ctx)
	if err != nil {
		return 0, err
	}
	return infinitive.ToCelsius(s.CoolSetpoint), nil
}

func (t *Thermostat) SetCoolingThresholdTemperature(ctx context.Context, c float64) error {
	return t.setThreshold(ctx, CoolingThreshold, c)
}

func (t *Thermostat) HeatingThresholdTemperature(ctx context.Context) (float64, error) {
	s, err := t.client.FetchState(ctx)
	if err != nil {
		return 0, err
	}
	return infinitive.ToCelsius(s.HeatSetpoint), nil
}

func (t *Thermostat) SetHeatingThresholdTemperature(ctx context.Context, c float64) error {
	return t.setThreshold(ctx, HeatingThreshold, c)
}

func (t *Thermostat) setThreshold(ctx context.Context, kind Threshold, c float64) error {
	if err := t.client.SetState(ctx, BuildThresholdWriteUpdate(kind, infinitive.ToFahrenheit(c))); err != nil {
		return err
	}
	t.refreshCurrentState(ctx)
	return nil
}

// refreshCurrentState is best effort; the cache was purged by the write so this is a fresh read,
// though Infinitive may not have applied the change yet
func (t *Thermostat) refreshCurrentState(ctx context.Context) {
	state, err := t.CurrentHeatingCoolingState(ctx)
	if err != nil {
		log.Info.Printf("unable to refresh current state: %s", err.Error())
		return
	}
	t.Thermostat.CurrentHeatingCoolingState.SetValue(state)
}

// Update pushes current values into HomeKit so paired controllers get events
func (t *Thermostat) Update(ctx context.Context) error {
	s, err := t.client.FetchState(ctx)
	if err != nil {
		return err
	}
	log.Debug.Printf("%+v", s)

	th := t.Thermostat
	th.CurrentHeatingCoolingState.SetValue(DeriveCurrentHeatingCooling(s))
	th.CurrentTemperature.SetValue(infinitive.ToCelsius(s.CurrentTemp))
	th.CurrentRelativeHumidity.SetValue(s.CurrentHumidity)
	th.CoolingThresholdTemperature.SetValue(infinitive.ToCelsius(s.CoolSetpoint))
	th.HeatingThresholdTemperature.SetValue(infinitive.ToCelsius(s.HeatSetpoint))

	if target, err := DeriveTargetHeatingCooling(s); err != nil {
		log.Info.Println(err.Error())
	} else {
		th.TargetHeatingCoolingState.SetValue(target)
	}

	if c, err := targetCelsius(s); err != nil {
		log.Info.Println(err.Error())
	} else {
		th.TargetTemperature.SetValue(c)
	}
	return nil
}
