package ihkb

import (
	"context"

	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/service"

	"github.com/cloudkucooland/HomeKitBridges/InfinitiveHKBridge/infinitive"
)

// OutdoorTemperature reports the outdoor air sensor on the HVAC system
type OutdoorTemperature struct {
	*accessory.A

	TemperatureSensor *service.TemperatureSensor
	client            *infinitive.Client
}

func NewOutdoorTemperature(c *infinitive.Client, name string) *OutdoorTemperature {
	o := OutdoorTemperature{client: c}

	info := accessory.Info{
		Name:         name,
		SerialNumber: c.URL(),
		Manufacturer: "Carrier",
		Model:        "Infinitive",
	}
	o.A = accessory.New(info, accessory.TypeSensor)
	o.A.Id = outdoorTemperatureID

	o.TemperatureSensor = service.NewTemperatureSensor()
	o.TemperatureSensor.CurrentTemperature.SetMinValue(-50)
	o.TemperatureSensor.CurrentTemperature.ValueRequestFunc = valueRequest("OutdoorTemperature", o.CurrentTemperature, o.TemperatureSensor.CurrentTemperature.SetValue)
	o.AddS(o.TemperatureSensor.S)

	return &o
}

func (o *OutdoorTemperature) CurrentTemperature(ctx context.Context) (float64, error) {
	s, err := o.client.FetchState(ctx)
	if err != nil {
		return 0, err
	}
	return infinitive.ToCelsius(s.OutdoorTemp), nil
}

func (o *OutdoorTemperature) Update(ctx context.Context) error {
	c, err := o.CurrentTemperature(ctx)
	if err != nil {
		return err
	}
	o.TemperatureSensor.CurrentTemperature.SetValue(c)
	return nil
}

// OutdoorHumidity: Infinitive has no outdoor humidity reading, this is the zone's humidity
type OutdoorHumidity struct {
	*accessory.A

	HumiditySensor *service.HumiditySensor
	client         *infinitive.Client
}

func NewOutdoorHumidity(c *infinitive.Client, name string) *OutdoorHumidity {
	o := OutdoorHumidity{client: c}

	info := accessory.Info{
		Name:         name,
		SerialNumber: c.URL(),
		Manufacturer: "Carrier",
		Model:        "Infinitive",
	}
	o.A = accessory.New(info, accessory.TypeSensor)
	o.A.Id = outdoorHumidityID

	o.HumiditySensor = service.NewHumiditySensor()
	o.HumiditySensor.CurrentRelativeHumidity.ValueRequestFunc = valueRequest("OutdoorHumidity", o.CurrentRelativeHumidity, o.HumiditySensor.CurrentRelativeHumidity.SetValue)
	o.AddS(o.HumiditySensor.S)

	return &o
}

func (o *OutdoorHumidity) CurrentRelativeHumidity(ctx context.Context) (float64, error) {
	s, err := o.client.FetchState(ctx)
	if err != nil {
		return 0, err
	}
	return s.CurrentHumidity, nil
}

func (o *OutdoorHumidity) Update(ctx context.Context) error {
	h, err := o.CurrentRelativeHumidity(ctx)
	if err != nil {
		return err
	}
	o.HumiditySensor.CurrentRelativeHumidity.SetValue(h)
	return nil
}
