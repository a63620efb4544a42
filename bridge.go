package ihkb

import (
	"time"

	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/log"
	"github.com/brutella/hap/service"
)

// fixed so the accessories remain consistent in homekit across restarts
const (
	bridgeID uint64 = iota + 1
	thermostatID
	outdoorTemperatureID
	outdoorHumidityID
)

// Bridge is the root accessory all the others hang from
func Bridge(name string, p *Poller) *accessory.Bridge {
	root := accessory.NewBridge(accessory.Info{
		Name:         name,
		SerialNumber: "1201",
		Manufacturer: "cloudkucooland",
		Model:        "infinitive-homekit",
		Firmware:     "0.0.1",
	})
	root.A.Id = bridgeID

	settings := settingsService{}
	settings.S = service.New("E880") // custom
	settings.S.Hidden = true

	settings.Name = characteristic.NewName()
	settings.Name.SetValue("Settings")
	settings.S.AddC(settings.Name.C)

	settings.PollRate = newPollRate(p.Interval())
	settings.PollRate.OnValueRemoteUpdate(func(seconds int) {
		d := time.Duration(seconds) * time.Second
		if d > 0 && d < minPollInterval {
			d = minPollInterval
			settings.PollRate.SetValue(int(d / time.Second))
		}
		log.Info.Printf("setting poll rate to %s", d)
		p.SetInterval(d)
	})
	settings.S.AddC(settings.PollRate.C)

	root.A.AddS(settings.S)
	return root
}

// bridge-wide tunable parameters
type settingsService struct {
	*service.S

	Name     *characteristic.Name
	PollRate *pollRate
}

type pollRate struct {
	*characteristic.Int
}

func newPollRate(current time.Duration) *pollRate {
	c := characteristic.NewInt("E8802")
	c.Format = characteristic.FormatUInt32
	c.Permissions = []string{characteristic.PermissionRead, characteristic.PermissionWrite}
	c.Description = "Poll Rate"
	// seconds, 0 is paused
	c.SetMinValue(0)
	c.SetMaxValue(int(maxPollInterval / time.Second))
	c.SetValue(int(current / time.Second))

	return &pollRate{c}
}
