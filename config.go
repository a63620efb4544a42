package ihkb

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brutella/hap/log"
	"github.com/spf13/viper"

	"github.com/cloudkucooland/HomeKitBridges/InfinitiveHKBridge/infinitive"
)

type Config struct {
	Name                  string        // prefix for the accessory names
	URL                   string        // Infinitive base URL (http://10.0.0.5:8080)
	Username              string        // basic auth, optional
	Password              string        // basic auth, optional
	IncludeOutdoorSensors bool          // also expose outdoor temperature and humidity accessories
	Pin                   string        // HomeKit setup pin
	ListenAddr            string        // ip:port for /status and /metrics, empty to disable
	PollInterval          time.Duration // how often to push values to HomeKit, 0 disables
	Timeout               time.Duration // per request, 0 leaves it to the transport
	CacheTTL              time.Duration
}

var (
	errNoURL           = errors.New("url not set in config")
	errBadPollInterval = fmt.Errorf("pollInterval must be 0 (off) or between %s and %s", minPollInterval, maxPollInterval)
)

// durations may be given as "90s" or as a bare number in these units
var durationUnits = map[string]time.Duration{
	"pollInterval": time.Second,
	"timeout":      time.Second,
	"cacheTTL":     time.Millisecond,
}

// LoadConfig reads the JSON config file; any key can be overridden from the environment
// with an IHKB_ prefix (IHKB_URL, IHKB_PASSWORD, ...)
func LoadConfig(filename string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.SetConfigType("json")

	v.SetDefault("name", "Infinitive")
	v.SetDefault("url", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("includeOutdoorSensors", true)
	v.SetDefault("pin", "00102003")
	v.SetDefault("listenAddr", "")
	v.SetDefault("pollInterval", 60*time.Second)
	v.SetDefault("timeout", time.Duration(0))
	v.SetDefault("cacheTTL", infinitive.DefaultCacheTTL)

	v.SetEnvPrefix("ihkb")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Info.Printf("unable to read config %s: %s", filename, err.Error())
			return nil, err
		}
		log.Info.Printf("unable to open config %s: using defaults", filename)
	}

	if err := bareDurations(v); err != nil {
		log.Info.Printf("unable to parse config %s: %s", filename, err.Error())
		return nil, err
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		log.Info.Printf("unable to parse config %s: %s", filename, err.Error())
		return nil, err
	}

	if conf.URL == "" {
		return nil, errNoURL
	}
	if conf.PollInterval != 0 && (conf.PollInterval < minPollInterval || conf.PollInterval > maxPollInterval) {
		return nil, errBadPollInterval
	}
	log.Debug.Printf("using config: %+v", conf.redacted())

	return &conf, nil
}

func (c Config) redacted() Config {
	if c.Password != "" {
		c.Password = "********"
	}
	return c
}

// bareDurations rewrites numeric durations (from the file or the environment) in their units
func bareDurations(v *viper.Viper) error {
	for key, unit := range durationUnits {
		var n float64
		switch raw := v.Get(key).(type) {
		case float64:
			n = raw
		case int:
			n = float64(raw)
		case int64:
			n = float64(raw)
		case string:
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue // "90s" and friends are left to viper
			}
			n = f
		default:
			continue
		}
		if n < 0 {
			return fmt.Errorf("%s: negative duration %v", key, n)
		}
		v.Set(key, time.Duration(n*float64(unit)))
	}
	return nil
}
