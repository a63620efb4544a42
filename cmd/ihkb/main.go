package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cloudkucooland/HomeKitBridges/InfinitiveHKBridge"
	"github.com/cloudkucooland/HomeKitBridges/InfinitiveHKBridge/infinitive"
)

func main() {
	var dir, file string
	var debug bool

	app := cli.App{
		Name:  "infinitive homekit bridge",
		Usage: "server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Value:       "/var/db/HomeKitBridges/Infinitive",
				Usage:       "configuration directory",
				Destination: &dir,
			},
			&cli.StringFlag{
				Name:        "config",
				Value:       "infinitive.json",
				Usage:       "configuration file",
				Destination: &file,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Value:       false,
				Usage:       "enable debug",
				Destination: &debug,
			},
		},
		Action: func(c *cli.Context) error {
			if debug {
				log.Debug.Enable()
			}

			fulldir, err := filepath.Abs(dir)
			if err != nil {
				log.Info.Panic("unable to get config directory", dir)
			}
			conf, err := ihkb.LoadConfig(filepath.Join(fulldir, file))
			if err != nil {
				log.Info.Panic(err.Error())
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			client := infinitive.New(conf.URL, conf.Username, conf.Password,
				infinitive.WithTimeout(conf.Timeout),
				infinitive.WithCacheTTL(conf.CacheTTL),
				infinitive.WithMetrics(infinitive.NewMetrics(reg)),
			)

			// build the HAP devices
			thermostat := ihkb.NewThermostat(client, conf.Name+" Thermostat")
			devices := []*accessory.A{thermostat.A}
			poller := ihkb.NewPoller(conf.PollInterval, thermostat)

			if conf.IncludeOutdoorSensors {
				temp := ihkb.NewOutdoorTemperature(client, conf.Name+" Outdoor Temperature")
				humidity := ihkb.NewOutdoorHumidity(client, conf.Name+" Outdoor Humidity")
				devices = append(devices, temp.A, humidity.A)
				poller = ihkb.NewPoller(conf.PollInterval, thermostat, temp, humidity)
			}

			bridge := ihkb.Bridge(conf.Name, poller)

			s, err := hap.NewServer(hap.NewFsStore(fulldir), bridge.A, devices...)
			if err != nil {
				log.Info.Panic(err)
			}
			if conf.Pin != "" {
				s.Pin = conf.Pin
			}

			ctx, cancel := context.WithCancel(context.Background())
			g, ctx := errgroup.WithContext(ctx)

			// initial values, so HomeKit has something before the first poll
			poller.Poll(ctx)

			g.Go(func() error {
				return poller.Run(ctx)
			})
			g.Go(func() error {
				return ihkb.HTTPServer(ctx, conf.ListenAddr, client, reg)
			})
			g.Go(func() error {
				if err := s.ListenAndServe(ctx); err != nil && ctx.Err() == nil {
					return err
				}
				return nil
			})

			// wait for signal to shut down
			sigch := make(chan os.Signal, 3)
			signal.Notify(sigch, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGHUP, os.Interrupt)

			select {
			case sig := <-sigch:
				log.Info.Printf("shutdown requested by signal: %s", sig)
			case <-ctx.Done():
				log.Info.Printf("shutdown: %s", context.Cause(ctx))
			}
			cancel()

			return g.Wait()
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Info.Panic(err)
	}
}
