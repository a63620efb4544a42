package ihkb

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/brutella/hap/log"
)

// updater is implemented by every accessory: fetch and push into the characteristics
type updater interface {
	Update(ctx context.Context) error
}

// allowed poll intervals, 0 pauses polling
const (
	minPollInterval = 10 * time.Second
	maxPollInterval = time.Hour
)

// Poller keeps HomeKit's cached values fresh so controllers get events without asking.
// A zero interval pauses polling.
type Poller struct {
	devices  []updater
	interval atomic.Int64
	changed  chan struct{}
}

func NewPoller(interval time.Duration, devices ...updater) *Poller {
	p := &Poller{
		devices: devices,
		changed: make(chan struct{}, 1),
	}
	p.interval.Store(int64(interval))
	return p
}

func (p *Poller) Interval() time.Duration {
	return time.Duration(p.interval.Load())
}

// SetInterval takes effect immediately, including from inside Run
func (p *Poller) SetInterval(d time.Duration) {
	p.interval.Store(int64(d))
	select {
	case p.changed <- struct{}{}:
	default:
	}
}

// Run polls until ctx is canceled
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	tick := reset(ticker, p.Interval())

	for {
		select {
		case <-ctx.Done():
			log.Info.Printf("poller: context canceled")
			return nil
		case <-p.changed:
			tick = reset(ticker, p.Interval())
		case <-tick:
			p.Poll(ctx)
		}
	}
}

func reset(ticker *time.Ticker, d time.Duration) <-chan time.Time {
	if d <= 0 {
		ticker.Stop()
		return nil
	}
	ticker.Reset(d)
	return ticker.C
}

// Poll updates every device once
func (p *Poller) Poll(ctx context.Context) {
	for _, d := range p.devices {
		if err := d.Update(ctx); err != nil {
			log.Info.Printf("update failed: %s", err.Error())
		}
	}
}
