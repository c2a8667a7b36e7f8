// Package battery implements the Battery command class.
package battery

import (
	"context"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

var commands = []cc.Command{
	{ID: CmdGet, Name: "Get"},
	{ID: CmdReport, Name: "Report"},
	{ID: CmdHealthGet, Name: "HealthGet", MinVersion: 2},
	{ID: CmdHealthReport, Name: "HealthReport", MinVersion: 2},
}

// Battery is the Battery command class instance.
type Battery struct {
	*cc.Base

	mu     sync.RWMutex
	last   *Report
	health *Health
}

// New creates a Battery instance on host.
func New(host cc.Host) *Battery {
	return &Battery{Base: cc.NewBase(wire.ClassBattery, host, commands)}
}

// Dependencies returns the Version class.
func (b *Battery) Dependencies() []wire.ClassID {
	return []wire.ClassID{wire.ClassVersion}
}

// Last returns the most recent report, or nil.
func (b *Battery) Last() *Report {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last
}

// LastHealth returns the most recent health report, or nil.
func (b *Battery) LastHealth() *Health {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.health
}

// Get requests the battery level.
func (b *Battery) Get(ctx context.Context) (Report, error) {
	f, err := b.Request(ctx, CmdGet, nil, CmdReport, nil)
	if err != nil {
		return Report{}, err
	}
	return ParseReport(f)
}

// GetHealth requests capacity and temperature.
func (b *Battery) GetHealth(ctx context.Context) (Health, error) {
	f, err := b.Request(ctx, CmdHealthGet, nil, CmdHealthReport, nil)
	if err != nil {
		return Health{}, err
	}
	return ParseHealthReport(f)
}

// Interview reads the level and, from version 2, the health.
func (b *Battery) Interview(ctx context.Context) error {
	if _, err := b.Get(ctx); err != nil {
		return err
	}
	if b.IsSupported(CmdHealthGet) == cc.SupportYes {
		if _, err := b.GetHealth(ctx); err != nil {
			return err
		}
	}
	return nil
}

// HandleReport applies Battery reports to instance state.
func (b *Battery) HandleReport(f wire.Frame) error {
	switch f.CommandID() {
	case CmdReport:
		r, err := ParseReport(f)
		if err != nil {
			return b.Malformed(f, err)
		}
		b.mu.Lock()
		b.last = &r
		b.mu.Unlock()
		b.DebugLog("battery report", "level", r.Level, "low", r.IsLow)

	case CmdHealthReport:
		h, err := ParseHealthReport(f)
		if err != nil {
			return b.Malformed(f, err)
		}
		b.mu.Lock()
		b.health = &h
		b.mu.Unlock()

	default:
		return b.Unhandled(f)
	}
	return nil
}
