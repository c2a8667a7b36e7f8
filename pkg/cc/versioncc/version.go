// Package versioncc implements the Version command class. Its interview
// negotiates the version of every other class on the endpoint, which
// settles their version-gated support answers.
package versioncc

import (
	"context"
	"fmt"
	"sync"

	"github.com/meshcc/meshcc-go/pkg/cc"
	"github.com/meshcc/meshcc-go/pkg/wire"
)

var commands = []cc.Command{
	{ID: CmdGet, Name: "Get"},
	{ID: CmdReport, Name: "Report"},
	{ID: CmdCommandClassGet, Name: "CommandClassGet"},
	{ID: CmdCommandClassReport, Name: "CommandClassReport"},
	{ID: CmdCapabilitiesGet, Name: "CapabilitiesGet", MinVersion: 3},
	{ID: CmdCapabilitiesReport, Name: "CapabilitiesReport", MinVersion: 3},
	{ID: CmdZWaveSoftwareGet, Name: "ZWaveSoftwareGet", MinVersion: 3, Capability: CapZWaveSoftware},
	{ID: CmdZWaveSoftwareReport, Name: "ZWaveSoftwareReport", MinVersion: 3, Capability: CapZWaveSoftware},
}

// Version is the Version command class instance.
type Version struct {
	*cc.Base

	mu           sync.RWMutex
	info         *Info
	capabilities *Capabilities
	software     *SoftwareInfo
}

// New creates a Version instance on host.
func New(host cc.Host) *Version {
	return &Version{Base: cc.NewBase(wire.ClassVersion, host, commands)}
}

// Dependencies returns nil; Version is always interviewed first.
func (v *Version) Dependencies() []wire.ClassID {
	return nil
}

// Info returns the last Version Report, or nil.
func (v *Version) Info() *Info {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.info
}

// Capabilities returns the last Capabilities Report, or nil.
func (v *Version) Capabilities() *Capabilities {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.capabilities
}

// Software returns the last Z-Wave Software Report, or nil.
func (v *Version) Software() *SoftwareInfo {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.software
}

// Get requests the node's library, protocol and firmware versions.
func (v *Version) Get(ctx context.Context) (Info, error) {
	f, err := v.Request(ctx, CmdGet, nil, CmdReport, nil)
	if err != nil {
		return Info{}, err
	}
	return ParseReport(f)
}

// GetCommandClassVersion queries the version of class id and records it
// on the sibling instance, if present.
func (v *Version) GetCommandClassVersion(ctx context.Context, id wire.ClassID) (uint8, error) {
	match := func(f wire.Frame) bool {
		got, _, err := ParseCommandClassReport(f)
		return err == nil && got == id
	}
	f, err := v.Request(ctx, CmdCommandClassGet, classBytes(id), CmdCommandClassReport, match)
	if err != nil {
		return 0, err
	}
	_, ver, err := ParseCommandClassReport(f)
	return ver, err
}

// GetCapabilities requests the capability flags.
func (v *Version) GetCapabilities(ctx context.Context) (Capabilities, error) {
	f, err := v.Request(ctx, CmdCapabilitiesGet, nil, CmdCapabilitiesReport, nil)
	if err != nil {
		return Capabilities{}, err
	}
	return ParseCapabilitiesReport(f)
}

// GetSoftware requests detailed software versions. It requires the
// Z-Wave Software capability.
func (v *Version) GetSoftware(ctx context.Context) (SoftwareInfo, error) {
	f, err := v.Request(ctx, CmdZWaveSoftwareGet, nil, CmdZWaveSoftwareReport, nil)
	if err != nil {
		return SoftwareInfo{}, err
	}
	return ParseSoftwareReport(f)
}

// Interview negotiates this class's own version, then every other class on
// the endpoint, then reads the device versions and capabilities.
func (v *Version) Interview(ctx context.Context) error {
	if _, err := v.GetCommandClassVersion(ctx, wire.ClassVersion); err != nil {
		return fmt.Errorf("own version: %w", err)
	}

	for _, id := range v.Host().CommandClasses() {
		if id == wire.ClassVersion {
			continue
		}
		if _, err := v.GetCommandClassVersion(ctx, id); err != nil {
			return fmt.Errorf("version of %s: %w", id, err)
		}
	}

	if _, err := v.Get(ctx); err != nil {
		return err
	}

	if v.IsSupported(CmdCapabilitiesGet) == cc.SupportYes {
		if _, err := v.GetCapabilities(ctx); err != nil {
			return err
		}
	}
	if v.IsSupported(CmdZWaveSoftwareGet) == cc.SupportYes {
		if _, err := v.GetSoftware(ctx); err != nil {
			return err
		}
	}
	return nil
}

// HandleReport applies Version reports to instance state.
func (v *Version) HandleReport(f wire.Frame) error {
	switch f.CommandID() {
	case CmdReport:
		info, err := ParseReport(f)
		if err != nil {
			return v.Malformed(f, err)
		}
		v.mu.Lock()
		v.info = &info
		v.mu.Unlock()

	case CmdCommandClassReport:
		id, ver, err := ParseCommandClassReport(f)
		if err != nil {
			return v.Malformed(f, err)
		}
		v.applyClassVersion(id, ver)

	case CmdCapabilitiesReport:
		caps, err := ParseCapabilitiesReport(f)
		if err != nil {
			return v.Malformed(f, err)
		}
		v.SetCapability(CapVersion, caps.Version)
		v.SetCapability(CapCommandClass, caps.CommandClass)
		v.SetCapability(CapZWaveSoftware, caps.ZWaveSoftware)
		v.mu.Lock()
		v.capabilities = &caps
		v.mu.Unlock()

	case CmdZWaveSoftwareReport:
		sw, err := ParseSoftwareReport(f)
		if err != nil {
			return v.Malformed(f, err)
		}
		v.mu.Lock()
		v.software = &sw
		v.mu.Unlock()

	default:
		return v.Unhandled(f)
	}
	return nil
}

func (v *Version) applyClassVersion(id wire.ClassID, ver uint8) {
	if id == wire.ClassVersion {
		v.SetVersion(ver)
		return
	}
	if c, ok := v.Host().CommandClass(id); ok {
		c.SetVersion(ver)
		v.DebugLog("negotiated version", "target", id.String(), "version", ver)
	}
}
