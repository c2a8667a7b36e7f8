// Package cc holds the shared shape of every command class: the tri-state
// support query, negotiated version and capability state, the Host a class
// instance talks through, and the reconciliation of per-key report state
// against a freshly reported supported set.
//
// Individual command classes live in sub-packages and embed *Base:
//
//	type Battery struct {
//	    *cc.Base
//	    ...
//	}
//
//	func New(host cc.Host) *Battery {
//	    return &Battery{Base: cc.NewBase(wire.ClassBattery, host, commands)}
//	}
//
// # Support
//
// IsSupported never guesses. Base commands are always supported. Commands
// introduced in a later version report SupportUnknown until the version is
// negotiated, and commands gated on a capability flag report SupportUnknown
// until the capability report has been received. Once known, an answer
// never reverts to unknown.
//
// EffectiveVersion falls back to 1 and is only used to pick an encoding.
package cc
