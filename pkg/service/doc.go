// Package service ties the transport, the node table and the interview
// orchestrator together.
//
// A Controller owns one transport.Driver. Inbound envelopes are read from
// the driver by a single pump goroutine and routed by node id to a
// per-node inbox, where each node dispatches its own frames in order. A
// node that falls behind drops its own traffic without stalling the
// others.
//
// Example usage:
//
//	cfg := service.DefaultControllerConfig()
//	ctrl, err := service.NewController(driver, cfg)
//	ctrl.AddNode(service.NodeSpec{ID: 5, Endpoints: [][]wire.ClassID{{wire.ClassVersion, wire.ClassBattery}}})
//	ctrl.Start(ctx)
//	defer ctrl.Close()
//
//	res, err := ctrl.Interview(ctx, 5)
package service
