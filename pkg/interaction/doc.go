// Package interaction correlates requests with the reports that answer them.
//
// A Client is bound to one endpoint conversation. Callers register an
// Expectation (class id, command id and an optional predicate) before the
// request goes out, then suspend until the dispatch loop delivers the first
// frame that satisfies it or the context is cancelled.
//
//	client := interaction.NewClient(endpoint)
//
//	report, err := client.Request(ctx, getFrame, interaction.Expectation{
//	    ClassID:   wire.ClassMeter,
//	    CommandID: 0x02,
//	    Match:     func(f wire.Frame) bool { return scaleOf(f) == wanted },
//	})
//
// The dispatch loop calls Deliver for every inbound frame after the command
// class handler has processed it. Frames no waiter claims are simply dropped
// by the client; their state effects have already been applied.
//
// # Ordering
//
// Waiters are kept in registration order and a frame resolves at most one
// of them. Later frames of the same shape are ordinary unsolicited reports.
//
// # Timeouts
//
// The client has no timeout of its own. Callers bound the wait with the
// context they pass in.
package interaction
