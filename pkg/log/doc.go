// Package log provides protocol capture for the command class engine.
//
// It is separate from operational logging (slog). A Logger receives one
// Event per transport frame, decoded command class message, interview
// state change and decode error, giving a machine-readable trace of a
// session that can be replayed with Reader.
//
// # Basic Usage
//
//	// Console output during development
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// Capture file
//	fl, _ := log.NewFileLogger("/var/log/meshcc/session.mlog")
//	cfg.ProtocolLogger = log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// Components do not build events by hand. They hold a *Session, which
// stamps the session id and timestamp:
//
//	s := log.NewSession(cfg.ProtocolLogger)
//	s.Frame(log.DirectionOut, nodeID, endpoint, data)
//
// A nil *Session discards everything.
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with the .mlog
// extension. `meshcc log view` and `meshcc log stats` read them.
package log
