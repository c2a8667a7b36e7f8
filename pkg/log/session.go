package log

import (
	"time"

	"github.com/google/uuid"

	"github.com/meshcc/meshcc-go/pkg/wire"
)

// MaxFrameData is the number of raw bytes kept in a FrameEvent.
const MaxFrameData = 256

// Session stamps events with a session id and timestamp. All methods are
// safe on a nil *Session and then do nothing.
type Session struct {
	id     string
	logger Logger
	now    func() time.Time
}

// NewSession starts a session with a fresh id. It returns nil when logger
// is nil so callers can hold the result unconditionally.
func NewSession(logger Logger) *Session {
	if logger == nil {
		return nil
	}
	return &Session{
		id:     uuid.NewString(),
		logger: logger,
		now:    time.Now,
	}
}

// ID returns the session id, or "" for a nil session.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

func (s *Session) emit(e Event) {
	e.Timestamp = s.now()
	e.SessionID = s.id
	s.logger.Log(e)
}

// Frame records raw transport bytes.
func (s *Session) Frame(dir Direction, node uint16, endpoint uint8, data []byte) {
	if s == nil {
		return
	}
	fe := &FrameEvent{Size: len(data)}
	if len(data) > MaxFrameData {
		fe.Data = append([]byte(nil), data[:MaxFrameData]...)
		fe.Truncated = true
	} else {
		fe.Data = append([]byte(nil), data...)
	}
	s.emit(Event{
		Direction: dir,
		Layer:     LayerTransport,
		Category:  CategoryMessage,
		NodeID:    node,
		Endpoint:  endpoint,
		Frame:     fe,
	})
}

// Message records a command class frame. Outbound frames are commands,
// inbound frames are reports.
func (s *Session) Message(dir Direction, node uint16, endpoint uint8, f wire.Frame, correlated bool) {
	if s == nil {
		return
	}
	typ := MessageTypeCommand
	if dir == DirectionIn {
		typ = MessageTypeReport
	}
	s.emit(Event{
		Direction: dir,
		Layer:     LayerWire,
		Category:  CategoryMessage,
		NodeID:    node,
		Endpoint:  endpoint,
		Message: &MessageEvent{
			Type:       typ,
			ClassID:    uint16(f.ClassID()),
			CommandID:  uint8(f.CommandID()),
			Params:     append([]byte(nil), f.Params()...),
			Correlated: correlated,
		},
	})
}

// StateChange records a transition. class is only meaningful for
// StateEntityInterview.
func (s *Session) StateChange(entity StateEntity, node uint16, class wire.ClassID, from, to, reason string) {
	if s == nil {
		return
	}
	s.emit(Event{
		Layer:    LayerService,
		Category: CategoryState,
		NodeID:   node,
		StateChange: &StateChangeEvent{
			Entity:   entity,
			ClassID:  uint16(class),
			OldState: from,
			NewState: to,
			Reason:   reason,
		},
	})
}

// Error records an error at layer.
func (s *Session) Error(layer Layer, node uint16, endpoint uint8, err error, context string) {
	if s == nil || err == nil {
		return
	}
	s.emit(Event{
		Direction: DirectionIn,
		Layer:     layer,
		Category:  CategoryError,
		NodeID:    node,
		Endpoint:  endpoint,
		Error: &ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Context: context,
		},
	})
}
