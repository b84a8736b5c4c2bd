package domain

import "time"

// CommandKind tags the closed set of commands the bus can dispatch.
type CommandKind string

const (
	KindPutLocation CommandKind = "PutLocation"
	KindHealthCheck CommandKind = "HealthCheck"
)

// Message seals the set of dispatchable messages: a Command or an Event.
type Message interface {
	message()
}

// Command is an input message with exactly one handler whose result is
// returned to the caller.
type Command interface {
	Message
	CommandKind() CommandKind
}

// PutLocation carries one client ping. Timestamp holds the client's local
// wall clock; Naive is true when the wire value carried no UTC offset, in
// which case the wall clock is re-read in the zone resolved from the
// coordinates before converting to UTC.
type PutLocation struct {
	Timestamp time.Time
	Naive     bool
	Lat       float64
	Long      float64
	Accuracy  float64
	Speed     float64
	UserID    string
}

func (PutLocation) message()                 {}
func (PutLocation) CommandKind() CommandKind { return KindPutLocation }

// HealthCheck verifies that a unit of work can be opened and committed
// with zero writes.
type HealthCheck struct{}

func (HealthCheck) message()                 {}
func (HealthCheck) CommandKind() CommandKind { return KindHealthCheck }
