package resource

import "github.com/wippyai/xresource/guid"

// EventType identifies a resource lifecycle notification.
type EventType uint8

const (
	EventLoaded     EventType = iota // a loader produced new data
	EventAttached                    // an unresolved reference joined a live instance
	EventLoadFailed                  // a loader returned nil
	EventCloned                      // ownership was shared through Clone
	EventReleased                    // a reference gave up its share
	EventDestroyed                   // the last share was released
)

func (t EventType) String() string {
	switch t {
	case EventLoaded:
		return "loaded"
	case EventAttached:
		return "attached"
	case EventLoadFailed:
		return "load-failed"
	case EventCloned:
		return "cloned"
	case EventReleased:
		return "released"
	case EventDestroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Event represents a resource lifecycle event.
type Event struct {
	Data     any
	TypeName string
	ID       guid.Full
	RefCount int
	Type     EventType
}

// Observer receives notifications about resource lifecycle events.
// Observers run synchronously inside the manager operation.
type Observer interface {
	OnResourceEvent(Event)
}

// Stats is a snapshot of manager bookkeeping.
type Stats struct {
	Live         int     // distinct resolved instances
	Capacity     int     // instance pool size
	Free         int     // unused pool slots
	Types        int     // registered resource types
	Loads        uint64  // successful loader calls
	LoadFailures uint64  // loader calls that returned nil
	Destroys     uint64  // destroy calls
	Utilization  float64 // Live / Capacity (0.0-1.0)
}
