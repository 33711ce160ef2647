package driver

import "sort"

// EventType is the kind of a lifecycle event.
type EventType int

const (
	// DeviceAdded reports a supported device that appeared
	DeviceAdded EventType = iota

	// DeviceRemoved reports a supported device that went away
	DeviceRemoved
)

func (t EventType) String() string {
	switch t {
	case DeviceAdded:
		return "added"
	case DeviceRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is one device lifecycle change.
type Event struct {
	Type       EventType
	Descriptor Descriptor
	Variant    Variant
}

// Diff compares two enumerations and returns the lifecycle events for the
// devices supported by reg. Removals come first, then additions; within each
// group events are ordered by descriptor key.
func Diff(prev, cur []Descriptor, reg *Registry) []Event {
	before := index(prev)
	after := index(cur)

	var removed, added []Event
	for key, d := range before {
		if _, ok := after[key]; ok {
			continue
		}
		if v, ok := reg.Match(d); ok {
			removed = append(removed, Event{Type: DeviceRemoved, Descriptor: d, Variant: v})
		}
	}
	for key, d := range after {
		if _, ok := before[key]; ok {
			continue
		}
		if v, ok := reg.Match(d); ok {
			added = append(added, Event{Type: DeviceAdded, Descriptor: d, Variant: v})
		}
	}

	sortEvents(removed)
	sortEvents(added)
	return append(removed, added...)
}

func index(ds []Descriptor) map[string]Descriptor {
	m := make(map[string]Descriptor, len(ds))
	for _, d := range ds {
		m[d.Key()] = d
	}
	return m
}

func sortEvents(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].Descriptor.Key() < events[j].Descriptor.Key()
	})
}
