// Package plan defines the wire model for tracking-plan validation results.
package plan

// EventStatus classifies a detected analytics event relative to the tracking plan.
type EventStatus string

const (
	StatusValid   EventStatus = "valid"
	StatusInvalid EventStatus = "invalid"
	StatusMissing EventStatus = "missing"
	StatusNew     EventStatus = "new"
)

func (s EventStatus) Valid() bool {
	switch s {
	case StatusValid, StatusInvalid, StatusMissing, StatusNew:
		return true
	}
	return false
}

// Summary carries the per-status event counts. Fields absent from the
// response decode to zero.
type Summary struct {
	TotalEvents   int `json:"totalEvents"`
	ValidEvents   int `json:"validEvents"`
	InvalidEvents int `json:"invalidEvents"`
	MissingEvents int `json:"missingEvents"`
	NewEvents     int `json:"newEvents"`
}

// Location points at a source line where an event is implemented.
type Location struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Code string `json:"code,omitempty"`
}

// Event is one analytics event from the validation response.
type Event struct {
	Name           string      `json:"name"`
	Status         EventStatus `json:"status"`
	Message        string      `json:"message,omitempty"`
	Implementation []Location  `json:"implementation,omitempty"`
	Properties     Properties  `json:"properties,omitempty"`
}

// FirstLocation returns the event's first implementation location, if any.
func (e Event) FirstLocation() (Location, bool) {
	if len(e.Implementation) == 0 {
		return Location{}, false
	}
	return e.Implementation[0], true
}

// Metadata is optional run information attached by the validation service.
type Metadata struct {
	ValidationDuration float64 `json:"validationDuration,omitempty"`
	AgentVersion       string  `json:"agentVersion,omitempty"`
}

// Result is the validation service's response for one run. It is received,
// never mutated, and never persisted.
type Result struct {
	Valid               bool      `json:"valid"`
	Summary             Summary   `json:"summary"`
	Events              []Event   `json:"events"`
	TrackingPlanUpdated bool      `json:"trackingPlanUpdated"`
	Metadata            *Metadata `json:"metadata,omitempty"`
}

// Partitioned holds events split by status.
type Partitioned struct {
	Valid   []Event
	Invalid []Event
	Missing []Event
	New     []Event
}

// Partition splits events by status. Each event lands in exactly one bucket;
// events with an unrecognized status land in none.
func Partition(events []Event) Partitioned {
	var p Partitioned
	for _, ev := range events {
		switch ev.Status {
		case StatusValid:
			p.Valid = append(p.Valid, ev)
		case StatusInvalid:
			p.Invalid = append(p.Invalid, ev)
		case StatusMissing:
			p.Missing = append(p.Missing, ev)
		case StatusNew:
			p.New = append(p.New, ev)
		}
	}
	return p
}

// Names returns the event names in order.
func Names(events []Event) []string {
	names := make([]string, 0, len(events))
	for _, ev := range events {
		names = append(names, ev.Name)
	}
	return names
}
