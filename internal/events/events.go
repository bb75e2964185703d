package events

import "time"

const (
	TypeVehicleProcessed = "vehicle.processed"
	TypeDocumentExported = "document.exported"
)

// Event is what the live feed carries after a sheet is built or exported.
type Event struct {
	Type          string    `json:"type"`
	UserID        string    `json:"user_id"`
	CDSIdentifier string    `json:"cds_identifier,omitempty"`
	Sources       []string  `json:"sources,omitempty"`
	Language      string    `json:"language,omitempty"`
	At            time.Time `json:"at"`
}

// Publisher accepts events. A nil Publisher is not allowed; use Discard.
type Publisher interface {
	Publish(Event)
}

type discard struct{}

func (discard) Publish(Event) {}

// Discard drops every event.
var Discard Publisher = discard{}
