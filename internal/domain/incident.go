package domain

import "time"

// Incident is a status-affecting event recorded against exactly one service.
// Incidents are immutable once created.
type Incident struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	ServiceID   string    `json:"service_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// IncidentView is an incident annotated with its owning service.
type IncidentView struct {
	Incident
	Display StatusDisplay `json:"display"`
	Service Service       `json:"service"`
}

// NewIncidentView builds the display projection of an incident.
func NewIncidentView(incident Incident, service Service) IncidentView {
	return IncidentView{
		Incident: incident,
		Display:  incident.Status.Display(),
		Service:  service,
	}
}
