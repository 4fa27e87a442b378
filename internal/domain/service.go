package domain

import "time"

// Service represents a monitored service.
type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServiceView is a service together with its most recent incident, as shown on the status page.
type ServiceView struct {
	Service
	Display        StatusDisplay `json:"display"`
	LatestIncident *Incident     `json:"latest_incident"`
}

// NewServiceView builds the display projection of a service.
func NewServiceView(service Service, latest *Incident) ServiceView {
	return ServiceView{
		Service:        service,
		Display:        service.Status.Display(),
		LatestIncident: latest,
	}
}
