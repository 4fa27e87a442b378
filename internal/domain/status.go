package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status represents the operational state shared by services and incidents.
type Status string

// Statuses.
const (
	StatusOperational Status = "OPERATIONAL"
	StatusDegraded    Status = "DEGRADED"
	StatusOutage      Status = "OUTAGE"
	StatusMaintenance Status = "MAINTENANCE"
)

// Statuses returns every known status in display order.
func Statuses() []Status {
	return []Status{StatusOperational, StatusDegraded, StatusOutage, StatusMaintenance}
}

// IsValid checks if the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusOperational, StatusDegraded, StatusOutage, StatusMaintenance:
		return true
	}
	return false
}

// ParseStatus converts user input to a Status. Letter case and surrounding
// whitespace are ignored.
func ParseStatus(s string) (Status, error) {
	status := Status(cases.Upper(language.Und).String(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// StatusDisplay is the presentation of a status on the status page.
type StatusDisplay struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Label returns the human-readable name of the status.
func (s Status) Label() string {
	switch s {
	case StatusOperational:
		return "Operational"
	case StatusDegraded:
		return "Degraded Performance"
	case StatusOutage:
		return "Outage"
	case StatusMaintenance:
		return "Maintenance"
	}
	return "Unknown"
}

// Color returns the indicator color used for the status.
func (s Status) Color() string {
	switch s {
	case StatusOperational:
		return "green"
	case StatusDegraded:
		return "yellow"
	case StatusOutage:
		return "red"
	case StatusMaintenance:
		return "blue"
	}
	return "gray"
}

// Display returns label and color together.
func (s Status) Display() StatusDisplay {
	return StatusDisplay{Label: s.Label(), Color: s.Color()}
}
