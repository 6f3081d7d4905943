/*
incident.go - Maintenance incident tracking

PURPOSE:
  Incidents are maintenance requests tied to a lease. They move
  monotonically open -> in_progress -> resolved (open -> resolved is
  allowed for trivial fixes). Resolved is terminal: reopening means
  creating a new incident, so the resolution timestamp stays honest.

COMMENTS:
  Append-only, allowed while the incident is open or in progress. The
  source stored bare strings; entries here carry author and timestamp.
*/
package lease

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// INCIDENT MODEL
// =============================================================================

type IncidentStatus string

const (
	IncidentOpen       IncidentStatus = "open"
	IncidentInProgress IncidentStatus = "in_progress"
	IncidentResolved   IncidentStatus = "resolved"
)

type Comment struct {
	Author string
	Text   string
	At     time.Time
}

type Incident struct {
	ID          IncidentID
	Title       string
	Description string
	Status      IncidentStatus
	CreatedAt   time.Time
	// ResolvedAt is set if and only if Status == resolved.
	ResolvedAt *time.Time
	Comments   []Comment
}

// =============================================================================
// OPERATIONS
// =============================================================================

// CreateIncident opens a new maintenance incident on the contract.
// Rejected on finished contracts.
func CreateIncident(c *Contract, title, description string, now time.Time) (*Incident, IncidentCreated, error) {
	if c.Status == ContractFinished {
		return nil, IncidentCreated{}, &StateError{Op: "createIncident", Status: c.Status}
	}
	if strings.TrimSpace(title) == "" {
		return nil, IncidentCreated{}, &IntegrityError{Field: "title", Reason: "must not be empty"}
	}

	c.Incidents = append(c.Incidents, Incident{
		ID:          IncidentID(uuid.NewString()),
		Title:       title,
		Description: description,
		Status:      IncidentOpen,
		CreatedAt:   now,
	})
	inc := &c.Incidents[len(c.Incidents)-1]

	return inc, IncidentCreated{Contract: c.ID, Incident: inc.ID, Title: title}, nil
}

// AddComment appends a comment to an open or in-progress incident.
func AddComment(c *Contract, id IncidentID, author, text string, now time.Time) (CommentAdded, error) {
	inc := c.FindIncident(id)
	if inc == nil {
		return CommentAdded{}, &NotFoundError{Entity: "incident", Ref: string(id)}
	}
	if inc.Status == IncidentResolved {
		return CommentAdded{}, &TransitionError{Entity: "incident", From: string(inc.Status), To: "commented"}
	}
	if strings.TrimSpace(text) == "" {
		return CommentAdded{}, &IntegrityError{Field: "comment", Reason: "must not be empty"}
	}

	inc.Comments = append(inc.Comments, Comment{Author: author, Text: text, At: now})

	return CommentAdded{Contract: c.ID, Incident: id, Author: author}, nil
}

// AdvanceIncident moves an incident forward. Allowed transitions:
// open -> in_progress, in_progress -> resolved, open -> resolved.
// Resolving stamps the resolution date. Everything else fails with
// ErrInvalidTransition, including reopening.
func AdvanceIncident(c *Contract, id IncidentID, to IncidentStatus, now time.Time) (IncidentAdvanced, error) {
	inc := c.FindIncident(id)
	if inc == nil {
		return IncidentAdvanced{}, &NotFoundError{Entity: "incident", Ref: string(id)}
	}

	from := inc.Status
	if !incidentTransitionAllowed(from, to) {
		return IncidentAdvanced{}, &TransitionError{Entity: "incident", From: string(from), To: string(to)}
	}

	inc.Status = to
	if to == IncidentResolved {
		at := now
		inc.ResolvedAt = &at
	}

	return IncidentAdvanced{Contract: c.ID, Incident: id, From: from, To: to}, nil
}

func incidentTransitionAllowed(from, to IncidentStatus) bool {
	switch from {
	case IncidentOpen:
		return to == IncidentInProgress || to == IncidentResolved
	case IncidentInProgress:
		return to == IncidentResolved
	default:
		return false
	}
}
