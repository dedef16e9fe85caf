// Package transport defines the request and response shapes of the leads API.
package transport

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"leadboard_backend/internal/leads/coordinator"
	"leadboard_backend/internal/leads/domain"
	"leadboard_backend/internal/leads/filter"
)

const dateLayout = "2006-01-02"

// ParseCriteria builds filter criteria from list query parameters. Unknown
// parameters are ignored; malformed dates are rejected.
func ParseCriteria(q url.Values) (filter.Criteria, error) {
	c := filter.Criteria{
		Department: q.Get("department"),
		Assignee:   q.Get("assignee"),
		Status:     domain.CanonicalStatus(q.Get("status")),
		Quality:    domain.Quality(q.Get("quality")),
		Source:     q.Get("source"),
	}

	if raw := q.Get("dateFrom"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("dateFrom must be formatted %s", dateLayout)
		}
		c.DateFrom = from
	}
	if raw := q.Get("dateTo"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("dateTo must be formatted %s", dateLayout)
		}
		c.DateTo = to
	}

	return c, nil
}

// ReassignRequest is the partial update for a lead reassignment. Omitted
// fields keep their current values.
type ReassignRequest struct {
	AssigneeID            *string             `json:"assigneeId,omitempty" validate:"omitempty,max=100"`
	NextActionType        *string             `json:"nextActionType,omitempty" validate:"omitempty,max=100"`
	NextActionStatus      *string             `json:"nextActionStatus,omitempty" validate:"omitempty,oneof=pending done cancelled"`
	NextActionDescription *string             `json:"nextActionDescription,omitempty" validate:"omitempty,max=2000"`
	Attachments           []AttachmentPayload `json:"attachments,omitempty" validate:"omitempty,max=10,dive"`
}

// Fields converts the request to the coordinator's field set.
func (r ReassignRequest) Fields() coordinator.ReassignFields {
	return coordinator.ReassignFields{
		AssigneeID:            r.AssigneeID,
		NextActionType:        r.NextActionType,
		NextActionStatus:      r.NextActionStatus,
		NextActionDescription: r.NextActionDescription,
	}
}

// AttachmentPayload carries one base64-encoded document.
type AttachmentPayload struct {
	FileName    string `json:"fileName" validate:"required,min=1,max=255"`
	ContentType string `json:"contentType" validate:"required,min=1,max=255"`
	Data        string `json:"data" validate:"required,base64"`
}

// DecodeAttachments decodes request payloads into coordinator attachments.
func DecodeAttachments(payloads []AttachmentPayload) ([]coordinator.Attachment, error) {
	if len(payloads) == 0 {
		return nil, nil
	}
	out := make([]coordinator.Attachment, 0, len(payloads))
	for _, p := range payloads {
		data, err := base64.StdEncoding.DecodeString(p.Data)
		if err != nil {
			return nil, fmt.Errorf("attachment %q is not valid base64", p.FileName)
		}
		out = append(out, coordinator.Attachment{
			FileName:    p.FileName,
			ContentType: p.ContentType,
			Data:        data,
		})
	}
	return out, nil
}

// ReassignResponse reports a completed reassignment. FailedUploads names
// attachments that could not be stored; the reassignment itself succeeded.
type ReassignResponse struct {
	Lead          domain.Lead `json:"lead"`
	FailedUploads []string    `json:"failedUploads,omitempty"`
}

// PreferencesRequest is the persisted dashboard state sent by the client.
type PreferencesRequest struct {
	Filters   filter.Criteria `json:"filters"`
	ActiveTab string          `json:"activeTab" validate:"omitempty,oneof=active archived"`
	ViewMode  string          `json:"viewMode" validate:"omitempty,oneof=table board list"`
}
