package controllers

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// CountersDegradedHeader is set on responses whose counters were replaced by zero.
const CountersDegradedHeader = "X-Counters-Degraded"

// Field length limits for event text.
const (
	titleMin       = 3
	titleMax       = 120
	annotationMin  = 20
	annotationMax  = 2000
	descriptionMin = 20
	descriptionMax = 7000
)

// EventResponse is the wire form of an event with its counters.
// swagger:model EventResponse
type EventResponse struct {
	ID                int64             `json:"id"`
	Title             string            `json:"title"`
	Annotation        string            `json:"annotation"`
	Description       string            `json:"description"`
	Category          int64             `json:"category"`
	CreatedOn         helpers.DateTime  `json:"createdOn"`
	EventDate         helpers.DateTime  `json:"eventDate"`
	PublishedOn       *helpers.DateTime `json:"publishedOn,omitempty"`
	Location          domain.Location   `json:"location"`
	Paid              bool              `json:"paid"`
	ParticipantLimit  int               `json:"participantLimit"`
	RequestModeration bool              `json:"requestModeration"`
	Initiator         int64             `json:"initiator"`
	State             domain.EventState `json:"state"`
	ConfirmedRequests int64             `json:"confirmedRequests"`
	Views             int64             `json:"views"`
}

// NewEventResponse maps a joined event to its wire form.
func NewEventResponse(v *domain.EventView) *EventResponse {
	return &EventResponse{
		ID:                v.ID,
		Title:             v.Title,
		Annotation:        v.Annotation,
		Description:       v.Description,
		Category:          v.CategoryID,
		CreatedOn:         helpers.DateTime{Time: v.CreatedOn},
		EventDate:         helpers.DateTime{Time: v.EventDate},
		PublishedOn:       helpers.NewDateTime(v.PublishedOn),
		Location:          v.Location,
		Paid:              v.Paid,
		ParticipantLimit:  v.ParticipantLimit,
		RequestModeration: v.RequestModeration,
		Initiator:         v.InitiatorID,
		State:             v.State,
		ConfirmedRequests: v.ConfirmedRequests,
		Views:             v.Views,
	}
}

// EventSuccessResponse is the success envelope for a single event.
type EventSuccessResponse struct {
	Data  *EventResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success envelope for a list of events.
type EventListSuccessResponse struct {
	Data  []*EventResponse  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

func writeEvent(w http.ResponseWriter, status int, v *domain.EventView) {
	if v.CountersDegraded {
		w.Header().Set(CountersDegradedHeader, "true")
	}
	helpers.WriteJSONSuccess(w, status, NewEventResponse(v))
}

func writeEvents(w http.ResponseWriter, views []*domain.EventView) {
	out := make([]*EventResponse, 0, len(views))
	degraded := false
	for _, v := range views {
		degraded = degraded || v.CountersDegraded
		out = append(out, NewEventResponse(v))
	}
	if degraded {
		w.Header().Set(CountersDegradedHeader, "true")
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}

// eventFields is the editable part shared by the update requests.
type eventFields struct {
	Title             *string           `json:"title"`
	Annotation        *string           `json:"annotation"`
	Description       *string           `json:"description"`
	Category          *int64            `json:"category"`
	EventDate         *helpers.DateTime `json:"eventDate"`
	Location          *domain.Location  `json:"location"`
	Paid              *bool             `json:"paid"`
	ParticipantLimit  *int              `json:"participantLimit"`
	RequestModeration *bool             `json:"requestModeration"`
}

func (f *eventFields) validate() []string {
	var errs []string
	if f.Title != nil {
		errs = appendLength(errs, "title", *f.Title, titleMin, titleMax)
	}
	if f.Annotation != nil {
		errs = appendLength(errs, "annotation", *f.Annotation, annotationMin, annotationMax)
	}
	if f.Description != nil {
		errs = appendLength(errs, "description", *f.Description, descriptionMin, descriptionMax)
	}
	if f.Category != nil && *f.Category <= 0 {
		errs = append(errs, "category must be positive")
	}
	if f.Location != nil {
		errs = appendLocation(errs, *f.Location)
	}
	if f.ParticipantLimit != nil && *f.ParticipantLimit < 0 {
		errs = append(errs, "participantLimit must be zero or positive")
	}
	return errs
}

func (f *eventFields) patch() domain.EventPatch {
	p := domain.EventPatch{
		Title:             f.Title,
		Annotation:        f.Annotation,
		Description:       f.Description,
		CategoryID:        f.Category,
		Location:          f.Location,
		Paid:              f.Paid,
		ParticipantLimit:  f.ParticipantLimit,
		RequestModeration: f.RequestModeration,
	}
	if f.EventDate != nil {
		t := f.EventDate.Time
		p.EventDate = &t
	}
	return p
}

func appendLength(errs []string, field, value string, lo, hi int) []string {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < lo || n > hi {
		return append(errs, fmt.Sprintf("%s must be between %d and %d characters", field, lo, hi))
	}
	return errs
}

func appendLocation(errs []string, loc domain.Location) []string {
	if loc.Lat < -90 || loc.Lat > 90 {
		errs = append(errs, "location.lat must be between -90 and 90")
	}
	if loc.Lon < -180 || loc.Lon > 180 {
		errs = append(errs, "location.lon must be between -180 and 180")
	}
	return errs
}

// clientIP returns the first X-Forwarded-For entry, then X-Real-IP, then the remote host.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
