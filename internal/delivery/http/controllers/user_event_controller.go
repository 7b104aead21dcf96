package controllers

import (
	"fmt"
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// NewEventRequest is the request body for POST /users/{userId}/events.
type NewEventRequest struct {
	Title             string            `json:"title"`
	Annotation        string            `json:"annotation"`
	Description       string            `json:"description"`
	Category          int64             `json:"category"`
	EventDate         *helpers.DateTime `json:"eventDate"`
	Location          *domain.Location  `json:"location"`
	Paid              bool              `json:"paid"`
	ParticipantLimit  int               `json:"participantLimit"`
	RequestModeration *bool             `json:"requestModeration"`
}

// Validate implements Validator.
func (req NewEventRequest) Validate() []string {
	var errs []string
	errs = appendLength(errs, "title", req.Title, titleMin, titleMax)
	errs = appendLength(errs, "annotation", req.Annotation, annotationMin, annotationMax)
	errs = appendLength(errs, "description", req.Description, descriptionMin, descriptionMax)
	if req.Category <= 0 {
		errs = append(errs, "category is required")
	}
	if req.EventDate == nil {
		errs = append(errs, "eventDate is required")
	}
	if req.Location == nil {
		errs = append(errs, "location is required")
	} else {
		errs = appendLocation(errs, *req.Location)
	}
	if req.ParticipantLimit < 0 {
		errs = append(errs, "participantLimit must be zero or positive")
	}
	return errs
}

func (req NewEventRequest) draft() *domain.NewEvent {
	moderation := true
	if req.RequestModeration != nil {
		moderation = *req.RequestModeration
	}
	return &domain.NewEvent{
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.Category,
		EventDate:         req.EventDate.Time,
		Location:          *req.Location,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: moderation,
	}
}

// UpdateEventUserRequest is the request body for PATCH /users/{userId}/events/{eventId}.
// All fields are optional; omitted fields are unchanged.
type UpdateEventUserRequest struct {
	eventFields
	StateAction *string `json:"stateAction"`
}

// Validate implements Validator.
func (req UpdateEventUserRequest) Validate() []string {
	errs := req.validate()
	if req.StateAction != nil {
		switch domain.UserStateAction(*req.StateAction) {
		case domain.ActionSendToReview, domain.ActionCancelReview:
		default:
			errs = append(errs, fmt.Sprintf("stateAction must be %s or %s", domain.ActionSendToReview, domain.ActionCancelReview))
		}
	}
	return errs
}

func (req UpdateEventUserRequest) update() *domain.UserEventUpdate {
	upd := &domain.UserEventUpdate{EventPatch: req.patch()}
	if req.StateAction != nil {
		upd.StateAction = domain.UserStateAction(*req.StateAction)
	}
	return upd
}

// UserEventController serves an initiator's own events.
type UserEventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewUserEventController(logger *slog.Logger, svc domain.EventService) *UserEventController {
	return &UserEventController{Logger: logger, Service: svc}
}

// ListEvents godoc
// @Summary List a user's events
// @Tags users
// @Produce json
// @Param userId path int true "User ID"
// @Param from query int false "Offset" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /users/{userId}/events [get]
func (c *UserEventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	page, err := helpers.ParsePage(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	views, err := c.Service.ListByInitiator(r.Context(), domain.UserSearchParam{UserID: userID, Page: page})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	writeEvents(w, views)
}

// CreateEvent godoc
// @Summary Propose a new event
// @Description Creates an event in PENDING state owned by the user.
// @Tags users
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param event body NewEventRequest true "Event draft"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{userId}/events [post]
func (c *UserEventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userID, err := helpers.PathID(r, "userId")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var req NewEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	view, err := c.Service.ProposeEvent(r.Context(), req.draft(), userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	writeEvent(w, http.StatusCreated, view)
}

// GetEvent godoc
// @Summary Get one of the user's events
// @Tags users
// @Produce json
// @Param userId path int true "User ID"
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userId}/events/{eventId} [get]
func (c *UserEventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := c.ids(w, r)
	if !ok {
		return
	}
	view, err := c.Service.GetForOwner(r.Context(), eventID, userID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	writeEvent(w, http.StatusOK, view)
}

// UpdateEvent godoc
// @Summary Edit one of the user's events
// @Description Published events cannot be changed. stateAction SEND_TO_REVIEW moves the event to PENDING, CANCEL_REVIEW to CANCELED.
// @Tags users
// @Accept json
// @Produce json
// @Param userId path int true "User ID"
// @Param eventId path int true "Event ID"
// @Param event body UpdateEventUserRequest true "Changed fields"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/{userId}/events/{eventId} [patch]
func (c *UserEventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userID, eventID, ok := c.ids(w, r)
	if !ok {
		return
	}
	var req UpdateEventUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	view, err := c.Service.UpdateByUser(r.Context(), eventID, userID, req.update())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	writeEvent(w, http.StatusOK, view)
}

func (c *UserEventController) ids(w http.ResponseWriter, r *http.Request) (userID, eventID int64, ok bool) {
	userID, err := helpers.PathID(r, "userId")
	if err == nil {
		eventID, err = helpers.PathID(r, "eventId")
	}
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return 0, 0, false
	}
	return userID, eventID, true
}
