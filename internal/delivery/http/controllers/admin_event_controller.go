package controllers

import (
	"fmt"
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// UpdateEventAdminRequest is the request body for PATCH /admin/events/{eventId}.
type UpdateEventAdminRequest struct {
	eventFields
	StateAction *string `json:"stateAction"`
}

// Validate implements Validator.
func (req UpdateEventAdminRequest) Validate() []string {
	errs := req.validate()
	if req.StateAction != nil {
		switch domain.AdminStateAction(*req.StateAction) {
		case domain.ActionPublish, domain.ActionReject:
		default:
			errs = append(errs, fmt.Sprintf("stateAction must be %s or %s", domain.ActionPublish, domain.ActionReject))
		}
	}
	return errs
}

func (req UpdateEventAdminRequest) update() *domain.AdminEventUpdate {
	upd := &domain.AdminEventUpdate{EventPatch: req.patch()}
	if req.StateAction != nil {
		upd.StateAction = domain.AdminStateAction(*req.StateAction)
	}
	return upd
}

// ForbiddenWordsRequest is the request body for PATCH /admin/events/{eventId}/forbidden-words.
type ForbiddenWordsRequest struct {
	Words []string `json:"words"`
}

// Validate implements Validator.
func (req ForbiddenWordsRequest) Validate() []string {
	if len(req.Words) == 0 {
		return []string{"words must not be empty"}
	}
	return nil
}

// ForbiddenWordsResponse lists an event's forbidden words.
// swagger:model ForbiddenWordsResponse
type ForbiddenWordsResponse struct {
	EventID int64    `json:"eventId"`
	Words   []string `json:"words"`
}

// ForbiddenWordsSuccessResponse is the success envelope for forbidden word endpoints.
type ForbiddenWordsSuccessResponse struct {
	Data  ForbiddenWordsResponse `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// AdminEventController serves moderation endpoints. Routes are wrapped with RequireRole("admin").
type AdminEventController struct {
	Logger     *slog.Logger
	Service    domain.EventService
	Moderation domain.CommentModerationService
}

func NewAdminEventController(logger *slog.Logger, svc domain.EventService, moderation domain.CommentModerationService) *AdminEventController {
	return &AdminEventController{Logger: logger, Service: svc, Moderation: moderation}
}

// SearchEvents godoc
// @Summary Search events as administrator
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param users query []int false "Initiator ids" collectionFormat(csv)
// @Param states query []string false "PENDING, PUBLISHED, CANCELED" collectionFormat(csv)
// @Param categories query []int false "Category ids" collectionFormat(csv)
// @Param rangeStart query string false "Lower bound, 2006-01-02 15:04:05"
// @Param rangeEnd query string false "Upper bound, 2006-01-02 15:04:05"
// @Param from query int false "Offset" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /admin/events [get]
func (c *AdminEventController) SearchEvents(w http.ResponseWriter, r *http.Request) {
	param, err := parseAdminSearch(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	views, err := c.Service.SearchAdmin(r.Context(), param)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	writeEvents(w, views)
}

// UpdateEvent godoc
// @Summary Moderate an event
// @Description PUBLISH_EVENT requires a PENDING event starting at least one hour from now. REJECT_EVENT is refused for published events.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Param event body UpdateEventAdminRequest true "Changed fields"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /admin/events/{eventId} [patch]
func (c *AdminEventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := helpers.PathID(r, "eventId")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var req UpdateEventAdminRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	view, err := c.Service.UpdateByAdmin(r.Context(), eventID, req.update())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	writeEvent(w, http.StatusOK, view)
}

// GetForbiddenWords godoc
// @Summary List an event's forbidden comment words
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Success 200 {object} controllers.ForbiddenWordsSuccessResponse
// @Router /admin/events/{eventId}/forbidden-words [get]
func (c *AdminEventController) GetForbiddenWords(w http.ResponseWriter, r *http.Request) {
	eventID, err := helpers.PathID(r, "eventId")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	words, err := c.Moderation.ForbiddenWords(r.Context(), eventID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ForbiddenWordsResponse{EventID: eventID, Words: words})
}

// MergeForbiddenWords godoc
// @Summary Add forbidden comment words
// @Description Union-merges the words into the event's list and returns the full list.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventId path int true "Event ID"
// @Param words body ForbiddenWordsRequest true "Words to add"
// @Success 200 {object} controllers.ForbiddenWordsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /admin/events/{eventId}/forbidden-words [patch]
func (c *AdminEventController) MergeForbiddenWords(w http.ResponseWriter, r *http.Request) {
	eventID, err := helpers.PathID(r, "eventId")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var req ForbiddenWordsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	words, err := c.Moderation.MergeForbiddenWords(r.Context(), eventID, req.Words)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ForbiddenWordsResponse{EventID: eventID, Words: words})
}

func parseAdminSearch(r *http.Request) (domain.AdminSearchParam, error) {
	var p domain.AdminSearchParam
	var err error
	if p.Users, err = helpers.QueryIDs(r, "users"); err != nil {
		return p, err
	}
	for _, s := range helpers.QueryStrings(r, "states") {
		st, err := domain.ParseEventState(s)
		if err != nil {
			return p, err
		}
		p.States = append(p.States, st)
	}
	if p.Categories, err = helpers.QueryIDs(r, "categories"); err != nil {
		return p, err
	}
	if p.RangeStart, err = helpers.QueryTime(r, "rangeStart"); err != nil {
		return p, err
	}
	if p.RangeEnd, err = helpers.QueryTime(r, "rangeEnd"); err != nil {
		return p, err
	}
	if p.Page, err = helpers.ParsePage(r); err != nil {
		return p, err
	}
	return p, nil
}
