package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"eventhub/internal/adapters/stats"
	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// PublicEventController serves published events to anonymous callers.
type PublicEventController struct {
	Logger  *slog.Logger
	Service domain.EventService
	// Hits may be nil, in which case visits are not recorded.
	Hits domain.HitRecorder
}

func NewPublicEventController(logger *slog.Logger, svc domain.EventService, hits domain.HitRecorder) *PublicEventController {
	return &PublicEventController{
		Logger:  logger,
		Service: svc,
		Hits:    hits,
	}
}

// SearchEvents godoc
// @Summary Search published events
// @Description Full text search over annotation and description plus filters. Without rangeStart only upcoming events are returned. A successful search records a view of /events.
// @Tags public
// @Produce json
// @Param text query string false "Case-insensitive text"
// @Param categories query []int false "Category ids" collectionFormat(csv)
// @Param paid query bool false "Paid filter"
// @Param rangeStart query string false "Lower bound, 2006-01-02 15:04:05"
// @Param rangeEnd query string false "Upper bound, 2006-01-02 15:04:05"
// @Param onlyAvailable query bool false "Drop events whose participant limit is reached"
// @Param sort query string false "EVENT_DATE or VIEWS"
// @Param from query int false "Offset" default(0)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /events [get]
func (c *PublicEventController) SearchEvents(w http.ResponseWriter, r *http.Request) {
	param, err := parsePublicSearch(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	views, err := c.Service.Search(r.Context(), param)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.recordHit(r, r.URL.Path)
	writeEvents(w, views)
}

// GetEvent godoc
// @Summary Get a published event
// @Description Returns a published event with its confirmed requests and unique views. A successful lookup records a view of /events/{id}.
// @Tags public
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [get]
func (c *PublicEventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	view, err := c.Service.GetPublished(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	c.recordHit(r, stats.EventURI(id))
	writeEvent(w, http.StatusOK, view)
}

// recordHit reports a visit after a successful lookup, so the returned views
// do not include it yet. Failures are logged only.
func (c *PublicEventController) recordHit(r *http.Request, uri string) {
	if c.Hits == nil {
		return
	}
	hit := &domain.Hit{URI: uri, IP: clientIP(r), Timestamp: time.Now().UTC()}
	if err := c.Hits.RecordHit(r.Context(), hit); err != nil {
		c.Logger.WarnContext(r.Context(), "failed to record hit", "uri", uri, "err", err)
	}
}

func parsePublicSearch(r *http.Request) (domain.PublicSearchParam, error) {
	var p domain.PublicSearchParam
	var err error
	q := r.URL.Query()
	p.Text = q.Get("text")
	if p.Categories, err = helpers.QueryIDs(r, "categories"); err != nil {
		return p, err
	}
	if p.Paid, err = helpers.QueryBool(r, "paid"); err != nil {
		return p, err
	}
	if p.RangeStart, err = helpers.QueryTime(r, "rangeStart"); err != nil {
		return p, err
	}
	if p.RangeEnd, err = helpers.QueryTime(r, "rangeEnd"); err != nil {
		return p, err
	}
	onlyAvailable, err := helpers.QueryBool(r, "onlyAvailable")
	if err != nil {
		return p, err
	}
	p.OnlyAvailable = onlyAvailable != nil && *onlyAvailable
	if p.Sort, err = domain.ParseSortOrder(q.Get("sort")); err != nil {
		return p, err
	}
	if p.Page, err = helpers.ParsePage(r); err != nil {
		return p, err
	}
	return p, nil
}
