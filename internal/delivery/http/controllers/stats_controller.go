package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// HitRequest is the request body for POST /hit.
type HitRequest struct {
	domain.Hit
}

// Validate implements Validator.
func (req HitRequest) Validate() []string {
	var errs []string
	if req.App == "" {
		errs = append(errs, "app is required")
	}
	if req.URI == "" {
		errs = append(errs, "uri is required")
	}
	if req.IP == "" {
		errs = append(errs, "ip is required")
	}
	return errs
}

// ViewStatsSuccessResponse is the success envelope for GET /stats.
type ViewStatsSuccessResponse struct {
	Data  []*domain.ViewStats `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// StatsController serves the analytics endpoints of the stats server.
type StatsController struct {
	Logger  *slog.Logger
	Service domain.StatsService
}

func NewStatsController(logger *slog.Logger, svc domain.StatsService) *StatsController {
	return &StatsController{Logger: logger, Service: svc}
}

// SaveHit godoc
// @Summary Record a hit
// @Tags stats
// @Accept json
// @Security BearerAuth
// @Param hit body HitRequest true "Hit"
// @Success 201 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /hit [post]
func (c *StatsController) SaveHit(w http.ResponseWriter, r *http.Request) {
	var req HitRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.RecordHit(r.Context(), &req.Hit); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, nil)
}

// GetStats godoc
// @Summary Hit counts per uri
// @Description Counts hits in [start, end], optionally only distinct origins, ordered by hits descending.
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param start query string true "2006-01-02 15:04:05"
// @Param end query string true "2006-01-02 15:04:05"
// @Param uris query []string false "URIs" collectionFormat(multi)
// @Param unique query bool false "Count distinct origins" default(false)
// @Success 200 {object} controllers.ViewStatsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /stats [get]
func (c *StatsController) GetStats(w http.ResponseWriter, r *http.Request) {
	q, err := parseStatsQuery(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	stats, err := c.Service.GetStats(r.Context(), q)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}

func parseStatsQuery(r *http.Request) (domain.StatsQuery, error) {
	var q domain.StatsQuery
	start, err := helpers.QueryTime(r, "start")
	if err != nil {
		return q, err
	}
	end, err := helpers.QueryTime(r, "end")
	if err != nil {
		return q, err
	}
	if start == nil || end == nil {
		return q, domain.InvalidInputf("start and end are required")
	}
	unique, err := helpers.QueryBool(r, "unique")
	if err != nil {
		return q, err
	}
	q.Start, q.End = *start, *end
	q.URIs = helpers.QueryStrings(r, "uris")
	q.Unique = unique != nil && *unique
	return q, nil
}
