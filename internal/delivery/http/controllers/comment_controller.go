package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/domain"
)

// ScreenCommentRequest is the request body for POST /events/{eventId}/comments/screen.
type ScreenCommentRequest struct {
	Text string `json:"text"`
}

// Validate implements Validator.
func (req ScreenCommentRequest) Validate() []string {
	if req.Text == "" {
		return []string{"text is required"}
	}
	return nil
}

// ScreenCommentResponse reports whether a comment may be posted as is.
// swagger:model ScreenCommentResponse
type ScreenCommentResponse struct {
	Allowed bool     `json:"allowed"`
	Matched []string `json:"matched"`
}

// ScreenCommentSuccessResponse is the success envelope for comment screening.
type ScreenCommentSuccessResponse struct {
	Data  ScreenCommentResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type CommentController struct {
	Logger     *slog.Logger
	Moderation domain.CommentModerationService
}

func NewCommentController(logger *slog.Logger, moderation domain.CommentModerationService) *CommentController {
	return &CommentController{Logger: logger, Moderation: moderation}
}

// ScreenComment godoc
// @Summary Check comment text against the event's forbidden words
// @Tags comments
// @Accept json
// @Produce json
// @Param eventId path int true "Event ID"
// @Param comment body ScreenCommentRequest true "Comment text"
// @Success 200 {object} controllers.ScreenCommentSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events/{eventId}/comments/screen [post]
func (c *CommentController) ScreenComment(w http.ResponseWriter, r *http.Request) {
	eventID, err := helpers.PathID(r, "eventId")
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	var req ScreenCommentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	matched, err := c.Moderation.ScreenComment(r.Context(), eventID, req.Text)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if matched == nil {
		matched = []string{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ScreenCommentResponse{Allowed: len(matched) == 0, Matched: matched})
}
