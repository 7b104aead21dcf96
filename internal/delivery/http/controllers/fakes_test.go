package controllers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"eventhub/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	view  *domain.EventView
	views []*domain.EventView
	err   error

	lastDraft       *domain.NewEvent
	lastInitiatorID int64
	lastEventID     int64
	lastUserUpdate  *domain.UserEventUpdate
	lastAdminUpdate *domain.AdminEventUpdate
	lastPublic      domain.PublicSearchParam
	lastAdmin       domain.AdminSearchParam
	lastUser        domain.UserSearchParam
}

func (f *fakeEventService) ProposeEvent(_ context.Context, draft *domain.NewEvent, initiatorID int64) (*domain.EventView, error) {
	f.lastDraft, f.lastInitiatorID = draft, initiatorID
	return f.view, f.err
}

func (f *fakeEventService) UpdateByUser(_ context.Context, eventID, initiatorID int64, upd *domain.UserEventUpdate) (*domain.EventView, error) {
	f.lastEventID, f.lastInitiatorID, f.lastUserUpdate = eventID, initiatorID, upd
	return f.view, f.err
}

func (f *fakeEventService) UpdateByAdmin(_ context.Context, eventID int64, upd *domain.AdminEventUpdate) (*domain.EventView, error) {
	f.lastEventID, f.lastAdminUpdate = eventID, upd
	return f.view, f.err
}

func (f *fakeEventService) Search(_ context.Context, param domain.PublicSearchParam) ([]*domain.EventView, error) {
	f.lastPublic = param
	return f.views, f.err
}

func (f *fakeEventService) SearchAdmin(_ context.Context, param domain.AdminSearchParam) ([]*domain.EventView, error) {
	f.lastAdmin = param
	return f.views, f.err
}

func (f *fakeEventService) ListByInitiator(_ context.Context, param domain.UserSearchParam) ([]*domain.EventView, error) {
	f.lastUser = param
	return f.views, f.err
}

func (f *fakeEventService) GetPublished(_ context.Context, id int64) (*domain.EventView, error) {
	f.lastEventID = id
	return f.view, f.err
}

func (f *fakeEventService) GetForOwner(_ context.Context, eventID, userID int64) (*domain.EventView, error) {
	f.lastEventID, f.lastInitiatorID = eventID, userID
	return f.view, f.err
}

type fakeHitRecorder struct {
	hits []*domain.Hit
	err  error
}

func (f *fakeHitRecorder) RecordHit(_ context.Context, hit *domain.Hit) error {
	f.hits = append(f.hits, hit)
	return f.err
}

type fakeModeration struct {
	words     []string
	matched   []string
	err       error
	lastWords []string
	lastText  string
}

func (f *fakeModeration) ForbiddenWords(_ context.Context, _ int64) ([]string, error) {
	return f.words, f.err
}

func (f *fakeModeration) MergeForbiddenWords(_ context.Context, _ int64, words []string) ([]string, error) {
	f.lastWords = words
	return f.words, f.err
}

func (f *fakeModeration) ScreenComment(_ context.Context, _ int64, text string) ([]string, error) {
	f.lastText = text
	return f.matched, f.err
}

// serve routes one request through a mux so path values are populated.
func serve(pattern string, handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}
