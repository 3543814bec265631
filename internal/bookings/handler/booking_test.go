package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "courtside/pkg/errors"
	"courtside/pkg/logger"
	"courtside/pkg/middleware"
	"courtside/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBookingService struct {
	CreateFn       func(ctx context.Context, booking *model.Booking, principal model.Principal) error
	GetByIDFn      func(ctx context.Context, id string, principal model.Principal) (*model.Booking, error)
	ListMineFn     func(ctx context.Context, principal model.Principal, limit int, offset int64) ([]*model.Booking, int64, error)
	ListUpcomingFn func(ctx context.Context, principal model.Principal, limit int, offset int64) ([]*model.Booking, error)
	UpdateStatusFn func(ctx context.Context, id, status string, principal model.Principal) (*model.Booking, error)
}

func (s *stubBookingService) Create(ctx context.Context, booking *model.Booking, principal model.Principal) error {
	return s.CreateFn(ctx, booking, principal)
}

func (s *stubBookingService) GetByID(ctx context.Context, id string, principal model.Principal) (*model.Booking, error) {
	return s.GetByIDFn(ctx, id, principal)
}

func (s *stubBookingService) ListMine(ctx context.Context, principal model.Principal, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.ListMineFn(ctx, principal, limit, offset)
}

func (s *stubBookingService) ListUpcoming(ctx context.Context, principal model.Principal, limit int, offset int64) ([]*model.Booking, error) {
	return s.ListUpcomingFn(ctx, principal, limit, offset)
}

func (s *stubBookingService) UpdateStatus(ctx context.Context, id, status string, principal model.Principal) (*model.Booking, error) {
	return s.UpdateStatusFn(ctx, id, status, principal)
}

func newRouter(svc *stubBookingService) *httprouter.Router {
	router := httprouter.New()
	h := NewBookingHandler(svc, logger.New(logger.Options{Level: "error", Output: io.Discard}))
	h.RegisterRoutes(router)
	return router
}

func authedRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := middleware.WithPrincipal(req.Context(), model.Principal{
		UID:   "resident-1",
		Email: "r1@example.com",
		Role:  model.RoleResident,
	})
	return req.WithContext(ctx)
}

func TestCreateBookingEndpoint(t *testing.T) {
	t.Run("valid request returns 201 with the booking", func(t *testing.T) {
		svc := &stubBookingService{
			CreateFn: func(_ context.Context, booking *model.Booking, principal model.Principal) error {
				booking.ID = "656f000000000000000000bb"
				booking.Status = model.BookingPending
				booking.UserID = principal.UID
				return nil
			},
		}
		router := newRouter(svc)

		body := `{"facilityId":"656f000000000000000000aa","facilityName":"Tennis Court A","selectedDate":"2026-09-07","slot":"09:00 - 10:00"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/bookings", body))

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp struct {
			Data model.Booking `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, model.BookingPending, resp.Data.Status)
		assert.Equal(t, "2026-09-07", resp.Data.Date)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		router := newRouter(&stubBookingService{})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/bookings", "{not json"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthenticated request returns 401", func(t *testing.T) {
		router := newRouter(&stubBookingService{})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader("{}"))
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("conflict surfaces as 409 with code", func(t *testing.T) {
		svc := &stubBookingService{
			CreateFn: func(_ context.Context, _ *model.Booking, _ model.Principal) error {
				return apperrors.Conflict("Slot is fully booked")
			},
		}
		router := newRouter(svc)

		body := `{"facilityId":"656f000000000000000000aa","facilityName":"Tennis Court A","selectedDate":"2026-09-07","slot":"09:00 - 10:00"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/bookings", body))

		require.Equal(t, http.StatusConflict, rec.Code)
		var resp struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, apperrors.CodeConflict, resp.Code)
		assert.Equal(t, "Slot is fully booked", resp.Error)
	})
}

func TestUpdateBookingStatusEndpoint(t *testing.T) {
	t.Run("passes path id and payload status through", func(t *testing.T) {
		var gotID, gotStatus string
		svc := &stubBookingService{
			UpdateStatusFn: func(_ context.Context, id, status string, _ model.Principal) (*model.Booking, error) {
				gotID, gotStatus = id, status
				return &model.Booking{ID: id, Status: status}, nil
			},
		}
		router := newRouter(svc)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPatch,
			"/api/v1/bookings/id/656f000000000000000000bb/status", `{"status":"approved"}`))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "656f000000000000000000bb", gotID)
		assert.Equal(t, "approved", gotStatus)
	})

	t.Run("forbidden surfaces as 403", func(t *testing.T) {
		svc := &stubBookingService{
			UpdateStatusFn: func(_ context.Context, _, _ string, _ model.Principal) (*model.Booking, error) {
				return nil, apperrors.Forbidden("Only the facility's staff or an admin may change booking status")
			},
		}
		router := newRouter(svc)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPatch,
			"/api/v1/bookings/id/656f000000000000000000bb/status", `{"status":"approved"}`))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestListMineEndpoint(t *testing.T) {
	svc := &stubBookingService{
		ListMineFn: func(_ context.Context, principal model.Principal, limit int, offset int64) ([]*model.Booking, int64, error) {
			return []*model.Booking{{ID: "1", UserID: principal.UID}}, 1, nil
		},
	}
	router := newRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/bookings/mine?limit=10&offset=0", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data       []model.Booking `json:"data"`
		TotalCount int64           `json:"total_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.TotalCount)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "resident-1", resp.Data[0].UserID)
}
