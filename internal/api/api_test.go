package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Freeeeeet/guide_scheduler/internal/api"
	"github.com/Freeeeeet/guide_scheduler/internal/cache"
	"github.com/Freeeeeet/guide_scheduler/internal/notify"
	"github.com/Freeeeeet/guide_scheduler/internal/repository/memory"
	"github.com/Freeeeeet/guide_scheduler/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const monday = "2025-05-05"

func setupAPI(t *testing.T, timeout time.Duration) *api.API {
	t.Helper()

	opts := service.DefaultOptions()
	opts.Now = func() time.Time { return time.Date(2025, time.May, 1, 9, 0, 0, 0, time.UTC) }
	services := service.New(memory.NewStore(), cache.Nop{}, notify.Nop{}, opts, zap.NewNop())

	a := api.NewAPI(services, timeout, zap.NewNop())
	a.RegisterRoutes()
	return a
}

func do(t *testing.T, a *api.API, method, path string, body any) (*httptest.ResponseRecorder, api.Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	a.Router().ServeHTTP(rec, req)

	var res api.Response
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&res))
	}
	return rec, res
}

func asMap(t *testing.T, res api.Response) map[string]any {
	t.Helper()
	m, ok := res.Response.(map[string]any)
	require.True(t, ok, "response is %T", res.Response)
	return m
}

func workMonday(t *testing.T, a *api.API) {
	t.Helper()
	rec, _ := do(t, a, http.MethodPut, "/api/guides/1/schedule/1", map[string]any{
		"is_available": true, "start_time": "9:00", "end_time": "17:00",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func createBooking(t *testing.T, a *api.API, start, end string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec, res := do(t, a, http.MethodPost, "/api/bookings", map[string]any{
		"guide_id": 1, "tourist_id": 2, "date": monday, "start_time": start, "end_time": end,
	})
	if rec.Code != http.StatusCreated {
		return rec, nil
	}
	return rec, asMap(t, res)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	a := setupAPI(t, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestScheduleAPI(t *testing.T) {
	t.Parallel()

	t.Run("weekly template", func(t *testing.T) {
		t.Parallel()
		a := setupAPI(t, time.Second)
		workMonday(t, a)

		rec, res := do(t, a, http.MethodGet, "/api/guides/1/schedule", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		week, ok := res.Response.([]any)
		require.True(t, ok)
		require.Len(t, week, 7)
		assert.Equal(t, "09:00", week[1].(map[string]any)["start_time"])
		assert.Equal(t, false, week[2].(map[string]any)["is_available"])

		rec, res = do(t, a, http.MethodGet, "/api/guides/1/schedule/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "17:00", asMap(t, res)["end_time"])
	})

	t.Run("invalid template", func(t *testing.T) {
		t.Parallel()
		a := setupAPI(t, time.Second)

		rec, _ := do(t, a, http.MethodPut, "/api/guides/1/schedule/1", map[string]any{"is_available": true})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, _ = do(t, a, http.MethodPut, "/api/guides/1/schedule/9", map[string]any{"is_available": false})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, _ = do(t, a, http.MethodPut, "/api/guides/1/schedule/1", map[string]any{
			"is_available": true, "start_time": "17:00", "end_time": "09:00",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("holiday exception empties slots", func(t *testing.T) {
		t.Parallel()
		a := setupAPI(t, time.Second)
		workMonday(t, a)

		rec, res := do(t, a, http.MethodGet, "/api/guides/1/slots?date="+monday+"&duration=120", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, asMap(t, res)["slots"], 7)

		rec, res = do(t, a, http.MethodPut, "/api/guides/1/exceptions/"+monday, map[string]any{
			"is_available": false, "reason": "holiday",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		exceptionID := asMap(t, res)["id"].(string)

		rec, res = do(t, a, http.MethodGet, "/api/guides/1/slots?date="+monday+"&duration=120", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, asMap(t, res)["slots"])

		rec, res = do(t, a, http.MethodGet, "/api/guides/1/availability?date="+monday, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "exception", asMap(t, res)["source"])
		assert.Equal(t, "holiday", asMap(t, res)["reason"])

		rec, res = do(t, a, http.MethodGet, "/api/guides/1/exceptions?from=2025-05-01&to=2025-05-31", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, res.Response, 1)

		rec, _ = do(t, a, http.MethodDelete, "/api/exceptions/"+exceptionID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec, _ = do(t, a, http.MethodDelete, "/api/exceptions/"+exceptionID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("past exception rejected", func(t *testing.T) {
		t.Parallel()
		a := setupAPI(t, time.Second)

		rec, res := do(t, a, http.MethodPut, "/api/guides/1/exceptions/2025-04-01", map[string]any{"is_available": false})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "validation", asMap(t, res)["error"])
	})

	t.Run("calendar", func(t *testing.T) {
		t.Parallel()
		a := setupAPI(t, time.Second)
		workMonday(t, a)

		rec, res := do(t, a, http.MethodGet, "/api/guides/1/calendar?from=2025-05-01&to=2025-05-07", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		days, ok := res.Response.([]any)
		require.True(t, ok)
		assert.Len(t, days, 7)
	})
}

func TestWeekImageAPI(t *testing.T) {
	t.Parallel()
	a := setupAPI(t, time.Second)
	workMonday(t, a)
	rec, _ := createBooking(t, a, "10:00", "12:00")
	require.Equal(t, http.StatusCreated, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/guides/1/week.png?from="+monday, nil)
	rec = httptest.NewRecorder()
	a.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec, _ = do(t, a, http.MethodGet, "/api/guides/1/week.png?from=bad", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingsAPI(t *testing.T) {
	t.Parallel()

	t.Run("create and price", func(t *testing.T) {
		t.Parallel()
		a := setupAPI(t, time.Second)
		workMonday(t, a)

		rec, booking := createBooking(t, a, "10:00", "13:00")
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "pending", booking["status"])
		assert.Equal(t, float64(9000), booking["fee"])
		assert.Equal(t, "10:00", booking["start_time"])

		rec, res := do(t, a, http.MethodGet, "/api/bookings/"+booking["id"].(string), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, booking["id"], asMap(t, res)["id"])
	})

	t.Run("overlap conflict", func(t *testing.T) {
		t.Parallel()
		a := setupAPI(t, time.Second)
		workMonday(t, a)

		rec, _ := createBooking(t, a, "10:00", "12:00")
		require.Equal(t, http.StatusCreated, rec.Code)

		rec, _ = createBooking(t, a, "11:00", "13:00")
		assert.Equal(t, http.StatusConflict, rec.Code)

		rec, _ = createBooking(t, a, "12:00", "13:00")
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("bad requests", func(t *testing.T) {
		t.Parallel()
		a := setupAPI(t, time.Second)
		workMonday(t, a)

		rec, _ := do(t, a, http.MethodPost, "/api/bookings", "invalid")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, _ = do(t, a, http.MethodPost, "/api/bookings", map[string]any{"guide_id": 1})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, _ = createBooking(t, a, "10:00", "25:00")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, _ = createBooking(t, a, "16:00", "18:00")
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, _ = do(t, a, http.MethodGet, "/api/bookings/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec, _ = do(t, a, http.MethodGet, "/api/bookings/6f1c2d3e-0000-4000-8000-000000000001", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("status transitions", func(t *testing.T) {
		t.Parallel()
		a := setupAPI(t, time.Second)
		workMonday(t, a)

		rec, booking := createBooking(t, a, "10:00", "12:00")
		require.Equal(t, http.StatusCreated, rec.Code)
		path := fmt.Sprintf("/api/bookings/%s/status", booking["id"])

		rec, res := do(t, a, http.MethodPatch, path, map[string]any{"status": "confirmed", "role": "tourist"})
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, "invalid_transition", asMap(t, res)["error"])
		assert.Equal(t, false, asMap(t, res)["retryable"])

		rec, res = do(t, a, http.MethodPatch, path, map[string]any{"status": "confirmed", "role": "guide"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "confirmed", asMap(t, res)["status"])

		rec, _ = do(t, a, http.MethodPatch, path, map[string]any{"status": "cancelled", "role": "tourist"})
		require.Equal(t, http.StatusOK, rec.Code)

		rec, _ = do(t, a, http.MethodPatch, path, map[string]any{"status": "archived", "role": "guide"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("lists", func(t *testing.T) {
		t.Parallel()
		a := setupAPI(t, time.Second)
		workMonday(t, a)

		for _, window := range [][2]string{{"09:00", "10:00"}, {"11:00", "12:00"}, {"13:00", "14:00"}} {
			rec, _ := createBooking(t, a, window[0], window[1])
			require.Equal(t, http.StatusCreated, rec.Code)
		}

		rec, res := do(t, a, http.MethodGet, "/api/guides/1/bookings?from="+monday+"&to="+monday, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, res.Response, 3)

		rec, res = do(t, a, http.MethodGet, "/api/tourists/2/bookings", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, res.Response, 3)

		rec, _ = do(t, a, http.MethodGet, "/api/guides/1/bookings?from="+monday, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestFeesAndReviewsAPI(t *testing.T) {
	t.Parallel()
	a := setupAPI(t, time.Second)
	workMonday(t, a)

	rec, res := do(t, a, http.MethodGet, "/api/guides/1/fees", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(6000), asMap(t, res)["base_fee"])

	rec, _ = do(t, a, http.MethodPut, "/api/guides/1/fees", map[string]any{"base_fee": -5, "hourly_fee": 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, a, http.MethodPut, "/api/guides/1/fees", map[string]any{"base_fee": 7000, "hourly_fee": 2000})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, booking := createBooking(t, a, "10:00", "13:00")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(9000), booking["fee"])

	id := booking["id"].(string)
	review := map[string]any{"reviewer_id": 2, "reviewee_id": 1, "rating": 5, "comment": "great"}

	rec, _ = do(t, a, http.MethodPost, "/api/bookings/"+id+"/reviews", review)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, status := range []string{"confirmed", "completed"} {
		rec, _ = do(t, a, http.MethodPatch, "/api/bookings/"+id+"/status", map[string]any{"status": status, "role": "guide"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec, _ = do(t, a, http.MethodPost, "/api/bookings/"+id+"/reviews", review)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = do(t, a, http.MethodPost, "/api/bookings/"+id+"/reviews", review)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, res = do(t, a, http.MethodGet, "/api/users/1/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, res.Response, 1)
}

func TestStoreTimeoutIsUnavailable(t *testing.T) {
	t.Parallel()
	a := setupAPI(t, time.Nanosecond)

	rec, res := do(t, a, http.MethodGet, "/api/guides/1/availability?date="+monday, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", asMap(t, res)["error"])
	assert.Equal(t, true, asMap(t, res)["retryable"])
}

func TestSlotsRejectOversizedParams(t *testing.T) {
	t.Parallel()
	a := setupAPI(t, time.Second)
	workMonday(t, a)

	for _, query := range []string{
		"duration=9223372036854775707",
		"duration=1441",
		"duration=60&step=9223372036854775807",
		"duration=99999999999999999999",
	} {
		t.Run(query, func(t *testing.T) {
			rec, res := do(t, a, http.MethodGet, "/api/guides/1/slots?date="+monday+"&"+query, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "validation", asMap(t, res)["error"])
		})
	}
}
