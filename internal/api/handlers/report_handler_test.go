package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/adapters/cache"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/api/handlers"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/providers"
	apperrors "github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/errors"
)

func reportRequest(itemID, body, ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/items/"+itemID+"/reports", strings.NewReader(body))
	req.SetPathValue("id", itemID)
	req.RemoteAddr = ip + ":1234"
	return req
}

func TestReportHandler_SubmitReport(t *testing.T) {
	limits := handlers.ReportLimits{RateLimit: 3, RateWindow: time.Hour, DedupWindow: time.Minute}

	for name, cacheProvider := range map[string]providers.CacheProvider{
		"local limiter": nil,
		"cache limiter": cache.NewMemoryAdapter(64),
	} {
		t.Run(name, func(t *testing.T) {
			t.Run("success", func(t *testing.T) {
				service := &stubReportService{}
				handler := handlers.NewReportHandler(service, cacheProvider, limits, nil)

				w := httptest.NewRecorder()
				handler.SubmitReport(w, reportRequest("item-1", `{"store_id":"s1","type":" Missing ","comment":"gone","location":{"latitude":1,"longitude":2}}`, "10.0.0.1"))

				assert.Equal(t, http.StatusCreated, w.Code)
				require.Len(t, service.submitted, 1)
				input := service.submitted[0]
				assert.Equal(t, "item-1", input.ItemID)
				assert.Equal(t, entities.ReportTypeMissing, input.Type)
				require.NotNil(t, input.Location)
				assert.Nil(t, input.UserID)

				var body map[string]string
				require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
				assert.Equal(t, "report-1", body["id"])
			})

			t.Run("duplicate is ignored", func(t *testing.T) {
				service := &stubReportService{}
				handler := handlers.NewReportHandler(service, cacheProvider, limits, nil)
				body := `{"store_id":"s1","type":"found"}`

				w := httptest.NewRecorder()
				handler.SubmitReport(w, reportRequest("item-2", body, "10.0.0.2"))
				assert.Equal(t, http.StatusCreated, w.Code)

				w2 := httptest.NewRecorder()
				handler.SubmitReport(w2, reportRequest("item-2", body, "10.0.0.2"))
				assert.Equal(t, http.StatusAccepted, w2.Code)
				assert.Len(t, service.submitted, 1)
			})

			t.Run("failed submission can be retried", func(t *testing.T) {
				cases := []struct {
					ip     string
					err    error
					status int
				}{
					{"10.0.1.1", apperrors.NewReportSubmissionError(errors.New("connection reset")), http.StatusServiceUnavailable},
					{"10.0.1.2", apperrors.NewValidationError("store_id is required"), http.StatusBadRequest},
				}
				for _, tc := range cases {
					service := &stubReportService{err: tc.err}
					handler := handlers.NewReportHandler(service, cacheProvider, limits, nil)
					body := `{"store_id":"s1","type":"missing","comment":"not on shelf"}`

					w := httptest.NewRecorder()
					handler.SubmitReport(w, reportRequest("item-retry", body, tc.ip))
					assert.Equal(t, tc.status, w.Code)

					service.err = nil
					w2 := httptest.NewRecorder()
					handler.SubmitReport(w2, reportRequest("item-retry", body, tc.ip))
					assert.Equal(t, http.StatusCreated, w2.Code)
					assert.Len(t, service.submitted, 1)

					w3 := httptest.NewRecorder()
					handler.SubmitReport(w3, reportRequest("item-retry", body, tc.ip))
					assert.Equal(t, http.StatusAccepted, w3.Code)
					assert.Len(t, service.submitted, 1)
				}
			})

			t.Run("rate limit", func(t *testing.T) {
				service := &stubReportService{}
				handler := handlers.NewReportHandler(service, cacheProvider, limits, nil)

				for i := 0; i < 3; i++ {
					w := httptest.NewRecorder()
					handler.SubmitReport(w, reportRequest("item-"+strconv.Itoa(i), `{"store_id":"s1","type":"moved"}`, "10.0.0.3"))
					assert.Equal(t, http.StatusCreated, w.Code)
				}

				w := httptest.NewRecorder()
				handler.SubmitReport(w, reportRequest("item-9", `{"store_id":"s1","type":"moved"}`, "10.0.0.3"))
				assert.Equal(t, http.StatusTooManyRequests, w.Code)
				assert.NotEmpty(t, w.Header().Get("Retry-After"))
			})
		})
	}

	t.Run("failing shared cache falls back to the local limiter", func(t *testing.T) {
		service := &stubReportService{}
		handler := handlers.NewReportHandler(service, failingCache{}, limits, nil)
		body := `{"store_id":"s1","type":"found"}`

		w := httptest.NewRecorder()
		handler.SubmitReport(w, reportRequest("item-fb", body, "10.0.0.8"))
		assert.Equal(t, http.StatusCreated, w.Code)

		w2 := httptest.NewRecorder()
		handler.SubmitReport(w2, reportRequest("item-fb", body, "10.0.0.8"))
		assert.Equal(t, http.StatusAccepted, w2.Code)

		for i := 0; i < 2; i++ {
			w := httptest.NewRecorder()
			handler.SubmitReport(w, reportRequest("item-fb-"+strconv.Itoa(i), body, "10.0.0.8"))
			if i == 0 {
				assert.Equal(t, http.StatusCreated, w.Code)
			} else {
				assert.Equal(t, http.StatusTooManyRequests, w.Code)
			}
		}
		assert.Len(t, service.submitted, 2)
	})

	t.Run("invalid json", func(t *testing.T) {
		handler := handlers.NewReportHandler(&stubReportService{}, nil, limits, nil)

		w := httptest.NewRecorder()
		handler.SubmitReport(w, reportRequest("item-1", `{`, "10.0.0.4"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation error is 400", func(t *testing.T) {
		handler := handlers.NewReportHandler(&stubReportService{err: apperrors.NewValidationError("invalid report type")}, nil, limits, nil)

		w := httptest.NewRecorder()
		handler.SubmitReport(w, reportRequest("item-1", `{"store_id":"s1","type":"lost"}`, "10.0.0.5"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid report type")
	})

	t.Run("submission failure is 503 with the generic message", func(t *testing.T) {
		err := apperrors.NewReportSubmissionError(errors.New("pq: relation reports does not exist"))
		handler := handlers.NewReportHandler(&stubReportService{err: err}, nil, limits, nil)

		w := httptest.NewRecorder()
		handler.SubmitReport(w, reportRequest("item-1", `{"store_id":"s1","type":"missing"}`, "10.0.0.6"))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), apperrors.ReportSubmissionMessage)
		assert.NotContains(t, w.Body.String(), "pq:")
	})
}

func TestReportHandler_Reads(t *testing.T) {
	service := &stubReportService{stats: entities.ReportStats{Total: 4, Missing: 3, Found: 1}, flag: true}
	handler := handlers.NewReportHandler(service, nil, handlers.DefaultReportLimits(), nil)

	t.Run("stats", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/items/item-1/reports/stats", nil)
		req.SetPathValue("id", "item-1")
		w := httptest.NewRecorder()
		handler.GetStats(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Stats      entities.ReportStats `json:"stats"`
			ShouldFlag bool                 `json:"should_flag"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, 3, body.Stats.Missing)
		assert.True(t, body.ShouldFlag)
	})

	t.Run("reports", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/items/item-1/reports", nil)
		req.SetPathValue("id", "item-1")
		w := httptest.NewRecorder()
		handler.ListReports(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":1`)
	})

	t.Run("pending flags", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/stores/s1/flags", nil)
		req.SetPathValue("id", "s1")
		w := httptest.NewRecorder()
		handler.ListPendingFlags(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"pending_review"`)
	})
}
