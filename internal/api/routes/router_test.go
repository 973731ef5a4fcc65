package routes_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/adapters/memory"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/api/handlers"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/api/routes"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/application/services"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
)

// newTestServer wires the real services over the in-memory repositories
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db := memory.NewDB()
	db.PutStore(entities.Store{ID: "s-near", Name: "Near", Location: entities.Location{Latitude: 51.5, Longitude: -0.12}, IsActive: true})
	db.PutStore(entities.Store{ID: "s-far", Name: "Far", Location: entities.Location{Latitude: 52.5, Longitude: -1.9}, IsActive: true})
	verifiedAt := time.Now().Add(-24 * time.Hour)
	db.PutItem(entities.Item{ID: "i-far", StoreID: "s-far", Name: "Whole Milk", Verified: true, VerifiedAt: &verifiedAt})
	db.PutItem(entities.Item{ID: "i-near", StoreID: "s-near", Name: "Oat Milk", Verified: true, VerifiedAt: &verifiedAt})

	stores := memory.NewStoreRepository(db)
	items := memory.NewItemRepository(db)

	proximity := services.NewProximityService(stores, items)
	reports := services.NewReportService(memory.NewReportRepository(db), items, memory.NewFlagRepository(db), services.DefaultFlagPolicy())
	verification := services.NewVerificationService(items, services.DefaultVerificationPolicy())

	router := routes.NewRouter(
		nil,
		handlers.NewProximityHandler(proximity),
		handlers.NewReportHandler(reports, nil, handlers.DefaultReportLimits(), nil),
		handlers.NewVerificationHandler(verification),
		nil,
		[]string{"*"},
		nil,
	)

	server := httptest.NewServer(router.SetupRoutes())
	t.Cleanup(server.Close)
	return server
}

func TestRouter_EndToEnd(t *testing.T) {
	server := newTestServer(t)
	client := server.Client()

	get := func(path string) (*http.Response, string) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL+path, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp, string(b)
	}

	post := func(path, body string) *http.Response {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	t.Run("health", func(t *testing.T) {
		resp, body := get("/health")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "OK", body)
	})

	t.Run("item search is ranked by store distance", func(t *testing.T) {
		resp, body := get("/api/items/search?q=milk&lat=51.5&lon=-0.12")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Less(t, strings.Index(body, "i-near"), strings.Index(body, "i-far"))
	})

	t.Run("repeated missing reports flag the item once", func(t *testing.T) {
		for i, comment := range []string{"a", "b", "c", "d", "e"} {
			req, err := http.NewRequest(http.MethodPost, server.URL+"/api/items/i-near/reports", strings.NewReader(`{"store_id":"s-near","type":"missing","comment":"`+comment+`"}`))
			require.NoError(t, err)
			req.Header.Set("X-Forwarded-For", "10.1.0."+strconv.Itoa(i+1))
			resp, err := client.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusCreated, resp.StatusCode)
		}

		resp, body := get("/api/items/i-near/reports/stats")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, `"missing":5`)
		assert.Contains(t, body, `"should_flag":true`)

		_, flags := get("/api/stores/s-near/flags")
		assert.Contains(t, flags, `"count":1`)

		_, review := get("/api/stores/s-near/verification/needs-review")
		assert.Contains(t, review, "i-near")
	})

	t.Run("verification lifecycle", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, post("/api/items/i-far/unverify", "").StatusCode)
		assert.Equal(t, http.StatusOK, post("/api/items/i-far/verify", "").StatusCode)
		assert.Equal(t, http.StatusNotFound, post("/api/items/missing/verify", "").StatusCode)
		assert.Equal(t, http.StatusCreated, post("/api/stores/s-far/items", `{"name":"Bread"}`).StatusCode)

		_, stats := get("/api/stores/s-far/verification/stats")
		assert.Contains(t, stats, `"total":2`)
		assert.Contains(t, stats, `"verified":2`)
	})

	t.Run("cors headers", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/health", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "https://app.example.com")
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	})
}
