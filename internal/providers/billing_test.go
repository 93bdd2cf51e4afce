package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/pkg/logger"
)

func testClient(t *testing.T, handler http.Handler) (*BillingClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewBillingClient(config.UpstreamConfig{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, logger.New(logger.Config{Level: "error"}))

	return client, server
}

func TestListUsersPaginationParams(t *testing.T) {
	var gotPage, gotPageSize string

	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/users" {
			t.Errorf("path = %q, want /api/admin/users", r.URL.Path)
		}
		gotPage = r.URL.Query().Get("page")
		gotPageSize = r.URL.Query().Get("pageSize")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{"id": 1, "email": "ana@example.com", "fullName": "Ana"},
			},
			"page":     2,
			"pageSize": 50,
			"total":    120,
		})
	}))

	page, err := client.ListUsers(context.Background(), 2, 50)
	if err != nil {
		t.Fatalf("ListUsers() error: %v", err)
	}

	if gotPage != "2" || gotPageSize != "50" {
		t.Errorf("query = page=%s pageSize=%s, want page=2 pageSize=50", gotPage, gotPageSize)
	}
	if page.Total != 120 {
		t.Errorf("total = %d, want 120", page.Total)
	}
	if len(page.Items) != 1 || page.Items[0].Email != "ana@example.com" {
		t.Errorf("items = %+v", page.Items)
	}
}

func TestListUsersTolerantDates(t *testing.T) {
	rfc := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{
					"id":    1,
					"email": "ana@example.com",
					"purchases": []map[string]interface{}{
						{"id": 10, "productName": "Pro Screener", "endsAt": rfc.Format(time.RFC3339)},
						{"id": 11, "productName": "Options Flow", "endsAt": rfc.UnixMilli()},
						{"id": 12, "productName": "Level 2 Data", "endsAt": nil},
						{"id": 13, "productName": "Alerts", "endsAt": "not-a-date"},
					},
				},
			},
			"total": 1,
		})
	}))

	page, err := client.ListUsers(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("ListUsers() error: %v", err)
	}

	purchases := page.Items[0].Purchases
	if len(purchases) != 4 {
		t.Fatalf("got %d purchases, want all 4 kept", len(purchases))
	}

	if purchases[0].EndsAt == nil || !purchases[0].EndsAt.Equal(rfc) {
		t.Errorf("RFC3339 endsAt = %v, want %v", purchases[0].EndsAt, rfc)
	}
	if purchases[1].EndsAt == nil || !purchases[1].EndsAt.Equal(rfc) {
		t.Errorf("epoch-millis endsAt = %v, want %v", purchases[1].EndsAt, rfc)
	}
	// Missing and garbage dates degrade to nil, never fail the page
	if purchases[2].EndsAt != nil {
		t.Errorf("null endsAt = %v, want nil", purchases[2].EndsAt)
	}
	if purchases[3].EndsAt != nil {
		t.Errorf("garbage endsAt = %v, want nil", purchases[3].EndsAt)
	}
}

func TestListUsersUpstreamError(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	if _, err := client.ListUsers(context.Background(), 1, 10); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestExpiredSummaryFirstEndpointWins(t *testing.T) {
	var paths []string

	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{"userId": 1, "userEmail": "ana@example.com", "productName": "Pro Screener",
					"endsAt": time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)},
			},
		})
	}))

	rows, err := client.ExpiredSummary(context.Background(), 7)
	if err != nil {
		t.Fatalf("ExpiredSummary() error: %v", err)
	}

	if len(paths) != 1 || paths[0] != "/api/admin/subscriptions/expired-summary" {
		t.Errorf("requested %v, want only the primary endpoint", paths)
	}
	if len(rows) != 1 || rows[0].UserID != 1 {
		t.Errorf("rows = %+v", rows)
	}
	if got := rows[0].ProductLabel; got != "Pro Screener" {
		t.Errorf("product label = %q, want Pro Screener", got)
	}
}

func TestExpiredSummaryFallsBackToSecondEndpoint(t *testing.T) {
	var paths []string

	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if r.URL.Path == "/api/admin/subscriptions/expired-summary" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{"userId": 2, "productName": "Options Flow",
					"endsAt": time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)},
			},
		})
	}))

	rows, err := client.ExpiredSummary(context.Background(), 7)
	if err != nil {
		t.Fatalf("ExpiredSummary() error: %v", err)
	}

	want := []string{"/api/admin/subscriptions/expired-summary", "/api/admin/reports/expired"}
	if len(paths) != 2 || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("requested %v, want %v", paths, want)
	}
	if len(rows) != 1 || rows[0].UserID != 2 {
		t.Errorf("rows = %+v", rows)
	}
}

func TestExpiredSummaryAllEndpointsFail(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	if _, err := client.ExpiredSummary(context.Background(), 7); err == nil {
		t.Fatal("expected error when every endpoint fails")
	}
}

func TestExpiredSummaryDropsRowsWithoutDate(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{"userId": 1, "productName": "Pro Screener",
					"endsAt": time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)},
				{"userId": 2, "productName": "Options Flow", "endsAt": nil},
			},
		})
	}))

	rows, err := client.ExpiredSummary(context.Background(), 7)
	if err != nil {
		t.Fatalf("ExpiredSummary() error: %v", err)
	}
	if len(rows) != 1 || rows[0].UserID != 1 {
		t.Errorf("rows = %+v, want only the dated row", rows)
	}
}

func TestWireTimeNeverErrors(t *testing.T) {
	inputs := []string{
		`null`,
		`"2026-03-01T00:00:00Z"`,
		`1774915200000`,
		`"garbage"`,
		`{"nested": true}`,
	}
	for _, in := range inputs {
		var w wireTime
		if err := w.UnmarshalJSON([]byte(in)); err != nil {
			t.Errorf("UnmarshalJSON(%s) error: %v", in, err)
		}
	}
}
