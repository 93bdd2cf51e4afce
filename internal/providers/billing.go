package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tradepulse/backend/internal/config"
	"github.com/tradepulse/backend/internal/domain/subscription"
	"github.com/tradepulse/backend/internal/pkg/logger"
	"github.com/tradepulse/backend/internal/pkg/metrics"
)

// BillingClient talks to the customer-product API: the paginated user
// directory and the best-effort expired-summary endpoints. It implements
// subscription.UserDirectory and subscription.SummarySource.
type BillingClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// Candidate summary endpoints, tried in order. The first one returning a
// parseable payload wins; both failing just means "no summary".
var summaryEndpoints = []string{
	"/api/admin/subscriptions/expired-summary",
	"/api/admin/reports/expired",
}

// NewBillingClient creates a new upstream billing API client
func NewBillingClient(cfg config.UpstreamConfig, log *logger.Logger) *BillingClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &BillingClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

// wire types: upstream field naming is inconsistent (camelCase), dates
// arrive as RFC3339 strings, epoch milliseconds or garbage, and the two
// product descriptors may disagree. Parsing failures on a single record
// degrade that record, never the page.

type wireUserPage struct {
	Items    []wireUser `json:"items"`
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	Total    int        `json:"total"`
}

type wireUser struct {
	ID        int64          `json:"id"`
	Email     string         `json:"email"`
	FullName  string         `json:"fullName"`
	Purchases []wirePurchase `json:"purchases"`
}

type wirePurchase struct {
	ID          int64    `json:"id"`
	ProductID   string   `json:"productId"`
	ProductKey  string   `json:"productKey"`
	ProductName string   `json:"productName"`
	Status      string   `json:"status"`
	StartedAt   wireTime `json:"startedAt"`
	EndsAt      wireTime `json:"endsAt"`
}

type wireSummaryPayload struct {
	Items []wireSummaryRow `json:"items"`
}

type wireSummaryRow struct {
	UserID      int64    `json:"userId"`
	UserEmail   string   `json:"userEmail"`
	UserName    string   `json:"userName"`
	ProductName string   `json:"productName"`
	EndsAt      wireTime `json:"endsAt"`
}

// wireTime is a tolerant timestamp: RFC3339 string, epoch milliseconds,
// or null/unparsable (which yields a nil time, not an error).
type wireTime struct {
	t *time.Time
}

func (w *wireTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		t := time.UnixMilli(ms).UTC()
		w.t = &t
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, str); err == nil {
		w.t = &parsed
	}
	return nil
}

// Time returns the parsed timestamp, or nil when missing/unparsable
func (w wireTime) Time() *time.Time {
	return w.t
}

// ListUsers retrieves one page of the user directory
func (c *BillingClient) ListUsers(ctx context.Context, page, pageSize int) (*subscription.UserPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))

	var payload wireUserPage
	if err := c.doRequest(ctx, "/api/admin/users", query, &payload); err != nil {
		metrics.RecordUpstreamError("users")
		return nil, err
	}

	result := &subscription.UserPage{
		Items:    make([]subscription.UserRecord, 0, len(payload.Items)),
		Page:     payload.Page,
		PageSize: payload.PageSize,
		Total:    payload.Total,
	}
	if result.Page == 0 {
		result.Page = page
	}
	if result.PageSize == 0 {
		result.PageSize = pageSize
	}

	for _, u := range payload.Items {
		user := subscription.UserRecord{
			ID:        u.ID,
			Email:     u.Email,
			FullName:  u.FullName,
			Purchases: make([]subscription.PurchaseRecord, 0, len(u.Purchases)),
		}
		for _, p := range u.Purchases {
			user.Purchases = append(user.Purchases, subscription.PurchaseRecord{
				ID:          p.ID,
				ProductID:   p.ProductID,
				ProductKey:  p.ProductKey,
				ProductName: p.ProductName,
				Status:      p.Status,
				StartedAt:   p.StartedAt.Time(),
				EndsAt:      p.EndsAt.Time(),
			})
		}
		result.Items = append(result.Items, user)
	}

	return result, nil
}

// ExpiredSummary tries the candidate summary endpoints in order and
// returns the rows of the first parseable payload. Every endpoint
// failing is reported as a single error; the caller treats it as "no
// summary available".
func (c *BillingClient) ExpiredSummary(ctx context.Context, windowDays int) ([]subscription.ExpiredRow, error) {
	query := url.Values{}
	query.Set("days", strconv.Itoa(windowDays))

	var lastErr error
	for _, endpoint := range summaryEndpoints {
		var payload wireSummaryPayload
		if err := c.doRequest(ctx, endpoint, query, &payload); err != nil {
			metrics.RecordUpstreamError("summary")
			c.logger.WithFields(map[string]interface{}{
				"endpoint": endpoint,
			}).WithError(err).Debug("Summary endpoint unavailable")
			lastErr = err
			continue
		}

		rows := make([]subscription.ExpiredRow, 0, len(payload.Items))
		for _, item := range payload.Items {
			endsAt := item.EndsAt.Time()
			if endsAt == nil {
				// A summary row without a usable date cannot be
				// windowed or displayed; drop it.
				continue
			}
			rows = append(rows, subscription.ExpiredRow{
				UserID:       item.UserID,
				UserEmail:    item.UserEmail,
				UserName:     item.UserName,
				ProductLabel: item.ProductName,
				EndsAt:       *endsAt,
				Status:       subscription.StatusExpired,
			})
		}
		return rows, nil
	}

	return nil, fmt.Errorf("no summary endpoint available: %w", lastErr)
}

func (c *BillingClient) doRequest(ctx context.Context, path string, query url.Values, result interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("upstream returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse response from %s: %w", path, err)
	}

	return nil
}
