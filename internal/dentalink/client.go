package dentalink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dental-dashboard/internal/config"
	"dental-dashboard/internal/metrics"
	"dental-dashboard/internal/platform/apperr"
)

const DefaultBaseURL = "https://api.dentalink.healthatom.com/api/v1"

// maxErrorBody bounds how much of a failed response is kept in StatusError.
const maxErrorBody = 4 << 10

// StatusError is returned for any non-2xx response from Dentalink.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dentalink api returned status: %d, body: %s", e.StatusCode, e.Body)
}

type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.DentalinkConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		token:   cfg.Token,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether an API token is set.
func (c *Client) Configured() bool {
	return c.token != ""
}

func (c *Client) Patients(ctx context.Context) (PatientList, error) {
	var out PatientList
	if err := c.get(ctx, "/patients", nil, &out); err != nil {
		return PatientList{}, err
	}
	return out, nil
}

// FetchPatients feeds the metrics service with live records.
func (c *Client) FetchPatients(ctx context.Context) ([]metrics.PatientRecord, error) {
	list, err := c.Patients(ctx)
	if err != nil {
		return nil, err
	}
	return list.Records(), nil
}

// Appointments lists appointments, optionally restricted to one date.
func (c *Client) Appointments(ctx context.Context, date string) (json.RawMessage, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	var out json.RawMessage
	if err := c.get(ctx, "/appointments", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Treatments(ctx context.Context, patientID string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.get(ctx, "/patients/"+url.PathEscape(patientID)+"/treatments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FinancialReport(ctx context.Context, startDate, endDate string) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	var out json.RawMessage
	if err := c.get(ctx, "/financial/reports", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if !c.Configured() {
		return apperr.New(apperr.CodeUnavailable, "Dentalink API token not configured")
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build dentalink request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call dentalink %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode dentalink %s: %w", path, err)
	}
	return nil
}
