package emias

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/medwatch/slot-monitor/internal/domain/entities"
	apperrors "github.com/medwatch/slot-monitor/pkg/errors"
)

// Client is the HTTP client for the regional EMIAS scheduling API
type Client struct {
	baseURL    string
	days       int
	httpClient *http.Client
}

// NewClient creates a new EMIAS client. days bounds the visible scheduling
// horizon requested from the API.
func NewClient(baseURL string, days int, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		days:       days,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetDoctors retrieves the doctors document for one department
func (c *Client) GetDoctors(ctx context.Context, creds entities.PatientCredentials, departmentID int) (*entities.ScheduleDocument, error) {
	parsed, err := url.Parse(fmt.Sprintf("%s/api/v2/emias/iemk/doctors", c.baseURL))
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailableError("invalid upstream url", err)
	}

	query := parsed.Query()
	query.Set("number", creds.Number)
	query.Set("birthday", creds.Birthday)
	query.Set("departmentId", strconv.Itoa(departmentID))
	query.Set("days", strconv.Itoa(c.days))
	parsed.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailableError("failed to build request", err)
	}
	c.addHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailableError(
			fmt.Sprintf("request failed for department %d", departmentID), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewUpstreamUnavailableError(
			fmt.Sprintf("upstream returned status %d for department %d", resp.StatusCode, departmentID), nil)
	}

	doc := &entities.ScheduleDocument{}
	if err := json.NewDecoder(resp.Body).Decode(doc); err != nil {
		return nil, apperrors.NewMalformedResponseError(
			fmt.Sprintf("failed to decode document for department %d", departmentID), err)
	}

	return doc, nil
}

func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "ru-RU,ru;q=0.8,en-US;q=0.5,en;q=0.3")
	req.Header.Set("Content-Type", "application/json")
	// The upstream rejects non-browser user agents.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:144.0) Gecko/20100101 Firefox/144.0")
}
