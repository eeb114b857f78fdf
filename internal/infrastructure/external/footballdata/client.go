package footballdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	matchDomain "matchtrack/internal/domain/match"
)

const defaultBaseURL = "https://api.football-data.org"

// Client 呼叫 football-data.org v4 API。
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient 建立 Client；baseURL 留空時用正式環境。
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type matchesResponse struct {
	Matches []fixture `json:"matches"`
}

type fixture struct {
	UTCDate time.Time `json:"utcDate"`
	Status  string    `json:"status"`
	Area    struct {
		Name string `json:"name"`
	} `json:"area"`
	Competition struct {
		Name string `json:"name"`
	} `json:"competition"`
	HomeTeam struct {
		Name string `json:"name"`
	} `json:"homeTeam"`
	AwayTeam struct {
		Name string `json:"name"`
	} `json:"awayTeam"`
}

// ListFixtures 取回 [from, to] 期間的賽程。
func (c *Client) ListFixtures(ctx context.Context, from, to time.Time) ([]matchDomain.Match, error) {
	params := url.Values{}
	params.Set("dateFrom", from.Format("2006-01-02"))
	params.Set("dateTo", to.Format("2006-01-02"))

	body, err := c.call(ctx, "GET", "/v4/matches", params)
	if err != nil {
		return nil, err
	}

	var res matchesResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	out := make([]matchDomain.Match, 0, len(res.Matches))
	for _, f := range res.Matches {
		if f.HomeTeam.Name == "" || f.AwayTeam.Name == "" {
			continue
		}
		status := f.Status
		if status == "" {
			status = "scheduled"
		}
		out = append(out, matchDomain.Match{
			KickoffAt:  f.UTCDate,
			HomeTeam:   f.HomeTeam.Name,
			AwayTeam:   f.AwayTeam.Name,
			Tournament: f.Competition.Name,
			League:     f.Area.Name,
			Status:     status,
		})
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	fullURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("X-Auth-Token", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("football-data api error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
