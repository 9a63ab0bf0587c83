package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const pocketbasePerPage = 200

// PocketBase lists collections through the PocketBase REST API.
type PocketBase struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewPocketBase creates a client for the server at baseURL. authToken is
// sent as the Authorization header when set.
func NewPocketBase(baseURL, authToken string) *PocketBase {
	return &PocketBase{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type pocketbasePage struct {
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Items      []map[string]any `json:"items"`
}

// ListDocuments walks every page of collection, oldest record first.
func (p *PocketBase) ListDocuments(ctx context.Context, collection string) ([]map[string]any, error) {
	docs := []map[string]any{}
	for page := 1; ; page++ {
		res, err := p.fetchPage(ctx, collection, page)
		if err != nil {
			return nil, err
		}
		docs = append(docs, res.Items...)
		if len(res.Items) == 0 || page >= res.TotalPages {
			return docs, nil
		}
	}
}

func (p *PocketBase) fetchPage(ctx context.Context, collection string, page int) (*pocketbasePage, error) {
	q := url.Values{}
	q.Set("page", fmt.Sprint(page))
	q.Set("perPage", fmt.Sprint(pocketbasePerPage))
	q.Set("sort", "created")
	apiURL := fmt.Sprintf("%s/api/collections/%s/records?%s", p.baseURL, url.PathEscape(collection), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	if p.authToken != "" {
		req.Header.Set("Authorization", p.authToken)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("list %s: %s - %s", collection, resp.Status, strings.TrimSpace(string(body)))
	}
	var res pocketbasePage
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode %s page %d: %w", collection, page, err)
	}
	return &res, nil
}

// Healthy calls the PocketBase health endpoint.
func (p *PocketBase) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
