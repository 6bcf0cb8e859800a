// Package cms fetches the talent collection from a Strapi-style content API.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/camden-git/castingvitrine/models"
)

const (
	defaultPageSize = 100
	// maxPages bounds a runaway pageCount from a misbehaving server.
	maxPages = 1000
)

// ErrNotConfigured is returned when no base URL is set.
var ErrNotConfigured = errors.New("cms: base URL not configured")

// Client reads the talent collection page by page.
type Client struct {
	BaseURL    string
	Collection string
	Token      string
	PageSize   int
	HTTP       *http.Client
}

// NewClient creates a client with a bounded HTTP timeout
func NewClient(baseURL, collection, token string, pageSize int, timeout time.Duration) *Client {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Collection: collection,
		Token:      token,
		PageSize:   pageSize,
		HTTP:       &http.Client{Timeout: timeout},
	}
}

// FetchTalents walks every page of the collection and returns the records in CMS order.
func (c *Client) FetchTalents(ctx context.Context) ([]models.Talent, error) {
	if c.BaseURL == "" {
		return nil, ErrNotConfigured
	}

	var talents []models.Talent
	for page := 1; page <= maxPages; page++ {
		resp, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, entry := range resp.Data {
			talents = append(talents, entry.Attributes.ToTalent(strconv.Itoa(entry.ID)))
		}

		p := resp.Meta.Pagination
		log.Printf("cms: fetched page %d/%d of %s (%d entries)", page, p.PageCount, c.Collection, len(resp.Data))
		if page >= p.PageCount || len(resp.Data) == 0 {
			return talents, nil
		}
	}
	return nil, fmt.Errorf("cms: collection %s exceeds %d pages", c.Collection, maxPages)
}

func (c *Client) fetchPage(ctx context.Context, page int) (*CollectionResponse[TalentCard], error) {
	q := url.Values{}
	q.Set("pagination[page]", strconv.Itoa(page))
	q.Set("pagination[pageSize]", strconv.Itoa(c.PageSize))
	endpoint := fmt.Sprintf("%s/api/%s?%s", c.BaseURL, url.PathEscape(c.Collection), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cms: failed to build request for page %d: %w", page, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cms: request for page %d failed: %w", page, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		var apiErr APIError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("cms: page %d: %s (%d %s)", page, apiErr.Error.Message, res.StatusCode, apiErr.Error.Name)
		}
		return nil, fmt.Errorf("cms: page %d: unexpected status %d", page, res.StatusCode)
	}

	var out CollectionResponse[TalentCard]
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("cms: failed to decode page %d: %w", page, err)
	}
	return &out, nil
}
