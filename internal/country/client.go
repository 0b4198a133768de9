package country

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// restCountryRecord mirrors the name block returned by the restcountries
// v3.1 API when queried with fields=name.
type restCountryRecord struct {
	Name struct {
		Common     string `json:"common"`
		Official   string `json:"official"`
		NativeName map[string]struct {
			Common   string `json:"common"`
			Official string `json:"official"`
		} `json:"nativeName"`
	} `json:"name"`
}

// Client fetches country names from the restcountries API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// FetchAll retrieves every country, sorted by common name so responses are
// stable across upstream ordering changes.
func (c *Client) FetchAll(ctx context.Context) ([]Country, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build country request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch countries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch countries: unexpected status %d", resp.StatusCode)
	}

	var records []restCountryRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode countries: %w", err)
	}

	countries := make([]Country, 0, len(records))
	for _, record := range records {
		country := Country{
			CommonName:   record.Name.Common,
			OfficialName: record.Name.Official,
		}
		if len(record.Name.NativeName) > 0 {
			country.NativeNames = make(map[string]string, len(record.Name.NativeName))
			for lang, native := range record.Name.NativeName {
				country.NativeNames[lang] = native.Common
			}
		}
		countries = append(countries, country)
	}

	sort.Slice(countries, func(i, j int) bool {
		return countries[i].CommonName < countries[j].CommonName
	})
	return countries, nil
}
