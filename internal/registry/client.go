package registry

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/phpp-dev/phpp/internal/errs"
)

// UserAgent identifies phpp to the registry, as spec §4.3 requires.
const UserAgent = "phpp/1.0 (+https://github.com/phpp-dev/phpp)"

// BetweenFetchDelay is the cooperative delay the resolver inserts
// before each metadata fetch, to be polite to public registries
// (spec §4.3, §5).
const BetweenFetchDelay = 200 * time.Millisecond

// ErrNotFound indicates the registry returned a non-2xx status for a
// metadata fetch. The resolver treats this as a soft absence for
// non-root packages (spec §4.4 step 2, §7).
var ErrNotFound = errs.Of(errs.MetadataMissing, "package not found in registry")

// Client fetches metadata and archive blobs from a single registry
// base URL, retrying transient transport failures.
type Client struct {
	BaseURL string
	http    *http.Client
}

// NewClient returns a Client against baseURL, with three retries on
// transient transport failures (matching the retry budget the teacher
// pack's buildpacks clients use for external fetches).
func NewClient(baseURL string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 10 * time.Millisecond
	rc.RetryWaitMax = 100 * time.Millisecond
	rc.Logger = nil
	// Hand back the last response once retries run out, so callers see
	// its status code instead of a generic "giving up" error.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return &Client{BaseURL: baseURL, http: rc.StandardClient()}
}

// FetchMetadata issues GET <registry>/p2/<name>.json. A 2xx status
// yields the body; any other status yields ErrNotFound (spec §4.3).
func (c *Client) FetchMetadata(name string) ([]byte, error) {
	url := fmt.Sprintf("%s/p2/%s.json", c.BaseURL, name)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, err, "building metadata request for %s", name)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, err, "fetching metadata for %s", name)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrNotFound
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, err, "reading metadata response for %s", name)
	}
	return body, nil
}

// FetchArchive downloads the blob at url unconditionally on status:
// any non-2xx is surfaced as a transport failure (spec §4.3), unlike
// FetchMetadata's soft-absence handling.
func (c *Client) FetchArchive(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, err, "building archive request for %s", url)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, err, "downloading %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errs.Of(errs.Transport, "downloading %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, err, "reading archive body for %s", url)
	}
	return body, nil
}

// SearchResult is one entry in the registry's search response.
type SearchResult struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// Search performs the out-of-scope glue described in spec §4.9: GET
// the registry's search endpoint and decode its result list.
func (c *Client) Search(keyword string) ([]SearchResult, error) {
	url := fmt.Sprintf("%s/search.json?q=%s&per_page=15", c.BaseURL, keyword)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, err, "building search request")
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.Transport, err, "performing search")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errs.Of(errs.Transport, "search returned HTTP %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := decodeJSON(resp.Body, &sr); err != nil {
		return nil, errs.Wrap(errs.MalformedMetadata, err, "decoding search response")
	}
	return sr.Results, nil
}
