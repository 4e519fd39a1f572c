package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"streamnest/models"
)

// tmdbRequestsPerWindow matches the provider's documented limit of roughly
// 40 requests per 10 seconds; the limiter smooths bursts below it.
const (
	tmdbRequestInterval = 250 * time.Millisecond
	tmdbRequestBurst    = 40
)

// TMDBClient issues calls against the movie metadata provider. All
// requests carry the API key as a query parameter and are throttled
// client-side so pipeline fan-out cannot trip the provider's limits.
type TMDBClient struct {
	baseURL  string
	apiKey   string
	language string
	httpc    *http.Client
	limiter  *rate.Limiter
}

// NewTMDBClient creates a metadata client for the given API key.
func NewTMDBClient(baseURL, apiKey, language string) *TMDBClient {
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	return &TMDBClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		language: language,
		httpc:    &http.Client{Timeout: 15 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(tmdbRequestInterval), tmdbRequestBurst),
	}
}

// IsConfigured reports whether an API key is present.
func (c *TMDBClient) IsConfigured() bool {
	return strings.TrimSpace(c.apiKey) != ""
}

func (c *TMDBClient) doGET(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" && !params.Has("language") {
		params.Set("language", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &RemoteError{Message: fmt.Sprintf("metadata provider unreachable: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return remoteErrorFromResponse(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// mediaTypePath maps the client's media type tag onto provider URL segments.
func mediaTypePath(mediaType models.MediaType) string {
	if mediaType == models.MediaTypeTV {
		return "tv"
	}
	return "movie"
}

// SearchPage is one page of raw catalog results.
type SearchPage struct {
	Page         int              `json:"page"`
	Results      []models.RawItem `json:"results"`
	TotalPages   int              `json:"total_pages"`
	TotalResults int              `json:"total_results"`
}

// HasMoreAfter reports whether the provider has pages beyond the given one.
func (p SearchPage) HasMoreAfter(page int) bool {
	return p.TotalPages > page
}

// SearchMovies runs a free-text search scoped to movies.
func (c *TMDBClient) SearchMovies(ctx context.Context, query string, page int) (SearchPage, error) {
	return c.search(ctx, "/search/movie", query, page)
}

// SearchSeries runs a free-text search scoped to series.
func (c *TMDBClient) SearchSeries(ctx context.Context, query string, page int) (SearchPage, error) {
	return c.search(ctx, "/search/tv", query, page)
}

func (c *TMDBClient) search(ctx context.Context, path, query string, page int) (SearchPage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{
		"query": []string{query},
		"page":  []string{strconv.Itoa(page)},
	}
	var resp SearchPage
	if err := c.doGET(ctx, path, params, &resp); err != nil {
		return SearchPage{}, err
	}
	return resp, nil
}

// Trending fetches the trending feed. mediaType may be "all", "movie" or
// "tv"; window may be "day" or "week".
func (c *TMDBClient) Trending(ctx context.Context, mediaType, window string) (SearchPage, error) {
	if mediaType == "" {
		mediaType = "all"
	}
	if window == "" {
		window = "week"
	}
	var resp SearchPage
	if err := c.doGET(ctx, "/trending/"+mediaType+"/"+window, nil, &resp); err != nil {
		return SearchPage{}, err
	}
	return resp, nil
}

// Discover fetches a discovery page for one media type, optionally scoped
// to a genre.
func (c *TMDBClient) Discover(ctx context.Context, mediaType models.MediaType, genreID int64, page int) (SearchPage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{
		"page":    []string{strconv.Itoa(page)},
		"sort_by": []string{"popularity.desc"},
	}
	if genreID > 0 {
		params.Set("with_genres", strconv.FormatInt(genreID, 10))
	}
	var resp SearchPage
	if err := c.doGET(ctx, "/discover/"+mediaTypePath(mediaType), params, &resp); err != nil {
		return SearchPage{}, err
	}
	return resp, nil
}

// Videos fetches the trailer/teaser list for a title.
func (c *TMDBClient) Videos(ctx context.Context, mediaType models.MediaType, id int64) ([]models.Video, error) {
	var resp struct {
		Results []models.Video `json:"results"`
	}
	path := fmt.Sprintf("/%s/%d/videos", mediaTypePath(mediaType), id)
	if err := c.doGET(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// ImageSet groups the artwork lists the provider returns per title.
type ImageSet struct {
	Logos     []models.Image `json:"logos"`
	Backdrops []models.Image `json:"backdrops"`
	Posters   []models.Image `json:"posters"`
}

// Images fetches the artwork set for a title. Language filtering is left
// wide open so logo-less locales can still fall back to English art.
func (c *TMDBClient) Images(ctx context.Context, mediaType models.MediaType, id int64) (ImageSet, error) {
	params := url.Values{"include_image_language": []string{"en,null"}}
	// The images endpoint rejects a language param combined with
	// include_image_language, so suppress the default.
	params.Set("language", "")
	var resp ImageSet
	path := fmt.Sprintf("/%s/%d/images", mediaTypePath(mediaType), id)
	if err := c.doGET(ctx, path, params, &resp); err != nil {
		return ImageSet{}, err
	}
	return resp, nil
}

// Credits holds the cast and crew lists for a title.
type Credits struct {
	Cast []models.CastMember `json:"cast"`
	Crew []models.CastMember `json:"crew"`
}

// Credits fetches cast and crew for a title.
func (c *TMDBClient) Credits(ctx context.Context, mediaType models.MediaType, id int64) (Credits, error) {
	var resp Credits
	path := fmt.Sprintf("/%s/%d/credits", mediaTypePath(mediaType), id)
	if err := c.doGET(ctx, path, nil, &resp); err != nil {
		return Credits{}, err
	}
	return resp, nil
}

// Similar fetches titles related to the given one.
func (c *TMDBClient) Similar(ctx context.Context, mediaType models.MediaType, id int64, page int) (SearchPage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{"page": []string{strconv.Itoa(page)}}
	var resp SearchPage
	path := fmt.Sprintf("/%s/%d/similar", mediaTypePath(mediaType), id)
	if err := c.doGET(ctx, path, params, &resp); err != nil {
		return SearchPage{}, err
	}
	return resp, nil
}

// MovieCertification resolves the certification string for a movie in the
// given region ("US" when empty). Returns "" when the provider has none.
func (c *TMDBClient) MovieCertification(ctx context.Context, id int64, region string) (string, error) {
	if region == "" {
		region = "US"
	}
	var resp struct {
		Results []struct {
			Country  string `json:"iso_3166_1"`
			Releases []struct {
				Certification string `json:"certification"`
			} `json:"release_dates"`
		} `json:"results"`
	}
	if err := c.doGET(ctx, fmt.Sprintf("/movie/%d/release_dates", id), nil, &resp); err != nil {
		return "", err
	}
	for _, entry := range resp.Results {
		if !strings.EqualFold(entry.Country, region) {
			continue
		}
		for _, release := range entry.Releases {
			if cert := strings.TrimSpace(release.Certification); cert != "" {
				return cert, nil
			}
		}
	}
	return "", nil
}

// SeriesCertification resolves the content rating for a series in the
// given region ("US" when empty). Returns "" when the provider has none.
func (c *TMDBClient) SeriesCertification(ctx context.Context, id int64, region string) (string, error) {
	if region == "" {
		region = "US"
	}
	var resp struct {
		Results []struct {
			Country string `json:"iso_3166_1"`
			Rating  string `json:"rating"`
		} `json:"results"`
	}
	if err := c.doGET(ctx, fmt.Sprintf("/tv/%d/content_ratings", id), nil, &resp); err != nil {
		return "", err
	}
	for _, entry := range resp.Results {
		if strings.EqualFold(entry.Country, region) {
			if cert := strings.TrimSpace(entry.Rating); cert != "" {
				return cert, nil
			}
		}
	}
	return "", nil
}
