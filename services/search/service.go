// Package search implements the debounced search aggregation pipeline:
// one free-text query fans out to the movie and series search endpoints,
// results are filtered, classified, merged by descending popularity, and
// accumulated across pages with id dedup. Stale responses are discarded
// via a generation counter instead of transport-level cancellation.
package search

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"streamnest/models"
	"streamnest/services/gateway"
	"streamnest/utils/classify"
)

// DefaultDebounce is the pause after the last keystroke before any
// network activity.
const DefaultDebounce = 300 * time.Millisecond

// MetadataClient is the slice of the gateway the pipeline needs.
type MetadataClient interface {
	SearchMovies(ctx context.Context, query string, page int) (gateway.SearchPage, error)
	SearchSeries(ctx context.Context, query string, page int) (gateway.SearchPage, error)
}

// State is the ephemeral search session, re-derived per debounced query.
type State struct {
	Query       string
	Results     []models.Movie
	Page        int
	HasNextPage bool
	Loading     bool
	LoadingMore bool
}

// Service runs the pipeline. A single Service backs one search box.
type Service struct {
	mu       sync.Mutex
	client   MetadataClient
	debounce time.Duration
	timer    *time.Timer
	gen      uint64
	state    State
	onChange func(State)
}

// Option configures the service.
type Option func(*Service)

// WithDebounce overrides the debounce window. Tests use small values.
func WithDebounce(d time.Duration) Option {
	return func(s *Service) { s.debounce = d }
}

// WithOnChange registers a callback invoked with a state snapshot after
// every commit. Called outside the service lock.
func WithOnChange(fn func(State)) Option {
	return func(s *Service) { s.onChange = fn }
}

// NewService creates a search pipeline over the metadata client.
func NewService(client MetadataClient, opts ...Option) *Service {
	svc := &Service{client: client, debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Snapshot returns a copy of the current search state.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyStateLocked()
}

func (s *Service) copyStateLocked() State {
	snap := s.state
	snap.Results = append([]models.Movie(nil), s.state.Results...)
	return snap
}

func (s *Service) notify(snap State) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}

// SetQuery records a keystroke. Input inside the debounce window
// supersedes the pending fetch; only the last keystroke fires. A blank
// query resets to the empty state immediately, with no network call.
// Changing the query discards the previous accumulation synchronously,
// before any fetch: a LoadMore landing inside the debounce window must
// not see the old query's page counter.
func (s *Service) SetQuery(ctx context.Context, query string) {
	s.mu.Lock()
	prev := strings.TrimSpace(s.state.Query)
	s.state.Query = query
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		s.state.Results = nil
		s.state.Page = 0
		s.state.HasNextPage = false
		s.state.Loading = false
		s.state.LoadingMore = false
		snap := s.copyStateLocked()
		s.mu.Unlock()
		s.notify(snap)
		return
	}

	if trimmed != prev {
		s.state.Results = nil
		s.state.Page = 0
		s.state.HasNextPage = false
		s.state.LoadingMore = false
	}

	gen := s.gen
	s.timer = time.AfterFunc(s.debounce, func() {
		s.runSearch(ctx, gen, trimmed, 1)
	})
	s.mu.Unlock()
}

// LoadMore fetches the next page and appends new results. It is a no-op
// when there is no next page, a fetch is in flight, or the query is blank.
func (s *Service) LoadMore(ctx context.Context) {
	s.mu.Lock()
	trimmed := strings.TrimSpace(s.state.Query)
	if !s.state.HasNextPage || s.state.Loading || s.state.LoadingMore || trimmed == "" {
		s.mu.Unlock()
		return
	}
	s.state.LoadingMore = true
	gen := s.gen
	page := s.state.Page + 1
	snap := s.copyStateLocked()
	s.mu.Unlock()
	s.notify(snap)

	s.runSearch(ctx, gen, trimmed, page)
}

// Reset cancels any pending debounced fetch and clears the session
// synchronously. Used when the search UI closes.
func (s *Service) Reset() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.state = State{}
	snap := s.copyStateLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// runSearch performs one round: both branches for one page, filter,
// classify, merge, sort, commit. The generation is checked before every
// commit so superseded rounds fall on the floor.
func (s *Service) runSearch(ctx context.Context, gen uint64, query string, page int) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	if page == 1 {
		s.state.Loading = true
	}
	snap := s.copyStateLocked()
	s.mu.Unlock()
	s.notify(snap)

	var moviePage, seriesPage gateway.SearchPage
	p := pool.New().WithContext(ctx)
	p.Go(func(ctx context.Context) error {
		result, err := s.client.SearchMovies(ctx, query, page)
		if err != nil {
			// A failed branch contributes nothing this round; the other
			// branch's results still land.
			log.Printf("[search] movie branch failed query=%q page=%d err=%v", query, page, err)
			return nil
		}
		moviePage = result
		return nil
	})
	p.Go(func(ctx context.Context) error {
		result, err := s.client.SearchSeries(ctx, query, page)
		if err != nil {
			log.Printf("[search] series branch failed query=%q page=%d err=%v", query, page, err)
			return nil
		}
		seriesPage = result
		return nil
	})
	if err := p.Wait(); err != nil {
		log.Printf("[search] fan-out interrupted query=%q page=%d err=%v", query, page, err)
	}

	batch := classify.FilterDisplayable(moviePage.Results)
	batch = append(batch, classify.FilterDisplayable(seriesPage.Results)...)
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Popularity > batch[j].Popularity
	})
	hasNext := moviePage.HasMoreAfter(page) || seriesPage.HasMoreAfter(page)

	s.mu.Lock()
	if gen != s.gen {
		// A newer query or reset superseded this round after the fetch
		// was issued; its results must not leak into current state.
		s.mu.Unlock()
		return
	}
	if page == 1 {
		s.state.Results = dedupAppend(nil, batch)
	} else {
		s.state.Results = dedupAppend(s.state.Results, batch)
	}
	s.state.Page = page
	s.state.HasNextPage = hasNext
	s.state.Loading = false
	s.state.LoadingMore = false
	snap = s.copyStateLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// dedupAppend appends batch items whose id is not already present.
// First-seen wins; relative order is preserved.
func dedupAppend(accumulated, batch []models.Movie) []models.Movie {
	seen := make(map[int64]struct{}, len(accumulated)+len(batch))
	for _, movie := range accumulated {
		seen[movie.ID] = struct{}{}
	}
	out := accumulated
	for _, movie := range batch {
		if _, dup := seen[movie.ID]; dup {
			continue
		}
		seen[movie.ID] = struct{}{}
		out = append(out, movie)
	}
	return out
}
