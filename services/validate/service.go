// Package validate filters catalog rows down to items whose subsidiary
// metadata satisfies the caller's requirements: trailer present, logo
// present, and/or certification within a kids profile's limits. Checks
// run concurrently with bounded fan-out and settle-all semantics; one
// item's failure never aborts the batch.
package validate

import (
	"context"
	"log"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"streamnest/models"
	"streamnest/services/gateway"
)

// DefaultBatchSize caps concurrent subsidiary fetches per batch.
const DefaultBatchSize = 20

// MetadataClient is the slice of the gateway the pipeline needs.
// *gateway.TMDBClient satisfies it.
type MetadataClient interface {
	Videos(ctx context.Context, mediaType models.MediaType, id int64) ([]models.Video, error)
	Images(ctx context.Context, mediaType models.MediaType, id int64) (gateway.ImageSet, error)
	MovieCertification(ctx context.Context, id int64, region string) (string, error)
	SeriesCertification(ctx context.Context, id int64, region string) (string, error)
}

// Requirements configures which checks a batch must pass. Zero value
// means image presence only, which needs no network calls.
type Requirements struct {
	Trailer bool
	Logo    bool
	// MaxMovieRating / MaxTVRating enable the kids certification gate
	// when non-empty (e.g. "PG", "TV-Y7").
	MaxMovieRating string
	MaxTVRating    string
	// LargeRow requires a poster; otherwise a backdrop is required.
	LargeRow bool
	// Limit truncates the surviving items when positive.
	Limit int
}

func (r Requirements) needsNetwork() bool {
	return r.Trailer || r.Logo || r.MaxMovieRating != "" || r.MaxTVRating != ""
}

// Service runs validation batches against the metadata provider.
type Service struct {
	client    MetadataClient
	batchSize int
}

// NewService creates a validation pipeline. batchSize <= 0 uses the default.
func NewService(client MetadataClient, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{client: client, batchSize: batchSize}
}

// Filter returns the items satisfying every configured check, preserving
// input order among survivors. With no checks configured it degrades to
// an image-presence filter and skips all network calls.
func (s *Service) Filter(ctx context.Context, items []models.Movie, req Requirements) []models.Movie {
	if len(items) == 0 {
		return []models.Movie{}
	}

	if !req.needsNetwork() {
		return truncate(filterByImage(items, req.LargeRow), req.Limit)
	}

	keep := make([]bool, len(items))
	p := pool.New().WithMaxGoroutines(s.batchSize).WithContext(ctx)
	for i := range items {
		index := i
		movie := items[i]
		p.Go(func(ctx context.Context) error {
			ok, err := s.check(ctx, movie, req)
			if err != nil {
				// Settle-all: this item is excluded, the batch goes on.
				log.Printf("[validate] check failed id=%d type=%s err=%v", movie.ID, movie.Type, err)
				return nil
			}
			keep[index] = ok
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		log.Printf("[validate] batch interrupted err=%v", err)
	}

	out := make([]models.Movie, 0, len(items))
	for i, movie := range items {
		if keep[i] {
			out = append(out, movie)
		}
	}
	return truncate(out, req.Limit)
}

// check runs the configured checks for a single item; all must pass.
func (s *Service) check(ctx context.Context, movie models.Movie, req Requirements) (bool, error) {
	if req.Trailer {
		videos, err := s.client.Videos(ctx, movie.Type, movie.ID)
		if err != nil {
			return false, err
		}
		if !hasTrailer(videos) {
			return false, nil
		}
	}
	if req.Logo {
		images, err := s.client.Images(ctx, movie.Type, movie.ID)
		if err != nil {
			return false, err
		}
		if len(images.Logos) == 0 {
			return false, nil
		}
	}
	if req.MaxMovieRating != "" || req.MaxTVRating != "" {
		allowed, err := s.kidsAllowed(ctx, movie, req.MaxMovieRating, req.MaxTVRating)
		if err != nil {
			return false, err
		}
		if !allowed {
			return false, nil
		}
	}
	return true, nil
}

// kidsAllowed resolves the item's certification and checks it against the
// per-type maximum.
func (s *Service) kidsAllowed(ctx context.Context, movie models.Movie, maxMovieRating, maxTVRating string) (bool, error) {
	if movie.Type == models.MediaTypeMovie {
		cert, err := s.client.MovieCertification(ctx, movie.ID, "")
		if err != nil {
			return false, err
		}
		return ratingAllowed(cert, maxMovieRating, models.MediaTypeMovie), nil
	}
	cert, err := s.client.SeriesCertification(ctx, movie.ID, "")
	if err != nil {
		return false, err
	}
	return ratingAllowed(cert, maxTVRating, models.MediaTypeTV), nil
}

// hasTrailer looks for an actual trailer entry; teasers, clips and
// featurettes do not satisfy the check.
func hasTrailer(videos []models.Video) bool {
	for _, video := range videos {
		if strings.EqualFold(video.Type, "Trailer") {
			return true
		}
	}
	return false
}

func filterByImage(items []models.Movie, largeRow bool) []models.Movie {
	out := make([]models.Movie, 0, len(items))
	for _, movie := range items {
		if largeRow {
			if movie.PosterPath != "" {
				out = append(out, movie)
			}
			continue
		}
		if movie.BackdropPath != "" {
			out = append(out, movie)
		}
	}
	return out
}

func truncate(items []models.Movie, limit int) []models.Movie {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
