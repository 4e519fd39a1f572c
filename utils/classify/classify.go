// Package classify infers media types for provider items and filters out
// entries that cannot be presented. It runs once at the provider boundary;
// everything downstream relies on the resulting tag instead of re-deriving
// it from field presence.
package classify

import (
	"strings"

	"streamnest/models"
)

// Classify determines whether a raw provider item is a movie or a series.
//
// The tie-break order matters: downstream code routes to type-specific
// endpoints based on this tag, and search dedup keys on it.
//  1. An explicit, valid media_type wins verbatim.
//  2. A series-only date, or a name without a title, means series.
//  3. A movie-only date, or a title without a name, means movie.
//  4. Otherwise a name means series, anything else means movie.
func Classify(item models.RawItem) models.MediaType {
	if tag := models.MediaType(strings.ToLower(strings.TrimSpace(item.MediaType))); tag.Valid() {
		return tag
	}
	if item.FirstAirDate != "" || (item.Name != "" && item.Title == "") {
		return models.MediaTypeTV
	}
	if item.ReleaseDate != "" || (item.Title != "" && item.Name == "") {
		return models.MediaTypeMovie
	}
	if item.Name != "" {
		return models.MediaTypeTV
	}
	return models.MediaTypeMovie
}

// IsDisplayable reports whether a raw item carries enough data to be shown
// at all: a title, a positive id, at least one image, an overview, and a
// positive popularity score.
func IsDisplayable(item models.RawItem) bool {
	if strings.TrimSpace(item.DisplayTitle()) == "" {
		return false
	}
	if item.ID <= 0 {
		return false
	}
	if item.PosterPath == "" && item.BackdropPath == "" {
		return false
	}
	if strings.TrimSpace(item.Overview) == "" {
		return false
	}
	return item.Popularity > 0
}

// Normalize converts a raw provider item into the tagged Movie union.
// Release date falls back to first_air_date for series entries.
func Normalize(item models.RawItem) models.Movie {
	release := item.ReleaseDate
	if release == "" {
		release = item.FirstAirDate
	}
	return models.Movie{
		ID:           item.ID,
		Type:         Classify(item),
		Title:        item.DisplayTitle(),
		Overview:     item.Overview,
		PosterPath:   item.PosterPath,
		BackdropPath: item.BackdropPath,
		ReleaseDate:  release,
		Popularity:   item.Popularity,
		VoteAverage:  item.VoteAverage,
		GenreIDs:     item.GenreIDs,
	}
}

// FilterDisplayable normalizes every displayable item in a batch,
// preserving input order.
func FilterDisplayable(items []models.RawItem) []models.Movie {
	out := make([]models.Movie, 0, len(items))
	for _, item := range items {
		if IsDisplayable(item) {
			out = append(out, Normalize(item))
		}
	}
	return out
}
