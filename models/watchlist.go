package models

import "time"

// WatchlistItem is a catalog title saved to one profile's watchlist.
// MovieID refers to the metadata provider's id; ID is the backend's own
// row identifier.
type WatchlistItem struct {
	ID          string    `json:"id"`
	MovieID     int64     `json:"movie_id"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path,omitempty"`
	Overview    string    `json:"overview,omitempty"`
	ReleaseDate string    `json:"release_date,omitempty"`
	MovieType   MediaType `json:"movie_type"`
	AddedAt     time.Time `json:"added_at"`
}

// WatchlistUpsert carries the data sent to the backend when saving a title.
type WatchlistUpsert struct {
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path,omitempty"`
	Overview    string    `json:"overview,omitempty"`
	ReleaseDate string    `json:"release_date,omitempty"`
	MovieType   MediaType `json:"movie_type"`
}

// UpsertFromMovie builds the watchlist payload for a classified movie.
func UpsertFromMovie(m Movie) WatchlistUpsert {
	return WatchlistUpsert{
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
		MovieType:   m.Type,
	}
}
