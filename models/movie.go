package models

// MediaType distinguishes movies from series throughout the client.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether the media type is one of the two known tags.
func (m MediaType) Valid() bool {
	return m == MediaTypeMovie || m == MediaTypeTV
}

// RawItem is a catalog entry exactly as the metadata provider returns it.
// Field presence varies by content type: movies carry title/release_date,
// series carry name/first_air_date, and media_type is only populated on
// multi-type endpoints such as trending. Classification normalizes this
// into a Movie before anything downstream touches it.
type RawItem struct {
	ID           int64   `json:"id"`
	MediaType    string  `json:"media_type,omitempty"`
	Title        string  `json:"title,omitempty"`
	Name         string  `json:"name,omitempty"`
	ReleaseDate  string  `json:"release_date,omitempty"`
	FirstAirDate string  `json:"first_air_date,omitempty"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Popularity   float64 `json:"popularity"`
	VoteAverage  float64 `json:"vote_average"`
	GenreIDs     []int64 `json:"genre_ids,omitempty"`
}

// DisplayTitle returns the movie title or series name, whichever is set.
func (r RawItem) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

// Movie is the classified catalog item used past the provider boundary.
// The Type tag is assigned exactly once, by classify.Normalize.
type Movie struct {
	ID           int64     `json:"id"`
	Type         MediaType `json:"type"`
	Title        string    `json:"title"`
	Overview     string    `json:"overview"`
	PosterPath   string    `json:"posterPath,omitempty"`
	BackdropPath string    `json:"backdropPath,omitempty"`
	ReleaseDate  string    `json:"releaseDate,omitempty"`
	Popularity   float64   `json:"popularity"`
	VoteAverage  float64   `json:"voteAverage"`
	GenreIDs     []int64   `json:"genreIds,omitempty"`
}

// Video is a subsidiary video asset (trailer, teaser, clip) for a title.
type Video struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// Image is a subsidiary artwork asset such as a logo or backdrop.
type Image struct {
	FilePath    string  `json:"file_path"`
	Language    string  `json:"iso_639_1"`
	AspectRatio float64 `json:"aspect_ratio"`
	VoteAverage float64 `json:"vote_average"`
}

// CastMember is a single credits entry.
type CastMember struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character,omitempty"`
	Job       string `json:"job,omitempty"`
}
