package validate

import (
	"strings"

	"streamnest/models"
)

// Rating hierarchies - lower number = more restrictive.
var movieRatingOrder = map[string]int{
	"G":     1,
	"PG":    2,
	"PG-13": 3,
	"R":     4,
	"NC-17": 5,
}

var tvRatingOrder = map[string]int{
	"TV-Y":     1,
	"TV-Y7":    2,
	"TV-Y7-FV": 2,
	"TV-G":     3,
	"TV-PG":    4,
	"TV-14":    5,
	"TV-MA":    6,
}

// ratingLevel returns the restrictiveness level for a certification, or 0
// when the rating is unknown.
func ratingLevel(certification string, mediaType models.MediaType) int {
	cert := strings.ToUpper(strings.TrimSpace(certification))
	if cert == "" {
		return 0
	}
	if mediaType == models.MediaTypeMovie {
		return movieRatingOrder[cert]
	}
	return tvRatingOrder[cert]
}

// ratingAllowed checks a certification against the configured maximum.
// Unrated or unknown-rated content is blocked when a maximum is set.
func ratingAllowed(certification, maxRating string, mediaType models.MediaType) bool {
	if strings.TrimSpace(maxRating) == "" {
		return true
	}
	contentLevel := ratingLevel(certification, mediaType)
	maxLevel := ratingLevel(maxRating, mediaType)
	if contentLevel == 0 || maxLevel == 0 {
		return false
	}
	return contentLevel <= maxLevel
}
