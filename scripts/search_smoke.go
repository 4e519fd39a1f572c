package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"streamnest/app"
	"streamnest/config"
	"streamnest/services/search"
)

// Standalone smoke tool: runs one debounced search round trip against the
// live metadata provider and prints the merged results.
//
// Usage: TMDB_API_KEY=... go run scripts/search_smoke.go <query>
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: search_smoke <query>")
	}
	query := strings.Join(os.Args[1:], " ")

	cfg := config.Load()
	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("wire app: %v", err)
	}
	if !a.Metadata.IsConfigured() {
		log.Fatal("TMDB_API_KEY is required")
	}

	done := make(chan search.State, 1)
	a.Search = search.NewService(a.Metadata,
		search.WithDebounce(cfg.Search.Debounce),
		search.WithOnChange(func(s search.State) {
			if !s.Loading && !s.LoadingMore && s.Query != "" {
				select {
				case done <- s:
				default:
				}
			}
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	a.Search.SetQuery(ctx, query)

	select {
	case snap := <-done:
		fmt.Printf("%d results for %q (next page: %v)\n", len(snap.Results), snap.Query, snap.HasNextPage)
		for i, movie := range snap.Results {
			fmt.Printf("%2d. [%s] %s  popularity=%.1f\n", i+1, movie.Type, movie.Title, movie.Popularity)
			fmt.Printf("    poster: %s\n", a.Images.Poster(movie.PosterPath))
		}
	case <-ctx.Done():
		log.Fatal("search timed out")
	}
}
