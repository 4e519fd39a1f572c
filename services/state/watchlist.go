package state

import (
	"context"
	"log"

	"streamnest/models"
)

func (s *Service) beginWatchlist() {
	s.mu.Lock()
	s.state.Session.Watchlist.Loading = true
	s.state.Session.Watchlist.Err = ""
	s.mu.Unlock()
}

func (s *Service) failWatchlist(err error) {
	s.mu.Lock()
	s.state.Session.Watchlist.Loading = false
	s.state.Session.Watchlist.Err = errMessage(err)
	s.mu.Unlock()
}

// FetchWatchlist loads one profile's watchlist, replacing the local copy.
func (s *Service) FetchWatchlist(ctx context.Context, profileID string) error {
	s.beginWatchlist()

	items, err := s.backend.Watchlist(ctx, profileID)
	if err != nil {
		s.failWatchlist(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Session.Watchlist.Items = items
	s.state.Session.Watchlist.Loading = false
	s.state.Session.Watchlist.Err = ""
	return nil
}

// AddToWatchlist saves a title to a profile's watchlist. The duplicate
// check runs against local state at commit time, after the server call
// succeeds, so concurrent adds of the same movie still collapse to one
// stored item. A duplicate add is a silent success, not an error.
func (s *Service) AddToWatchlist(ctx context.Context, profileID string, movieID int64, data models.WatchlistUpsert) error {
	s.beginWatchlist()

	item, err := s.backend.AddWatchlistItem(ctx, profileID, movieID, data)
	if err != nil {
		s.failWatchlist(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Session.Watchlist.Loading = false
	s.state.Session.Watchlist.Err = ""
	for _, existing := range s.state.Session.Watchlist.Items {
		if existing.MovieID == movieID {
			log.Printf("[state] watchlist add deduplicated movieId=%d profileId=%s", movieID, profileID)
			return nil
		}
	}
	if item.MovieID == 0 {
		item.MovieID = movieID
	}
	s.state.Session.Watchlist.Items = append(s.state.Session.Watchlist.Items, item)
	return nil
}

// RemoveFromWatchlist deletes a title from a profile's watchlist. Removing
// an absent movie is a no-op.
func (s *Service) RemoveFromWatchlist(ctx context.Context, profileID string, movieID int64) error {
	s.beginWatchlist()

	if err := s.backend.RemoveWatchlistItem(ctx, profileID, movieID); err != nil {
		s.failWatchlist(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.state.Session.Watchlist.Items[:0]
	for _, item := range s.state.Session.Watchlist.Items {
		if item.MovieID != movieID {
			kept = append(kept, item)
		}
	}
	s.state.Session.Watchlist.Items = kept
	s.state.Session.Watchlist.Loading = false
	s.state.Session.Watchlist.Err = ""
	return nil
}

// InWatchlist reports whether a movie is present in the loaded watchlist.
func (s *Service) InWatchlist(movieID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.state.Session.Watchlist.Items {
		if item.MovieID == movieID {
			return true
		}
	}
	return false
}
