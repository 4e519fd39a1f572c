package state

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"

	"streamnest/models"
	"streamnest/services/gateway"
)

// Reference data (plans, avatars) is idempotent to fetch, so transient
// failures are retried here at the caller layer; the gateway itself never
// retries. Anything that looks like a business rejection (4xx) fails fast.
const (
	referenceRetryAttempts = 3
	referenceRetryDelay    = 200 * time.Millisecond
)

func isTransient(err error) bool {
	remoteErr, ok := gateway.AsRemoteError(err)
	if !ok {
		return false
	}
	return remoteErr.StatusCode == 0 || remoteErr.StatusCode >= 500
}

// FetchPlans loads the subscription plan catalog. Callers wanting the
// cache-then-refetch behavior should guard with
// len(Snapshot().Plans.Items) == 0 && !Snapshot().Plans.Loading before
// dispatching; the store itself always refetches when asked.
func (s *Service) FetchPlans(ctx context.Context) error {
	s.mu.Lock()
	s.state.Plans.Loading = true
	s.state.Plans.Err = ""
	s.mu.Unlock()

	var plans []models.Plan
	err := retry.Do(
		func() error {
			var fetchErr error
			plans, fetchErr = s.backend.Plans(ctx)
			return fetchErr
		},
		retry.Context(ctx),
		retry.Attempts(referenceRetryAttempts),
		retry.Delay(referenceRetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Plans.Loading = false
	if err != nil {
		s.state.Plans.Err = errMessage(err)
		return err
	}
	s.state.Plans.Items = plans
	s.state.Plans.Err = ""
	return nil
}

// FetchPredefinedAvatars loads the avatar catalog for a category.
func (s *Service) FetchPredefinedAvatars(ctx context.Context, category models.AvatarCategory) error {
	s.mu.Lock()
	s.state.Avatars.Loading = true
	s.state.Avatars.Err = ""
	s.mu.Unlock()

	var avatars []models.Avatar
	err := retry.Do(
		func() error {
			var fetchErr error
			avatars, fetchErr = s.backend.Avatars(ctx, category)
			return fetchErr
		},
		retry.Context(ctx),
		retry.Attempts(referenceRetryAttempts),
		retry.Delay(referenceRetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Avatars.Loading = false
	if err != nil {
		s.state.Avatars.Err = errMessage(err)
		return err
	}
	s.state.Avatars.Items = avatars
	s.state.Avatars.Err = ""
	return nil
}
