package sessions

import "context"

// Repository provides attempt persistence operations.
// Get and Take return (nil, nil) for unknown or expired ids. Take removes the
// attempt in the same step it reads it, so only one caller can ever receive a
// given attempt.
type Repository interface {
	Create(ctx context.Context, a *Attempt) error
	Get(ctx context.Context, id string) (*Attempt, error)
	Take(ctx context.Context, id string) (*Attempt, error)
}
