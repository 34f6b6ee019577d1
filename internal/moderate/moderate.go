package moderate

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable covers any transport failure talking to the moderation endpoint.
	ErrUnavailable = errors.New("moderation unavailable")
	// ErrBadResponse means the endpoint answered but carried no verdict text at all.
	ErrBadResponse = errors.New("moderation response missing verdict")
)

type Classifier interface {
	Classify(context.Context, string) (bool, error)
}
