package image

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrUnavailable covers any transport failure talking to the image endpoint.
	ErrUnavailable = errors.New("image generation unavailable")
	// ErrBadResponse means the endpoint answered 2xx without a usable image.
	ErrBadResponse = errors.New("image response missing data")
)

// UpstreamError relays a non-success status from the image endpoint verbatim.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

type Params struct {
	Prompt string
}

type Generator interface {
	Generate(context.Context, Params) (string, error)
}
