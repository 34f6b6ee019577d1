package relay

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmorgan81/imggate/internal/image"
	"github.com/dmorgan81/imggate/internal/log"
	"github.com/dmorgan81/imggate/internal/moderate"
	"github.com/dmorgan81/imggate/internal/placeholder"
	"github.com/samber/do"
)

var ErrInvalidPrompt = errors.New("missing or invalid prompt")

// Result is the terminal outcome of one request. Moderated marks the
// placeholder case; the response shape is identical either way.
type Result struct {
	URL       string
	Moderated bool
}

// Service runs the pipeline for one prompt: classify, then either generate or
// answer with the placeholder. Strictly sequential, no retries, no state
// shared across requests.
type Service struct {
	classifier  moderate.Classifier
	generator   image.Generator
	placeholder *placeholder.Static
}

func NewService(i *do.Injector) (*Service, error) {
	return &Service{
		classifier:  do.MustInvoke[moderate.Classifier](i),
		generator:   do.MustInvoke[image.Generator](i),
		placeholder: do.MustInvoke[*placeholder.Static](i),
	}, nil
}

func (s *Service) Generate(ctx context.Context, prompt string) (*Result, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("relay")

	if prompt == "" {
		return nil, ErrInvalidPrompt
	}

	ok, err := s.classifier.Classify(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("moderation: %w", err)
	}
	if !ok {
		log.Info("prompt rejected by moderation")
		return &Result{URL: s.placeholder.URL(), Moderated: true}, nil
	}

	url, err := s.generator.Generate(ctx, image.Params{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("generation: %w", err)
	}
	return &Result{URL: url}, nil
}
