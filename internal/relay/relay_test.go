package relay_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dmorgan81/imggate/internal/config"
	"github.com/dmorgan81/imggate/internal/image"
	"github.com/dmorgan81/imggate/internal/moderate"
	"github.com/dmorgan81/imggate/internal/placeholder"
	"github.com/dmorgan81/imggate/internal/relay"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	allow bool
	err   error
	calls int
}

func (s *stubClassifier) Classify(context.Context, string) (bool, error) {
	s.calls++
	return s.allow, s.err
}

type stubGenerator struct {
	url   string
	err   error
	calls int
}

func (s *stubGenerator) Generate(context.Context, image.Params) (string, error) {
	s.calls++
	return s.url, s.err
}

func newService(t *testing.T, classifier moderate.Classifier, generator image.Generator) *relay.Service {
	t.Helper()

	injector := do.New()
	do.ProvideValue(injector, &config.Config{
		StaticDir:      t.TempDir(),
		PlaceholderURL: "/static/placeholder.png",
	})
	do.ProvideValue(injector, classifier)
	do.ProvideValue(injector, generator)
	do.Provide(injector, func(i *do.Injector) (*placeholder.Static, error) {
		return placeholder.NewStatic(context.Background(), i)
	})

	svc, err := relay.NewService(injector)
	require.NoError(t, err)
	return svc
}

func TestGenerateApproved(t *testing.T) {
	classifier := &stubClassifier{allow: true}
	generator := &stubGenerator{url: "https://x/img.png"}
	svc := newService(t, classifier, generator)

	result, err := svc.Generate(context.Background(), "a red bicycle")
	require.NoError(t, err)

	assert.Equal(t, "https://x/img.png", result.URL)
	assert.False(t, result.Moderated)
	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, 1, generator.calls)
}

func TestGenerateModerated(t *testing.T) {
	classifier := &stubClassifier{allow: false}
	generator := &stubGenerator{url: "https://x/img.png"}
	svc := newService(t, classifier, generator)

	result, err := svc.Generate(context.Background(), "something disallowed")
	require.NoError(t, err)

	assert.Equal(t, "/static/placeholder.png", result.URL)
	assert.True(t, result.Moderated)
	assert.Zero(t, generator.calls, "generation must never run for a denied prompt")
}

func TestGenerateModerationFailure(t *testing.T) {
	classifier := &stubClassifier{err: moderate.ErrUnavailable}
	generator := &stubGenerator{}
	svc := newService(t, classifier, generator)

	_, err := svc.Generate(context.Background(), "a red bicycle")
	assert.ErrorIs(t, err, moderate.ErrUnavailable)
	assert.Zero(t, generator.calls, "generation must never run when moderation fails")
}

func TestGenerateGenerationFailure(t *testing.T) {
	classifier := &stubClassifier{allow: true}
	generator := &stubGenerator{err: image.ErrUnavailable}
	svc := newService(t, classifier, generator)

	_, err := svc.Generate(context.Background(), "a red bicycle")
	assert.ErrorIs(t, err, image.ErrUnavailable)
}

func TestGenerateUpstreamFailurePreserved(t *testing.T) {
	classifier := &stubClassifier{allow: true}
	generator := &stubGenerator{err: &image.UpstreamError{Status: 400, Message: "Your prompt was rejected."}}
	svc := newService(t, classifier, generator)

	_, err := svc.Generate(context.Background(), "a red bicycle")

	var upstream *image.UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, 400, upstream.Status)
}

func TestGenerateEmptyPrompt(t *testing.T) {
	classifier := &stubClassifier{allow: true}
	svc := newService(t, classifier, &stubGenerator{})

	_, err := svc.Generate(context.Background(), "")
	assert.ErrorIs(t, err, relay.ErrInvalidPrompt)
	assert.Zero(t, classifier.calls)
}
