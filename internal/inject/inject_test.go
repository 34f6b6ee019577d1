package inject

import (
	"context"
	"testing"

	"github.com/dmorgan81/imggate/internal/config"
	"github.com/dmorgan81/imggate/internal/param"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	value string
	paths []string
}

func (s *stubFetcher) Fetch(_ context.Context, path string) (string, error) {
	s.paths = append(s.paths, path)
	return s.value, nil
}

func TestAPIKeyFromEnv(t *testing.T) {
	injector := Setup(context.Background(), &config.Config{APIKey: "sk-env"})

	key, err := do.InvokeNamed[string](injector, "api_key")
	require.NoError(t, err)
	assert.Equal(t, "sk-env", key)
}

func TestAPIKeyFromParameterStore(t *testing.T) {
	injector := Setup(context.Background(), &config.Config{APIKeyParam: "/imggate/openai-api-key"})
	fetcher := &stubFetcher{value: "sk-from-ssm"}
	do.OverrideValue[param.Fetcher](injector, fetcher)

	key, err := do.InvokeNamed[string](injector, "api_key")
	require.NoError(t, err)

	assert.Equal(t, "sk-from-ssm", key)
	assert.Equal(t, []string{"/imggate/openai-api-key"}, fetcher.paths)
}
