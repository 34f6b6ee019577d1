package inject

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/imggate/internal/config"
	"github.com/dmorgan81/imggate/internal/handler"
	"github.com/dmorgan81/imggate/internal/image"
	"github.com/dmorgan81/imggate/internal/log"
	"github.com/dmorgan81/imggate/internal/moderate"
	"github.com/dmorgan81/imggate/internal/param"
	"github.com/dmorgan81/imggate/internal/placeholder"
	"github.com/dmorgan81/imggate/internal/ratelimit"
	"github.com/dmorgan81/imggate/internal/relay"
	"github.com/samber/do"
	"golang.org/x/time/rate"
)

func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})

	do.ProvideValue[*config.Config](injector, cfg)
	do.ProvideValue[*http.Client](injector, &http.Client{Timeout: cfg.Timeout})

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)

	// Resolved once at startup; only falls back to SSM when no key is in the
	// environment.
	do.ProvideNamed[string](injector, "api_key", func(i *do.Injector) (string, error) {
		if cfg.APIKey != "" {
			return cfg.APIKey, nil
		}
		return do.MustInvoke[param.Fetcher](i).Fetch(ctx, cfg.APIKeyParam)
	})

	do.Provide[moderate.Classifier](injector, moderate.NewOpenAIClassifier)
	do.Provide[image.Generator](injector, image.NewOpenAIGenerator)
	do.Provide[*placeholder.Static](injector, func(i *do.Injector) (*placeholder.Static, error) {
		return placeholder.NewStatic(ctx, i)
	})
	do.Provide[*ratelimit.Gate](injector, func(i *do.Injector) (*ratelimit.Gate, error) {
		return ratelimit.New(ctx, rate.Every(time.Second), 1), nil
	})
	do.Provide[*relay.Service](injector, relay.NewService)
	do.Provide[*handler.Handler](injector, handler.NewHandler)

	return injector
}
