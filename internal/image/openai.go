package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmorgan81/imggate/internal/config"
	"github.com/dmorgan81/imggate/internal/log"
	"github.com/samber/do"
)

type OpenAIGenerator struct {
	Client  *http.Client
	BaseURL string
	Key     string
	Model   string
	Size    string
}

func NewOpenAIGenerator(i *do.Injector) (Generator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &OpenAIGenerator{
		Client:  do.MustInvoke[*http.Client](i),
		BaseURL: cfg.BaseURL,
		Key:     do.MustInvokeNamed[string](i, "api_key"),
		Model:   cfg.ImageModel,
		Size:    cfg.ImageSize,
	}, nil
}

type generationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type generationResponse struct {
	Data []struct {
		URL     string `json:"url,omitempty"`
		B64JSON string `json:"b64_json,omitempty"`
	} `json:"data"`
}

type generationError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate requests a single hosted-URL image for the prompt and relays the
// first result. Upstream rejections keep their status and message.
func (g *OpenAIGenerator) Generate(ctx context.Context, params Params) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("generation").With("model", g.Model)
	log.Info("generating image")

	body, err := json.Marshal(generationRequest{
		Model:          g.Model,
		Prompt:         params.Prompt,
		N:              1,
		Size:           g.Size,
		ResponseFormat: "url",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(g.BaseURL, "/")+"/v1/images/generations", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		var parsed generationError
		message := "Image generation failed."
		if err := json.Unmarshal(data, &parsed); err == nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
		}
		log.Error("upstream rejected generation", "status", resp.StatusCode, "message", message)
		return "", &UpstreamError{Status: resp.StatusCode, Message: message}
	}

	var parsed generationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return "", ErrBadResponse
	}

	log.Info("generated image")
	return parsed.Data[0].URL, nil
}
