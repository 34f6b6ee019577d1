package moderate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmorgan81/imggate/internal/config"
	"github.com/dmorgan81/imggate/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const systemInstruction = "You are a content moderator. Decide whether the following prompt is appropriate " +
	"for image generation. Answer with exactly 'yes' or 'no'."

type OpenAIClassifier struct {
	Client  *http.Client
	BaseURL string
	Key     string
	Model   string
}

func NewOpenAIClassifier(i *do.Injector) (Classifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &OpenAIClassifier{
		Client:  do.MustInvoke[*http.Client](i),
		BaseURL: cfg.BaseURL,
		Key:     do.MustInvokeNamed[string](i, "api_key"),
		Model:   cfg.ModerationModel,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stop        []string      `json:"stop,omitempty"`
}

// chatResponse covers both shapes the endpoint is known to answer with: the
// structured chat choice list and a bare result string.
type chatResponse struct {
	Result  *string `json:"result,omitempty"`
	Choices []struct {
		Text    string `json:"text,omitempty"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify asks the chat endpoint for a yes/no verdict on the prompt. Only an
// exact "no" denies; any other verdict text approves, so an ambiguous
// moderator never blocks generation.
func (c *OpenAIClassifier) Classify(ctx context.Context, prompt string) (bool, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("moderation")
	log.Info("classifying prompt")

	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature: 0,
		MaxTokens:   3,
		Stop:        []string{"\n"},
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.BaseURL, "/")+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Key)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	var verdict string
	switch {
	case len(parsed.Choices) > 0:
		choice := parsed.Choices[0]
		verdict = lo.Ternary(choice.Message.Content != "", choice.Message.Content, choice.Text)
	case parsed.Result != nil:
		verdict = *parsed.Result
	default:
		return false, ErrBadResponse
	}

	verdict = strings.ToLower(strings.TrimSpace(verdict))
	log.Info("classified prompt", "verdict", verdict)
	return verdict != "no", nil
}
