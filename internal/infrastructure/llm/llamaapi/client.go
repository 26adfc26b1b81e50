package llamaapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
	"github.com/arcadehub/rules-chatbot/internal/infrastructure/resilience"
)

// Client invokes an OpenAI-style chat-completions service. Requests
// run through the resilience executor: transport failures and
// retryable statuses are retried with backoff, a context deadline is
// surfaced immediately as the timeout kind, and a malformed body is a
// terminal generation error (another attempt cannot fix a parse
// failure).
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
	executor    *resilience.Executor
}

type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	Executor    *resilience.Executor
}

func New(opts Options) *Client {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 512
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		executor:    opts.Executor,
	}
}

func (c *Client) Generate(ctx context.Context, prompt domain.Prompt) (string, error) {
	var out string
	call := func(callCtx context.Context) error {
		text, err := c.chatCompletion(callCtx, prompt)
		if err != nil {
			return err
		}
		out = text
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "llama.chat", call, classifyGenerationError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		if isTimeout(err) {
			return "", domain.WrapError(domain.ErrTimeout, "chat completion", err)
		}
		return "", domain.WrapError(domain.ErrGeneration, "chat completion", err)
	}
	return out, nil
}

var errMalformedResponse = errors.New("malformed completion response")

func (c *Client) chatCompletion(ctx context.Context, prompt domain.Prompt) (string, error) {
	request := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": prompt.System},
			{"role": "user", "content": prompt.User},
		},
		"max_tokens":  c.maxTokens,
		"temperature": c.temperature,
		"stream":      false,
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.postJSON(ctx, "/chat/completions", request, &response); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", errMalformedResponse)
	}
	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty message content", errMalformedResponse)
	}
	return content, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
