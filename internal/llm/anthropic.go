// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/sync/errgroup"
)

const (
	// ProviderAnthropic is the provider name of AnthropicTransport.
	ProviderAnthropic = "anthropic"

	// defaultAnthropicModel is the model used when no override is provided.
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"

	// defaultMaxTokens is the default maximum output tokens per request.
	defaultMaxTokens = 4096
)

// AnthropicTransport implements Transport using the official Anthropic SDK.
// The Messages API takes one conversation per call, so a batch fans out
// into len(prompts)*N calls bounded by the configured concurrency. Results
// are placed by index, which keeps the prompt-major ordering.
type AnthropicTransport struct {
	client      anthropic.Client
	model       string
	concurrency int
}

// Compile-time check that AnthropicTransport satisfies the Transport interface.
var _ Transport = (*AnthropicTransport)(nil)

// NewAnthropicTransport creates a new Anthropic transport.
// It returns an error if no API key is provided.
func NewAnthropicTransport(opts ...Option) (*AnthropicTransport, error) {
	cfg := newTransportConfig(defaultAnthropicModel, opts)
	if cfg.apiKey == "" {
		return nil, fmt.Errorf("anthropic: %w: no API key provided", ErrInvalidAPIKey)
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.apiKey),
		option.WithMaxRetries(0),
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		clientOpts = append(clientOpts, option.WithHTTPClient(cfg.httpClient))
	}
	if cfg.timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(cfg.timeout))
	}

	return &AnthropicTransport{
		client:      anthropic.NewClient(clientOpts...),
		model:       cfg.model,
		concurrency: cfg.concurrency,
	}, nil
}

// Name returns "anthropic".
func (t *AnthropicTransport) Name() string { return ProviderAnthropic }

// Model returns the default model configured for this transport.
func (t *AnthropicTransport) Model() string { return t.model }

// Complete issues one Messages call per prompt replica. Any failure fails
// the whole batch so it can be retried as a unit.
func (t *AnthropicTransport) Complete(ctx context.Context, req *Request) (*Response, error) {
	model := t.model
	if req.Model != "" {
		model = req.Model
	}

	n := req.Params.Replicas()
	completions := make([]Completion, len(req.Prompts)*n)
	usages := make([]Usage, len(completions))

	var reqOpts []option.RequestOption
	for _, k := range sortedKeys(req.Extra) {
		reqOpts = append(reqOpts, option.WithJSONSet(k, req.Extra[k]))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for i, prompt := range req.Prompts {
		params := t.messageParams(model, prompt, req)
		for j := range n {
			slot := i*n + j
			g.Go(func() error {
				msg, err := t.client.Messages.New(gctx, params, reqOpts...)
				if err != nil {
					return convertAnthropicError(err)
				}
				completions[slot] = Completion{
					Text:         messageText(msg),
					FinishReason: string(msg.StopReason),
				}
				usages[slot] = NewUsage(
					int(msg.Usage.InputTokens),
					int(msg.Usage.OutputTokens),
					int(msg.Usage.InputTokens+msg.Usage.OutputTokens),
				)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var usage Usage
	for _, u := range usages {
		usage = usage.Add(u)
	}
	return &Response{
		Completions: completions,
		Usage:       usage,
		Model:       model,
	}, nil
}

func (t *AnthropicTransport) messageParams(model, prompt string, req *Request) anthropic.MessageNewParams {
	maxTokens := int64(defaultMaxTokens)
	if req.Params.MaxTokens != nil && *req.Params.MaxTokens > 0 {
		maxTokens = int64(*req.Params.MaxTokens)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if req.Params.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Params.Temperature)
	}
	if req.Params.TopP != nil {
		params.TopP = anthropic.Float(*req.Params.TopP)
	}
	if len(req.Stop) > 0 {
		params.StopSequences = req.Stop
	}
	return params
}

// messageText concatenates the text blocks of a message.
func messageText(msg *anthropic.Message) string {
	var content string
	for _, block := range msg.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += variant.Text
		}
	}
	return content
}

func convertAnthropicError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return ClassifyStatus(ProviderAnthropic, apiErr.StatusCode, err.Error())
	}
	return ClassifyStatus(ProviderAnthropic, 0, err.Error())
}
