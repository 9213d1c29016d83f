// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	// ProviderOpenAI is the provider name of OpenAITransport.
	ProviderOpenAI = "openai"

	// defaultOpenAIModel is the model used when a request leaves Model empty.
	defaultOpenAIModel = "gpt-3.5-turbo-instruct"
)

// OpenAITransport implements Transport with the OpenAI Completions API,
// which accepts a whole batch of prompts in one call and returns the n
// choices of each prompt contiguously.
type OpenAITransport struct {
	client openai.Client
	model  string
}

// Compile-time check that OpenAITransport satisfies the Transport interface.
var _ Transport = (*OpenAITransport)(nil)

// NewOpenAITransport creates an OpenAI transport. An API key is required.
// SDK-level retries are disabled: retrying is the engine's job.
func NewOpenAITransport(opts ...Option) (*OpenAITransport, error) {
	cfg := newTransportConfig(defaultOpenAIModel, opts)
	if cfg.apiKey == "" {
		return nil, fmt.Errorf("openai: %w: no API key provided", ErrInvalidAPIKey)
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

	return &OpenAITransport{
		client: openai.NewClient(clientOpts...),
		model:  cfg.model,
	}, nil
}

// Name returns "openai".
func (t *OpenAITransport) Name() string { return ProviderOpenAI }

// Model returns the default model.
func (t *OpenAITransport) Model() string { return t.model }

// Complete sends one Completions request for the whole batch.
func (t *OpenAITransport) Complete(ctx context.Context, req *Request) (*Response, error) {
	model := t.model
	if req.Model != "" {
		model = req.Model
	}
	if len(req.Prompts) == 0 {
		return &Response{Model: model}, nil
	}

	params := openai.CompletionNewParams{
		Model: openai.CompletionNewParamsModel(model),
	}
	p := req.Params
	if p.Temperature != nil {
		params.Temperature = openai.Float(*p.Temperature)
	}
	if p.TopP != nil {
		params.TopP = openai.Float(*p.TopP)
	}
	if p.FrequencyPenalty != nil {
		params.FrequencyPenalty = openai.Float(*p.FrequencyPenalty)
	}
	if p.PresencePenalty != nil {
		params.PresencePenalty = openai.Float(*p.PresencePenalty)
	}
	if p.MaxTokens != nil {
		params.MaxTokens = openai.Int(int64(*p.MaxTokens))
	}
	if p.N > 0 {
		params.N = openai.Int(int64(p.N))
	}
	if p.BestOf > 0 {
		params.BestOf = openai.Int(int64(p.BestOf))
	}
	if p.Logprobs != nil {
		params.Logprobs = openai.Int(int64(*p.Logprobs))
	}
	if len(p.LogitBias) > 0 {
		params.LogitBias = make(map[string]int64, len(p.LogitBias))
		for tok, bias := range p.LogitBias {
			params.LogitBias[tok] = int64(bias)
		}
	}

	// The prompt and stop fields are unions in the SDK; they are set as raw
	// JSON so the batch is always sent as a string array.
	reqOpts := []option.RequestOption{option.WithJSONSet("prompt", req.Prompts)}
	if len(req.Stop) > 0 {
		reqOpts = append(reqOpts, option.WithJSONSet("stop", req.Stop))
	}
	for _, k := range sortedKeys(req.Extra) {
		reqOpts = append(reqOpts, option.WithJSONSet(k, req.Extra[k]))
	}

	completion, err := t.client.Completions.New(ctx, params, reqOpts...)
	if err != nil {
		return nil, convertOpenAIError(err)
	}

	choices := completion.Choices
	sort.SliceStable(choices, func(i, j int) bool { return choices[i].Index < choices[j].Index })

	out := make([]Completion, 0, len(choices))
	for _, c := range choices {
		comp := Completion{
			Text:         c.Text,
			FinishReason: string(c.FinishReason),
		}
		if c.JSON.Logprobs.Valid() {
			comp.Logprobs = convertOpenAILogprobs(c.Logprobs)
		}
		out = append(out, comp)
	}

	return &Response{
		Completions: out,
		Usage:       convertOpenAIUsage(completion),
		Model:       completion.Model,
	}, nil
}

// convertOpenAIUsage maps the usage block, leaving counters the server
// omitted as nil.
func convertOpenAIUsage(c *openai.Completion) Usage {
	var u Usage
	if !c.JSON.Usage.Valid() {
		return u
	}
	if c.Usage.JSON.PromptTokens.Valid() {
		u.PromptTokens = Int(int(c.Usage.PromptTokens))
	}
	if c.Usage.JSON.CompletionTokens.Valid() {
		u.CompletionTokens = Int(int(c.Usage.CompletionTokens))
	}
	if c.Usage.JSON.TotalTokens.Valid() {
		u.TotalTokens = Int(int(c.Usage.TotalTokens))
	}
	return u
}

func convertOpenAILogprobs(lp openai.CompletionChoiceLogprobs) *Logprobs {
	out := &Logprobs{
		Tokens:        lp.Tokens,
		TokenLogprobs: lp.TokenLogprobs,
		TopLogprobs:   lp.TopLogprobs,
	}
	if len(lp.TextOffset) > 0 {
		out.TextOffset = make([]int, len(lp.TextOffset))
		for i, off := range lp.TextOffset {
			out.TextOffset[i] = int(off)
		}
	}
	return out
}

func convertOpenAIError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return ClassifyStatus(ProviderOpenAI, apiErr.StatusCode, err.Error())
	}
	return ClassifyStatus(ProviderOpenAI, 0, err.Error())
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
