// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"context"
	"fmt"
	"sync"
)

// ProviderMock is the provider name of MockTransport.
const ProviderMock = "mock"

// MockResponse defines a canned response for the mock transport. When both
// Err and Completions are empty, the mock echoes the request instead.
type MockResponse struct {
	Completions []Completion
	Usage       Usage
	Err         error
}

// MockTransport is a test double that returns pre-configured responses in
// sequence. After all responses are exhausted, it keeps returning the last one.
// It records every request for later assertion.
//
// With no scripted responses (or a script entry with neither Err nor
// Completions) it echoes: replica j of prompt p is "<p>#<j>", and each prompt
// reports one prompt token and one completion token per replica.
type MockTransport struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []Request
	idx       int
}

// Compile-time check that MockTransport satisfies the Transport interface.
var _ Transport = (*MockTransport)(nil)

// NewMockTransport creates a mock that returns the given responses in order.
func NewMockTransport(responses ...MockResponse) *MockTransport {
	return &MockTransport{
		responses: responses,
	}
}

// Name returns "mock".
func (m *MockTransport) Name() string { return ProviderMock }

// Complete returns the next canned response and records the request.
// It respects context cancellation.
func (m *MockTransport) Complete(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, cloneRequest(req))

	if len(m.responses) == 0 {
		return echo(req), nil
	}

	r := m.responses[m.idx]
	if m.idx < len(m.responses)-1 {
		m.idx++
	}

	if r.Err != nil {
		return nil, r.Err
	}
	if r.Completions == nil {
		return echo(req), nil
	}

	out := make([]Completion, len(r.Completions))
	copy(out, r.Completions)
	return &Response{
		Completions: out,
		Usage:       r.Usage,
		Model:       req.Model,
	}, nil
}

// Calls returns a copy of all requests received by this mock.
func (m *MockTransport) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Complete invocations so far.
func (m *MockTransport) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears call history and resets the response index to zero.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = nil
	m.idx = 0
}

func echo(req *Request) *Response {
	n := req.Params.Replicas()
	out := make([]Completion, 0, len(req.Prompts)*n)
	for _, p := range req.Prompts {
		for j := range n {
			out = append(out, Completion{
				Text:         fmt.Sprintf("%s#%d", p, j),
				FinishReason: "stop",
			})
		}
	}
	k := len(req.Prompts)
	return &Response{
		Completions: out,
		Usage:       NewUsage(k, k*n, k+k*n),
		Model:       req.Model,
	}
}

func cloneRequest(req *Request) Request {
	c := *req
	c.Prompts = append([]string(nil), req.Prompts...)
	c.Stop = append([]string(nil), req.Stop...)
	return c
}
