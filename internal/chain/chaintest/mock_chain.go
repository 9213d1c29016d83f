// Copyright 2026 The Batchllm Authors
// SPDX-License-Identifier: MIT

// Package chaintest provides a testify mock of chain.Chain.
package chaintest

import (
	context "context"

	mock "github.com/stretchr/testify/mock"

	chain "github.com/davetashner/batchllm/internal/chain"
)

// MockChain is a mock for chain.Chain.
type MockChain struct {
	mock.Mock
}

func (m *MockChain) Run(ctx context.Context, inputs chain.Values) (chain.Values, error) {
	ret := m.Called(ctx, inputs)
	var r0 chain.Values
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(chain.Values)
	}
	return r0, ret.Error(1)
}

func (m *MockChain) InputKeys() []string {
	ret := m.Called()
	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0
}

func (m *MockChain) OutputKeys() []string {
	ret := m.Called()
	var r0 []string
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]string)
	}
	return r0
}

func (m *MockChain) Type() string {
	ret := m.Called()
	return ret.String(0)
}

func (m *MockChain) Serialize() (chain.Config, error) {
	ret := m.Called()
	var r0 chain.Config
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(chain.Config)
	}
	return r0, ret.Error(1)
}

// NewMockChain creates a new instance of MockChain.
func NewMockChain(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockChain {
	mockObj := &MockChain{}
	mockObj.Mock.Test(t)

	t.Cleanup(func() { mockObj.AssertExpectations(t) })

	return mockObj
}
