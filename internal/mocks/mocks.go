// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"clipcap/internal/types"
)

// MockTranscriber is a mock implementation of types.Transcriber
type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audioFile string, params types.TranscribeParams) (*types.TranscribeResult, error) {
	args := m.Called(ctx, audioFile, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TranscribeResult), args.Error(1)
}

// MockVideoProber is a mock implementation of types.VideoProber
type MockVideoProber struct {
	mock.Mock
}

func (m *MockVideoProber) Probe(ctx context.Context, inputVideo string) (*types.ProbeResult, error) {
	args := m.Called(ctx, inputVideo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ProbeResult), args.Error(1)
}

// MockCommandRunner is a mock implementation of types.CommandRunner
type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) Run(ctx context.Context, bin string, args ...string) error {
	callArgs := m.Called(ctx, bin, args)
	return callArgs.Error(0)
}
