package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/JTHCode/salesdash/internal/dataprocessing"
	"github.com/JTHCode/salesdash/internal/forecast"
)

// MockTableSource is a mock for the TableSource interface
type MockTableSource struct {
	mock.Mock
}

func (m *MockTableSource) Load(ctx context.Context, forceRefresh bool) (*dataprocessing.CanonicalTable, error) {
	args := m.Called(ctx, forceRefresh)
	table, _ := args.Get(0).(*dataprocessing.CanonicalTable)
	return table, args.Error(1)
}

// MockArtifactSource is a mock for the ArtifactSource interface
type MockArtifactSource struct {
	mock.Mock
}

func (m *MockArtifactSource) Load(ctx context.Context) (*forecast.Artifact, error) {
	args := m.Called(ctx)
	artifact, _ := args.Get(0).(*forecast.Artifact)
	return artifact, args.Error(1)
}
