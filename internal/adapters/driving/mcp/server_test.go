package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_Success(t *testing.T) {
	ports := &Ports{
		Analysis:   &mockAnalysisService{},
		Annotation: &mockAnnotationService{},
	}

	server, err := NewServer(ports)

	require.NoError(t, err)
	assert.NotNil(t, server)
}

func TestNewServer_MissingAnalysisService(t *testing.T) {
	ports := &Ports{Annotation: &mockAnnotationService{}}

	server, err := NewServer(ports)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAnalysisService)
	assert.Nil(t, server)
}

func TestNewServer_MissingAnnotationService(t *testing.T) {
	ports := &Ports{Analysis: &mockAnalysisService{}}

	server, err := NewServer(ports)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingAnnotationService)
	assert.Nil(t, server)
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{
			name:    "all ports set",
			ports:   &Ports{Analysis: &mockAnalysisService{}, Annotation: &mockAnnotationService{}},
			wantErr: nil,
		},
		{
			name:    "missing analysis",
			ports:   &Ports{Annotation: &mockAnnotationService{}},
			wantErr: ErrMissingAnalysisService,
		},
		{
			name:    "missing annotation",
			ports:   &Ports{Analysis: &mockAnalysisService{}},
			wantErr: ErrMissingAnnotationService,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
