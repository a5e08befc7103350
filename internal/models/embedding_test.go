// ABOUTME: Tests for the embedding Vector type and dimension validation
// ABOUTME: Verifies vector dimension checking for embedding consistency
package models

import (
	"strings"
	"testing"
)

func TestVector_ValidateDimension(t *testing.T) {
	tests := []struct {
		name        string
		vector      Vector
		expectedDim int
		wantErr     bool
		errContains string
	}{
		{
			name:        "valid dimension match",
			vector:      Vector{0.1, 0.2, 0.3, 0.4},
			expectedDim: 4,
		},
		{
			name:        "empty vector",
			vector:      Vector{},
			expectedDim: 4,
			wantErr:     true,
			errContains: "cannot be empty",
		},
		{
			name:        "nil vector",
			vector:      nil,
			expectedDim: 4,
			wantErr:     true,
			errContains: "cannot be empty",
		},
		{
			name:        "dimension mismatch - too short",
			vector:      Vector{0.1, 0.2},
			expectedDim: 4,
			wantErr:     true,
			errContains: "dimension mismatch",
		},
		{
			name:        "dimension mismatch - too long",
			vector:      Vector{0.1, 0.2, 0.3, 0.4, 0.5, 0.6},
			expectedDim: 4,
			wantErr:     true,
			errContains: "dimension mismatch",
		},
		{
			name:        "text-embedding-3-small size",
			vector:      make(Vector, 1536),
			expectedDim: 1536,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.vector.ValidateDimension(tt.expectedDim)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDimension() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("ValidateDimension() error = %q, want to contain %q", err.Error(), tt.errContains)
			}
		})
	}
}
