package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBiasThresholdError(t *testing.T) {
	err := &BiasThresholdError{Message: "equality difference above 0.1: cnn fnr_equality_difference=0.2000"}
	assert.Equal(t, "equality difference above 0.1: cnn fnr_equality_difference=0.2000", err.Error())
}

func TestErrorTypeDetection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"BiasThresholdError", &BiasThresholdError{Message: "over"}, true},
		{"regular error", errors.New("config error"), false},
		{"wrapped BiasThresholdError", fmt.Errorf("diff: %w", &BiasThresholdError{Message: "over"}), true},
		{"joined BiasThresholdError", errors.Join(&BiasThresholdError{Message: "over"}, errors.New("context")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var biasErr *BiasThresholdError
			assert.Equal(t, tt.want, errors.As(tt.err, &biasErr))
		})
	}
}
