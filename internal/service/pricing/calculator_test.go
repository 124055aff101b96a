package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	svc := NewService(Config{
		BaseFare: map[string]float64{
			"standard": 7.0,
			"delivery": 10.0,
		},
		DefaultFare: 7.0,
	})

	tests := []struct {
		name        string
		requestType string
		want        float64
	}{
		{"standard fare", "standard", 7.0},
		{"delivery fare", "delivery", 10.0},
		{"unknown type falls back to default", "express", 7.0},
		{"empty type falls back to default", "", 7.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.Quote(tt.requestType))
		})
	}
}
