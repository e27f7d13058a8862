package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLooksLikeOrderNumber(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"A1234", true},
		{"#A1234", true},
		{"1234", true},
		{"ORD-2026-001", true},
		{"  #B9876  ", true},
		{"abc", false},             // too short
		{"#ab", false},             // too short after stripping
		{"A1234 please", false},    // extra words
		{"order#A1234", false},     // hash not leading
		{"AAAAAAAAAAAAAAAAAAAAA", false}, // 21 chars, too long
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeOrderNumber(tt.text))
		})
	}
}

func TestLooksLikeEmail(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"jo@example.com", true},
		{"  first.last@shop.co.uk ", true},
		{"not an email", false},
		{"missing@domain", false},
		{"@nope.com", false},
		{"two@at@signs.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, LooksLikeEmail(tt.text))
		})
	}
}
