package services

import (
	"testing"

	"github.com/hazlamahedich/shop-sub004/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNextQuestion_Priority(t *testing.T) {
	gen := NewQuestionGenerator()

	tests := []struct {
		name           string
		entities       models.ExtractedEntities
		asked          []string
		wantConstraint string
	}{
		{
			name:           "nothing known asks budget first",
			entities:       models.ExtractedEntities{},
			wantConstraint: "budget",
		},
		{
			name:           "only color known still asks budget first",
			entities:       models.ExtractedEntities{Color: "red"},
			wantConstraint: "budget",
		},
		{
			name:           "budget known asks category",
			entities:       models.ExtractedEntities{Budget: floatPtr(100)},
			wantConstraint: "category",
		},
		{
			name:           "budget asked but unanswered moves on to category",
			entities:       models.ExtractedEntities{},
			asked:          []string{"budget"},
			wantConstraint: "category",
		},
		{
			name:           "budget and category covered asks size",
			entities:       models.ExtractedEntities{Budget: floatPtr(100), Category: "shoes"},
			wantConstraint: "size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := models.ClassificationResult{Entities: tt.entities}
			question, constraint, err := gen.GenerateNextQuestion(&result, tt.asked)
			require.NoError(t, err)
			assert.Equal(t, tt.wantConstraint, constraint)
			assert.NotEmpty(t, question)
		})
	}
}

func TestGenerateNextQuestion_NeverRepeats(t *testing.T) {
	gen := NewQuestionGenerator()
	result := models.ClassificationResult{}

	asked := []string{}
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		_, constraint, err := gen.GenerateNextQuestion(&result, asked)
		require.NoError(t, err)
		assert.False(t, seen[constraint], "constraint %q asked twice", constraint)
		seen[constraint] = true
		asked = append(asked, constraint)
	}
}

func TestGenerateNextQuestion_Exhausted(t *testing.T) {
	gen := NewQuestionGenerator()

	// Everything already asked
	result := models.ClassificationResult{}
	_, _, err := gen.GenerateNextQuestion(&result, []string{"budget", "category", "size", "color", "brand"})
	assert.ErrorIs(t, err, ErrNoMoreQuestions)

	// Everything already known
	result = models.ClassificationResult{Entities: models.ExtractedEntities{
		Budget: floatPtr(50), Category: "shoes", Size: "9", Color: "black", Brand: "Acme",
	}}
	_, _, err = gen.GenerateNextQuestion(&result, nil)
	assert.ErrorIs(t, err, ErrNoMoreQuestions)
}
