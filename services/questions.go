package services

import (
	"errors"

	"github.com/hazlamahedich/shop-sub004/models"
)

// ErrNoMoreQuestions signals a caller-sequencing bug: the generator was
// invoked although every priority constraint is either already known or
// already asked. Callers must check NeedsClarification and the remaining
// attempt budget first.
var ErrNoMoreQuestions = errors.New("no more questions to ask")

// questionPriority is the fixed order in which missing constraints are
// asked about
var questionPriority = []string{"budget", "category", "size", "color", "brand"}

// questionTemplates holds the phrasings per constraint; the first entry
// is used today, the rest keep the door open for rotation
var questionTemplates = map[string][]string{
	"budget": {
		"What's your budget range for this?",
		"Roughly how much were you looking to spend?",
	},
	"category": {
		"What kind of product are you looking for?",
		"Which category should I search - shoes, clothing, accessories?",
	},
	"size": {
		"What size do you need?",
	},
	"color": {
		"Any color preference?",
	},
	"brand": {
		"Do you have a favorite brand, or should I look across all of them?",
	},
}

// QuestionGenerator picks the next clarification question to ask
type QuestionGenerator struct{}

// NewQuestionGenerator creates the generator
func NewQuestionGenerator() *QuestionGenerator {
	return &QuestionGenerator{}
}

// GenerateNextQuestion selects the first constraint in priority order that
// is both missing from the extracted entities and not yet asked, and
// returns (questionText, constraintName). ErrNoMoreQuestions means the
// caller violated the sequencing contract.
func (g *QuestionGenerator) GenerateNextQuestion(result *models.ClassificationResult, questionsAsked []string) (string, string, error) {
	asked := make(map[string]bool, len(questionsAsked))
	for _, q := range questionsAsked {
		asked[q] = true
	}

	for _, constraint := range questionPriority {
		if asked[constraint] {
			continue
		}
		if entityPresent(&result.Entities, constraint) {
			continue
		}
		return questionTemplates[constraint][0], constraint, nil
	}

	return "", "", ErrNoMoreQuestions
}

// entityPresent reports whether the named constraint already has a value
func entityPresent(entities *models.ExtractedEntities, constraint string) bool {
	switch constraint {
	case "budget":
		return entities.Budget != nil
	case "category":
		return entities.Category != ""
	case "size":
		return entities.Size != ""
	case "color":
		return entities.Color != ""
	case "brand":
		return entities.Brand != ""
	default:
		return false
	}
}
