package authoring

import "github.com/abhisek/mathlingo/internal/llm"

// DraftSchema is the structured-output schema sent to the provider. Every
// property is required so strict providers accept it; empty strings and
// arrays stand for absent optional fields.
var DraftSchema = &llm.Schema{
	Name:        "question-templates",
	Description: "Parameterized maths exercise templates for one chapter",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"templates": map[string]any{
				"type":  "array",
				"items": templateSchema,
			},
		},
		"required":             []any{"templates"},
		"additionalProperties": false,
	},
}

var variableSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name":    map[string]any{"type": "string", "description": "Identifier used as {name} in texts and formulas"},
		"min":     map[string]any{"type": "integer"},
		"max":     map[string]any{"type": "integer"},
		"step":    map[string]any{"type": "integer", "description": "Lattice step from min; 0 means 1"},
		"exclude": map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
	},
	"required":             []any{"name", "min", "max", "step", "exclude"},
	"additionalProperties": false,
}

var answerSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"textFormula":      map[string]any{"type": "string", "description": "Formula for the option text"},
		"isCorrectFormula": map[string]any{"type": "string", "description": "Formula that evaluates to 1 for the correct option"},
	},
	"required":             []any{"textFormula", "isCorrectFormula"},
	"additionalProperties": false,
}

var templateSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":                   map[string]any{"type": "string"},
		"type":                 map[string]any{"type": "string", "enum": []any{"multiple_choice", "free_input"}},
		"difficulty":           map[string]any{"type": "string", "enum": []any{"easy", "medium", "hard"}},
		"variables":            map[string]any{"type": "array", "items": variableSchema},
		"questionTemplate":     map[string]any{"type": "string"},
		"realLifeTemplate":     map[string]any{"type": "string"},
		"correctAnswerFormula": map[string]any{"type": "string"},
		"answersTemplate":      map[string]any{"type": "array", "items": answerSchema},
		"explanationTemplate":  map[string]any{"type": "string"},
		"hintsTemplates":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"tags":                 map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
	},
	"required": []any{
		"id", "type", "difficulty", "variables", "questionTemplate", "realLifeTemplate",
		"correctAnswerFormula", "answersTemplate", "explanationTemplate", "hintsTemplates", "tags",
	},
	"additionalProperties": false,
}
