package model

// JSON schemas for the two extraction shapes. The "json_schema" member is
// sent to the model as the response format and reused locally to validate
// what comes back before unmarshaling into the typed model.

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

// questionVariant builds the schema for one member of the question union.
// Every variant repeats the shared base fields plus its own constraints.
func questionVariant(kind QuestionType, extra map[string]any, extraRequired ...string) map[string]any {
	props := map[string]any{
		"type":         map[string]any{"const": string(kind)},
		"number":       stringProp("Question number as printed on the form, e.g. A1, B2"),
		"id":           stringProp("Identifier derived from the question, lowercase with underscores"),
		"text":         stringProp("Question text read to the respondent"),
		"instructions": stringProp("Instructions to the interviewer, if present"),
		"universe":     stringProp("Respondents the question applies to, if stated"),
	}
	for k, v := range extra {
		props[k] = v
	}
	required := append([]string{"type", "number", "id", "text"}, extraRequired...)
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

var optionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"code":  stringProp("Response code, e.g. 1, 2, A"),
		"label": stringProp("Response label shown on the form"),
	},
	"required":             []string{"code", "label"},
	"additionalProperties": false,
}

var questionSchema = map[string]any{
	"oneOf": []any{
		questionVariant(QuestionTypeNumeric, map[string]any{
			"min_value":      map[string]any{"type": "number", "description": "Minimum allowed value"},
			"max_value":      map[string]any{"type": "number", "description": "Maximum allowed value"},
			"decimal_places": map[string]any{"type": "integer", "description": "Decimal places allowed"},
		}),
		questionVariant(QuestionTypeText, map[string]any{
			"max_length": map[string]any{"type": "integer", "description": "Maximum text length"},
		}),
		questionVariant(QuestionTypeSingleSelect, map[string]any{
			"options": map[string]any{"type": "array", "items": optionSchema, "minItems": 1},
		}, "options"),
		questionVariant(QuestionTypeMultiSelect, map[string]any{
			"options":        map[string]any{"type": "array", "items": optionSchema, "minItems": 1},
			"min_selections": map[string]any{"type": "integer"},
			"max_selections": map[string]any{"type": "integer"},
		}, "options"),
		questionVariant(QuestionTypeDate, map[string]any{
			"min_date": stringProp("Minimum allowed date (YYYY-MM-DD)"),
			"max_date": stringProp("Maximum allowed date (YYYY-MM-DD)"),
		}),
		questionVariant(QuestionTypeLocation, map[string]any{
			"latitude":  map[string]any{"type": "number", "minimum": -90, "maximum": 90},
			"longitude": map[string]any{"type": "number", "minimum": -180, "maximum": 180},
		}),
	},
}

var sectionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":          stringProp("Section identifier derived from the title, lowercase with underscores"),
		"number":      stringProp("Section number, e.g. A, B, I, II"),
		"title":       stringProp("Section title"),
		"description": stringProp("Section description, if present"),
		"universe":    stringProp("Respondents the section applies to, if stated"),
		"occurrences": map[string]any{
			"type":        "integer",
			"minimum":     1,
			"description": "How many times the section repeats; estimate when not explicit",
		},
		"questions": map[string]any{"type": "array", "items": questionSchema},
	},
	"required":             []string{"id", "number", "title", "occurrences", "questions"},
	"additionalProperties": false,
}

var trailingSectionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id": stringProp("Id of a section that may continue on the next page"),
		"question_ids": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "Ids of the last question(s) on this page that may continue",
		},
	},
	"required":             []string{"id", "question_ids"},
	"additionalProperties": false,
}

// QuestionnaireExtractionSchema is the response format for first-page
// extraction: the full document shape.
var QuestionnaireExtractionSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "questionnaire_extraction",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":       stringProp("Title of the survey"),
				"description": stringProp("Description of the survey, if present"),
				"id_fields": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Question ids that combined uniquely identify the questionnaire",
				},
				"sections":          map[string]any{"type": "array", "items": sectionSchema},
				"trailing_sections": map[string]any{"type": "array", "items": trailingSectionSchema},
			},
			"required":             []string{"title", "id_fields", "sections"},
			"additionalProperties": false,
		},
	},
}

// PartialExtractionSchema is the response format for pages after the first:
// only this page's sections plus continuity hints.
var PartialExtractionSchema = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "partial_questionnaire_extraction",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"sections":          map[string]any{"type": "array", "items": sectionSchema},
				"trailing_sections": map[string]any{"type": "array", "items": trailingSectionSchema},
			},
			"required":             []string{"sections"},
			"additionalProperties": false,
		},
	},
}
