// Package model defines the intermediate questionnaire representation shared
// by the interpreter, readers and writers.
package model

import (
	"encoding/json"
	"fmt"
)

// QuestionType discriminates the question variants.
type QuestionType string

const (
	QuestionTypeSingleSelect QuestionType = "single_select"
	QuestionTypeMultiSelect  QuestionType = "multi_select"
	QuestionTypeNumeric      QuestionType = "numeric"
	QuestionTypeText         QuestionType = "text"
	QuestionTypeDate         QuestionType = "date"
	QuestionTypeLocation     QuestionType = "location"
)

// Option is one selectable response of a single/multi select question.
type Option struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// QuestionBase holds the fields shared by every question variant.
type QuestionBase struct {
	// Number is the human label printed on the form, e.g. "A1". It is the
	// merge key within a section.
	Number string `json:"number"`
	// ID is a semantic identifier derived from the question, e.g. "age".
	// Not guaranteed unique across the document.
	ID           string `json:"id"`
	Text         string `json:"text"`
	Instructions string `json:"instructions,omitempty"`
	Universe     string `json:"universe,omitempty"`
}

// Question is the tagged union over the six variant kinds. Concrete types
// carry only their own constraints; the "type" JSON field selects the
// variant on unmarshal.
type Question interface {
	Type() QuestionType
	Base() *QuestionBase
	clone() Question
}

// NumericQuestion is a numeric entry field.
type NumericQuestion struct {
	QuestionBase
	MinValue      *float64 `json:"min_value,omitempty"`
	MaxValue      *float64 `json:"max_value,omitempty"`
	DecimalPlaces *int     `json:"decimal_places,omitempty"`
}

func (q *NumericQuestion) Type() QuestionType  { return QuestionTypeNumeric }
func (q *NumericQuestion) Base() *QuestionBase { return &q.QuestionBase }

func (q *NumericQuestion) clone() Question {
	c := *q
	c.MinValue = cloneFloat(q.MinValue)
	c.MaxValue = cloneFloat(q.MaxValue)
	c.DecimalPlaces = cloneInt(q.DecimalPlaces)
	return &c
}

// TextQuestion is a free text entry field.
type TextQuestion struct {
	QuestionBase
	MaxLength *int `json:"max_length,omitempty"`
}

func (q *TextQuestion) Type() QuestionType  { return QuestionTypeText }
func (q *TextQuestion) Base() *QuestionBase { return &q.QuestionBase }

func (q *TextQuestion) clone() Question {
	c := *q
	c.MaxLength = cloneInt(q.MaxLength)
	return &c
}

// SingleSelectQuestion allows exactly one of its options.
type SingleSelectQuestion struct {
	QuestionBase
	Options []Option `json:"options"`
}

func (q *SingleSelectQuestion) Type() QuestionType  { return QuestionTypeSingleSelect }
func (q *SingleSelectQuestion) Base() *QuestionBase { return &q.QuestionBase }

func (q *SingleSelectQuestion) clone() Question {
	c := *q
	c.Options = append([]Option(nil), q.Options...)
	return &c
}

// MultiSelectQuestion allows any number of its options.
type MultiSelectQuestion struct {
	QuestionBase
	Options       []Option `json:"options"`
	MinSelections *int     `json:"min_selections,omitempty"`
	MaxSelections *int     `json:"max_selections,omitempty"`
}

func (q *MultiSelectQuestion) Type() QuestionType  { return QuestionTypeMultiSelect }
func (q *MultiSelectQuestion) Base() *QuestionBase { return &q.QuestionBase }

func (q *MultiSelectQuestion) clone() Question {
	c := *q
	c.Options = append([]Option(nil), q.Options...)
	c.MinSelections = cloneInt(q.MinSelections)
	c.MaxSelections = cloneInt(q.MaxSelections)
	return &c
}

// DateQuestion captures a calendar date, optionally bounded (YYYY-MM-DD).
type DateQuestion struct {
	QuestionBase
	MinDate string `json:"min_date,omitempty"`
	MaxDate string `json:"max_date,omitempty"`
}

func (q *DateQuestion) Type() QuestionType  { return QuestionTypeDate }
func (q *DateQuestion) Base() *QuestionBase { return &q.QuestionBase }

func (q *DateQuestion) clone() Question {
	c := *q
	return &c
}

// LocationQuestion captures a geographic coordinate. Latitude is bounded to
// [-90, 90] and longitude to [-180, 180].
type LocationQuestion struct {
	QuestionBase
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (q *LocationQuestion) Type() QuestionType  { return QuestionTypeLocation }
func (q *LocationQuestion) Base() *QuestionBase { return &q.QuestionBase }

func (q *LocationQuestion) clone() Question {
	c := *q
	c.Latitude = cloneFloat(q.Latitude)
	c.Longitude = cloneFloat(q.Longitude)
	return &c
}

// Questions is a slice of the question union with JSON (un)marshaling that
// handles the "type" discriminant.
type Questions []Question

// UnmarshalJSON decodes each element by peeking at its "type" field.
func (qs *Questions) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Questions, 0, len(raws))
	for i, raw := range raws {
		q, err := UnmarshalQuestion(raw)
		if err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		out = append(out, q)
	}
	*qs = out
	return nil
}

// UnmarshalQuestion decodes a single question, dispatching on the
// discriminant before applying variant-specific decoding.
func UnmarshalQuestion(data []byte) (Question, error) {
	var tag struct {
		Type QuestionType `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}

	var q Question
	switch tag.Type {
	case QuestionTypeNumeric:
		q = &NumericQuestion{}
	case QuestionTypeText:
		q = &TextQuestion{}
	case QuestionTypeSingleSelect:
		q = &SingleSelectQuestion{}
	case QuestionTypeMultiSelect:
		q = &MultiSelectQuestion{}
	case QuestionTypeDate:
		q = &DateQuestion{}
	case QuestionTypeLocation:
		q = &LocationQuestion{}
	default:
		return nil, fmt.Errorf("unknown question type %q", tag.Type)
	}
	if err := json.Unmarshal(data, q); err != nil {
		return nil, err
	}
	return q, nil
}

// MarshalJSON emits each question with its "type" tag.
func (qs Questions) MarshalJSON() ([]byte, error) {
	raws := make([]json.RawMessage, 0, len(qs))
	for _, q := range qs {
		raw, err := MarshalQuestion(q)
		if err != nil {
			return nil, err
		}
		raws = append(raws, raw)
	}
	return json.Marshal(raws)
}

// MarshalQuestion encodes a question, injecting the "type" discriminant.
func MarshalQuestion(q Question) ([]byte, error) {
	raw, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	typeRaw, err := json.Marshal(q.Type())
	if err != nil {
		return nil, err
	}
	fields["type"] = typeRaw
	return json.Marshal(fields)
}

func (qs Questions) clone() Questions {
	if qs == nil {
		return nil
	}
	out := make(Questions, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.clone())
	}
	return out
}

// Section groups related questions. ID is the merge key across pages.
type Section struct {
	ID          string `json:"id"`
	Number      string `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Universe    string `json:"universe,omitempty"`
	// Occurrences is the expected repeat count of the section (roster rows),
	// always present even when estimated.
	Occurrences int       `json:"occurrences"`
	Questions   Questions `json:"questions"`
}

// Clone deep-copies the section.
func (s Section) Clone() Section {
	c := s
	c.Questions = s.Questions.clone()
	return c
}

// TrailingSectionRef names a section whose tail questions may continue on
// the next page.
type TrailingSectionRef struct {
	ID          string   `json:"id"`
	QuestionIDs []string `json:"question_ids"`
}

// SectionFragment is the minimal carry-forward context for a trailing
// section: only the referenced tail questions, never the whole section.
type SectionFragment struct {
	ID        string    `json:"id"`
	Number    string    `json:"number"`
	Title     string    `json:"title"`
	Questions Questions `json:"questions"`
}

// Questionnaire is the full document model.
type Questionnaire struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	// IDFields are question ids that combined uniquely identify the unit of
	// observation. Must be drawn from question ids present in Sections.
	IDFields         []string             `json:"id_fields"`
	Sections         []Section            `json:"sections"`
	TrailingSections []TrailingSectionRef `json:"trailing_sections,omitempty"`
}

// PartialQuestionnaire is a single page's contribution: sections and
// continuity hints only, no document-level metadata.
type PartialQuestionnaire struct {
	Sections         []Section            `json:"sections"`
	TrailingSections []TrailingSectionRef `json:"trailing_sections,omitempty"`
}

// Clone deep-copies the questionnaire.
func (q Questionnaire) Clone() Questionnaire {
	c := q
	c.IDFields = append([]string(nil), q.IDFields...)
	c.Sections = make([]Section, 0, len(q.Sections))
	for _, s := range q.Sections {
		c.Sections = append(c.Sections, s.Clone())
	}
	c.TrailingSections = cloneRefs(q.TrailingSections)
	return c
}

func cloneRefs(refs []TrailingSectionRef) []TrailingSectionRef {
	if refs == nil {
		return nil
	}
	out := make([]TrailingSectionRef, 0, len(refs))
	for _, r := range refs {
		r.QuestionIDs = append([]string(nil), r.QuestionIDs...)
		out = append(out, r)
	}
	return out
}

// Validate checks the document invariants the JSON schema cannot express:
// question numbers are unique within their section, and every id field
// refers to a question id that exists somewhere in the document.
func (q Questionnaire) Validate() error {
	questionIDs := make(map[string]struct{})
	for _, s := range q.Sections {
		seen := make(map[string]struct{}, len(s.Questions))
		for _, question := range s.Questions {
			num := question.Base().Number
			if _, dup := seen[num]; dup {
				return fmt.Errorf("section %q: duplicate question number %q", s.ID, num)
			}
			seen[num] = struct{}{}
			questionIDs[question.Base().ID] = struct{}{}
		}
	}
	for _, id := range q.IDFields {
		if _, ok := questionIDs[id]; !ok {
			return fmt.Errorf("id field %q does not match any question id", id)
		}
	}
	return nil
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
