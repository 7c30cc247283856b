package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestQuestionsUnmarshalDispatch(t *testing.T) {
	raw := `[
		{"type":"numeric","number":"A1","id":"age","text":"Age in years","min_value":0,"max_value":120},
		{"type":"single_select","number":"A2","id":"sex","text":"Sex","options":[{"code":"1","label":"Male"},{"code":"2","label":"Female"}]},
		{"type":"text","number":"A3","id":"name","text":"Name","max_length":30},
		{"type":"date","number":"A4","id":"dob","text":"Date of birth"},
		{"type":"location","number":"A5","id":"gps","text":"Dwelling location"},
		{"type":"multi_select","number":"A6","id":"assets","text":"Assets owned","options":[{"code":"1","label":"Radio"}]}
	]`
	var qs Questions
	if err := json.Unmarshal([]byte(raw), &qs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(qs) != 6 {
		t.Fatalf("expected 6 questions, got %d", len(qs))
	}
	want := []QuestionType{
		QuestionTypeNumeric, QuestionTypeSingleSelect, QuestionTypeText,
		QuestionTypeDate, QuestionTypeLocation, QuestionTypeMultiSelect,
	}
	for i, w := range want {
		if qs[i].Type() != w {
			t.Errorf("question %d: expected %s, got %s", i, w, qs[i].Type())
		}
	}
	num, ok := qs[0].(*NumericQuestion)
	if !ok {
		t.Fatalf("expected *NumericQuestion, got %T", qs[0])
	}
	if num.MaxValue == nil || *num.MaxValue != 120 {
		t.Fatalf("max_value not preserved: %v", num.MaxValue)
	}
}

func TestQuestionsUnmarshalUnknownType(t *testing.T) {
	var qs Questions
	err := json.Unmarshal([]byte(`[{"type":"matrix","number":"A1","id":"x","text":"x"}]`), &qs)
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
	if !strings.Contains(err.Error(), "matrix") {
		t.Fatalf("error should name the bad type: %v", err)
	}
}

func TestQuestionsMarshalRoundTrip(t *testing.T) {
	qs := Questions{
		&SingleSelectQuestion{
			QuestionBase: QuestionBase{Number: "B1", ID: "edu_level", Text: "Highest education"},
			Options:      []Option{{Code: "1", Label: "None"}, {Code: "2", Label: "Primary"}},
		},
	}
	data, err := json.Marshal(qs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"type":"single_select"`) {
		t.Fatalf("discriminant missing: %s", data)
	}
	var back Questions
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal back: %v", err)
	}
	got, ok := back[0].(*SingleSelectQuestion)
	if !ok {
		t.Fatalf("expected *SingleSelectQuestion, got %T", back[0])
	}
	if len(got.Options) != 2 || got.Options[1].Label != "Primary" {
		t.Fatalf("options not preserved: %+v", got.Options)
	}
}

func TestQuestionnaireValidate(t *testing.T) {
	q := Questionnaire{
		Title:    "Test",
		IDFields: []string{"cluster"},
		Sections: []Section{
			{ID: "section_a", Number: "A", Title: "A", Occurrences: 1,
				Questions: Questions{numQ("A1", "cluster"), numQ("A1", "household")}},
		},
	}
	if err := q.Validate(); err == nil {
		t.Fatal("expected duplicate number error")
	}

	q.Sections[0].Questions = Questions{numQ("A1", "cluster")}
	if err := q.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	q.IDFields = []string{"missing_field"}
	if err := q.Validate(); err == nil {
		t.Fatal("expected unknown id_field error")
	}
}

func TestQuestionnaireCloneIsDeep(t *testing.T) {
	orig := baseDoc()
	cp := orig.Clone()
	cp.Sections[0].Questions[0].Base().Text = "changed"
	cp.Sections[0].Questions = append(cp.Sections[0].Questions, numQ("A9", "extra"))
	if orig.Sections[0].Questions[0].Base().Text == "changed" {
		t.Fatal("clone shares question pointers")
	}
	if len(orig.Sections[0].Questions) != 2 {
		t.Fatal("clone shares question slice")
	}
}
