package interpreter

import (
	"testing"

	"github.com/survaize/survaize/internal/model"
)

func selQ(number, id string) model.Question {
	return &model.SingleSelectQuestion{
		QuestionBase: model.QuestionBase{Number: number, ID: id, Text: id},
		Options:      []model.Option{{Code: "1", Label: "Yes"}},
	}
}

func TestBuildContextFiltersToReferencedQuestions(t *testing.T) {
	sections := []model.Section{
		{ID: "section_b", Number: "B", Title: "Education",
			Questions: model.Questions{selQ("B1", "edu_level"), selQ("B2", "edu_years")}},
	}
	refs := []model.TrailingSectionRef{
		{ID: "section_b", QuestionIDs: []string{"edu_level"}},
	}

	frags := BuildContext(refs, sections)
	if len(frags) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(frags))
	}
	frag := frags[0]
	if frag.ID != "section_b" || frag.Title != "Education" {
		t.Fatalf("fragment identity wrong: %+v", frag)
	}
	if len(frag.Questions) != 1 || frag.Questions[0].Base().ID != "edu_level" {
		t.Fatalf("fragment must carry only the referenced question, got %d", len(frag.Questions))
	}
}

func TestBuildContextSkipsMissingSection(t *testing.T) {
	refs := []model.TrailingSectionRef{
		{ID: "section_z", QuestionIDs: []string{"anything"}},
	}
	sections := []model.Section{{ID: "section_a", Number: "A", Title: "A"}}

	if frags := BuildContext(refs, sections); len(frags) != 0 {
		t.Fatalf("expected no fragments, got %d", len(frags))
	}
}

func TestBuildContextSkipsEmptyFragment(t *testing.T) {
	refs := []model.TrailingSectionRef{
		{ID: "section_a", QuestionIDs: []string{"no_such_question"}},
	}
	sections := []model.Section{
		{ID: "section_a", Number: "A", Title: "A", Questions: model.Questions{selQ("A1", "present")}},
	}

	if frags := BuildContext(refs, sections); len(frags) != 0 {
		t.Fatalf("expected no fragments when no questions match, got %d", len(frags))
	}
}
