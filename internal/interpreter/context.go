package interpreter

import "github.com/survaize/survaize/internal/model"

// BuildContext extracts the carry-forward fragments for the next page. For
// each trailing reference it filters the matching produced section down to
// exactly the referenced questions. References to sections absent from this
// page's output are skipped.
func BuildContext(refs []model.TrailingSectionRef, sections []model.Section) []model.SectionFragment {
	byID := make(map[string]*model.Section, len(sections))
	for i := range sections {
		byID[sections[i].ID] = &sections[i]
	}

	var fragments []model.SectionFragment
	for _, ref := range refs {
		section, ok := byID[ref.ID]
		if !ok {
			continue
		}
		wanted := make(map[string]struct{}, len(ref.QuestionIDs))
		for _, id := range ref.QuestionIDs {
			wanted[id] = struct{}{}
		}
		var trailing model.Questions
		for _, q := range section.Questions {
			if _, ok := wanted[q.Base().ID]; ok {
				trailing = append(trailing, q)
			}
		}
		if len(trailing) == 0 {
			continue
		}
		fragments = append(fragments, model.SectionFragment{
			ID:        section.ID,
			Number:    section.Number,
			Title:     section.Title,
			Questions: trailing,
		})
	}
	return fragments
}
