package model

// Merge combines a page's partial result into the running questionnaire.
// The base is deep-copied first, so the caller's value is never mutated.
//
// Sections are matched by id: a matching section gains only questions whose
// number it does not already contain (first-write-wins on collision), and
// unmatched sections are appended in arrival order. Title, description and
// id fields always come from the base.
func Merge(base Questionnaire, partial PartialQuestionnaire) Questionnaire {
	merged := base.Clone()

	index := make(map[string]int, len(merged.Sections))
	for i, s := range merged.Sections {
		index[s.ID] = i
	}

	for _, incoming := range partial.Sections {
		i, ok := index[incoming.ID]
		if !ok {
			merged.Sections = append(merged.Sections, incoming.Clone())
			index[incoming.ID] = len(merged.Sections) - 1
			continue
		}

		existing := &merged.Sections[i]
		numbers := make(map[string]struct{}, len(existing.Questions))
		for _, q := range existing.Questions {
			numbers[q.Base().Number] = struct{}{}
		}
		for _, q := range incoming.Questions {
			num := q.Base().Number
			if _, dup := numbers[num]; dup {
				continue
			}
			existing.Questions = append(existing.Questions, q.clone())
			numbers[num] = struct{}{}
		}
	}

	return merged
}
