package catalog

import "sort"

// Normalize sorts nested lesson and question collections into their canonical
// display and evaluation order: ascending by OrderIndex, ties broken by fetch
// order (stable sort). Nil nested slices are treated as empty. The transform
// is pure; the input is not modified.
func Normalize(materials []Material) []Material {
	out := make([]Material, len(materials))
	copy(out, materials)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })

	for mi := range out {
		lessons := make([]Lesson, len(out[mi].Lessons))
		copy(lessons, out[mi].Lessons)
		sort.SliceStable(lessons, func(i, j int) bool { return lessons[i].OrderIndex < lessons[j].OrderIndex })

		for li := range lessons {
			questions := make([]Question, len(lessons[li].Questions))
			copy(questions, lessons[li].Questions)
			sort.SliceStable(questions, func(i, j int) bool { return questions[i].OrderIndex < questions[j].OrderIndex })
			lessons[li].Questions = questions
		}
		out[mi].Lessons = lessons
	}
	return out
}

// AssignOrder renumbers OrderIndex sequentially on an already-normalized
// curriculum, so that indices are mandatory and unambiguous from the
// data-access boundary onwards. Idempotent.
func AssignOrder(materials []Material) {
	for mi := range materials {
		materials[mi].OrderIndex = mi
		for li := range materials[mi].Lessons {
			materials[mi].Lessons[li].OrderIndex = li
			for qi := range materials[mi].Lessons[li].Questions {
				materials[mi].Lessons[li].Questions[qi].OrderIndex = qi
			}
		}
	}
}
