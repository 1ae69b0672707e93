package services

import (
	"cmp"
	"slices"
	"strings"

	"belajarbahasa/models"
)

// Stats is the correctness breakdown of a set of answers.
type Stats struct {
	Correct   int `json:"correctCount"`
	Incorrect int `json:"incorrectCount"`
}

// UserLanguageStats pairs a user with the stats of their answers in one
// language.
type UserLanguageStats struct {
	User models.User
	Stats
}

// ComputeStats counts correct and incorrect answers.
func ComputeStats(answers []models.QuestionAnswer) Stats {
	var stats Stats
	for _, a := range answers {
		if a.Answer {
			stats.Correct++
		} else {
			stats.Incorrect++
		}
	}
	return stats
}

// OrderHistory returns a copy of answers ordered for a user's full history:
// language, material, creation time, then id.
func OrderHistory(answers []models.QuestionAnswer) []models.QuestionAnswer {
	out := slices.Clone(answers)
	slices.SortStableFunc(out, func(a, b models.QuestionAnswer) int {
		return cmp.Or(
			cmp.Compare(a.Language.Rank(), b.Language.Rank()),
			cmp.Compare(a.QuestionMat.Rank(), b.QuestionMat.Rank()),
			a.CreatedAt.Compare(b.CreatedAt),
			strings.Compare(a.ID, b.ID),
		)
	})
	return out
}

// OrderLanguageSlots returns a copy of answers ordered by question slot:
// language, type, title, number, then id.
func OrderLanguageSlots(answers []models.QuestionAnswer) []models.QuestionAnswer {
	out := slices.Clone(answers)
	slices.SortStableFunc(out, func(a, b models.QuestionAnswer) int {
		return cmp.Or(
			cmp.Compare(a.Language.Rank(), b.Language.Rank()),
			cmp.Compare(a.QuestionType.Rank(), b.QuestionType.Rank()),
			cmp.Compare(a.QuestionTitle.Rank(), b.QuestionTitle.Rank()),
			cmp.Compare(a.Number, b.Number),
			strings.Compare(a.ID, b.ID),
		)
	})
	return out
}

// FilterByLanguage restricts each user's answers to language and counts
// them. Users without any answer in that language are left out.
func FilterByLanguage(users []models.User, language models.Language) []UserLanguageStats {
	result := make([]UserLanguageStats, 0, len(users))
	for _, user := range users {
		var scoped []models.QuestionAnswer
		for _, a := range user.Answers {
			if a.Language == language {
				scoped = append(scoped, a)
			}
		}
		if len(scoped) == 0 {
			continue
		}
		user.Answers = scoped
		result = append(result, UserLanguageStats{User: user, Stats: ComputeStats(scoped)})
	}
	return result
}
