package models

import "slices"

// Enumerated answer fields. The slices below are the closed value sets;
// their order is the sort rank used when answers are listed.

type Language string

const (
	LanguageEnglish    Language = "english"
	LanguageSpanish    Language = "spanish"
	LanguageFrench     Language = "french"
	LanguageGerman     Language = "german"
	LanguageJapanese   Language = "japanese"
	LanguageKorean     Language = "korean"
	LanguageMandarin   Language = "mandarin"
	LanguageArabic     Language = "arabic"
	LanguageIndonesian Language = "indonesian"
)

var Languages = []Language{
	LanguageEnglish, LanguageSpanish, LanguageFrench, LanguageGerman, LanguageJapanese,
	LanguageKorean, LanguageMandarin, LanguageArabic, LanguageIndonesian,
}

type Title string

var Titles = []Title{"T1", "T2", "T3", "T4", "T5", "T6", "T7", "T8", "T9", "T10"}

type Type string

const (
	TypeVocab     Type = "vocab"
	TypeGrammar   Type = "grammar"
	TypeListening Type = "listening"
	TypeReading   Type = "reading"
	TypeWriting   Type = "writing"
	TypeSpeaking  Type = "speaking"
)

var Types = []Type{TypeVocab, TypeGrammar, TypeListening, TypeReading, TypeWriting, TypeSpeaking}

// Material is optional on an answer; the zero value means "no material".
type Material string

const (
	MaterialNone            Material = ""
	MaterialGreetings       Material = "greetings"
	MaterialNumbers         Material = "numbers"
	MaterialColors          Material = "colors"
	MaterialFamily          Material = "family"
	MaterialFood            Material = "food"
	MaterialAnimals         Material = "animals"
	MaterialTravel          Material = "travel"
	MaterialDailyActivities Material = "daily_activities"
	MaterialSchool          Material = "school"
	MaterialWork            Material = "work"
)

var Materials = []Material{
	MaterialGreetings, MaterialNumbers, MaterialColors, MaterialFamily, MaterialFood,
	MaterialAnimals, MaterialTravel, MaterialDailyActivities, MaterialSchool, MaterialWork,
}

func (l Language) Valid() bool { return slices.Contains(Languages, l) }
func (t Title) Valid() bool    { return slices.Contains(Titles, t) }
func (t Type) Valid() bool     { return slices.Contains(Types, t) }

// Valid accepts the empty material as well as the declared ones.
func (m Material) Valid() bool { return m == MaterialNone || slices.Contains(Materials, m) }

// Rank returns the declaration index, or len(Languages) for unknown values
// so that they sort last.
func (l Language) Rank() int { return rank(Languages, l) }
func (t Title) Rank() int    { return rank(Titles, t) }
func (t Type) Rank() int     { return rank(Types, t) }

// Rank puts the empty material last, after unknown values, the way an
// ascending SQL sort places NULL.
func (m Material) Rank() int {
	if m == MaterialNone {
		return len(Materials) + 1
	}
	return rank(Materials, m)
}

func rank[T comparable](values []T, v T) int {
	if i := slices.Index(values, v); i >= 0 {
		return i
	}
	return len(values)
}
