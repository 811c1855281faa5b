package langdetect

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// minLetters is the smallest amount of letters worth guessing on.
const minLetters = 3

type scriptRule struct {
	table *unicode.RangeTable
	tag   language.Tag
}

// Order matters on ties: the first script with the highest count wins.
var scripts = []scriptRule{
	{unicode.Hangul, language.Korean},
	{unicode.Han, language.Chinese},
	{unicode.Cyrillic, language.Russian},
	{unicode.Greek, language.Greek},
	{unicode.Arabic, language.Arabic},
	{unicode.Hebrew, language.Hebrew},
	{unicode.Thai, language.Thai},
	{unicode.Devanagari, language.Hindi},
}

type stopwords struct {
	tag   language.Tag
	words map[string]struct{}
}

func set(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var latin = []stopwords{
	{language.English, set("the", "and", "is", "are", "you", "of", "to", "in", "it", "that", "this", "what", "how", "with", "for", "i'm", "not", "have", "was", "thanks", "hello")},
	{language.Spanish, set("el", "los", "las", "que", "y", "es", "un", "una", "por", "con", "para", "está", "qué", "cómo", "pero", "muy", "hola", "gracias")},
	{language.French, set("le", "les", "des", "et", "est", "une", "pas", "pour", "avec", "vous", "je", "il", "ce", "dans", "c'est", "qui", "bonjour", "merci")},
	{language.German, set("der", "die", "das", "und", "ist", "nicht", "ein", "eine", "ich", "du", "sie", "mit", "zu", "auf", "für", "wie", "was", "den", "dem", "danke")},
	{language.Italian, set("il", "lo", "di", "che", "è", "per", "non", "sono", "con", "come", "ciao", "questo", "gli", "della", "mi", "sei", "grazie")},
	{language.Portuguese, set("os", "as", "não", "você", "está", "do", "da", "em", "obrigado", "olá", "uma", "um", "são", "isso")},
	{language.Dutch, set("het", "een", "en", "niet", "ik", "je", "van", "dat", "wat", "hoe", "met", "voor", "op", "zijn", "ook", "maar", "dit", "bedankt")},
}

// Detect guesses the dominant language of text. It returns language.Und
// for empty, very short or unrecognizable input and never fails.
func Detect(text string) language.Tag {
	counts := make([]int, len(scripts))
	var letters, kana, latinLetters int
	ukrainian := false

	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		switch {
		case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
			kana++
			continue
		case unicode.Is(unicode.Latin, r):
			latinLetters++
			continue
		}
		for i, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[i]++
				break
			}
		}
		switch r {
		case 'і', 'ї', 'є', 'ґ', 'І', 'Ї', 'Є', 'Ґ':
			ukrainian = true
		}
	}
	if letters < minLetters {
		return language.Und
	}

	// Japanese mixes kana with kanji, so any kana outweighs Han (scripts[1]).
	if kana > 0 && kana+counts[1] >= latinLetters {
		return language.Japanese
	}

	best, bestCount := -1, 0
	for i, c := range counts {
		if c > bestCount {
			best, bestCount = i, c
		}
	}
	if best >= 0 && bestCount >= latinLetters {
		tag := scripts[best].tag
		if tag == language.Russian && ukrainian {
			return language.Ukrainian
		}
		return tag
	}
	if latinLetters == 0 {
		return language.Und
	}
	return voteLatin(text)
}

func voteLatin(text string) language.Tag {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\'' && r != '’'
	})
	scores := make([]int, len(latin))
	for _, w := range words {
		w = strings.ReplaceAll(w, "’", "'")
		for i, l := range latin {
			if _, ok := l.words[w]; ok {
				scores[i]++
			}
		}
	}

	best, bestScore, tie := -1, 0, false
	for i, s := range scores {
		switch {
		case s > bestScore:
			best, bestScore, tie = i, s, false
		case s == bestScore && s > 0:
			tie = true
		}
	}
	if best < 0 || tie {
		return language.Und
	}
	return latin[best].tag
}

// Name returns the English name of tag ("Russian"), or "" for language.Und.
func Name(tag language.Tag) string {
	if tag == language.Und {
		return ""
	}
	return display.English.Languages().Name(tag)
}
