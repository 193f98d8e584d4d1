// Package lang classifies user text into one of the two supported response
// languages (Turkish or English).
package lang

import (
	"strings"

	"github.com/pemistahl/lingua-go"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Tag identifies a supported response language.
type Tag string

const (
	// Turkish is the "tr" language tag.
	Turkish Tag = "tr"
	// English is the "en" language tag, also the fallback when detection
	// is ambiguous or fails.
	English Tag = "en"
)

// BCP47 returns the x/text language tag for locale-aware collaborators.
func (t Tag) BCP47() language.Tag {
	if t == Turkish {
		return language.Turkish
	}
	return language.English
}

// languageNames renders language names in English for prompt directives.
var languageNames = display.English.Languages()

// Label returns the English name of the language, used in system prompt
// directives ("Respond only in Turkish").
func (t Tag) Label() string {
	return languageNames.Name(t.BCP47())
}

// Detector classifies text as Turkish or English. Implementations must be
// stateless and must never fail: ambiguity degrades to English.
type Detector interface {
	Detect(text string) Tag
}

// LinguaDetector detects language statistically using lingua restricted to
// the two supported languages. Safe for concurrent use.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// NewDetector creates a detector for Turkish and English.
func NewDetector() *LinguaDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.Turkish, lingua.English).
		Build()
	return &LinguaDetector{detector: detector}
}

// Detect classifies text into Turkish or English. Empty, whitespace-only,
// or unclassifiable input returns English; this method never errors.
func (d *LinguaDetector) Detect(text string) Tag {
	if strings.TrimSpace(text) == "" {
		return English
	}

	detected, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return English
	}
	if detected == lingua.Turkish {
		return Turkish
	}
	return English
}
