// Package assistant implements the conversational turn pipeline: language
// detection, history-aware query expansion, context retrieval and
// formatting, prompt assembly, completion, and language verification.
package assistant

// Persona selects which assistant answers a turn and which context
// collections back it.
type Persona string

const (
	// Academic answers course and study questions backed by the course
	// catalog.
	Academic Persona = "academic"
	// Social answers dining, entertainment, and event questions backed by
	// the venue and event collections.
	Social Persona = "social"
)

// Valid reports whether p is a known persona.
func (p Persona) Valid() bool {
	return p == Academic || p == Social
}
