// Package idf reads and writes record streams in the comma/semicolon text
// format:
//
//	! handle {7f1c...}
//	Zone,
//	  Office,                  !- Name
//	  1;                       !- Multiplier
//
// Fields are separated by commas and a record ends at a semicolon. Text after
// an exclamation mark is a comment, except a whole-line "! handle" directive,
// which sets the handle of the record that follows.
package idf
