// Package scoring turns email interaction events into lead score updates.
//
// The Engine classifies an event, asks the configured Deduper whether a
// first-occurrence event has been seen before, caps the new score at
// domain.MaxLeadScore and derives the tier from it. Collaborator failures are
// absorbed as soft errors on the returned Outcome; only caller errors are
// returned as errors. Every event is appended to the interaction log,
// whatever happened to the score.
//
// The package depends on the interfaces in repository.go and never imports
// net/http or database/sql.
package scoring
