// Package leads serves the sales dashboard: booking listings, workflow
// status edits and keyword analytics questions such as
// "how many hot leads in the last 7 days".
//
// Score fields are owned by the scoring engine and are never edited here.
package leads
