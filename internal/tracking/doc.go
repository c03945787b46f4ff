// Package tracking serves the public /track endpoint that email links and
// open pixels point at.
//
// The handler validates the query, hands the event to an Ingester (the
// scoring engine directly, or SQS for the worker to drain) and answers with
// a redirect for click links or 204 otherwise. The response never depends
// on whether scoring succeeded.
package tracking
