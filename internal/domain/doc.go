// Package domain holds the lead tracker's shared value types: bookings,
// interactions, tiers and the AOE vehicle catalog.
//
// Everything here is a plain value or a pure derivation on one (tier from
// score, statuses allowed for a tier, competitor lookup). Nothing in the
// package imports another internal package or touches storage or HTTP.
package domain
