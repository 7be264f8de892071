// Package cache holds short-lived copies of the version manifest so repeated
// update checks do not hammer the release server.
//
// Two backends are provided: Memory for single-process use and Redis for
// fleets that share one manifest view. A cache is always an optimization:
// backend failures degrade to a miss and the caller falls back to the
// network.
package cache
