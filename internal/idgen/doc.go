// Package idgen wraps the UUID generator behind a stub point. Journal records
// carry both a monotonic sequence and one of these opaque identifiers; callers
// must not rely on the identifier format.
package idgen
