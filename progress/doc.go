// Package progress aggregates journal records into lifecycle counters for a
// running engine. Wiring the tracker's Observe method as a journal
// subscriber keeps the counters current without polling the engine.
package progress
