// Package processor hosts the workers that drain a journal record queue.
// Every worker consumes records from the queue and hands them to a single
// handler; a failed handler nacks the record so the queue can redeliver it
// under its own retry policy.
package processor
