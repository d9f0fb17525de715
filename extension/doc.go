// Package extension provides the run-time registries for action services and
// their Go data types. Proposals name a target as service.method; the action
// registry is where those services live, including user supplied ones.
//
// The registries are normally populated through the public APIs of the root
// quorly package, therefore most applications do not need to import this
// package directly.
package extension
