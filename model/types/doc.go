// Package types holds the contracts an action service implements to become a
// dispatch target. Services are registered with the extension registry and
// addressed from proposals by "service.method" selectors.
package types
