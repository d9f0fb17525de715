// Package policy provides optional declarative rules restricting which
// targets may be proposed on a running engine – for example to keep a
// deployment's proposals within a fixed action catalogue.
package policy
