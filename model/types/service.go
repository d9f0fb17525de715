package types

// Service is an action service: a named bundle of methods a proposal can
// target. The engine resolves a proposal's "service.method" selector against
// registered services and invokes the matching Executable.
type Service interface {
	Name() string
	Methods() Signatures
	Method(name string) (Executable, error)
}
