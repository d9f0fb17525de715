package extension

type Option func(*Types)

// WithImports overrides the package aliases used to resolve a lookup.
func WithImports(imports Imports) Option {
	return func(t *Types) {
		t.imports = imports
	}
}
