// Package system groups action services that touch the host machine: shell
// execution, storage, secrets and file patching. They are the dispatch
// targets a board typically guards most tightly.
package system

// Host identifies the machine a system action runs against. The zero value
// selects local execution; Credentials names a scy secrets resource holding
// SSH credentials for remote hosts.
type Host struct {
	URL         string `json:"url,omitempty" yaml:"url,omitempty"`
	Credentials string `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}

// IsLocal reports whether the host resolves to the local machine.
func (h *Host) IsLocal() bool {
	return h == nil || h.URL == "" || h.URL == "bash://localhost/"
}
