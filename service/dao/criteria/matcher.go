// Package criteria interprets dao list parameters for the stores that
// support filtering. A record matches when every supplied parameter matches;
// unknown parameter names are ignored rather than rejected.
package criteria

import (
	"github.com/viant/quorly/service/dao"
)

// Filter names understood by the journal stores.
const (
	ByTopic    = "Topic"
	ByProposal = "Proposal"
)

// MatchString reports whether value satisfies every parameter named name.
// A parameter value may be a scalar or a slice ("any of").
func MatchString(name, value string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil || parameter.Name != name {
			continue
		}
		switch actual := parameter.Value.(type) {
		case string:
			if value != actual {
				return false
			}
		case []string:
			if !containsString(actual, value) {
				return false
			}
		}
	}
	return true
}

func containsString(candidates []string, value string) bool {
	for _, candidate := range candidates {
		if candidate == value {
			return true
		}
	}
	return false
}
