package exec

import (
	"github.com/viant/quorly/service/action/system"
)

// Input describes the commands a proposal wants run and where.
type Input struct {
	Host         *system.Host      `json:"host,omitempty"`
	Workdir      string            `json:"workdir,omitempty"`
	Env          map[string]string `json:"env,omitempty"`
	Commands     []string          `json:"commands,omitempty"`
	TimeoutMs    int               `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
	AbortOnError *bool             `json:"abortOnError,omitempty"`
}

// Init applies the local-host default.
func (i *Input) Init() {
	if i.Host == nil {
		i.Host = &system.Host{}
	}
	if i.Host.URL == "" {
		i.Host.URL = "bash://localhost/"
	}
}
