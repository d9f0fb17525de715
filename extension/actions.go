package extension

import (
	"sort"
	"sync"

	"github.com/viant/quorly/model/types"
	"github.com/viant/x"
)

// DataTypeIniter lets an action service register the Go types its inputs and
// outputs are built from when the service itself is registered.
type DataTypeIniter interface {
	InitTypes(types *Types)
}

// Actions is the registry of action services a proposal may target.
type Actions struct {
	types    *Types
	services map[string]types.Service
	mux      sync.RWMutex
}

func (s *Actions) Types() *Types {
	return s.types
}

// Lookup returns a service by name
func (s *Actions) Lookup(name string) types.Service {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.services[name]
}

// Register registers a service
func (s *Actions) Register(service types.Service) {
	s.mux.Lock()
	defer s.mux.Unlock()

	if typer, ok := service.(DataTypeIniter); ok {
		typer.InitTypes(s.types)
	}
	s.services[service.Name()] = service
}

// Services returns the registered service names, sorted.
func (s *Actions) Services() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	result := make([]string, 0, len(s.services))
	for name := range s.services {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// NewActions creates a new action service registry
func NewActions(goTypes ...*x.Type) *Actions {
	ret := &Actions{
		types:    NewTypes(),
		services: make(map[string]types.Service),
	}
	for _, t := range goTypes {
		if t != nil {
			ret.types.Register(t)
		}
	}
	return ret
}
