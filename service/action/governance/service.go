// Package governance exposes the engine's board mutations as a dispatchable
// action service. Registering it under the engine's governance service name
// closes the self-amendment loop: the only way to change the owner set or
// threshold is a proposal targeting this service that clears the current
// threshold and is executed by the engine itself.
package governance

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/quorly/extension"
	"github.com/viant/quorly/model/party"
	"github.com/viant/quorly/model/types"
	"github.com/viant/x"
)

const name = "governance"

// Engine is the surface the action service drives. The concrete engine
// refuses every call below unless the context carries its dispatch token.
type Engine interface {
	AddOwner(ctx context.Context, newOwner party.ID) error
	RemoveOwner(ctx context.Context, owner party.ID) error
	ReplaceOwner(ctx context.Context, oldOwner, newOwner party.ID) error
	SetThreshold(ctx context.Context, required int) error
	Owners() []party.ID
	Threshold() int
}

// Service adapts an engine's governance surface to the action contract.
type Service struct {
	engine Engine
}

// AddOwnerInput admits a new board member.
type AddOwnerInput struct {
	Owner string `json:"owner"`
}

// RemoveOwnerInput removes a board member.
type RemoveOwnerInput struct {
	Owner string `json:"owner"`
}

// ReplaceOwnerInput swaps one board member for another.
type ReplaceOwnerInput struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// SetThresholdInput changes the confirmation threshold.
type SetThresholdInput struct {
	Required int `json:"required"`
}

// Output reports the board state after a mutation.
type Output struct {
	Owners   []string `json:"owners"`
	Required int      `json:"required"`
}

// New creates a governance action service over the engine.
func New(engine Engine) *Service {
	return &Service{engine: engine}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "addOwner",
			Description: "Admits a new party to the board.",
			Input:       reflect.TypeOf(&AddOwnerInput{}),
			Output:      reflect.TypeOf(&Output{}),
		},
		{
			Name:        "removeOwner",
			Description: "Removes a party from the board, lowering the threshold when needed.",
			Input:       reflect.TypeOf(&RemoveOwnerInput{}),
			Output:      reflect.TypeOf(&Output{}),
		},
		{
			Name:        "replaceOwner",
			Description: "Replaces one party with another, keeping the threshold.",
			Input:       reflect.TypeOf(&ReplaceOwnerInput{}),
			Output:      reflect.TypeOf(&Output{}),
		},
		{
			Name:        "setThreshold",
			Description: "Changes the number of confirmations required to execute.",
			Input:       reflect.TypeOf(&SetThresholdInput{}),
			Output:      reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "addowner":
		return s.addOwner, nil
	case "removeowner":
		return s.removeOwner, nil
	case "replaceowner":
		return s.replaceOwner, nil
	case "setthreshold":
		return s.setThreshold, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

// InitTypes registers the governance input and output types.
func (s *Service) InitTypes(registry *extension.Types) {
	registry.Register(x.NewType(reflect.TypeOf(AddOwnerInput{})))
	registry.Register(x.NewType(reflect.TypeOf(RemoveOwnerInput{})))
	registry.Register(x.NewType(reflect.TypeOf(ReplaceOwnerInput{})))
	registry.Register(x.NewType(reflect.TypeOf(SetThresholdInput{})))
	registry.Register(x.NewType(reflect.TypeOf(Output{})))
}

func (s *Service) addOwner(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*AddOwnerInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	if err := s.engine.AddOwner(ctx, party.ID(input.Owner)); err != nil {
		return err
	}
	return s.fillOutput(out)
}

func (s *Service) removeOwner(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*RemoveOwnerInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	if err := s.engine.RemoveOwner(ctx, party.ID(input.Owner)); err != nil {
		return err
	}
	return s.fillOutput(out)
}

func (s *Service) replaceOwner(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*ReplaceOwnerInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	if err := s.engine.ReplaceOwner(ctx, party.ID(input.Old), party.ID(input.New)); err != nil {
		return err
	}
	return s.fillOutput(out)
}

func (s *Service) setThreshold(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SetThresholdInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	if err := s.engine.SetThreshold(ctx, input.Required); err != nil {
		return err
	}
	return s.fillOutput(out)
}

func (s *Service) fillOutput(out interface{}) error {
	output, ok := out.(*Output)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	output.Owners = party.List(s.engine.Owners()).Strings()
	output.Required = s.engine.Threshold()
	return nil
}

var _ extension.DataTypeIniter = (*Service)(nil)
