// Package proposal exposes read-only proposal views as dispatch targets:
// status reports a proposal's current tally and wait blocks until the
// proposal is executed, fully confirmed or a timeout expires.
package proposal

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/viant/quorly/model/proposal"
	"github.com/viant/quorly/model/types"
)

// Name of the service in the action registry.
const Name = "proposal"

// Engine is the view surface the action reads from.
type Engine interface {
	Proposal(id uint64) (*proposal.Proposal, error)
	ThresholdMet(id uint64) (bool, error)
	Threshold() int
}

// Service adapts an engine's proposal views to the action contract.
type Service struct {
	engine Engine
}

// New creates a proposal view action over the engine.
func New(engine Engine) *Service {
	return &Service{engine: engine}
}

// StatusInput selects a proposal.
type StatusInput struct {
	ID uint64 `json:"id"`
}

// StatusOutput reports a proposal's current tally.
type StatusOutput struct {
	Target        string `json:"target"`
	Value         uint64 `json:"value,omitempty"`
	State         string `json:"state"`
	Confirmations int    `json:"confirmations"`
	Required      int    `json:"required"`
	Executed      bool   `json:"executed"`
}

// WaitInput selects a proposal and the condition to wait for.
type WaitInput struct {
	ID                uint64 `json:"id"`
	TimeoutInMs       int    `json:"timeoutMs,omitempty"`
	PollFrequencyInMs int    `json:"pollFrequencyMs,omitempty"`
	// ForThreshold waits for the confirmation threshold instead of execution.
	ForThreshold bool `json:"forThreshold,omitempty"`
}

// Init applies the polling defaults.
func (i *WaitInput) Init() {
	if i.PollFrequencyInMs == 0 {
		i.PollFrequencyInMs = 200
	}
	if i.TimeoutInMs == 0 {
		i.TimeoutInMs = 300000 // 5 min
	}
}

// WaitOutput reports the proposal state once the wait ended.
type WaitOutput struct {
	StatusOutput
	Timeout bool `json:"timeout,omitempty"`
}

// WaitForProposal waits for the proposal to be executed.
func (s *Service) WaitForProposal(ctx context.Context, id uint64, timeoutMs int) (*WaitOutput, error) {
	input := &WaitInput{ID: id, TimeoutInMs: timeoutMs}
	output := &WaitOutput{}
	return output, s.wait(ctx, input, output)
}

func (s *Service) status(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*StatusInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*StatusOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	target, err := s.engine.Proposal(input.ID)
	if err != nil {
		return err
	}
	s.fill(output, target)
	return nil
}

func (s *Service) wait(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*WaitInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*WaitOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	input.Init()

	pollFrequency := time.Millisecond * time.Duration(input.PollFrequencyInMs)
	var expiry time.Time
	if input.TimeoutInMs > 0 {
		expiry = time.Now().Add(time.Millisecond * time.Duration(input.TimeoutInMs))
	}

outer:
	for {
		target, err := s.engine.Proposal(input.ID)
		if err != nil {
			return err
		}
		if target.Executed() {
			break outer
		}
		if input.ForThreshold {
			met, err := s.engine.ThresholdMet(input.ID)
			if err != nil {
				return err
			}
			if met {
				break outer
			}
		}
		if !expiry.IsZero() && time.Now().After(expiry) {
			output.Timeout = true
			break outer
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollFrequency):
		}
	}

	target, err := s.engine.Proposal(input.ID)
	if err != nil {
		return err
	}
	s.fill(&output.StatusOutput, target)
	return nil
}

func (s *Service) fill(output *StatusOutput, target *proposal.Proposal) {
	output.Target = target.Target
	output.Value = target.Value
	output.State = string(target.State)
	output.Confirmations = target.Confirmations
	output.Required = s.engine.Threshold()
	output.Executed = target.Executed()
}

// Name returns the service name
func (s *Service) Name() string { return Name }

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "status",
			Description: "Reports a proposal's target, state and confirmation tally.",
			Input:       reflect.TypeOf(&StatusInput{}),
			Output:      reflect.TypeOf(&StatusOutput{}),
		},
		{
			Name:        "wait",
			Description: "Waits until a proposal is executed or fully confirmed, or the timeout expires.",
			Input:       reflect.TypeOf(&WaitInput{}),
			Output:      reflect.TypeOf(&WaitOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "status":
		return s.status, nil
	case "wait":
		return s.wait, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}
