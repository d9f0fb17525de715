// Package executor dispatches an executed proposal to its target action.
// A target selects a registered action service method as "service.method";
// the proposal payload is decoded and converted into the method's input type
// before invocation.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/viant/quorly/extension"
	"github.com/viant/quorly/model/proposal"
	"github.com/viant/quorly/model/types"
	"github.com/viant/structology/conv"
)

// Listener is invoked once a dispatched action completes without error.
// Implementations can log, collect metrics or perform any other side-effects
// they require. It is a function type rather than an interface so users can
// pass a plain function literal when customising the executor.
type Listener func(p *proposal.Proposal, input, output interface{})

// StdoutListener serialises the proposal, input and output into JSON and
// prints them to standard output. Marshal errors are ignored on purpose,
// they indicate non-serialisable values the caller could not have printed
// either way.
func StdoutListener(p *proposal.Proposal, input, output interface{}) {
	if p == nil {
		return
	}
	pp, _ := json.Marshal(p)
	fmt.Println(string(pp))
	if input != nil {
		in, _ := json.Marshal(input)
		fmt.Println(string(in))
	}
	if output != nil {
		out, _ := json.Marshal(output)
		fmt.Println(string(out))
	}
}

// Option is used to customise the executor instance.
type Option func(*service)

// WithListener sets a listener invoked after every successful dispatch.
func WithListener(l Listener) Option {
	return func(s *service) {
		s.listener = l
	}
}

// Service dispatches proposals to their target actions.
type Service interface {
	Dispatch(ctx context.Context, p *proposal.Proposal) (interface{}, error)
}

// service is the concrete implementation of Service.
type service struct {
	actions   *extension.Actions
	converter *conv.Converter
	listener  Listener
}

// SplitTarget splits a service.method selector at its last dot.
func SplitTarget(target string) (string, string, error) {
	idx := strings.LastIndex(target, ".")
	if idx <= 0 || idx == len(target)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}
	return target[:idx], target[idx+1:], nil
}

// Dispatch resolves the proposal's target, builds the typed input from the
// payload and invokes the method. The proposal itself travels on the context
// so handlers can inspect it.
func (s *service) Dispatch(ctx context.Context, p *proposal.Proposal) (interface{}, error) {
	serviceName, methodName, err := SplitTarget(p.Target)
	if err != nil {
		return nil, err
	}

	actionService := s.actions.Lookup(serviceName)
	if actionService == nil {
		return nil, types.NewServiceNotFoundError(serviceName)
	}

	method, err := actionService.Method(methodName)
	if err != nil {
		return nil, fmt.Errorf("failed to find method %v for service %v: %w", methodName, serviceName, err)
	}
	signature := actionService.Methods().Lookup(methodName)
	if signature == nil {
		return nil, types.NewMethodNotFoundError(methodName)
	}

	input := newInstancePtr(signature.Input)
	if len(p.Payload) > 0 {
		var raw map[string]interface{}
		if err := json.Unmarshal(p.Payload, &raw); err != nil {
			return nil, fmt.Errorf("%w for %v: %v", ErrInvalidPayload, p.Target, err)
		}
		if err := s.converter.Convert(raw, input); err != nil {
			return nil, fmt.Errorf("%w for %v: %v", ErrInvalidPayload, p.Target, err)
		}
	}
	output := newInstancePtr(signature.Output)

	if err := method(ContextWithProposal(ctx, p), input, output); err != nil {
		return nil, err
	}

	if s.listener != nil {
		s.listener(p, input, output)
	}
	return output, nil
}

func newInstancePtr(t reflect.Type) interface{} {
	if t == nil {
		return &struct{}{}
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

// NewService creates a new executor over the action registry.
func NewService(actions *extension.Actions, opts ...Option) Service {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true

	s := &service{
		actions:   actions,
		converter: conv.NewConverter(options),
	}

	for _, o := range opts {
		o(s)
	}

	return s
}
