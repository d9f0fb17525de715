// Package console collects operator input from the terminal as a dispatch
// target. Two methods are exposed:
//
//	ask    - free-form text prompt (single field)
//	decide - yes/no sign-off prompt
//
// Tests can substitute Reader/Writer to avoid interactive TTY requirements.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/viant/quorly/model/party"
	"github.com/viant/quorly/model/proposal"
	"github.com/viant/quorly/model/types"
)

// Name of the service in the action registry.
const Name = "console"

// Service prompts an operator over the configured streams.
type Service struct {
	in  io.Reader
	out io.Writer
}

// New returns a Service that reads from stdin and writes to stdout.
func New() *Service {
	return &Service{in: os.Stdin, out: os.Stdout}
}

// NewWithIO lets callers override the input/output streams (handy for tests).
func NewWithIO(in io.Reader, out io.Writer) *Service {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &Service{in: in, out: out}
}

// AskInput is a free-form question.
type AskInput struct {
	Message string `json:"message,omitempty"` // prompt shown to the operator
	Default string `json:"default,omitempty"` // fallback value for an empty line
}

// AskOutput carries the operator's response.
type AskOutput struct {
	Text string `json:"text,omitempty"`
}

// DecideInput is a yes/no question.
type DecideInput struct {
	Message string `json:"message,omitempty"`
	Default bool   `json:"default,omitempty"` // answer for an empty line
}

// DecideOutput carries the operator's decision.
type DecideOutput struct {
	Approved bool `json:"approved"`
}

func (s *Service) ask(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*AskInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*AskOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}

	response, err := s.prompt(input.Message)
	if err != nil {
		return err
	}
	if response == "" {
		response = input.Default
	}
	output.Text = response
	return nil
}

func (s *Service) decide(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*DecideInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*DecideOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}

	suffix := "[y/N]"
	if input.Default {
		suffix = "[Y/n]"
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		message = "approve?"
	}
	response, err := s.prompt(message + " " + suffix)
	if err != nil {
		return err
	}
	output.Approved = parseDecision(response, input.Default)
	return nil
}

// prompt writes the message and reads one trimmed response line.
func (s *Service) prompt(message string) (string, error) {
	prompt := strings.TrimSpace(message)
	if prompt == "" {
		prompt = "?"
	}
	if !strings.HasSuffix(prompt, " ") {
		prompt += " "
	}
	fmt.Fprint(s.out, prompt)

	reader := bufio.NewReader(s.in)
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(response), nil
}

func parseDecision(response string, fallback bool) bool {
	switch strings.ToLower(response) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	case "":
		return fallback
	default:
		return false
	}
}

// Decider returns a decision function that prompts the operator for every
// proposal, suitable for an interactive confirmation loop.
func Decider(in io.Reader, out io.Writer) func(member party.ID, p *proposal.Proposal) bool {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	reader := bufio.NewReader(in)
	return func(member party.ID, p *proposal.Proposal) bool {
		if p == nil {
			return false
		}
		fmt.Fprintf(out, "confirm proposal %d (%s) as %s? [y/N] ", p.ID, p.Target, member)
		response, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false
		}
		return parseDecision(strings.TrimSpace(response), false)
	}
}

// Name returns the service name
func (s *Service) Name() string { return Name }

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "ask",
			Description: "Prompts the operator for free-form input and returns the response.",
			Input:       reflect.TypeOf(&AskInput{}),
			Output:      reflect.TypeOf(&AskOutput{}),
		},
		{
			Name:        "decide",
			Description: "Prompts the operator for a yes/no decision.",
			Input:       reflect.TypeOf(&DecideInput{}),
			Output:      reflect.TypeOf(&DecideOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "ask":
		return s.ask, nil
	case "decide":
		return s.decide, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}
