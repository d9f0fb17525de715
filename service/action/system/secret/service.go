// Package secret wraps viant/scy secret management as a dispatch target, so
// encrypting, revealing and token issuance happen only under quorum.
package secret

import (
	"context"
	"reflect"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/quorly/model/types"
	"github.com/viant/scy"
	_ "github.com/viant/scy/kms/blowfish"
)

const Name = "system/secret"

// Service provides secret management operations using viant/scy
type Service struct {
	scyService *scy.Service
	fs         afs.Service
}

// New creates a new secret service
func New() *Service {
	return &Service{
		scyService: scy.New(),
		fs:         afs.New(),
	}
}

// Name returns the service Name
func (s *Service) Name() string {
	return Name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:   "secure",
			Input:  reflect.TypeOf(&SecureInput{}),
			Output: reflect.TypeOf(&SecureOutput{}),
		},
		{
			Name:   "reveal",
			Input:  reflect.TypeOf(&RevealInput{}),
			Output: reflect.TypeOf(&RevealOutput{}),
		},
		{
			Name:   "signJWT",
			Input:  reflect.TypeOf(&SignJWTInput{}),
			Output: reflect.TypeOf(&SignJWTOutput{}),
		},
		{
			Name:   "verifyJWT",
			Input:  reflect.TypeOf(&VerifyJWTInput{}),
			Output: reflect.TypeOf(&VerifyJWTOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "secure":
		return s.secure, nil
	case "reveal":
		return s.reveal, nil
	case "signjwt":
		return s.signJWT, nil
	case "verifyjwt":
		return s.verifyJWT, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) secure(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SecureInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SecureOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Secure(ctx, input, output)
}

func (s *Service) reveal(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*RevealInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*RevealOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Reveal(ctx, input, output)
}

func (s *Service) signJWT(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SignJWTInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SignJWTOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.SignJWT(ctx, input, output)
}

func (s *Service) verifyJWT(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*VerifyJWTInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*VerifyJWTOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.VerifyJWT(ctx, input, output)
}
