package secret

import (
	"context"
	"fmt"

	"github.com/viant/scy"
	sjwt "github.com/viant/scy/auth/jwt"
	"github.com/viant/scy/auth/jwt/verifier"
)

// VerifyJWTInput defines parameters for JWT verification
type VerifyJWTInput struct {
	Token      string `json:"token,omitempty"`
	TokenURL   string `json:"tokenURL,omitempty"`
	RSAKeyURL  string `json:"rsaKeyURL,omitempty"`
	HMACKeyURL string `json:"hmacKeyURL,omitempty"`
	KeySecret  string `json:"keySecret,omitempty"`
}

// VerifyJWTOutput contains verification results
type VerifyJWTOutput struct {
	Valid  bool         `json:"valid"`
	Claims *sjwt.Claims `json:"claims,omitempty"`
}

// VerifyJWT verifies a JWT token and returns its claims. An invalid token is
// a valid outcome, not an error.
func (s *Service) VerifyJWT(ctx context.Context, input *VerifyJWTInput, output *VerifyJWTOutput) error {
	if input.RSAKeyURL == "" && input.HMACKeyURL == "" {
		return fmt.Errorf("either rsaKeyURL or hmacKeyURL must be provided")
	}

	config := &verifier.Config{}
	if input.RSAKeyURL != "" {
		config.RSA = []*scy.Resource{{URL: input.RSAKeyURL, Key: input.KeySecret}}
	}
	if input.HMACKeyURL != "" {
		config.HMAC = &scy.Resource{URL: input.HMACKeyURL, Key: input.KeySecret}
	}
	jwtVerifier := verifier.New(config)
	if err := jwtVerifier.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize JWT verifier: %w", err)
	}

	var tokenString string
	switch {
	case input.Token != "":
		tokenString = input.Token
	case input.TokenURL != "":
		data, err := s.fs.DownloadWithURL(ctx, input.TokenURL)
		if err != nil {
			return fmt.Errorf("failed to download token from %s: %w", input.TokenURL, err)
		}
		tokenString = string(data)
	default:
		return fmt.Errorf("no token provided: specify token or tokenURL")
	}

	claims, err := jwtVerifier.VerifyClaims(ctx, tokenString)
	if err != nil {
		output.Valid = false
		return nil
	}

	output.Valid = true
	output.Claims = claims
	return nil
}
