package secret

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/viant/scy"
	"github.com/viant/scy/auth/jwt/signer"
)

// SignJWTInput defines parameters for JWT signing
type SignJWTInput struct {
	Claims         map[string]interface{} `json:"claims,omitempty"`
	ClaimsURL      string                 `json:"claimsURL,omitempty"`
	RSAKeyURL      string                 `json:"rsaKeyURL,omitempty"`
	HMACKeyURL     string                 `json:"hmacKeyURL,omitempty"`
	KeySecret      string                 `json:"keySecret,omitempty"`
	ExpiryDuration int                    `json:"expiryDuration,omitempty"` // seconds, default 3600
}

// SignJWTOutput contains the signed JWT
type SignJWTOutput struct {
	Token   string `json:"token"`
	Success bool   `json:"success"`
}

// SignJWT creates a signed JWT token
func (s *Service) SignJWT(ctx context.Context, input *SignJWTInput, output *SignJWTOutput) error {
	if input.RSAKeyURL == "" && input.HMACKeyURL == "" {
		return fmt.Errorf("either rsaKeyURL or hmacKeyURL must be provided")
	}

	config := &signer.Config{}
	if input.RSAKeyURL != "" {
		config.RSA = &scy.Resource{URL: input.RSAKeyURL, Key: input.KeySecret}
	} else {
		config.HMAC = &scy.Resource{URL: input.HMACKeyURL, Key: input.KeySecret}
	}
	jwtSigner := signer.New(config)
	if err := jwtSigner.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize JWT signer: %w", err)
	}

	var claims map[string]interface{}
	switch {
	case len(input.Claims) > 0:
		claims = input.Claims
	case input.ClaimsURL != "":
		data, err := s.fs.DownloadWithURL(ctx, input.ClaimsURL)
		if err != nil {
			return fmt.Errorf("failed to download claims from %s: %w", input.ClaimsURL, err)
		}
		if err = json.Unmarshal(data, &claims); err != nil {
			return fmt.Errorf("invalid JSON claims: %w", err)
		}
	default:
		return fmt.Errorf("no claims provided: specify claims or claimsURL")
	}

	expiry := time.Duration(input.ExpiryDuration) * time.Second
	if expiry == 0 {
		expiry = time.Hour
	}

	token, err := jwtSigner.Create(expiry, claims)
	if err != nil {
		return fmt.Errorf("failed to create JWT token: %w", err)
	}

	output.Token = token
	output.Success = true
	return nil
}
