package secret

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceSecureReveal(t *testing.T) {
	svc := New()
	ctx := context.Background()
	destURL := filepath.Join(t.TempDir(), "secret.enc")

	secureOut := &SecureOutput{}
	err := svc.Secure(ctx, &SecureInput{
		Content: "deploy-token-123",
		DestURL: destURL,
		Key:     "blowfish://default",
	}, secureOut)
	require.NoError(t, err)
	assert.True(t, secureOut.Success)

	revealOut := &RevealOutput{}
	err = svc.Reveal(ctx, &RevealInput{
		SourceURL: destURL,
		Key:       "blowfish://default",
	}, revealOut)
	require.NoError(t, err)
	assert.True(t, revealOut.Success)
	assert.Equal(t, "deploy-token-123", revealOut.PlainText)
}

func TestServiceSecureValidation(t *testing.T) {
	svc := New()
	err := svc.Secure(context.Background(), &SecureInput{DestURL: "/tmp/never"}, &SecureOutput{})
	assert.Error(t, err)
}

func TestServiceJWTValidation(t *testing.T) {
	svc := New()
	ctx := context.Background()

	err := svc.SignJWT(ctx, &SignJWTInput{Claims: map[string]interface{}{"sub": "alice"}}, &SignJWTOutput{})
	assert.Error(t, err)

	err = svc.VerifyJWT(ctx, &VerifyJWTInput{Token: "not-a-jwt"}, &VerifyJWTOutput{})
	assert.Error(t, err)
}
