package secret

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/viant/scy"
	"github.com/viant/scy/cred"
)

// SecureInput defines parameters for securing secrets. Exactly one of
// Content, Data or SourceURL supplies the material to encrypt.
type SecureInput struct {
	SourceURL string                 `json:"sourceURL,omitempty"`
	Content   string                 `json:"content,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	DestURL   string                 `json:"destURL"`
	Target    string                 `json:"target,omitempty"`
	Key       string                 `json:"key,omitempty"`
}

// SecureOutput contains results from encrypting a secret
type SecureOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Secure encrypts and stores a secret
func (s *Service) Secure(ctx context.Context, input *SecureInput, output *SecureOutput) error {
	var data []byte
	var err error
	switch {
	case input.Content != "":
		data = []byte(input.Content)
	case len(input.Data) > 0:
		if data, err = json.Marshal(input.Data); err != nil {
			return fmt.Errorf("failed to marshal data: %w", err)
		}
	case input.SourceURL != "":
		if data, err = s.fs.DownloadWithURL(ctx, input.SourceURL); err != nil {
			return fmt.Errorf("failed to download from %s: %w", input.SourceURL, err)
		}
	default:
		return fmt.Errorf("no content provided: specify sourceURL, content, or data")
	}

	var targetType reflect.Type
	if input.Target != "" && input.Target != "raw" {
		if targetType, err = cred.TargetType(input.Target); err != nil {
			return fmt.Errorf("invalid target type '%s': %w", input.Target, err)
		}
	}

	var stored *scy.Secret
	if targetType != nil {
		instance := reflect.New(targetType).Interface()
		if err := json.Unmarshal(data, instance); err != nil {
			return fmt.Errorf("failed to unmarshal data to target type %s: %w", input.Target, err)
		}
		stored = scy.NewSecret(instance, scy.NewResource(targetType, input.DestURL, input.Key))
	} else {
		stored = scy.NewSecret(string(data), scy.NewResource(nil, input.DestURL, input.Key))
	}

	if err := s.scyService.Store(ctx, stored); err != nil {
		return fmt.Errorf("failed to store encrypted secret: %w", err)
	}

	output.Success = true
	output.Message = fmt.Sprintf("Secret successfully encrypted and stored at %s", input.DestURL)
	return nil
}
