package secret

import (
	"context"
	"fmt"

	"github.com/viant/scy"
	"github.com/viant/scy/cred"
	"github.com/viant/toolbox"
)

// RevealInput defines parameters for revealing secrets
type RevealInput struct {
	SourceURL string `json:"sourceURL"`
	Target    string `json:"target,omitempty"` // credential type: raw, basic, key, generic
	Key       string `json:"key,omitempty"`    // e.g. "blowfish://default"
}

// RevealOutput contains the revealed secret
type RevealOutput struct {
	PlainText string                 `json:"plainText,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Success   bool                   `json:"success"`
}

// Reveal decrypts a secret
func (s *Service) Reveal(ctx context.Context, input *RevealInput, output *RevealOutput) error {
	var target interface{}
	if input.Target != "" && input.Target != "raw" {
		targetType, err := cred.TargetType(input.Target)
		if err != nil {
			return fmt.Errorf("invalid target type '%s': %w", input.Target, err)
		}
		if targetType != nil {
			target = targetType
		}
	}

	resource := scy.NewResource(target, input.SourceURL, input.Key)
	revealed, err := s.scyService.Load(ctx, resource)
	if err != nil {
		return fmt.Errorf("failed to load secret from %s: %w", input.SourceURL, err)
	}

	if !revealed.IsPlain && revealed.Target != nil {
		aMap := map[string]interface{}{}
		if err := toolbox.DefaultConverter.AssignConverted(&aMap, revealed.Target); err != nil {
			return fmt.Errorf("failed to convert secret data: %w", err)
		}
		output.Data = toolbox.DeleteEmptyKeys(aMap)
	} else {
		output.PlainText = revealed.String()
	}

	output.Success = true
	return nil
}
