package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
)

// UploadInput defines parameters for uploading assets
type UploadInput struct {
	Assets []*Asset `json:"assets"`
}

// UploadOutput contains results from an upload operation
type UploadOutput struct {
	Assets []*Asset `json:"assets,omitempty"`
}

// Upload uploads assets to their specified URLs
func (s *Service) Upload(ctx context.Context, input *UploadInput, output *UploadOutput) error {
	if len(input.Assets) == 0 {
		return fmt.Errorf("at least one asset is required for upload")
	}

	uploaded := make([]*Asset, 0, len(input.Assets))
	for _, asset := range input.Assets {
		if asset.URL == "" {
			return fmt.Errorf("asset URL cannot be empty")
		}
		if err := s.fs.Upload(ctx, asset.URL, file.DefaultFileOsMode, bytes.NewReader(asset.Data)); err != nil {
			return err
		}
		object, err := s.fs.Object(ctx, asset.URL)
		if err != nil {
			return fmt.Errorf("failed to get object for %s: %w", asset.URL, err)
		}
		uploaded = append(uploaded, &Asset{
			URL:         asset.URL,
			Name:        filepath.Base(asset.URL),
			Mode:        object.Mode().String(),
			Size:        object.Size(),
			ModTime:     object.ModTime(),
			ContentType: GetContentType(url.Path(asset.URL)),
		})
	}

	output.Assets = uploaded
	return nil
}
