package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceUploadListDownload(t *testing.T) {
	baseDir := t.TempDir()
	svc := New()
	ctx := context.Background()

	upload, err := svc.Method("upload")
	require.NoError(t, err)
	uploadOut := &UploadOutput{}
	err = upload(ctx, &UploadInput{
		Assets: []*Asset{
			{URL: filepath.Join(baseDir, "release.json"), Data: []byte(`{"version":"1.2.0"}`)},
			{URL: filepath.Join(baseDir, "notes.txt"), Data: []byte("signed off")},
		},
	}, uploadOut)
	require.NoError(t, err)
	require.Equal(t, 2, len(uploadOut.Assets))
	assert.Equal(t, "release.json", uploadOut.Assets[0].Name)
	assert.Equal(t, "application/json", uploadOut.Assets[0].ContentType)

	list, err := svc.Method("list")
	require.NoError(t, err)
	listOut := &ListOutput{}
	err = list(ctx, &ListInput{URL: baseDir}, listOut)
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, asset := range listOut.Assets {
		names[asset.Name] = true
	}
	assert.True(t, names["release.json"])
	assert.True(t, names["notes.txt"])

	download, err := svc.Method("download")
	require.NoError(t, err)
	downloadOut := &DownloadOutput{}
	err = download(ctx, &DownloadInput{
		Assets:      []string{filepath.Join(baseDir, "release.json")},
		IncludeData: true,
	}, downloadOut)
	require.NoError(t, err)
	require.Equal(t, 1, len(downloadOut.Assets))
	assert.Equal(t, `{"version":"1.2.0"}`, string(downloadOut.Assets[0].Data))
}

func TestServiceDownloadValidation(t *testing.T) {
	svc := New()
	ctx := context.Background()

	err := svc.Download(ctx, &DownloadInput{}, &DownloadOutput{})
	assert.Error(t, err)

	err = svc.Download(ctx, &DownloadInput{
		Assets: []string{filepath.Join(t.TempDir(), "missing.txt")},
	}, &DownloadOutput{})
	assert.Error(t, err)
}

func TestGetContentType(t *testing.T) {
	type testCase struct {
		name     string
		filename string
		expected string
	}

	cases := []testCase{
		{name: "json", filename: "config.json", expected: "application/json"},
		{name: "yaml", filename: "board.yaml", expected: "application/yaml"},
		{name: "unknown", filename: "blob.bin", expected: "application/octet-stream"},
		{name: "no extension", filename: "LICENSE", expected: "application/octet-stream"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, GetContentType(tc.filename))
		})
	}
}
