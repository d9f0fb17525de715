package storage

import (
	"mime"
	"path/filepath"
	"strings"
)

// contentTypes covers extensions the platform mime table misses or maps
// inconsistently across hosts.
var contentTypes = map[string]string{
	".json":   "application/json",
	".yaml":   "application/yaml",
	".yml":    "application/yaml",
	".txt":    "text/plain",
	".md":     "text/markdown",
	".gz":     "application/gzip",
	".tar.gz": "application/gzip",
}

// GetContentType tries to determine the content type of a file based on extension
func GetContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if contentType, ok := contentTypes[ext]; ok {
		return contentType
	}
	if contentType := mime.TypeByExtension(ext); contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}
