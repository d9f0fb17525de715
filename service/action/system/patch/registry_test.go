package patch_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/quorly/service/action/system/patch"
)

func TestServiceMethods(t *testing.T) {
	service := patch.New()
	assert.Equal(t, "system/patch", service.Name())

	var names []string
	for _, signature := range service.Methods() {
		names = append(names, signature.Name)
	}
	assert.Equal(t, []string{"apply", "applyUnified", "diff", "snapshot", "commit", "rollback"}, names)

	_, err := service.Method("unknown")
	assert.Error(t, err)
}

func TestServiceDiff(t *testing.T) {
	service := patch.New()
	method, err := service.Method("diff")
	assert.NoError(t, err)

	output := &patch.DiffOutput{}
	err = method(context.Background(), &patch.DiffInput{
		OldContent: "a\nb\n",
		NewContent: "a\nc\n",
		Path:       "letters.txt",
	}, output)
	assert.NoError(t, err)
	assert.Contains(t, output.Patch, "letters.txt (original)")
	assert.Equal(t, patch.DiffStats{Added: 1, Removed: 1}, output.Stats)
}

func TestServiceApplyLifecycle(t *testing.T) {
	fs := afs.New()
	ctx := context.Background()
	url := "mem://localhost/registry/journal.md"
	err := fs.Upload(ctx, url, 0644, strings.NewReader("alpha\nbeta\n"))
	assert.NoError(t, err)
	defer func() { _ = fs.Delete(ctx, url) }()

	service := patch.New()
	apply, err := service.Method("apply")
	assert.NoError(t, err)

	patchText := `*** Begin Patch
*** Update File: ` + url + `
@@ alpha
-beta
+gamma
*** End Patch`

	output := &patch.ApplyOutput{}
	err = apply(ctx, &patch.ApplyInput{Patch: patchText}, output)
	assert.NoError(t, err)
	assert.Equal(t, 1, output.Stats.Added)

	snapshot, err := service.Method("snapshot")
	assert.NoError(t, err)
	snapOut := &patch.SnapshotOutput{}
	err = snapshot(ctx, &patch.EmptyInput{}, snapOut)
	assert.NoError(t, err)
	assert.Len(t, snapOut.Changes, 1)
	assert.Equal(t, "updated", snapOut.Changes[0].Kind)

	rollback, err := service.Method("rollback")
	assert.NoError(t, err)
	err = rollback(ctx, &patch.EmptyInput{}, &patch.EmptyOutput{})
	assert.NoError(t, err)

	data, err := fs.DownloadWithURL(ctx, url)
	assert.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\n", string(data))

	// methods validate their payload types
	err = apply(ctx, &patch.DiffInput{}, output)
	assert.Error(t, err)
	err = apply(ctx, &patch.ApplyInput{Patch: "  "}, output)
	assert.Error(t, err)
}
