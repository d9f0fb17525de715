package patch_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/quorly/service/action/system/patch"
)

func TestSessionSnapshot(t *testing.T) {
	fs := afs.New()
	ctx := context.Background()

	testCases := []struct {
		name         string
		initialFiles map[string]string
		ops          func(context.Context, *patch.Session) error
		expect       func() []patch.Change
	}{
		{
			name:         "create",
			initialFiles: map[string]string{},
			ops: func(ctx context.Context, s *patch.Session) error {
				return s.Add(ctx, "mem://localhost/new.txt", []byte("l1\nl2\n"))
			},
			expect: func() []patch.Change {
				diff, _, _ := patch.GenerateDiff(nil, []byte("l1\nl2\n"), "mem://localhost/new.txt", 3)
				return []patch.Change{{
					Kind: "create",
					URL:  "mem://localhost/new.txt",
					Diff: diff,
				}}
			},
		},
		{
			name: "update",
			initialFiles: map[string]string{
				"mem://localhost/a.txt": "A\nB\n",
			},
			ops: func(ctx context.Context, s *patch.Session) error {
				return s.Update(ctx, "mem://localhost/a.txt", []byte("A\nC\n"))
			},
			expect: func() []patch.Change {
				diff, _, _ := patch.GenerateDiff([]byte("A\nB\n"), []byte("A\nC\n"), "mem://localhost/a.txt", 3)
				return []patch.Change{{
					Kind:    "updated",
					OrigURL: "mem://localhost/a.txt",
					URL:     "mem://localhost/a.txt",
					Diff:    diff,
				}}
			},
		},
		{
			name: "delete",
			initialFiles: map[string]string{
				"mem://localhost/d.txt": "X\nY\n",
			},
			ops: func(ctx context.Context, s *patch.Session) error {
				return s.Delete(ctx, "mem://localhost/d.txt")
			},
			expect: func() []patch.Change {
				diff, _, _ := patch.GenerateDiff([]byte("X\nY\n"), nil, "mem://localhost/d.txt", 3)
				return []patch.Change{{
					Kind:    "delete",
					OrigURL: "mem://localhost/d.txt",
					Diff:    diff,
				}}
			},
		},
		{
			name: "move-only",
			initialFiles: map[string]string{
				"mem://localhost/m.txt": "Hello\n",
			},
			ops: func(ctx context.Context, s *patch.Session) error {
				return s.Move(ctx, "mem://localhost/m.txt", "mem://localhost/n.txt")
			},
			expect: func() []patch.Change {
				// a move without content change yields an empty diff
				return []patch.Change{{
					Kind:    "updated",
					OrigURL: "mem://localhost/m.txt",
					URL:     "mem://localhost/n.txt",
					Diff:    "",
				}}
			},
		},
		{
			name: "move-and-update",
			initialFiles: map[string]string{
				"mem://localhost/o.txt": "Hi\n",
			},
			ops: func(ctx context.Context, s *patch.Session) error {
				if err := s.Move(ctx, "mem://localhost/o.txt", "mem://localhost/p.txt"); err != nil {
					return err
				}
				return s.Update(ctx, "mem://localhost/p.txt", []byte("Hi\nThere\n"))
			},
			expect: func() []patch.Change {
				diff, _, _ := patch.GenerateDiff([]byte("Hi\n"), []byte("Hi\nThere\n"), "mem://localhost/p.txt", 3)
				return []patch.Change{{
					Kind:    "updated",
					OrigURL: "mem://localhost/o.txt",
					URL:     "mem://localhost/p.txt",
					Diff:    diff,
				}}
			},
		},
		{
			name:         "create-move-delete-cancels",
			initialFiles: map[string]string{},
			ops: func(ctx context.Context, s *patch.Session) error {
				if err := s.Add(ctx, "mem://localhost/t.txt", []byte("tmp\n")); err != nil {
					return err
				}
				if err := s.Move(ctx, "mem://localhost/t.txt", "mem://localhost/u.txt"); err != nil {
					return err
				}
				return s.Delete(ctx, "mem://localhost/u.txt")
			},
			expect: func() []patch.Change { return []patch.Change{} },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for path, content := range tc.initialFiles {
				err := fs.Upload(ctx, path, 0644, strings.NewReader(content))
				assert.NoError(t, err, "setup %s", path)
			}

			sess, err := patch.NewSession()
			assert.NoError(t, err)

			err = tc.ops(ctx, sess)
			assert.NoError(t, err, "operations")

			got, err := sess.Snapshot(ctx)
			assert.NoError(t, err)
			assert.EqualValues(t, tc.expect(), got)

			_ = sess.Rollback(ctx)
			for path := range tc.initialFiles {
				_ = fs.Delete(ctx, path)
			}
		})
	}
}
