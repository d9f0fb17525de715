// Package patch applies file changes transactionally as a dispatch target.
// All mutations run inside a Session that snapshots originals before touching
// them, so a board-approved patch either lands whole or rolls back whole.
package patch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

// Action identifies a session file operation.
type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionMove   Action = "move"
)

type rollbackEntry struct {
	action Action
	url    string // primary URL affected
	auxURL string // destination for move, otherwise ""
	backup string // snapshot URL for update/delete
}

// Session tracks uncommitted file changes. Every mutating call stores its
// own backup snapshot, so patching the same file repeatedly still rolls back
// to the pre-session content.
type Session struct {
	ID      string
	fs      afs.Service
	tempDir string
	seq     int

	mu        sync.Mutex
	committed bool
	rollbacks []rollbackEntry

	order     []*changeEntry
	byCurrent map[string]*changeEntry
	byOrigin  map[string]*changeEntry
}

// NewSession creates a session with a private backup area.
func NewSession() (*Session, error) {
	tmp, err := os.MkdirTemp("", "quorly-patch-")
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:        filepath.Base(tmp),
		fs:        afs.New(),
		tempDir:   tmp,
		byCurrent: map[string]*changeEntry{},
		byOrigin:  map[string]*changeEntry{},
	}, nil
}

func (s *Session) assertActive() error {
	if s.committed {
		return errors.New("session already committed")
	}
	return nil
}

// backup snapshots the current content of url into the session backup area
// and returns the snapshot URL.
func (s *Session) backup(ctx context.Context, url string) (string, error) {
	data, err := s.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return "", err
	}
	s.seq++
	dst := filepath.Join(s.tempDir, fmt.Sprintf("%04d.bak", s.seq))
	if err := s.fs.Upload(ctx, dst, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return "", err
	}
	return dst, nil
}

// Add creates a new file. Adding over an existing file is an error.
func (s *Session) Add(ctx context.Context, url string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.assertActive(); err != nil {
		return err
	}
	if exists, _ := s.fs.Exists(ctx, url); exists {
		return fmt.Errorf("add: file %s already exists", url)
	}
	if err := s.fs.Upload(ctx, url, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return err
	}
	s.rollbacks = append(s.rollbacks, rollbackEntry{action: ActionAdd, url: url})
	s.trackAdd(ctx, url)
	return nil
}

// Update replaces the content of an existing file.
func (s *Session) Update(ctx context.Context, url string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.assertActive(); err != nil {
		return err
	}
	exists, err := s.fs.Exists(ctx, url)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("update: file %s does not exist", url)
	}
	backup, err := s.backup(ctx, url)
	if err != nil {
		return err
	}
	if err := s.fs.Upload(ctx, url, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return err
	}
	s.rollbacks = append(s.rollbacks, rollbackEntry{action: ActionUpdate, url: url, backup: backup})
	s.trackUpdate(ctx, url, backup)
	return nil
}

// Delete removes an existing file.
func (s *Session) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.assertActive(); err != nil {
		return err
	}
	exists, err := s.fs.Exists(ctx, url)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("delete: file %s does not exist", url)
	}
	backup, err := s.backup(ctx, url)
	if err != nil {
		return err
	}
	if err := s.fs.Delete(ctx, url); err != nil {
		return err
	}
	s.rollbacks = append(s.rollbacks, rollbackEntry{action: ActionDelete, url: url, backup: backup})
	s.trackDelete(ctx, url, backup)
	return nil
}

// Move renames a file.
func (s *Session) Move(ctx context.Context, src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.assertActive(); err != nil {
		return err
	}
	exists, err := s.fs.Exists(ctx, src)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("move: file %s does not exist", src)
	}
	if err := s.fs.Move(ctx, src, dst); err != nil {
		return err
	}
	s.rollbacks = append(s.rollbacks, rollbackEntry{action: ActionMove, url: src, auxURL: dst})
	s.trackMove(src, dst)
	return nil
}

// Rollback undoes every uncommitted change in reverse order and clears the
// session.
func (s *Session) Rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.rollbacks) - 1; i >= 0; i-- {
		entry := s.rollbacks[i]
		switch entry.action {
		case ActionAdd:
			if exists, _ := s.fs.Exists(ctx, entry.url); exists {
				if err := s.fs.Delete(ctx, entry.url); err != nil {
					return fmt.Errorf("rollback add: %w", err)
				}
			}
		case ActionUpdate, ActionDelete:
			data, err := s.fs.DownloadWithURL(ctx, entry.backup)
			if err != nil {
				return err
			}
			if err := s.fs.Upload(ctx, entry.url, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
				return err
			}
		case ActionMove:
			if err := s.fs.Move(ctx, entry.auxURL, entry.url); err != nil {
				return err
			}
		}
	}
	s.reset()
	if err := os.RemoveAll(s.tempDir); err != nil {
		return fmt.Errorf("rollback cleanup: %w", err)
	}
	return nil
}

// Commit discards the rollback information, making the changes permanent.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.committed {
		return nil
	}
	s.committed = true
	s.reset()
	if err := os.RemoveAll(s.tempDir); err != nil {
		return fmt.Errorf("commit cleanup: %w", err)
	}
	return nil
}

func (s *Session) reset() {
	s.rollbacks = nil
	s.order = nil
	s.byCurrent = map[string]*changeEntry{}
	s.byOrigin = map[string]*changeEntry{}
}

// ApplyPatch applies a textual patch (*** Begin Patch format) through the
// session, one operation per hunk.
func (s *Session) ApplyPatch(ctx context.Context, patchText string) error {
	hunks, err := Parse(patchText)
	if err != nil {
		return err
	}
	for _, hunk := range hunks {
		switch h := hunk.(type) {
		case AddFile:
			if err := s.Add(ctx, h.Path, []byte(h.Contents)); err != nil {
				return err
			}
		case DeleteFile:
			if err := s.Delete(ctx, h.Path); err != nil {
				return err
			}
		case UpdateFile:
			oldData, err := s.fs.DownloadWithURL(ctx, h.Path)
			if err != nil {
				return fmt.Errorf("update %s: %w", h.Path, err)
			}
			lines := s.applyUpdate(oldData, h)
			content := strings.Join(lines, "\n")
			if !strings.HasSuffix(content, "\n") {
				content += "\n"
			}
			target := h.Path
			if h.MovePath != "" {
				if err := s.Move(ctx, h.Path, h.MovePath); err != nil {
					return err
				}
				target = h.MovePath
			}
			if err := s.Update(ctx, target, []byte(content)); err != nil {
				return err
			}
		}
	}
	return nil
}
