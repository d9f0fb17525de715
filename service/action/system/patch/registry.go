package patch

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/viant/quorly/model/types"
)

// Name of the system/patch action service.
const Name = "system/patch"

// Service exposes transactional file patching as a dispatch target. A session
// is created on first apply and stays open across proposals until the board
// approves a commit or rollback, so a multi-step change can be reviewed via
// snapshot before it becomes permanent.
type Service struct {
	mu      sync.Mutex
	session *Session
}

// New creates the patch service.
func New() *Service { return &Service{} }

// Name returns the service identifier.
func (s *Service) Name() string { return Name }

// Methods returns the service method signatures.
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "apply",
			Description: "Applies a textual patch (*** Begin Patch envelope with Add/Update/Delete File hunks) within the current session, auto-created on first use.",
			Input:       reflect.TypeOf(&ApplyInput{}),
			Output:      reflect.TypeOf(&ApplyOutput{}),
		},
		{
			Name:        "applyUnified",
			Description: "Applies a standard unified diff (---/+++ headers with @@ hunks) within the current session.",
			Input:       reflect.TypeOf(&ApplyInput{}),
			Output:      reflect.TypeOf(&ApplyOutput{}),
		},
		{
			Name:        "diff",
			Description: "Generates a unified diff and line statistics from two text blobs.",
			Input:       reflect.TypeOf(&DiffInput{}),
			Output:      reflect.TypeOf(&DiffOutput{}),
		},
		{
			Name:        "snapshot",
			Description: "Lists the pending uncommitted changes of the current session.",
			Input:       reflect.TypeOf(&EmptyInput{}),
			Output:      reflect.TypeOf(&SnapshotOutput{}),
		},
		{
			Name:        "commit",
			Description: "Makes the session changes permanent and clears the session.",
			Input:       reflect.TypeOf(&EmptyInput{}),
			Output:      reflect.TypeOf(&EmptyOutput{}),
		},
		{
			Name:        "rollback",
			Description: "Undoes all pending changes of the current session and clears it.",
			Input:       reflect.TypeOf(&EmptyInput{}),
			Output:      reflect.TypeOf(&EmptyOutput{}),
		},
	}
}

// Method resolves a method name to its executable.
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case "apply":
		return s.apply, nil
	case "applyunified":
		return s.applyUnified, nil
	case "diff":
		return s.diff, nil
	case "snapshot":
		return s.snapshot, nil
	case "commit":
		return s.commit, nil
	case "rollback":
		return s.rollback, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

// ApplyInput carries the patch text for apply and applyUnified.
type ApplyInput struct {
	Patch string `json:"patch" description:"patch text to apply"`
}

// ApplyOutput summarises the applied change.
type ApplyOutput struct {
	Stats DiffStats `json:"stats,omitempty"`
}

// DiffInput is the payload for Service.diff.
type DiffInput struct {
	OldContent   string `json:"old" description:"original content"`
	NewContent   string `json:"new" description:"updated content"`
	Path         string `json:"path,omitempty" description:"display path for diff headers"`
	ContextLines int    `json:"contextLines,omitempty" description:"context lines to include, default 3"`
}

// DiffOutput holds the generated diff and its statistics.
type DiffOutput struct {
	Patch string    `json:"patch,omitempty"`
	Stats DiffStats `json:"stats,omitempty"`
}

// SnapshotOutput lists pending session changes.
type SnapshotOutput struct {
	Changes []Change `json:"changes,omitempty"`
}

// EmptyInput and EmptyOutput are used by snapshot, commit and rollback.
type EmptyInput struct{}
type EmptyOutput struct{}

// activeSession returns the open session, creating one when missing.
func (s *Service) activeSession() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		session, err := NewSession()
		if err != nil {
			return nil, err
		}
		s.session = session
	}
	return s.session, nil
}

// clearSession drops the session reference when it matches the supplied one.
func (s *Service) clearSession(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == session {
		s.session = nil
	}
}

func (s *Service) applyWith(ctx context.Context, in, out interface{}, run func(ctx context.Context, session *Session, patch string) error) error {
	input, ok := in.(*ApplyInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*ApplyOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	if strings.TrimSpace(input.Patch) == "" {
		return errors.New("patch was empty")
	}

	session, err := s.activeSession()
	if err != nil {
		return err
	}
	if err := run(ctx, session, input.Patch); err != nil {
		// a half-applied patch never survives; undo everything
		_ = session.Rollback(ctx)
		s.clearSession(session)
		return err
	}
	output.Stats = patchStats(input.Patch)
	return nil
}

func (s *Service) apply(ctx context.Context, in, out interface{}) error {
	return s.applyWith(ctx, in, out, func(ctx context.Context, session *Session, patch string) error {
		return session.ApplyPatch(ctx, patch)
	})
}

func (s *Service) applyUnified(ctx context.Context, in, out interface{}) error {
	return s.applyWith(ctx, in, out, func(ctx context.Context, session *Session, patch string) error {
		return session.ApplyUnified(ctx, patch)
	})
}

func (s *Service) diff(_ context.Context, in, out interface{}) error {
	input, ok := in.(*DiffInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*DiffOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}

	patch, stats, err := GenerateDiff([]byte(input.OldContent), []byte(input.NewContent), input.Path, input.ContextLines)
	if err != nil {
		return err
	}
	output.Patch = patch
	output.Stats = stats
	return nil
}

func (s *Service) snapshot(ctx context.Context, in, out interface{}) error {
	if _, ok := in.(*EmptyInput); !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SnapshotOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}

	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == nil {
		return nil
	}
	changes, err := session.Snapshot(ctx)
	if err != nil {
		return err
	}
	output.Changes = changes
	return nil
}

func (s *Service) commit(ctx context.Context, in, out interface{}) error {
	if _, ok := in.(*EmptyInput); !ok {
		return types.NewInvalidInputError(in)
	}
	if _, ok := out.(*EmptyOutput); !ok {
		return types.NewInvalidOutputError(out)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Commit(ctx)
	s.session = nil
	return err
}

func (s *Service) rollback(ctx context.Context, in, out interface{}) error {
	if _, ok := in.(*EmptyInput); !ok {
		return types.NewInvalidInputError(in)
	}
	if _, ok := out.(*EmptyOutput); !ok {
		return types.NewInvalidOutputError(out)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Rollback(ctx)
	s.session = nil
	return err
}

// patchStats counts changed lines in a patch text, covering both the textual
// and unified formats.
func patchStats(p string) DiffStats {
	stats := DiffStats{}
	for _, l := range strings.Split(p, "\n") {
		switch {
		case strings.HasPrefix(l, "***"):
		case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
		case strings.HasPrefix(l, "+"):
			stats.Added++
		case strings.HasPrefix(l, "-"):
			stats.Removed++
		}
	}
	return stats
}
