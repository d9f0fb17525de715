package engine

import (
	"context"
	"fmt"

	"github.com/viant/quorly/internal/gate"
	"github.com/viant/quorly/model/party"
	"github.com/viant/quorly/service/executor"
	"github.com/viant/quorly/service/journal"
)

// The board mutators below are the engine's self-governance surface. They
// are exported so the governance action service can reach them, but every
// call is refused unless the context was armed by this engine's own dispatch
// of a governance-targeted proposal. The caller's owner status is irrelevant:
// not even a unanimous board can mutate itself except through a proposal
// that cleared its own threshold.

// AddOwner admits a new board member.
func (s *Service) AddOwner(ctx context.Context, newOwner party.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !gate.Armed(ctx, s.token) {
		return fmt.Errorf("addOwner: %w", ErrForbidden)
	}
	if err := s.board.AddOwner(newOwner); err != nil {
		return err
	}
	s.governanceRecord(ctx, &journal.Record{
		Topic: journal.TopicOwnerAdded,
		Party: newOwner,
	})
	return nil
}

// RemoveOwner removes a board member. When the member count drops below the
// threshold the board lowers the threshold itself; that side effect is
// journaled as a threshold change of its own.
func (s *Service) RemoveOwner(ctx context.Context, owner party.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !gate.Armed(ctx, s.token) {
		return fmt.Errorf("removeOwner: %w", ErrForbidden)
	}
	before := s.board.Threshold()
	if err := s.board.RemoveOwner(owner); err != nil {
		return err
	}
	s.governanceRecord(ctx, &journal.Record{
		Topic: journal.TopicOwnerRemoved,
		Party: owner,
	})
	if after := s.board.Threshold(); after != before {
		s.governanceRecord(ctx, &journal.Record{
			Topic: journal.TopicThresholdChanged,
			Data:  map[string]interface{}{"required": after},
		})
	}
	return nil
}

// ReplaceOwner substitutes newOwner for oldOwner, leaving the threshold
// untouched.
func (s *Service) ReplaceOwner(ctx context.Context, oldOwner, newOwner party.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !gate.Armed(ctx, s.token) {
		return fmt.Errorf("replaceOwner: %w", ErrForbidden)
	}
	if err := s.board.ReplaceOwner(oldOwner, newOwner); err != nil {
		return err
	}
	s.governanceRecord(ctx, &journal.Record{
		Topic: journal.TopicOwnerReplaced,
		Party: newOwner,
		Data:  map[string]interface{}{"old": oldOwner.String(), "new": newOwner.String()},
	})
	return nil
}

// SetThreshold changes the number of confirmations required to execute.
func (s *Service) SetThreshold(ctx context.Context, required int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !gate.Armed(ctx, s.token) {
		return fmt.Errorf("setThreshold: %w", ErrForbidden)
	}
	if err := s.board.SetThreshold(required); err != nil {
		return err
	}
	s.governanceRecord(ctx, &journal.Record{
		Topic: journal.TopicThresholdChanged,
		Data:  map[string]interface{}{"required": required},
	})
	return nil
}

// governanceRecord journals a board mutation, attributing it to the proposal
// being dispatched when one rides the context.
func (s *Service) governanceRecord(ctx context.Context, record *journal.Record) {
	if p := executor.ProposalFromContext(ctx); p != nil {
		record.Proposal = journal.ProposalID(p.ID)
	}
	s.record(ctx, record)
}
