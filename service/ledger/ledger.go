// Package ledger keeps the proposal log and the confirmation tracker. The
// log is append only with ids issued as a dense sequence 0,1,2,... that is
// never reused; confirmations are per (proposal, party) records kept in a
// dao store, with each proposal's counter maintained incrementally so the
// threshold check at execution time is O(1).
package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/viant/quorly/internal/clock"
	"github.com/viant/quorly/model/party"
	"github.com/viant/quorly/model/proposal"
	"github.com/viant/quorly/service/dao"
	"github.com/viant/quorly/service/dao/store"
)

// Key identifies a confirmation record.
type Key struct {
	Proposal uint64
	Party    party.ID
}

// Confirmation is the per (proposal, party) record. The record toggles via
// Confirm and Revoke while the proposal is pending; a revoked confirmation
// stays stored with Confirmed false rather than being deleted, preserving
// the toggle history timestamp.
type Confirmation struct {
	Proposal  uint64    `json:"proposal"`
	Party     party.ID  `json:"party"`
	Confirmed bool      `json:"confirmed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Service is the proposal store. It performs no locking of its own; the
// owning engine serializes access.
type Service struct {
	proposals     []*proposal.Proposal
	confirmations dao.Service[Key, Confirmation]
}

// New creates an empty ledger.
func New() *Service {
	return &Service{
		confirmations: store.NewMemoryStore[Key, Confirmation](func(c *Confirmation) Key {
			return Key{Proposal: c.Proposal, Party: c.Party}
		}),
	}
}

// Append creates a pending proposal under the next sequence id and returns it.
func (s *Service) Append(target string, value uint64, payload []byte) *proposal.Proposal {
	result := proposal.New(uint64(len(s.proposals)), target, value, payload)
	s.proposals = append(s.proposals, result)
	return result
}

// Get returns the proposal with the given id.
func (s *Service) Get(id uint64) (*proposal.Proposal, error) {
	if id >= uint64(len(s.proposals)) {
		return nil, fmt.Errorf("proposal %v: %w", id, ErrNotFound)
	}
	return s.proposals[id], nil
}

// Count returns the number of proposals ever created.
func (s *Service) Count() uint64 {
	return uint64(len(s.proposals))
}

// Confirm records member's confirmation of the proposal and increments the
// proposal's counter by exactly one.
func (s *Service) Confirm(ctx context.Context, id uint64, member party.ID) error {
	target, err := s.Get(id)
	if err != nil {
		return err
	}
	if target.Executed() {
		return fmt.Errorf("proposal %v: %w", id, ErrAlreadyExecuted)
	}
	record, err := s.confirmations.Load(ctx, Key{Proposal: id, Party: member})
	if err != nil {
		return err
	}
	if record != nil && record.Confirmed {
		return fmt.Errorf("proposal %v, party %v: %w", id, member, ErrAlreadyConfirmed)
	}
	err = s.confirmations.Save(ctx, &Confirmation{
		Proposal:  id,
		Party:     member,
		Confirmed: true,
		UpdatedAt: clock.Now(),
	})
	if err != nil {
		return err
	}
	target.Confirmations++
	return nil
}

// Revoke withdraws member's confirmation and decrements the proposal's
// counter by exactly one.
func (s *Service) Revoke(ctx context.Context, id uint64, member party.ID) error {
	target, err := s.Get(id)
	if err != nil {
		return err
	}
	if target.Executed() {
		return fmt.Errorf("proposal %v: %w", id, ErrAlreadyExecuted)
	}
	record, err := s.confirmations.Load(ctx, Key{Proposal: id, Party: member})
	if err != nil {
		return err
	}
	if record == nil || !record.Confirmed {
		return fmt.Errorf("proposal %v, party %v: %w", id, member, ErrNotConfirmed)
	}
	err = s.confirmations.Save(ctx, &Confirmation{
		Proposal:  id,
		Party:     member,
		Confirmed: false,
		UpdatedAt: clock.Now(),
	})
	if err != nil {
		return err
	}
	target.Confirmations--
	return nil
}

// Confirmed reports whether member currently holds a true record for the
// proposal. An unknown proposal or party simply reads as not confirmed.
func (s *Service) Confirmed(ctx context.Context, id uint64, member party.ID) (bool, error) {
	record, err := s.confirmations.Load(ctx, Key{Proposal: id, Party: member})
	if err != nil {
		return false, err
	}
	return record != nil && record.Confirmed, nil
}

// Confirmations returns the parties currently confirming the proposal,
// ordered by identifier for a deterministic view.
func (s *Service) Confirmations(ctx context.Context, id uint64) ([]party.ID, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	records, err := s.confirmations.List(ctx)
	if err != nil {
		return nil, err
	}
	var result []party.ID
	for _, record := range records {
		if record.Proposal == id && record.Confirmed {
			result = append(result, record.Party)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil
}

// MarkExecuted sets the proposal's one-way executed flag. Only the engine
// calls this, immediately before dispatching the proposal's action.
func (s *Service) MarkExecuted(id uint64) error {
	target, err := s.Get(id)
	if err != nil {
		return err
	}
	if target.Executed() {
		return fmt.Errorf("proposal %v: %w", id, ErrAlreadyExecuted)
	}
	target.MarkExecuted()
	return nil
}

// UnmarkExecuted clears the executed flag again. Only the engine calls this,
// rolling back a proposal whose dispatch failed.
func (s *Service) UnmarkExecuted(id uint64) error {
	target, err := s.Get(id)
	if err != nil {
		return err
	}
	target.ClearExecuted()
	return nil
}

// IDs returns the ids of proposals matching the pending/executed filter,
// windowed to positions [from, to) of the filtered sequence.
func (s *Service) IDs(from, to uint64, pending, executed bool) []uint64 {
	var matched []uint64
	for id, candidate := range s.proposals {
		if (pending && !candidate.Executed()) || (executed && candidate.Executed()) {
			matched = append(matched, uint64(id))
		}
	}
	if from >= uint64(len(matched)) {
		return []uint64{}
	}
	if to > uint64(len(matched)) {
		to = uint64(len(matched))
	}
	if to < from {
		to = from
	}
	return matched[from:to]
}
