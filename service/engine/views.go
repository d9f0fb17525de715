package engine

import (
	"context"

	"github.com/viant/quorly/model/party"
	"github.com/viant/quorly/model/proposal"
)

// Owners returns the current board members.
func (s *Service) Owners() []party.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.Owners()
}

// Threshold returns the number of confirmations required to execute.
func (s *Service) Threshold() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.Threshold()
}

// Authorized reports whether id is a current board member.
func (s *Service) Authorized(id party.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.Authorized(id)
}

// Balance returns the deposited balance.
func (s *Service) Balance() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// ProposalCount returns the number of proposals ever created.
func (s *Service) ProposalCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Count()
}

// Proposal returns a copy of the proposal with the given id.
func (s *Service) Proposal(id uint64) (*proposal.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	target, err := s.ledger.Get(id)
	if err != nil {
		return nil, err
	}
	return target.Clone(), nil
}

// ThresholdMet reports whether the proposal currently holds enough
// confirmations to execute.
func (s *Service) ThresholdMet(id uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	target, err := s.ledger.Get(id)
	if err != nil {
		return false, err
	}
	return target.Confirmations >= s.board.Threshold(), nil
}

// Confirmed reports whether member currently confirms the proposal.
func (s *Service) Confirmed(ctx context.Context, id uint64, member party.ID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Confirmed(ctx, id, member)
}

// Confirmations returns the parties currently confirming the proposal.
func (s *Service) Confirmations(ctx context.Context, id uint64) ([]party.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Confirmations(ctx, id)
}

// ProposalIDs returns ids of proposals matching the pending/executed filter,
// windowed to positions [from, to) of the filtered sequence.
func (s *Service) ProposalIDs(from, to uint64, pending, executed bool) []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.IDs(from, to, pending, executed)
}
