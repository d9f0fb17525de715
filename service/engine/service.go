// Package engine implements the authorization core: proposals are submitted
// by authorized parties, gather confirmations, and once the board threshold
// is met may be executed exactly once. The engine owns the board, the
// ledger and the journal and serializes every state-changing operation over
// them with a single lock, so invariants hold under concurrent use without
// any ambient global state.
package engine

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/viant/quorly/internal/gate"
	"github.com/viant/quorly/model/party"
	"github.com/viant/quorly/model/proposal"
	"github.com/viant/quorly/policy"
	"github.com/viant/quorly/service/board"
	"github.com/viant/quorly/service/executor"
	"github.com/viant/quorly/service/journal"
	jmem "github.com/viant/quorly/service/journal/memory"
	"github.com/viant/quorly/service/ledger"
	"github.com/viant/quorly/tracing"
)

// DefaultGovernanceService is the action service name whose dispatches run
// with governance authority.
const DefaultGovernanceService = "governance"

// Service is one authorization engine instance. All exported methods are
// safe for concurrent use.
type Service struct {
	mu       sync.RWMutex
	board    *board.Board
	ledger   *ledger.Service
	journal  journal.Service
	executor executor.Service
	policy   *policy.Policy
	token    *gate.Token

	governanceService string
	balance           uint64
}

// Option customises an engine instance.
type Option func(*Service)

// WithJournal replaces the default in-memory journal.
func WithJournal(aJournal journal.Service) Option {
	return func(s *Service) { s.journal = aJournal }
}

// WithLedger replaces the default empty ledger, for example to resume from a
// pre-populated one in tests.
func WithLedger(aLedger *ledger.Service) Option {
	return func(s *Service) { s.ledger = aLedger }
}

// WithPolicy sets the default proposal target policy. A policy attached to
// the call context takes precedence.
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithGovernanceService overrides which action service name dispatches with
// governance authority.
func WithGovernanceService(name string) Option {
	return func(s *Service) { s.governanceService = name }
}

// New creates an engine over the supplied board and executor.
func New(aBoard *board.Board, anExecutor executor.Service, options ...Option) *Service {
	ret := &Service{
		board:             aBoard,
		executor:          anExecutor,
		token:             gate.NewToken(),
		governanceService: DefaultGovernanceService,
	}
	for _, option := range options {
		option(ret)
	}
	if ret.ledger == nil {
		ret.ledger = ledger.New()
	}
	if ret.journal == nil {
		ret.journal = jmem.New()
	}
	return ret
}

// Propose submits a new proposal and returns its id. Any current board
// member may propose; the target must be a service.method selector, though
// it need not resolve to a registered service until execution.
func (s *Service) Propose(ctx context.Context, caller party.ID, target string, value uint64, payload []byte) (id uint64, err error) {
	ctx, span := tracing.StartSpan(ctx, "engine.propose", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	if _, _, err = executor.SplitTarget(target); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.board.Authorized(caller) {
		return 0, fmt.Errorf("%v: %w", caller, board.ErrNotAuthorized)
	}
	if !s.effectivePolicy(ctx).IsAllowed(target) {
		return 0, fmt.Errorf("%v: %w", target, policy.ErrTargetBlocked)
	}

	created := s.ledger.Append(target, value, payload)
	s.record(ctx, &journal.Record{
		Topic:    journal.TopicProposed,
		Proposal: journal.ProposalID(created.ID),
		Party:    caller,
		Data:     map[string]interface{}{"target": target, "value": value},
	})
	return created.ID, nil
}

// Confirm records caller's confirmation of the proposal. Authorization is
// re-checked live: a party removed after proposing can no longer confirm.
func (s *Service) Confirm(ctx context.Context, caller party.ID, id uint64) (err error) {
	ctx, span := tracing.StartSpan(ctx, "engine.confirm", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.board.Authorized(caller) {
		return fmt.Errorf("%v: %w", caller, board.ErrNotAuthorized)
	}
	if err = s.ledger.Confirm(ctx, id, caller); err != nil {
		return err
	}
	s.record(ctx, &journal.Record{
		Topic:    journal.TopicConfirmed,
		Proposal: journal.ProposalID(id),
		Party:    caller,
	})
	return nil
}

// Revoke withdraws caller's confirmation while the proposal is still pending.
func (s *Service) Revoke(ctx context.Context, caller party.ID, id uint64) (err error) {
	ctx, span := tracing.StartSpan(ctx, "engine.revoke", "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.board.Authorized(caller) {
		return fmt.Errorf("%v: %w", caller, board.ErrNotAuthorized)
	}
	if err = s.ledger.Revoke(ctx, id, caller); err != nil {
		return err
	}
	s.record(ctx, &journal.Record{
		Topic:    journal.TopicRevoked,
		Proposal: journal.ProposalID(id),
		Party:    caller,
	})
	return nil
}

// Execute dispatches the proposal's action once its confirmation count has
// reached the board threshold. The proposal is marked executed before the
// dispatch, so an action that re-enters the engine observes it as already
// executed; the lock is not held across the dispatch, so re-entry does not
// deadlock. A failed dispatch rolls the executed flag back, leaving the
// proposal executable again once the failure cause is addressed.
func (s *Service) Execute(ctx context.Context, caller party.ID, id uint64) (output interface{}, err error) {
	ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("engine.execute %v", id), "INTERNAL")
	defer func() { tracing.EndSpan(span, err) }()

	s.mu.Lock()
	if !s.board.Authorized(caller) {
		s.mu.Unlock()
		return nil, fmt.Errorf("%v: %w", caller, board.ErrNotAuthorized)
	}
	target, err := s.ledger.Get(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if target.Executed() {
		s.mu.Unlock()
		return nil, fmt.Errorf("proposal %v: %w", id, ledger.ErrAlreadyExecuted)
	}
	required := s.board.Threshold()
	if target.Confirmations < required {
		s.mu.Unlock()
		return nil, fmt.Errorf("proposal %v has %v of %v confirmations: %w",
			id, target.Confirmations, required, ErrThresholdNotMet)
	}
	if err = s.ledger.MarkExecuted(id); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	dispatchCtx := s.dispatchContext(ctx, target)
	s.mu.Unlock()

	output, dispatchErr := s.executor.Dispatch(dispatchCtx, target)

	s.mu.Lock()
	defer s.mu.Unlock()
	if dispatchErr != nil {
		_ = s.ledger.UnmarkExecuted(id)
		s.record(ctx, &journal.Record{
			Topic:    journal.TopicExecutionFailed,
			Proposal: journal.ProposalID(id),
			Party:    caller,
			Data:     map[string]interface{}{"error": dispatchErr.Error()},
		})
		return nil, fmt.Errorf("proposal %v: %w: %w", id, ErrExecutionFailed, dispatchErr)
	}
	s.record(ctx, &journal.Record{
		Topic:    journal.TopicExecuted,
		Proposal: journal.ProposalID(id),
		Party:    caller,
	})
	return output, nil
}

// Deposit credits the engine balance. Anyone may deposit; a zero amount is
// a no-op.
func (s *Service) Deposit(ctx context.Context, from party.ID, amount uint64) error {
	if amount == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.balance += amount
	s.record(ctx, &journal.Record{
		Topic: journal.TopicDeposited,
		Party: from,
		Data:  map[string]interface{}{"amount": amount, "balance": s.balance},
	})
	return nil
}

// Journal exposes the engine's journal for record listing and subscription.
func (s *Service) Journal() journal.Service {
	return s.journal
}

// dispatchContext arms the context with the engine's gate token when the
// proposal targets the governance surface; every other dispatch runs without
// governance authority.
func (s *Service) dispatchContext(ctx context.Context, target *proposal.Proposal) context.Context {
	serviceName, _, err := executor.SplitTarget(target.Target)
	if err != nil || serviceName != s.governanceService {
		return ctx
	}
	return gate.Arm(ctx, s.token)
}

func (s *Service) effectivePolicy(ctx context.Context) *policy.Policy {
	if p := policy.FromContext(ctx); p != nil {
		return p
	}
	return s.policy
}

// record appends a journal record. Journal trouble is logged and swallowed,
// records are observability and never roll state back.
func (s *Service) record(ctx context.Context, record *journal.Record) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(ctx, record); err != nil {
		log.Printf("failed to append journal record %v: %v", record.Topic, err)
	}
}
