package engine

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/quorly/extension"
	"github.com/viant/quorly/model/party"
	"github.com/viant/quorly/model/types"
	"github.com/viant/quorly/policy"
	"github.com/viant/quorly/service/action/governance"
	"github.com/viant/quorly/service/board"
	"github.com/viant/quorly/service/executor"
	"github.com/viant/quorly/service/journal"
	"github.com/viant/quorly/service/ledger"
)

// countService is the dispatch target used across the engine tests. Every
// successful call bumps a counter; the first `failures` calls fail instead,
// which models an action whose external effect is transiently broken.
type countService struct {
	mu       sync.Mutex
	calls    int
	failures int
}

type countInput struct {
	Note string `json:"note"`
}

type countOutput struct {
	Calls    int    `json:"calls"`
	Note     string `json:"note"`
	Proposal uint64 `json:"proposal"`
	Value    uint64 `json:"value"`
}

func (s *countService) Name() string { return "count" }

func (s *countService) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:   "incr",
			Input:  reflect.TypeOf(&countInput{}),
			Output: reflect.TypeOf(&countOutput{}),
		},
	}
}

func (s *countService) Method(name string) (types.Executable, error) {
	if strings.ToLower(name) != "incr" {
		return nil, types.NewMethodNotFoundError(name)
	}
	return s.incr, nil
}

func (s *countService) incr(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*countInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*countOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return fmt.Errorf("transient failure")
	}
	s.calls++
	output.Calls = s.calls
	output.Note = input.Note
	if p := executor.ProposalFromContext(ctx); p != nil {
		output.Proposal = p.ID
		output.Value = p.Value
	}
	return nil
}

func (s *countService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// testRig wires a board, an action registry with the count and governance
// services, an executor and an engine the way the root service does.
type testRig struct {
	engine *Service
	count  *countService
}

func newTestRig(t *testing.T, owners []party.ID, required int, options ...Option) *testRig {
	t.Helper()
	aBoard, err := board.New(owners, required)
	require.NoError(t, err)
	actions := extension.NewActions()
	count := &countService{}
	actions.Register(count)
	eng := New(aBoard, executor.NewService(actions), options...)
	actions.Register(governance.New(eng))
	return &testRig{engine: eng, count: count}
}

func (r *testRig) propose(t *testing.T, caller party.ID, target, payload string) uint64 {
	t.Helper()
	id, err := r.engine.Propose(context.Background(), caller, target, 0, []byte(payload))
	require.NoError(t, err)
	return id
}

func (r *testRig) confirm(t *testing.T, id uint64, callers ...party.ID) {
	t.Helper()
	for _, caller := range callers {
		require.NoError(t, r.engine.Confirm(context.Background(), caller, id))
	}
}

func (r *testRig) records(t *testing.T) []*journal.Record {
	t.Helper()
	records, err := r.engine.Journal().List(context.Background())
	require.NoError(t, err)
	return records
}

func topicsOf(records []*journal.Record) []journal.Topic {
	out := make([]journal.Topic, 0, len(records))
	for _, record := range records {
		out = append(out, record.Topic)
	}
	return out
}

func TestServiceLifecycle(t *testing.T) {
	rig := newTestRig(t, []party.ID{"alice", "bob", "carol"}, 2)
	ctx := context.Background()

	id := rig.propose(t, "alice", "count.incr", `{"note":"hello"}`)
	assert.EqualValues(t, 0, id)
	assert.EqualValues(t, 1, rig.engine.ProposalCount())

	met, err := rig.engine.ThresholdMet(id)
	require.NoError(t, err)
	assert.False(t, met)

	rig.confirm(t, id, "alice", "bob")
	met, err = rig.engine.ThresholdMet(id)
	require.NoError(t, err)
	assert.True(t, met)

	confirming, err := rig.engine.Confirmations(ctx, id)
	require.NoError(t, err)
	assert.EqualValues(t, []party.ID{"alice", "bob"}, confirming)

	output, err := rig.engine.Execute(ctx, "alice", id)
	require.NoError(t, err)
	result, ok := output.(*countOutput)
	require.True(t, ok)
	assert.Equal(t, 1, result.Calls)
	assert.Equal(t, "hello", result.Note)
	assert.EqualValues(t, id, result.Proposal)

	stored, err := rig.engine.Proposal(id)
	require.NoError(t, err)
	assert.True(t, stored.Executed())
	assert.NotNil(t, stored.ExecutedAt)

	records := rig.records(t)
	assert.EqualValues(t, []journal.Topic{
		journal.TopicProposed,
		journal.TopicConfirmed,
		journal.TopicConfirmed,
		journal.TopicExecuted,
	}, topicsOf(records))
}

func TestServiceExecuteBelowThreshold(t *testing.T) {
	rig := newTestRig(t, []party.ID{"alice", "bob"}, 2)
	ctx := context.Background()

	id := rig.propose(t, "alice", "count.incr", `{}`)
	rig.confirm(t, id, "alice")

	_, err := rig.engine.Execute(ctx, "alice", id)
	assert.True(t, errors.Is(err, ErrThresholdNotMet), "unexpected error: %v", err)
	assert.Equal(t, 0, rig.count.callCount())

	stored, err := rig.engine.Proposal(id)
	require.NoError(t, err)
	assert.False(t, stored.Executed())

	// the shortfall is recoverable: one more confirmation and the same
	// execute call succeeds
	rig.confirm(t, id, "bob")
	_, err = rig.engine.Execute(ctx, "bob", id)
	require.NoError(t, err)
	assert.Equal(t, 1, rig.count.callCount())
}

func TestServiceRevokeReopensShortfall(t *testing.T) {
	rig := newTestRig(t, []party.ID{"alice", "bob", "carol"}, 2)
	ctx := context.Background()

	id := rig.propose(t, "alice", "count.incr", `{}`)
	rig.confirm(t, id, "alice", "bob")
	require.NoError(t, rig.engine.Revoke(ctx, "bob", id))

	_, err := rig.engine.Execute(ctx, "alice", id)
	assert.True(t, errors.Is(err, ErrThresholdNotMet))

	confirmed, err := rig.engine.Confirmed(ctx, id, "bob")
	require.NoError(t, err)
	assert.False(t, confirmed)

	rig.confirm(t, id, "carol")
	_, err = rig.engine.Execute(ctx, "alice", id)
	require.NoError(t, err)
}

func TestServiceConfirmationErrors(t *testing.T) {
	type testCase struct {
		name     string
		prepare  func(t *testing.T, rig *testRig) uint64
		caller   party.ID
		act      func(rig *testRig, caller party.ID, id uint64) error
		expected error
	}

	confirm := func(rig *testRig, caller party.ID, id uint64) error {
		return rig.engine.Confirm(context.Background(), caller, id)
	}
	revoke := func(rig *testRig, caller party.ID, id uint64) error {
		return rig.engine.Revoke(context.Background(), caller, id)
	}

	cases := []testCase{
		{
			name: "double confirm",
			prepare: func(t *testing.T, rig *testRig) uint64 {
				id := rig.propose(t, "alice", "count.incr", `{}`)
				rig.confirm(t, id, "alice")
				return id
			},
			caller:   "alice",
			act:      confirm,
			expected: ledger.ErrAlreadyConfirmed,
		},
		{
			name: "confirm unknown proposal",
			prepare: func(t *testing.T, rig *testRig) uint64 {
				return 42
			},
			caller:   "alice",
			act:      confirm,
			expected: ledger.ErrNotFound,
		},
		{
			name: "confirm by stranger",
			prepare: func(t *testing.T, rig *testRig) uint64 {
				return rig.propose(t, "alice", "count.incr", `{}`)
			},
			caller:   "mallory",
			act:      confirm,
			expected: board.ErrNotAuthorized,
		},
		{
			name: "confirm after execute",
			prepare: func(t *testing.T, rig *testRig) uint64 {
				id := rig.propose(t, "alice", "count.incr", `{}`)
				rig.confirm(t, id, "alice")
				_, err := rig.engine.Execute(context.Background(), "alice", id)
				require.NoError(t, err)
				return id
			},
			caller:   "bob",
			act:      confirm,
			expected: ledger.ErrAlreadyExecuted,
		},
		{
			name: "revoke without confirmation",
			prepare: func(t *testing.T, rig *testRig) uint64 {
				return rig.propose(t, "alice", "count.incr", `{}`)
			},
			caller:   "bob",
			act:      revoke,
			expected: ledger.ErrNotConfirmed,
		},
		{
			name: "revoke after execute",
			prepare: func(t *testing.T, rig *testRig) uint64 {
				id := rig.propose(t, "alice", "count.incr", `{}`)
				rig.confirm(t, id, "alice")
				_, err := rig.engine.Execute(context.Background(), "alice", id)
				require.NoError(t, err)
				return id
			},
			caller:   "alice",
			act:      revoke,
			expected: ledger.ErrAlreadyExecuted,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rig := newTestRig(t, []party.ID{"alice", "bob"}, 1)
			id := tc.prepare(t, rig)
			err := tc.act(rig, tc.caller, id)
			assert.True(t, errors.Is(err, tc.expected), "got %v, want %v", err, tc.expected)
		})
	}
}

func TestServiceProposeValidation(t *testing.T) {
	rig := newTestRig(t, []party.ID{"alice"}, 1)
	ctx := context.Background()

	_, err := rig.engine.Propose(ctx, "alice", "noservice", 0, nil)
	assert.True(t, errors.Is(err, executor.ErrInvalidTarget))

	_, err = rig.engine.Propose(ctx, "mallory", "count.incr", 0, nil)
	assert.True(t, errors.Is(err, board.ErrNotAuthorized))
}

func TestServicePolicy(t *testing.T) {
	blocked := &policy.Policy{BlockList: []string{"count.incr"}}
	rig := newTestRig(t, []party.ID{"alice"}, 1, WithPolicy(blocked))
	ctx := context.Background()

	_, err := rig.engine.Propose(ctx, "alice", "count.incr", 0, nil)
	assert.True(t, errors.Is(err, policy.ErrTargetBlocked))

	// a context policy overrides the engine default
	relaxed := policy.WithPolicy(ctx, &policy.Policy{})
	id, err := rig.engine.Propose(relaxed, "alice", "count.incr", 0, []byte(`{}`))
	require.NoError(t, err)
	rig.confirm(t, id, "alice")
	_, err = rig.engine.Execute(ctx, "alice", id)
	require.NoError(t, err)
}

func TestServiceExecutionFailure(t *testing.T) {
	rig := newTestRig(t, []party.ID{"alice", "bob"}, 2)
	rig.count.failures = 1
	ctx := context.Background()

	id := rig.propose(t, "alice", "count.incr", `{"note":"retry me"}`)
	rig.confirm(t, id, "alice", "bob")

	_, err := rig.engine.Execute(ctx, "alice", id)
	assert.True(t, errors.Is(err, ErrExecutionFailed), "unexpected error: %v", err)

	// the failed dispatch rolled the executed flag back with all
	// confirmations intact
	stored, err := rig.engine.Proposal(id)
	require.NoError(t, err)
	assert.False(t, stored.Executed())
	assert.Equal(t, 2, stored.Confirmations)

	output, err := rig.engine.Execute(ctx, "bob", id)
	require.NoError(t, err)
	assert.Equal(t, 1, output.(*countOutput).Calls)

	records := rig.records(t)
	assert.EqualValues(t, []journal.Topic{
		journal.TopicProposed,
		journal.TopicConfirmed,
		journal.TopicConfirmed,
		journal.TopicExecutionFailed,
		journal.TopicExecuted,
	}, topicsOf(records))
}

func TestServiceExecuteTwice(t *testing.T) {
	rig := newTestRig(t, []party.ID{"alice"}, 1)
	ctx := context.Background()

	id := rig.propose(t, "alice", "count.incr", `{}`)
	rig.confirm(t, id, "alice")
	_, err := rig.engine.Execute(ctx, "alice", id)
	require.NoError(t, err)

	_, err = rig.engine.Execute(ctx, "alice", id)
	assert.True(t, errors.Is(err, ledger.ErrAlreadyExecuted))
	assert.Equal(t, 1, rig.count.callCount())
}

// reentrantService re-enters the engine from inside a dispatch, as a
// misbehaving or cyclic action would.
type reentrantService struct {
	engine *Service
	caller party.ID

	mu         sync.Mutex
	reentryErr error
}

type reentrantInput struct{}

type reentrantOutput struct {
	Done bool `json:"done"`
}

func (s *reentrantService) Name() string { return "reentrant" }

func (s *reentrantService) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:   "rerun",
			Input:  reflect.TypeOf(&reentrantInput{}),
			Output: reflect.TypeOf(&reentrantOutput{}),
		},
	}
}

func (s *reentrantService) Method(name string) (types.Executable, error) {
	if strings.ToLower(name) != "rerun" {
		return nil, types.NewMethodNotFoundError(name)
	}
	return s.rerun, nil
}

func (s *reentrantService) rerun(ctx context.Context, in, out interface{}) error {
	p := executor.ProposalFromContext(ctx)
	if p == nil {
		return fmt.Errorf("no proposal on context")
	}
	_, err := s.engine.Execute(ctx, s.caller, p.ID)
	s.mu.Lock()
	s.reentryErr = err
	s.mu.Unlock()
	if output, ok := out.(*reentrantOutput); ok {
		output.Done = true
	}
	return nil
}

func TestServiceReentrantExecute(t *testing.T) {
	aBoard, err := board.New([]party.ID{"alice"}, 1)
	require.NoError(t, err)
	actions := extension.NewActions()
	eng := New(aBoard, executor.NewService(actions))
	reentrant := &reentrantService{engine: eng, caller: "alice"}
	actions.Register(reentrant)
	ctx := context.Background()

	id, err := eng.Propose(ctx, "alice", "reentrant.rerun", 0, []byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, eng.Confirm(ctx, "alice", id))

	// must terminate: the engine does not hold its lock across the dispatch
	output, err := eng.Execute(ctx, "alice", id)
	require.NoError(t, err)
	assert.True(t, output.(*reentrantOutput).Done)

	// the re-entrant call observed the proposal as already executed
	reentrant.mu.Lock()
	defer reentrant.mu.Unlock()
	assert.True(t, errors.Is(reentrant.reentryErr, ledger.ErrAlreadyExecuted),
		"unexpected re-entry error: %v", reentrant.reentryErr)
}

func TestServiceConcurrentConfirms(t *testing.T) {
	owners := []party.ID{"p0", "p1", "p2", "p3", "p4", "p5", "p6", "p7"}
	rig := newTestRig(t, owners, len(owners))
	ctx := context.Background()

	id := rig.propose(t, "p0", "count.incr", `{}`)

	var waitGroup sync.WaitGroup
	for _, owner := range owners {
		waitGroup.Add(1)
		go func(owner party.ID) {
			defer waitGroup.Done()
			assert.NoError(t, rig.engine.Confirm(ctx, owner, id))
		}(owner)
	}
	waitGroup.Wait()

	stored, err := rig.engine.Proposal(id)
	require.NoError(t, err)
	assert.Equal(t, len(owners), stored.Confirmations)

	_, err = rig.engine.Execute(ctx, "p0", id)
	require.NoError(t, err)
}

func TestServiceConcurrentExecuteOnce(t *testing.T) {
	rig := newTestRig(t, []party.ID{"alice", "bob"}, 1)
	ctx := context.Background()

	id := rig.propose(t, "alice", "count.incr", `{}`)
	rig.confirm(t, id, "alice")

	var waitGroup sync.WaitGroup
	outcomes := make(chan error, 8)
	for i := 0; i < 8; i++ {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			_, err := rig.engine.Execute(ctx, "bob", id)
			outcomes <- err
		}()
	}
	waitGroup.Wait()
	close(outcomes)

	succeeded := 0
	for err := range outcomes {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, ledger.ErrAlreadyExecuted), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rig.count.callCount())
}

func TestServiceDeposit(t *testing.T) {
	rig := newTestRig(t, []party.ID{"alice"}, 1)
	ctx := context.Background()

	require.NoError(t, rig.engine.Deposit(ctx, "outsider", 100))
	require.NoError(t, rig.engine.Deposit(ctx, "alice", 50))
	require.NoError(t, rig.engine.Deposit(ctx, "alice", 0))
	assert.EqualValues(t, 150, rig.engine.Balance())

	records := rig.records(t)
	require.Equal(t, 2, len(records))
	assert.Equal(t, journal.TopicDeposited, records[0].Topic)
	assert.EqualValues(t, "outsider", records[0].Party)
	assert.EqualValues(t, 100, records[0].Data["amount"])
	assert.EqualValues(t, 150, records[1].Data["balance"])
}

func TestServiceProposalValue(t *testing.T) {
	rig := newTestRig(t, []party.ID{"alice"}, 1)
	ctx := context.Background()
	require.NoError(t, rig.engine.Deposit(ctx, "funder", 500))

	id, err := rig.engine.Propose(ctx, "alice", "count.incr", 75, []byte(`{}`))
	require.NoError(t, err)
	rig.confirm(t, id, "alice")

	output, err := rig.engine.Execute(ctx, "alice", id)
	require.NoError(t, err)
	assert.EqualValues(t, 75, output.(*countOutput).Value)
}

func TestServiceProposalIDs(t *testing.T) {
	rig := newTestRig(t, []party.ID{"alice"}, 1)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		rig.propose(t, "alice", "count.incr", `{}`)
	}
	for _, id := range []uint64{1, 3} {
		rig.confirm(t, id, "alice")
		_, err := rig.engine.Execute(ctx, "alice", id)
		require.NoError(t, err)
	}

	assert.EqualValues(t, []uint64{0, 2}, rig.engine.ProposalIDs(0, 4, true, false))
	assert.EqualValues(t, []uint64{1, 3}, rig.engine.ProposalIDs(0, 4, false, true))
	assert.EqualValues(t, []uint64{0, 1, 2, 3}, rig.engine.ProposalIDs(0, 4, true, true))
	assert.EqualValues(t, []uint64{1}, rig.engine.ProposalIDs(1, 2, true, true))
}

func TestServiceJournalByProposal(t *testing.T) {
	rig := newTestRig(t, []party.ID{"alice"}, 1)
	ctx := context.Background()

	first := rig.propose(t, "alice", "count.incr", `{}`)
	second := rig.propose(t, "alice", "count.incr", `{}`)
	rig.confirm(t, first, "alice")
	rig.confirm(t, second, "alice")
	_, err := rig.engine.Execute(ctx, "alice", second)
	require.NoError(t, err)

	records, err := rig.engine.Journal().List(ctx, journal.ByProposal(second))
	require.NoError(t, err)
	assert.EqualValues(t, []journal.Topic{
		journal.TopicProposed,
		journal.TopicConfirmed,
		journal.TopicExecuted,
	}, topicsOf(records))

	records, err = rig.engine.Journal().List(ctx, journal.ByTopic(journal.TopicConfirmed))
	require.NoError(t, err)
	assert.Equal(t, 2, len(records))
}
