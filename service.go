package quorly

import (
	"context"

	"github.com/viant/quorly/extension"
	"github.com/viant/quorly/model/party"
	"github.com/viant/quorly/model/proposal"
	"github.com/viant/quorly/model/types"
	"github.com/viant/quorly/policy"
	"github.com/viant/quorly/service/action/console"
	"github.com/viant/quorly/service/action/governance"
	"github.com/viant/quorly/service/action/nop"
	"github.com/viant/quorly/service/action/printer"
	aproposal "github.com/viant/quorly/service/action/proposal"
	aexec "github.com/viant/quorly/service/action/system/exec"
	apatch "github.com/viant/quorly/service/action/system/patch"
	asecret "github.com/viant/quorly/service/action/system/secret"
	astorage "github.com/viant/quorly/service/action/system/storage"
	"github.com/viant/quorly/service/board"
	"github.com/viant/quorly/service/engine"
	"github.com/viant/quorly/service/event"
	"github.com/viant/quorly/service/executor"
	"github.com/viant/quorly/service/journal"
	jfs "github.com/viant/quorly/service/journal/fs"
	jmemory "github.com/viant/quorly/service/journal/memory"
	qmem "github.com/viant/quorly/service/messaging/memory"
	"github.com/viant/x"
)

// Service is the high-level facade: one authorization engine wired to the
// built-in action catalogue, a journal and an action registry open for
// extension services.
type Service struct {
	config            *Config
	engine            *engine.Service
	actions           *extension.Actions
	executor          executor.Service
	journal           journal.Service
	events            *event.Service
	exec              *aexec.Service
	policy            *policy.Policy
	governanceService string
	extensionTypes    []*x.Type
	extensionServices []types.Service
	executorOptions   []executor.Option
}

// New creates a fully wired service. The board must be seeded through
// WithBoard, WithConfig or a loaded Config; an engine without owners is
// refused.
func New(options ...Option) (*Service, error) {
	ret := &Service{
		config:            DefaultConfig(),
		governanceService: engine.DefaultGovernanceService,
	}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) init() error {
	if err := s.config.Validate(); err != nil {
		return err
	}
	aBoard, err := board.New(party.IDs(s.config.Board.Owners), s.config.Board.Required)
	if err != nil {
		return err
	}
	if err := s.ensureJournal(); err != nil {
		return err
	}
	s.events = event.New(s.journal.Queue())
	s.actions = extension.NewActions(s.extensionTypes...)
	s.executor = executor.NewService(s.actions, s.executorOptions...)

	engineOptions := []engine.Option{engine.WithJournal(s.journal)}
	if s.policy != nil {
		engineOptions = append(engineOptions, engine.WithPolicy(s.policy))
	}
	if s.governanceService != engine.DefaultGovernanceService {
		engineOptions = append(engineOptions, engine.WithGovernanceService(s.governanceService))
	}
	s.engine = engine.New(aBoard, s.executor, engineOptions...)

	s.exec = aexec.New()
	s.actions.Register(s.governanceAction())
	s.actions.Register(nop.New())
	s.actions.Register(printer.New())
	s.actions.Register(console.New())
	s.actions.Register(aproposal.New(s.engine))
	s.actions.Register(astorage.New())
	s.actions.Register(s.exec)
	s.actions.Register(asecret.New())
	s.actions.Register(apatch.New())
	for _, service := range s.extensionServices {
		s.actions.Register(service)
	}
	return nil
}

func (s *Service) ensureJournal() error {
	if s.journal != nil {
		return nil
	}
	switch s.config.Journal.Vendor {
	case "", JournalVendorMemory:
		s.journal = jmemory.New(jmemory.WithQueueConfig(qmem.Config{
			QueueBuffer: s.config.Queue.Buffer,
			MaxRetries:  s.config.Queue.MaxRetries,
			RetryDelay:  s.config.Queue.RetryDelay,
			DeadLetter:  s.config.Queue.DeadLetter,
		}))
	case JournalVendorFS:
		fsJournal, err := jfs.New(s.config.Journal.BaseURL)
		if err != nil {
			return err
		}
		s.journal = fsJournal
	}
	return nil
}

// namedService registers an action service under an alternate name.
type namedService struct {
	types.Service
	name string
}

func (s namedService) Name() string { return s.name }

// governanceAction returns the built-in governance action, renamed when the
// governance service name was overridden so the gate and the registry agree.
func (s *Service) governanceAction() types.Service {
	action := governance.New(s.engine)
	if s.governanceService == engine.DefaultGovernanceService {
		return action
	}
	return namedService{Service: action, name: s.governanceService}
}

// Propose submits a proposal on behalf of caller and returns its id.
func (s *Service) Propose(ctx context.Context, caller party.ID, target string, value uint64, payload []byte) (uint64, error) {
	return s.engine.Propose(ctx, caller, target, value, payload)
}

// Confirm records caller's confirmation of the proposal.
func (s *Service) Confirm(ctx context.Context, caller party.ID, id uint64) error {
	return s.engine.Confirm(ctx, caller, id)
}

// Revoke withdraws caller's confirmation of the proposal.
func (s *Service) Revoke(ctx context.Context, caller party.ID, id uint64) error {
	return s.engine.Revoke(ctx, caller, id)
}

// Execute dispatches the proposal's action once the threshold is met and
// returns the action output.
func (s *Service) Execute(ctx context.Context, caller party.ID, id uint64) (interface{}, error) {
	return s.engine.Execute(ctx, caller, id)
}

// Deposit credits the engine balance; no authorization is required.
func (s *Service) Deposit(ctx context.Context, from party.ID, amount uint64) error {
	return s.engine.Deposit(ctx, from, amount)
}

// Owners returns the current board members.
func (s *Service) Owners() []party.ID { return s.engine.Owners() }

// Threshold returns the number of confirmations required to execute.
func (s *Service) Threshold() int { return s.engine.Threshold() }

// Authorized reports whether id is a current board member.
func (s *Service) Authorized(id party.ID) bool { return s.engine.Authorized(id) }

// Balance returns the deposited balance.
func (s *Service) Balance() uint64 { return s.engine.Balance() }

// ProposalCount returns the number of proposals ever created.
func (s *Service) ProposalCount() uint64 { return s.engine.ProposalCount() }

// Proposal returns a copy of the proposal with the given id.
func (s *Service) Proposal(id uint64) (*proposal.Proposal, error) {
	return s.engine.Proposal(id)
}

// ThresholdMet reports whether the proposal holds enough confirmations to
// execute.
func (s *Service) ThresholdMet(id uint64) (bool, error) {
	return s.engine.ThresholdMet(id)
}

// Confirmed reports whether member currently confirms the proposal.
func (s *Service) Confirmed(ctx context.Context, id uint64, member party.ID) (bool, error) {
	return s.engine.Confirmed(ctx, id, member)
}

// Confirmations returns the parties currently confirming the proposal.
func (s *Service) Confirmations(ctx context.Context, id uint64) ([]party.ID, error) {
	return s.engine.Confirmations(ctx, id)
}

// ProposalIDs returns ids of proposals matching the pending/executed filter,
// windowed to positions [from, to) of the filtered sequence.
func (s *Service) ProposalIDs(from, to uint64, pending, executed bool) []uint64 {
	return s.engine.ProposalIDs(from, to, pending, executed)
}

// Engine exposes the underlying engine, e.g. to wire a custom action that
// needs governance views.
func (s *Service) Engine() *engine.Service { return s.engine }

// Actions exposes the action registry.
func (s *Service) Actions() *extension.Actions { return s.actions }

// Journal exposes the journal for record listing and subscription.
func (s *Service) Journal() journal.Service { return s.journal }

// Subscribe registers handler for journal records with the given topics; no
// topics subscribes to every record. The first subscription takes over
// consumption of the journal queue.
func (s *Service) Subscribe(handler event.Handler, topics ...journal.Topic) error {
	return s.events.Subscribe(handler, topics...)
}

// RegisterExtensionTypes registers payload types after construction.
func (s *Service) RegisterExtensionTypes(types ...*x.Type) {
	for i := range types {
		s.actions.Types().Register(types[i])
	}
}

// RegisterExtensionServices registers action services after construction.
func (s *Service) RegisterExtensionServices(services ...types.Service) {
	for i := range services {
		s.actions.Register(services[i])
	}
}

// Close stops journal record delivery and releases resources held by
// built-in actions, such as open shell sessions.
func (s *Service) Close(ctx context.Context) error {
	if s.events != nil {
		s.events.Stop()
	}
	if s.exec != nil {
		return s.exec.Close(ctx)
	}
	return nil
}
