// Package journal records every state-changing operation of an engine as an
// ordered, append-only sequence of records. Records are observability, not
// state: the engine never reads them back to make a decision, and a journal
// failure never rolls an operation back.
package journal

import (
	"context"
	"strconv"
	"time"

	"github.com/viant/quorly/model/party"
	"github.com/viant/quorly/service/dao"
	"github.com/viant/quorly/service/dao/criteria"
	"github.com/viant/quorly/service/messaging"
)

// Topic classifies a record.
type Topic string

const (
	TopicProposed        Topic = "proposal.created"
	TopicConfirmed       Topic = "proposal.confirmed"
	TopicRevoked         Topic = "proposal.revoked"
	TopicExecuted        Topic = "proposal.executed"
	TopicExecutionFailed Topic = "proposal.execution_failed"

	TopicOwnerAdded       Topic = "board.owner_added"
	TopicOwnerRemoved     Topic = "board.owner_removed"
	TopicOwnerReplaced    Topic = "board.owner_replaced"
	TopicThresholdChanged Topic = "board.threshold_changed"

	TopicDeposited Topic = "vault.deposited"
)

// Record is a single journal entry. Seq, ID and CreatedAt are assigned by
// the journal on append; the emitting operation fills the rest.
type Record struct {
	Seq       uint64                 `json:"seq"`
	ID        string                 `json:"id"`
	Topic     Topic                  `json:"topic"`
	Proposal  *uint64                `json:"proposal,omitempty"`
	Party     party.ID               `json:"party,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Matches reports whether the record satisfies the supplied list parameters
// (see ByTopic and ByProposal).
func (r *Record) Matches(parameters []*dao.Parameter) bool {
	if !criteria.MatchString(criteria.ByTopic, string(r.Topic), parameters) {
		return false
	}
	if r.Proposal != nil {
		return criteria.MatchString(criteria.ByProposal, strconv.FormatUint(*r.Proposal, 10), parameters)
	}
	for _, parameter := range parameters {
		if parameter != nil && parameter.Name == criteria.ByProposal {
			return false
		}
	}
	return true
}

// Service appends and serves journal records. Implementations keep records
// in arrival order and expose a queue for push-style consumers.
type Service interface {
	// Append stamps the record with the next sequence number and stores it
	Append(ctx context.Context, record *Record) error

	// List returns records in sequence order, filtered by parameters
	List(ctx context.Context, parameters ...*dao.Parameter) ([]*Record, error)

	// Queue exposes the fan-out queue records are published to on append
	Queue() messaging.Queue[Record]
}

// ProposalID adapts a proposal id to the Record.Proposal field.
func ProposalID(id uint64) *uint64 {
	return &id
}

// ByTopic builds a list parameter matching records with the given topic.
func ByTopic(topic Topic) *dao.Parameter {
	return dao.NewParameter(criteria.ByTopic, string(topic))
}

// ByProposal builds a list parameter matching records about the given proposal.
func ByProposal(id uint64) *dao.Parameter {
	return dao.NewParameter(criteria.ByProposal, strconv.FormatUint(id, 10))
}
