package quorly

import (
	"context"
	"time"

	"github.com/viant/quorly/model/party"
	"github.com/viant/quorly/model/proposal"
)

// DecisionFunc decides whether a member confirms the pending proposal.
type DecisionFunc func(member party.ID, p *proposal.Proposal) bool

// AutoConfirmer starts a goroutine that polls pending proposals and confirms
// them on behalf of members whenever fn approves. It returns stop() - call it
// (or cancel ctx) to exit. Confirmation errors are ignored; a member who
// already confirmed, or lost board membership, simply contributes nothing.
func AutoConfirmer(ctx context.Context,
	svc *Service,
	members []party.ID,
	fn DecisionFunc,
	interval time.Duration) (stop func()) {

	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				ids := svc.ProposalIDs(0, svc.ProposalCount(), true, false)
				for _, id := range ids {
					target, err := svc.Proposal(id)
					if err != nil {
						continue
					}
					for _, member := range members {
						if confirmed, _ := svc.Confirmed(ctx, id, member); confirmed {
							continue
						}
						if !fn(member, target) {
							continue
						}
						_ = svc.Confirm(ctx, member, id)
					}
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoConfirm automatically confirms every pending proposal on behalf of the
// supplied members.
func AutoConfirm(ctx context.Context,
	svc *Service,
	members []party.ID,
	interval time.Duration) func() {
	return AutoConfirmer(ctx, svc, members,
		func(party.ID, *proposal.Proposal) bool { return true }, interval)
}
