package application

import (
	"context"
	"fmt"
	"time"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
)

// createChain persists the request's freshly opened ledger.
func createChain(ctx context.Context, repo ports.Repository, request *domain.PurchaseRequest) error {
	approvals := request.Ledger.Approvals()
	for _, a := range approvals {
		if a.Decided() {
			return fmt.Errorf("%w: %s slot is already %s", ErrConflict, a.Level, a.Status)
		}
	}
	return repo.CreateApprovalChain(ctx, request.ID, approvals)
}

// recordDecision decides the slot of level in memory and persists it with a guarded write.
func recordDecision(ctx context.Context, repo ports.Repository, request *domain.PurchaseRequest, level domain.Level, actor domain.Actor, outcome domain.ApprovalStatus, comment string, now time.Time) (domain.Approval, error) {
	approval, err := request.Ledger.Record(level, actor.ID, outcome, comment, now)
	if err != nil {
		return domain.Approval{}, err
	}
	if err := repo.RecordApproval(ctx, request.ID, approval); err != nil {
		return domain.Approval{}, err
	}
	return approval, nil
}

// decisionLevel resolves which slot actor may decide. A decided slot for the
// actor's own level or a terminal request wins over eligibility so that
// repeated decisions surface as state errors.
func decisionLevel(request *domain.PurchaseRequest, actor domain.Actor, outcome domain.ApprovalStatus) (domain.Level, error) {
	if level, ok := actor.Role.ApprovalLevel(); ok {
		slot, err := request.Ledger.Slot(level)
		if err != nil {
			return "", err
		}
		if slot.Decided() {
			return "", fmt.Errorf("%w: %s already %s", ErrState, level, slot.Status)
		}
		if status := request.Status(); status.Terminal() {
			return "", fmt.Errorf("%w: request is %s", ErrState, status)
		}
	}
	var eligible bool
	switch outcome {
	case domain.ApprovalApproved:
		eligible = request.CanApprove(actor)
	case domain.ApprovalRejected:
		eligible = request.CanReject(actor)
	default:
		return "", domain.ErrInvalidOutcome
	}
	if !eligible {
		return "", fmt.Errorf("%w: %s cannot %s a %s request", ErrAuthorization, actor.Role, verb(outcome), request.Status())
	}
	level, ok := actor.Role.ApprovalLevel()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidRole, actor.Role)
	}
	return level, nil
}

func verb(outcome domain.ApprovalStatus) string {
	if outcome == domain.ApprovalRejected {
		return "reject"
	}
	return "approve"
}
