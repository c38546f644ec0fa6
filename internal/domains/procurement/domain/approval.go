package domain

import (
	"errors"
	"fmt"
	"time"
)

// Level is one rung of the two-step approver chain.
type Level string

const (
	LevelOne Level = "LEVEL_1"
	LevelTwo Level = "LEVEL_2"
)

// Levels lists the chain in evaluation order.
var Levels = [...]Level{LevelOne, LevelTwo}

// ApprovalStatus is the outcome held by a single ledger slot.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

var (
	ErrSlotDecided      = errors.New("approval slot already decided")
	ErrInvalidOutcome   = errors.New("approval outcome must be APPROVED or REJECTED")
	ErrUnknownLevel     = errors.New("approval level is unknown")
	ErrIncompleteLedger = errors.New("approval ledger must hold exactly one slot per level")
)

// Approval is a ledger slot: one approver's decision on one level.
type Approval struct {
	Level      Level
	Status     ApprovalStatus
	ApproverID string
	Comment    string
	DecidedAt  *time.Time
	CreatedAt  time.Time
}

// Decided reports whether the slot reached a terminal outcome.
func (a Approval) Decided() bool {
	return a.Status != ApprovalPending
}

// Ledger holds the approval slots of a purchase request, one per level.
type Ledger struct {
	slots [len(Levels)]Approval
}

// NewLedger opens a chain with every level pending.
func NewLedger(now time.Time) Ledger {
	var l Ledger
	for i, level := range Levels {
		l.slots[i] = Approval{Level: level, Status: ApprovalPending, CreatedAt: now}
	}
	return l
}

// RestoreLedger rebuilds a ledger from persisted slots.
func RestoreLedger(approvals []Approval) (Ledger, error) {
	var l Ledger
	seen := map[Level]bool{}
	for _, a := range approvals {
		idx, err := levelIndex(a.Level)
		if err != nil {
			return Ledger{}, err
		}
		if seen[a.Level] {
			return Ledger{}, fmt.Errorf("%w: duplicate %s", ErrIncompleteLedger, a.Level)
		}
		seen[a.Level] = true
		l.slots[idx] = cloneApproval(a)
	}
	if len(seen) != len(Levels) {
		return Ledger{}, ErrIncompleteLedger
	}
	return l, nil
}

// Slot returns a copy of the slot for level.
func (l Ledger) Slot(level Level) (Approval, error) {
	idx, err := levelIndex(level)
	if err != nil {
		return Approval{}, err
	}
	return cloneApproval(l.slots[idx]), nil
}

// Approvals returns the slots in evaluation order.
func (l Ledger) Approvals() []Approval {
	out := make([]Approval, 0, len(l.slots))
	for _, a := range l.slots {
		out = append(out, cloneApproval(a))
	}
	return out
}

// Record stores a terminal decision on a pending slot. A slot can be decided once.
func (l *Ledger) Record(level Level, approverID string, outcome ApprovalStatus, comment string, now time.Time) (Approval, error) {
	if outcome != ApprovalApproved && outcome != ApprovalRejected {
		return Approval{}, ErrInvalidOutcome
	}
	idx, err := levelIndex(level)
	if err != nil {
		return Approval{}, err
	}
	slot := &l.slots[idx]
	if slot.Decided() {
		return Approval{}, fmt.Errorf("%w: %s is %s", ErrSlotDecided, level, slot.Status)
	}
	decidedAt := now
	slot.Status = outcome
	slot.ApproverID = approverID
	slot.Comment = comment
	slot.DecidedAt = &decidedAt
	return cloneApproval(*slot), nil
}

// Status derives the aggregate request status from the slots alone. Full
// approval surfaces as StatusApprovedLevel2; only finalization promotes it.
func (l Ledger) Status() RequestStatus {
	for _, a := range l.slots {
		if a.Status == ApprovalRejected {
			return StatusRejected
		}
	}
	first, second := l.slots[0], l.slots[1]
	switch {
	case first.Status != ApprovalApproved:
		return StatusPending
	case second.Status != ApprovalApproved:
		return StatusApprovedLevel1
	default:
		return StatusApprovedLevel2
	}
}

// ApprovedBy reports whether approverID signed an approved slot.
func (l Ledger) ApprovedBy(approverID string) bool {
	if approverID == "" {
		return false
	}
	for _, a := range l.slots {
		if a.Status == ApprovalApproved && a.ApproverID == approverID {
			return true
		}
	}
	return false
}

func levelIndex(level Level) (int, error) {
	switch level {
	case LevelOne:
		return 0, nil
	case LevelTwo:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
	}
}

func cloneApproval(a Approval) Approval {
	if a.DecidedAt != nil {
		t := *a.DecidedAt
		a.DecidedAt = &t
	}
	return a
}
