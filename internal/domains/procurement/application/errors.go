package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
)

var (
	// ErrAuthorization signals the actor may not perform the operation in the request's current state.
	ErrAuthorization = errors.New("actor is not allowed to perform this action")
	// ErrState signals the targeted slot is already decided or the request is terminal.
	ErrState = errors.New("request is not in a state that allows this action")
	// ErrInvalidRole signals a non-approver reached an approval code path.
	ErrInvalidRole = errors.New("actor role cannot decide an approval level")
	// ErrConflict signals a duplicate approval chain or purchase order.
	ErrConflict = errors.New("procurement record conflicts with existing state")
	// ErrDocumentGeneration signals the purchase order artifact could not be rendered or stored.
	ErrDocumentGeneration = errors.New("purchase order document generation failed")
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid procurement input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrAuthorization),
		errors.Is(err, ErrState),
		errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrDocumentGeneration),
		errors.Is(err, ErrInvalidInput):
		return err
	case errors.Is(err, domain.ErrSlotDecided),
		errors.Is(err, domain.ErrAlreadyFinalized),
		errors.Is(err, domain.ErrNotFullyApproved):
		return fmt.Errorf("%w: %w", ErrState, err)
	case errors.Is(err, ports.ErrDuplicate),
		errors.Is(err, domain.ErrIncompleteLedger),
		errors.Is(err, domain.ErrPOSequenceExhausted):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, domain.ErrEmptyTitle),
		errors.Is(err, domain.ErrNegativeAmount),
		errors.Is(err, domain.ErrEmptyItemName),
		errors.Is(err, domain.ErrInvalidItemQty),
		errors.Is(err, domain.ErrNegativeUnit),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidOrderStatus),
		errors.Is(err, domain.ErrMissingRequester),
		errors.Is(err, domain.ErrUnknownRole):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
