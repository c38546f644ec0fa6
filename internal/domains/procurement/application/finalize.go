package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
)

// finalize mints the purchase order of a fully approved request inside the
// caller's unit of work and links it back to the request.
func (s *Service) finalize(ctx context.Context, repo ports.Repository, request *domain.PurchaseRequest, actor domain.Actor, now time.Time) (*domain.PurchaseOrder, error) {
	day := domain.PONumberDay(now)
	seq, err := repo.NextPOSequence(ctx, day)
	if err != nil {
		return nil, err
	}
	number, err := domain.FormatPONumber(day, seq)
	if err != nil {
		return nil, err
	}
	order, err := domain.NewPurchaseOrder(s.newID(), number, request, actor.ID, now)
	if err != nil {
		return nil, err
	}
	if err := repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	request.MarkFinalized(order.ID, now)
	return order, nil
}

// followUpDocument runs after commit. With a scheduler the render becomes a
// retryable task; otherwise it is attempted inline. Failures never reach the
// caller as errors; the returned flag reports them.
func (s *Service) followUpDocument(ctx context.Context, order *domain.PurchaseOrder) (*domain.PurchaseOrder, bool) {
	if s.scheduler != nil {
		if err := s.scheduler.ScheduleDocument(ctx, order.ID); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to schedule purchase order document",
				slog.String("po.id", order.ID), slog.String("po.number", order.Number), slog.String("error", err.Error()))
			return order, true
		}
		return order, false
	}
	generated, err := s.generateDocument(ctx, order.ID)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "purchase order document generation failed",
			slog.String("po.id", order.ID), slog.String("po.number", order.Number), slog.String("error", err.Error()))
		return order, true
	}
	return generated, false
}
