package ports

import (
	"context"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
)

// DocumentRenderer synthesizes the purchase order artifact.
type DocumentRenderer interface {
	Render(ctx context.Context, order *domain.PurchaseOrder, items []domain.RequestItem) (*domain.Document, error)
}

// DocumentScheduler queues document generation for a purchase order. It is
// called after the finalizing unit of work commits and must be safe to retry.
type DocumentScheduler interface {
	ScheduleDocument(ctx context.Context, orderID string) error
}
