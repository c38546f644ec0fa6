package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
)

var _ ports.Store = (*Store)(nil)

// Store adds transactional units of work on top of Repository.
type Store struct {
	*Repository
}

// NewStore wires a PostgreSQL-backed store. Caller manages DB lifecycle.
func NewStore(db *gorm.DB) *Store {
	return &Store{Repository: NewRepository(db)}
}

// WithinTx runs fn inside a database transaction, committing only when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepository(tx))
	})
}
