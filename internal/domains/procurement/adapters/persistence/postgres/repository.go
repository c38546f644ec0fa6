package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/ports"
	"github.com/Apurer/go-gin-p2p-server/internal/shared/pagination"
)

var _ ports.Repository = (*Repository)(nil)

const uniqueViolation = "23505"

// Repository persists procurement aggregates in PostgreSQL using GORM. The
// handle may be a transaction opened by Store.WithinTx.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateRequest inserts the request header and its items.
func (r *Repository) CreateRequest(ctx context.Context, request *domain.PurchaseRequest) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if request == nil {
		return errors.New("purchase request is nil")
	}
	record := toRequestRecord(request)
	if err := r.db.WithContext(ctx).Omit("Approvals").Create(&record).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// CreateApprovalChain inserts the slots of a freshly opened ledger.
func (r *Repository) CreateApprovalChain(ctx context.Context, requestID string, approvals []domain.Approval) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if _, err := domain.RestoreLedger(approvals); err != nil {
		return err
	}
	if err := r.requireRequest(ctx, requestID); err != nil {
		return err
	}
	records := make([]approvalRecord, 0, len(approvals))
	for _, a := range approvals {
		records = append(records, toApprovalRecord(requestID, a))
	}
	if err := r.db.WithContext(ctx).Create(&records).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// GetRequest loads a request with items and ledger.
func (r *Repository) GetRequest(ctx context.Context, id string) (*domain.PurchaseRequest, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record requestRecord
	if err := r.withAssociations(r.db.WithContext(ctx)).First(&record, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return record.toDomain()
}

// LockRequest takes a row lock on the request before loading it. Only
// meaningful inside a transaction.
func (r *Repository) LockRequest(ctx context.Context, id string) (*domain.PurchaseRequest, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var locked requestRecord
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&locked, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return r.GetRequest(ctx, id)
}

// ListRequests pages through requests matching the filter, newest first.
func (r *Repository) ListRequests(ctx context.Context, filter ports.RequestFilter) (pagination.Page[*domain.PurchaseRequest], error) {
	if err := r.ensureDB(); err != nil {
		return pagination.Page[*domain.PurchaseRequest]{}, err
	}
	query := r.db.WithContext(ctx).Model(&requestRecord{})
	if filter.RequesterID != "" {
		query = query.Where("requester_id = ?", filter.RequesterID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query = query.Where("status = ANY(?)", pq.Array(statuses))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where("(title ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return pagination.Page[*domain.PurchaseRequest]{}, err
	}
	var records []requestRecord
	if err := r.withAssociations(query).
		Order("created_at DESC, id DESC").
		Offset(filter.Page.Offset()).
		Limit(filter.Page.Limit()).
		Find(&records).Error; err != nil {
		return pagination.Page[*domain.PurchaseRequest]{}, err
	}
	items := make([]*domain.PurchaseRequest, 0, len(records))
	for i := range records {
		request, err := records[i].toDomain()
		if err != nil {
			return pagination.Page[*domain.PurchaseRequest]{}, err
		}
		items = append(items, request)
	}
	return pagination.NewPage(items, total, filter.Page), nil
}

// UpdateRequest rewrites the header and items. Ledger slots change only
// through RecordApproval.
func (r *Repository) UpdateRequest(ctx context.Context, request *domain.PurchaseRequest) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if request == nil {
		return errors.New("purchase request is nil")
	}
	record := toRequestRecord(request)
	result := r.db.WithContext(ctx).Model(&requestRecord{}).Where("id = ?", request.ID).Updates(map[string]any{
		"title":             record.Title,
		"description":       record.Description,
		"amount":            record.Amount,
		"status":            record.Status,
		"extracted_data":    record.ExtractedData,
		"purchase_order_id": record.PurchaseOrderID,
		"updated_at":        record.UpdatedAt,
	})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	if err := r.db.WithContext(ctx).Where("request_id = ?", request.ID).Delete(&itemRecord{}).Error; err != nil {
		return err
	}
	if len(record.Items) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Create(&record.Items).Error)
}

// RecordApproval decides a slot only while it is still pending.
func (r *Repository) RecordApproval(ctx context.Context, requestID string, approval domain.Approval) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if approval.DecidedAt == nil {
		return fmt.Errorf("%w: decision time missing", domain.ErrInvalidOutcome)
	}
	result := r.db.WithContext(ctx).Model(&approvalRecord{}).
		Where("request_id = ? AND level = ? AND status = ?", requestID, string(approval.Level), string(domain.ApprovalPending)).
		Updates(map[string]any{
			"status":      string(approval.Status),
			"approver_id": approval.ApproverID,
			"comment":     approval.Comment,
			"decided_at":  *approval.DecidedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	var slots int64
	if err := r.db.WithContext(ctx).Model(&approvalRecord{}).
		Where("request_id = ? AND level = ?", requestID, string(approval.Level)).
		Count(&slots).Error; err != nil {
		return err
	}
	if slots == 0 {
		return ports.ErrNotFound
	}
	return fmt.Errorf("%w: %s", domain.ErrSlotDecided, approval.Level)
}

// NextPOSequence atomically issues the next sequence for day. The first call
// for a day seeds the counter from existing purchase order numbers.
func (r *Repository) NextPOSequence(ctx context.Context, day string) (int, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	prefix := domain.PONumberPrefix(day)
	var value int
	err := r.db.WithContext(ctx).Raw(`
INSERT INTO po_sequences (day, value)
VALUES (?, COALESCE((
	SELECT MAX(CAST(SUBSTR(number, ?) AS INTEGER)) FROM purchase_orders WHERE number LIKE ?
), 0) + 1)
ON CONFLICT (day) DO UPDATE SET value = po_sequences.value + 1
RETURNING value`, day, len(prefix)+1, escapeLike(prefix)+"%").Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}

// CreateOrder inserts a purchase order; number and request are unique.
func (r *Repository) CreateOrder(ctx context.Context, order *domain.PurchaseOrder) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if order == nil {
		return errors.New("purchase order is nil")
	}
	record := toOrderRecord(order)
	return translateError(r.db.WithContext(ctx).Create(&record).Error)
}

// GetOrder fetches a purchase order by identifier.
func (r *Repository) GetOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	return r.firstOrder(ctx, "id = ?", id)
}

// GetOrderByRequest fetches the purchase order minted for a request.
func (r *Repository) GetOrderByRequest(ctx context.Context, requestID string) (*domain.PurchaseOrder, error) {
	return r.firstOrder(ctx, "request_id = ?", requestID)
}

// ListOrders pages through purchase orders matching the filter, newest first.
func (r *Repository) ListOrders(ctx context.Context, filter ports.OrderFilter) (pagination.Page[*domain.PurchaseOrder], error) {
	if err := r.ensureDB(); err != nil {
		return pagination.Page[*domain.PurchaseOrder]{}, err
	}
	query := r.db.WithContext(ctx).Model(&orderRecord{})
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		query = query.Where("status = ANY(?)", pq.Array(statuses))
	}
	if filter.RequesterID != "" {
		query = query.Where("request_id IN (SELECT id FROM purchase_requests WHERE requester_id = ?)", filter.RequesterID)
	}
	if filter.ApproverID != "" {
		query = query.Where("request_id IN (SELECT request_id FROM approvals WHERE approver_id = ? AND status = ?)",
			filter.ApproverID, string(domain.ApprovalApproved))
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return pagination.Page[*domain.PurchaseOrder]{}, err
	}
	var records []orderRecord
	if err := query.
		Order("created_at DESC, id DESC").
		Offset(filter.Page.Offset()).
		Limit(filter.Page.Limit()).
		Find(&records).Error; err != nil {
		return pagination.Page[*domain.PurchaseOrder]{}, err
	}
	return pagination.NewPage(ordersToDomain(records), total, filter.Page), nil
}

// UpdateOrder persists status and notes.
func (r *Repository) UpdateOrder(ctx context.Context, order *domain.PurchaseOrder) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if order == nil {
		return errors.New("purchase order is nil")
	}
	result := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", order.ID).Updates(map[string]any{
		"status":     string(order.Status),
		"notes":      order.Notes,
		"updated_at": order.UpdatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// SaveOrderDocument replaces the stored artifact of a purchase order.
func (r *Repository) SaveOrderDocument(ctx context.Context, orderID string, document domain.Document) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	generatedAt := document.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}
	result := r.db.WithContext(ctx).Model(&orderRecord{}).Where("id = ?", orderID).Updates(map[string]any{
		"document_filename":     document.Filename,
		"document_content_type": document.ContentType,
		"document_content":      document.Content,
		"document_generated_at": generatedAt,
		"updated_at":            generatedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// ListOrdersMissingDocument returns orders without an artifact, oldest first.
func (r *Repository) ListOrdersMissingDocument(ctx context.Context, limit int) ([]*domain.PurchaseOrder, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).
		Where("document_content IS NULL OR octet_length(document_content) = 0").
		Order("created_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []orderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return ordersToDomain(records), nil
}

func (r *Repository) firstOrder(ctx context.Context, cond string, arg any) (*domain.PurchaseOrder, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, cond, arg).Error; err != nil {
		return nil, translateError(err)
	}
	return record.toDomain(), nil
}

func (r *Repository) requireRequest(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&requestRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Approvals")
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres procurement repository not configured")
	}
	return nil
}

func ordersToDomain(records []orderRecord) []*domain.PurchaseOrder {
	orders := make([]*domain.PurchaseOrder, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", ports.ErrDuplicate, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ports.ErrDuplicate, pgErr.ConstraintName)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%w: %s", ports.ErrDuplicate, pqErr.Constraint)
	}
	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
