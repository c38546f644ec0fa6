package postgres

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/Apurer/go-gin-p2p-server/internal/domains/procurement/domain"
)

// requestRecord maps the purchase request aggregate. Status is denormalised
// from the ledger so queues can be filtered in SQL.
type requestRecord struct {
	ID              string            `gorm:"primaryKey;column:id;size:64"`
	Title           string            `gorm:"column:title;size:255"`
	Description     string            `gorm:"column:description;type:text"`
	Amount          decimal.Decimal   `gorm:"column:amount;type:numeric(14,2)"`
	RequesterID     string            `gorm:"column:requester_id;size:64;index"`
	Status          string            `gorm:"column:status;type:varchar(32);index"`
	ExtractedData   datatypes.JSONMap `gorm:"column:extracted_data"`
	PurchaseOrderID *string           `gorm:"column:purchase_order_id;size:64"`
	CreatedAt       time.Time         `gorm:"column:created_at;index"`
	UpdatedAt       time.Time         `gorm:"column:updated_at"`
	Items           []itemRecord      `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	Approvals       []approvalRecord  `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

func (requestRecord) TableName() string { return "purchase_requests" }

type itemRecord struct {
	ID          string          `gorm:"primaryKey;column:id;size:64"`
	RequestID   string          `gorm:"column:request_id;size:64;index"`
	Position    int             `gorm:"column:position"`
	Name        string          `gorm:"column:name;size:255"`
	Description string          `gorm:"column:description;type:text"`
	Quantity    int             `gorm:"column:quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2)"`
	TotalPrice  decimal.Decimal `gorm:"column:total_price;type:numeric(14,2)"`
}

func (itemRecord) TableName() string { return "purchase_request_items" }

// approvalRecord is one ledger slot; (request_id, level) is unique.
type approvalRecord struct {
	ID         int64      `gorm:"primaryKey;autoIncrement;column:id"`
	RequestID  string     `gorm:"column:request_id;size:64;uniqueIndex:idx_approvals_request_level"`
	Level      string     `gorm:"column:level;type:varchar(16);uniqueIndex:idx_approvals_request_level"`
	Status     string     `gorm:"column:status;type:varchar(16)"`
	ApproverID string     `gorm:"column:approver_id;size:64;index"`
	Comment    string     `gorm:"column:comment;type:text"`
	DecidedAt  *time.Time `gorm:"column:decided_at"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
}

func (approvalRecord) TableName() string { return "approvals" }

type orderRecord struct {
	ID                  string          `gorm:"primaryKey;column:id;size:64"`
	Number              string          `gorm:"column:number;size:32;uniqueIndex"`
	RequestID           string          `gorm:"column:request_id;size:64;uniqueIndex"`
	VendorName          string          `gorm:"column:vendor_name"`
	VendorAddress       string          `gorm:"column:vendor_address"`
	VendorEmail         string          `gorm:"column:vendor_email"`
	VendorPhone         string          `gorm:"column:vendor_phone"`
	TotalAmount         decimal.Decimal `gorm:"column:total_amount;type:numeric(14,2)"`
	Status              string          `gorm:"column:status;type:varchar(32);index"`
	Notes               string          `gorm:"column:notes;type:text"`
	DocumentFilename    string          `gorm:"column:document_filename"`
	DocumentContentType string          `gorm:"column:document_content_type"`
	DocumentContent     []byte          `gorm:"column:document_content;type:bytea"`
	DocumentGeneratedAt *time.Time      `gorm:"column:document_generated_at"`
	CreatedBy           string          `gorm:"column:created_by;size:64"`
	CreatedAt           time.Time       `gorm:"column:created_at;index"`
	UpdatedAt           time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "purchase_orders" }

// sequenceRecord holds the last purchase order sequence issued per day.
type sequenceRecord struct {
	Day   string `gorm:"primaryKey;column:day;size:8"`
	Value int    `gorm:"column:value"`
}

func (sequenceRecord) TableName() string { return "po_sequences" }

func toRequestRecord(r *domain.PurchaseRequest) requestRecord {
	rec := requestRecord{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Amount:      r.Amount,
		RequesterID: r.RequesterID,
		Status:      string(r.Status()),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Items:       toItemRecords(r.ID, r.Items),
	}
	if r.ExtractedData != nil {
		rec.ExtractedData = datatypes.JSONMap(r.ExtractedData)
	}
	if r.PurchaseOrderID != "" {
		id := r.PurchaseOrderID
		rec.PurchaseOrderID = &id
	}
	return rec
}

func toItemRecords(requestID string, items []domain.RequestItem) []itemRecord {
	out := make([]itemRecord, 0, len(items))
	for i, item := range items {
		out = append(out, itemRecord{
			ID:          item.ID,
			RequestID:   requestID,
			Position:    i,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return out
}

func toApprovalRecord(requestID string, a domain.Approval) approvalRecord {
	return approvalRecord{
		RequestID:  requestID,
		Level:      string(a.Level),
		Status:     string(a.Status),
		ApproverID: a.ApproverID,
		Comment:    a.Comment,
		DecidedAt:  a.DecidedAt,
		CreatedAt:  a.CreatedAt,
	}
}

func (r *requestRecord) toDomain() (*domain.PurchaseRequest, error) {
	approvals := make([]domain.Approval, 0, len(r.Approvals))
	for _, a := range r.Approvals {
		approvals = append(approvals, domain.Approval{
			Level:      domain.Level(a.Level),
			Status:     domain.ApprovalStatus(a.Status),
			ApproverID: a.ApproverID,
			Comment:    a.Comment,
			DecidedAt:  a.DecidedAt,
			CreatedAt:  a.CreatedAt,
		})
	}
	ledger, err := domain.RestoreLedger(approvals)
	if err != nil {
		return nil, err
	}
	request := &domain.PurchaseRequest{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Amount:      r.Amount,
		RequesterID: r.RequesterID,
		Ledger:      ledger,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.ExtractedData != nil {
		request.ExtractedData = map[string]any(r.ExtractedData)
	}
	if r.PurchaseOrderID != nil {
		request.PurchaseOrderID = *r.PurchaseOrderID
	}
	request.Items = make([]domain.RequestItem, 0, len(r.Items))
	for _, item := range r.Items {
		request.Items = append(request.Items, domain.RequestItem{
			ID:          item.ID,
			Name:        item.Name,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}
	return request, nil
}

func toOrderRecord(o *domain.PurchaseOrder) orderRecord {
	rec := orderRecord{
		ID:            o.ID,
		Number:        o.Number,
		RequestID:     o.RequestID,
		VendorName:    o.Vendor.Name,
		VendorAddress: o.Vendor.Address,
		VendorEmail:   o.Vendor.Email,
		VendorPhone:   o.Vendor.Phone,
		TotalAmount:   o.TotalAmount,
		Status:        string(o.Status),
		Notes:         o.Notes,
		CreatedBy:     o.CreatedBy,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.Document != nil {
		generated := o.Document.GeneratedAt
		rec.DocumentFilename = o.Document.Filename
		rec.DocumentContentType = o.Document.ContentType
		rec.DocumentContent = append([]byte(nil), o.Document.Content...)
		rec.DocumentGeneratedAt = &generated
	}
	return rec
}

func (r *orderRecord) toDomain() *domain.PurchaseOrder {
	order := &domain.PurchaseOrder{
		ID:        r.ID,
		Number:    r.Number,
		RequestID: r.RequestID,
		Vendor: domain.Vendor{
			Name:    r.VendorName,
			Address: r.VendorAddress,
			Email:   r.VendorEmail,
			Phone:   r.VendorPhone,
		},
		TotalAmount: r.TotalAmount,
		Status:      domain.OrderStatus(r.Status),
		Notes:       r.Notes,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if len(r.DocumentContent) > 0 {
		doc := &domain.Document{
			Filename:    r.DocumentFilename,
			ContentType: r.DocumentContentType,
			Content:     r.DocumentContent,
		}
		if r.DocumentGeneratedAt != nil {
			doc.GeneratedAt = *r.DocumentGeneratedAt
		}
		order.Document = doc
	}
	return order
}
