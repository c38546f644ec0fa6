package migrations

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Run applies the procurement schema. Adapters never automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&purchaseRequestRecord{},
		&purchaseRequestItemRecord{},
		&approvalRecord{},
		&purchaseOrderRecord{},
		&poSequenceRecord{},
	)
}

// Purchase request schema mirrors the procurement Postgres adapter.
type purchaseRequestRecord struct {
	ID              string                      `gorm:"primaryKey;column:id;size:64"`
	Title           string                      `gorm:"column:title;size:255"`
	Description     string                      `gorm:"column:description;type:text"`
	Amount          decimal.Decimal             `gorm:"column:amount;type:numeric(14,2)"`
	RequesterID     string                      `gorm:"column:requester_id;size:64;index"`
	Status          string                      `gorm:"column:status;type:varchar(32);index"`
	ExtractedData   datatypes.JSONMap           `gorm:"column:extracted_data"`
	PurchaseOrderID *string                     `gorm:"column:purchase_order_id;size:64"`
	CreatedAt       time.Time                   `gorm:"column:created_at;index"`
	UpdatedAt       time.Time                   `gorm:"column:updated_at"`
	Items           []purchaseRequestItemRecord `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	Approvals       []approvalRecord            `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

func (purchaseRequestRecord) TableName() string { return "purchase_requests" }

type purchaseRequestItemRecord struct {
	ID          string          `gorm:"primaryKey;column:id;size:64"`
	RequestID   string          `gorm:"column:request_id;size:64;index"`
	Position    int             `gorm:"column:position"`
	Name        string          `gorm:"column:name;size:255"`
	Description string          `gorm:"column:description;type:text"`
	Quantity    int             `gorm:"column:quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2)"`
	TotalPrice  decimal.Decimal `gorm:"column:total_price;type:numeric(14,2)"`
}

func (purchaseRequestItemRecord) TableName() string { return "purchase_request_items" }

// Approval slots are unique per request and level.
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

type purchaseOrderRecord struct {
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

func (purchaseOrderRecord) TableName() string { return "purchase_orders" }

type poSequenceRecord struct {
	Day   string `gorm:"primaryKey;column:day;size:8"`
	Value int    `gorm:"column:value"`
}

func (poSequenceRecord) TableName() string { return "po_sequences" }
