//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "p2p-api"
	ConsumerName = "finance-portal"

	StateAwaitingLevelTwo = "purchase request req-pact-1 approved at level 1"
	StateOrderExists      = "purchase order po-pact-1 exists"
	StateOrderMissing     = "no purchase order with id po-missing"
)

const (
	RequestID      = "req-pact-1"
	ItemID         = "item-pact-1"
	OrderID        = "po-pact-1"
	MissingOrderID = "po-missing"
	OrderNumber    = "PO-20240601-0001"

	StaffID    = "staff-pact"
	LevelOneID = "approver-pact-1"
	LevelTwoID = "approver-pact-2"
	FinanceID  = "finance-pact"
)

const (
	exampleTitle  = "Pact laptops"
	exampleVendor = "Acme Pact Supplies"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the finance portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleVendorName is the vendor copied onto seeded purchase orders.
func ExampleVendorName() string {
	return exampleVendor
}

// ExampleTitle is the title of the seeded purchase request.
func ExampleTitle() string {
	return exampleTitle
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
