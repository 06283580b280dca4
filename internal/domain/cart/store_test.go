package cart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carebook/carebook/internal/domain/pharmacy"
)

func testMedicine(stock int, price string) pharmacy.Medicine {
	p, _ := decimal.NewFromString(price)
	return pharmacy.Medicine{ID: uuid.New(), Name: "Paracetamol", Price: p, Stock: stock}
}

func TestAddItem_ClampsToStock(t *testing.T) {
	s := NewStore("")
	med := testMedicine(3, "10.00")

	// stock=3, quantity 2, then add 5 more: final quantity is exactly 3.
	if clamped, err := s.AddItem("u1", med, 2); err != nil || clamped {
		t.Fatalf("expected clean add, got clamped=%v err=%v", clamped, err)
	}
	clamped, err := s.AddItem("u1", med, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !clamped {
		t.Error("expected the clamp to be reported")
	}
	items := s.Items("u1")
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Errorf("expected single line at quantity 3, got %v", items)
	}
}

func TestAddItem_NonPositiveIsNoOp(t *testing.T) {
	s := NewStore("")
	med := testMedicine(3, "10.00")

	if _, err := s.AddItem("u1", med, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.AddItem("u1", med, -2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Items("u1")) != 0 {
		t.Error("expected no entries after non-positive adds")
	}
}

func TestAddItem_NewEntryClamped(t *testing.T) {
	s := NewStore("")
	med := testMedicine(2, "10.00")

	clamped, err := s.AddItem("u1", med, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !clamped {
		t.Error("expected clamp report for oversized first add")
	}
	if items := s.Items("u1"); len(items) != 1 || items[0].Quantity != 2 {
		t.Errorf("expected quantity 2, got %v", items)
	}
}

func TestAddItem_OutOfStockNotInserted(t *testing.T) {
	s := NewStore("")
	med := testMedicine(0, "10.00")

	if _, err := s.AddItem("u1", med, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Items("u1")) != 0 {
		t.Error("expected no entry for out-of-stock medicine")
	}
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	s := NewStore("")
	med := testMedicine(5, "10.00")
	s.AddItem("u1", med, 2)

	if err := s.UpdateQuantity("u1", med.ID, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Items("u1")) != 0 {
		t.Error("expected update to zero to remove the line")
	}
}

func TestUpdateQuantity_ClampsToSnapshotStock(t *testing.T) {
	s := NewStore("")
	med := testMedicine(4, "10.00")
	s.AddItem("u1", med, 1)

	if err := s.UpdateQuantity("u1", med.ID, 9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items := s.Items("u1"); items[0].Quantity != 4 {
		t.Errorf("expected quantity clamped to 4, got %d", items[0].Quantity)
	}
}

func TestRemoveItem_AbsentIsNoOp(t *testing.T) {
	s := NewStore("")
	if err := s.RemoveItem("u1", uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTotals_RecomputedFresh(t *testing.T) {
	s := NewStore("")
	a := testMedicine(10, "10.00")
	b := testMedicine(10, "2.50")

	s.AddItem("u1", a, 2)
	s.AddItem("u1", b, 4)
	if total := s.Total("u1"); !total.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("expected total 30.00, got %s", total)
	}
	if count := s.ItemCount("u1"); count != 6 {
		t.Errorf("expected item count 6, got %d", count)
	}

	s.UpdateQuantity("u1", a.ID, 1)
	s.RemoveItem("u1", b.ID)
	if total := s.Total("u1"); !total.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("expected total 10.00 after mutations, got %s", total)
	}
	if count := s.ItemCount("u1"); count != 1 {
		t.Errorf("expected item count 1, got %d", count)
	}
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	s := NewStore("")
	med := testMedicine(10, "10.00")
	s.AddItem("u1", med, 2)
	s.AddItem("u2", med, 5)

	if s.ItemCount("u1") != 2 || s.ItemCount("u2") != 5 {
		t.Errorf("carts leaked between users: u1=%d u2=%d", s.ItemCount("u1"), s.ItemCount("u2"))
	}
	s.Clear("u1")
	if s.ItemCount("u1") != 0 || s.ItemCount("u2") != 5 {
		t.Error("clearing one user's cart must not touch another's")
	}
}

func TestPersistence_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart_state.json")
	med := testMedicine(10, "10.00")

	s := NewStore(path)
	if _, err := s.AddItem("u1", med, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded := NewStore(path)
	items := reloaded.Items("u1")
	if len(items) != 1 || items[0].Quantity != 3 || items[0].Medicine.ID != med.ID {
		t.Errorf("expected rehydrated cart, got %v", items)
	}
	if total := reloaded.Total("u1"); !total.Equal(decimal.RequireFromString("30.00")) {
		t.Errorf("expected total 30.00 after reload, got %s", total)
	}
}

func TestPersistence_CorruptSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart_state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := NewStore(path)
	if len(s.Items("u1")) != 0 {
		t.Error("expected empty store for corrupt snapshot")
	}
	// The store still works and overwrites the bad snapshot.
	if _, err := s.AddItem("u1", testMedicine(5, "1.00"), 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSubscribers_NotifiedAfterMutation(t *testing.T) {
	s := NewStore("")
	med := testMedicine(5, "10.00")

	var gotUser string
	var gotItems []Item
	calls := 0
	s.Subscribe(func(userID string, items []Item) {
		gotUser = userID
		gotItems = items
		calls++
	})

	s.AddItem("u1", med, 2)
	if calls != 1 || gotUser != "u1" || len(gotItems) != 1 || gotItems[0].Quantity != 2 {
		t.Errorf("unexpected notification: calls=%d user=%q items=%v", calls, gotUser, gotItems)
	}

	s.Clear("u1")
	if calls != 2 || len(gotItems) != 0 {
		t.Errorf("expected empty-cart notification on clear, got calls=%d items=%v", calls, gotItems)
	}
}
