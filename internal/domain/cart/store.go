package cart

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/carebook/carebook/internal/domain/pharmacy"
)

// Item is one cart line: a medicine snapshot taken at add time plus the
// desired quantity. Quantity stays within [1, snapshot stock] under every
// mutation.
type Item struct {
	Medicine pharmacy.Medicine `json:"medicine"`
	Quantity int               `json:"quantity"`
}

// Subscriber is notified after every cart mutation with the owning user and
// the resulting items.
type Subscriber func(userID string, items []Item)

// Store holds all users' carts in memory and mirrors every mutation to a
// JSON snapshot file. The snapshot is reloaded on startup; an unreadable or
// unparseable snapshot starts the store empty rather than failing.
type Store struct {
	mu    sync.Mutex
	carts map[string][]Item
	path  string
	subs  []Subscriber
}

// NewStore builds a store persisted at path. An empty path disables
// persistence, which the tests use.
func NewStore(path string) *Store {
	s := &Store{carts: make(map[string][]Item), path: path}
	s.rehydrate()
	return s
}

func (s *Store) rehydrate() {
	if s.path == "" {
		return
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var carts map[string][]Item
	if err := json.Unmarshal(data, &carts); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("cart snapshot unparseable, starting empty")
		return
	}
	s.carts = carts
}

// persist writes the whole store as one JSON document. Called with the lock
// held.
func (s *Store) persist() error {
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(s.carts)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write cart snapshot: %w", err)
	}
	return nil
}

// Subscribe registers a callback invoked after each mutation.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// notify runs outside the lock so subscribers may call back into the store.
func (s *Store) notify(userID string, items []Item, subs []Subscriber) {
	for _, fn := range subs {
		fn(userID, items)
	}
}

// AddItem merges a medicine into the user's cart. A non-positive quantity is
// a no-op. Existing lines gain the requested quantity clamped to the
// snapshot's stock; the boolean reports whether clamping cut the request
// short. New lines are inserted with the quantity clamped to [1, stock]; a
// medicine with no stock is not inserted at all.
func (s *Store) AddItem(userID string, med pharmacy.Medicine, qty int) (bool, error) {
	if qty <= 0 {
		return false, nil
	}

	s.mu.Lock()
	items := s.carts[userID]
	clamped := false
	found := false
	for i := range items {
		if items[i].Medicine.ID == med.ID {
			next := items[i].Quantity + qty
			if next > med.Stock {
				next = med.Stock
				clamped = true
			}
			items[i].Quantity = next
			items[i].Medicine = med
			found = true
			break
		}
	}
	if !found {
		if med.Stock <= 0 {
			s.mu.Unlock()
			return true, nil
		}
		if qty > med.Stock {
			qty = med.Stock
			clamped = true
		}
		items = append(items, Item{Medicine: med, Quantity: qty})
	}
	s.carts[userID] = items
	err := s.persist()
	snapshot, subs := s.itemsLocked(userID), s.subs
	s.mu.Unlock()

	s.notify(userID, snapshot, subs)
	return clamped, err
}

// UpdateQuantity sets a line's quantity, clamped to the snapshot's stock. A
// non-positive quantity removes the line, the same as RemoveItem.
func (s *Store) UpdateQuantity(userID string, medicineID uuid.UUID, qty int) error {
	if qty <= 0 {
		return s.RemoveItem(userID, medicineID)
	}

	s.mu.Lock()
	items := s.carts[userID]
	for i := range items {
		if items[i].Medicine.ID == medicineID {
			if qty > items[i].Medicine.Stock {
				qty = items[i].Medicine.Stock
			}
			items[i].Quantity = qty
			break
		}
	}
	s.carts[userID] = items
	err := s.persist()
	snapshot, subs := s.itemsLocked(userID), s.subs
	s.mu.Unlock()

	s.notify(userID, snapshot, subs)
	return err
}

// RemoveItem drops a line. Removing an absent medicine is a no-op.
func (s *Store) RemoveItem(userID string, medicineID uuid.UUID) error {
	s.mu.Lock()
	items := s.carts[userID]
	for i := range items {
		if items[i].Medicine.ID == medicineID {
			items = append(items[:i], items[i+1:]...)
			break
		}
	}
	if len(items) == 0 {
		delete(s.carts, userID)
	} else {
		s.carts[userID] = items
	}
	err := s.persist()
	snapshot, subs := s.itemsLocked(userID), s.subs
	s.mu.Unlock()

	s.notify(userID, snapshot, subs)
	return err
}

// Clear empties the user's cart.
func (s *Store) Clear(userID string) error {
	s.mu.Lock()
	delete(s.carts, userID)
	err := s.persist()
	subs := s.subs
	s.mu.Unlock()

	s.notify(userID, []Item{}, subs)
	return err
}

func (s *Store) itemsLocked(userID string) []Item {
	items := s.carts[userID]
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Items returns a copy of the user's cart lines in insertion order.
func (s *Store) Items(userID string) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsLocked(userID)
}

// Total recomputes the cart's price sum from scratch on every call.
func (s *Store) Total(userID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, item := range s.carts[userID] {
		total = total.Add(item.Medicine.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ItemCount recomputes the quantity sum from scratch on every call.
func (s *Store) ItemCount(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.carts[userID] {
		count += item.Quantity
	}
	return count
}
