package ledger

import "github.com/trogers1052/etf-trading-service/internal/models"

// Store persists ledger mutations. The in-memory ledger is authoritative for
// reads; the store is write-through so a restart can reload the same state.
type Store interface {
	SaveHolding(h *models.Holding) error
	DeleteHolding(id string) error
	AppendSoldItem(s *models.SoldItem) error
	UpdateSoldItem(s *models.SoldItem) error
	SavePendingOrder(o *models.PendingOrder) error
	DeletePendingOrder(orderID string) error
	SaveSellCounter(count int, lastSellDate string) error

	LoadHoldings() ([]*models.Holding, error)
	LoadSoldItems() ([]*models.SoldItem, error)
	LoadPendingOrders() ([]*models.PendingOrder, error)
	LoadSellCounter() (int, string, error)
}

// NopStore discards writes and loads nothing. Used in tests and demo mode.
type NopStore struct{}

func (NopStore) SaveHolding(*models.Holding) error            { return nil }
func (NopStore) DeleteHolding(string) error                   { return nil }
func (NopStore) AppendSoldItem(*models.SoldItem) error        { return nil }
func (NopStore) UpdateSoldItem(*models.SoldItem) error        { return nil }
func (NopStore) SavePendingOrder(*models.PendingOrder) error  { return nil }
func (NopStore) DeletePendingOrder(string) error              { return nil }
func (NopStore) SaveSellCounter(int, string) error            { return nil }
func (NopStore) LoadHoldings() ([]*models.Holding, error)     { return nil, nil }
func (NopStore) LoadSoldItems() ([]*models.SoldItem, error)   { return nil, nil }
func (NopStore) LoadPendingOrders() ([]*models.PendingOrder, error) {
	return nil, nil
}
func (NopStore) LoadSellCounter() (int, string, error) { return 0, "", nil }
