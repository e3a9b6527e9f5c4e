package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/trogers1052/etf-trading-service/internal/models"
)

// Fake is an in-memory broker for demo mode and tests. Submitted orders walk
// through a scripted status sequence, one step per QueryStatus call; with no
// script every order completes immediately with a full fill at the requested
// price.
type Fake struct {
	mu     sync.Mutex
	seq    int
	orders map[string]*fakeOrder
	Script []models.OrderState
	// RejectSubmit makes every Submit fail, for rejection-path tests.
	RejectSubmit bool
}

type fakeOrder struct {
	req   models.OrderRequest
	steps []models.OrderState
	step  int
	state models.OrderState
}

// NewFake creates an empty fake broker.
func NewFake() *Fake {
	return &Fake{orders: make(map[string]*fakeOrder)}
}

// Submit assigns a sequential demo order id.
func (f *Fake) Submit(_ context.Context, req models.OrderRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RejectSubmit {
		return "", fmt.Errorf("%w: demo rejection", ErrRejected)
	}
	f.seq++
	id := fmt.Sprintf("demo_%s_%d", req.Side, f.seq)
	steps := f.Script
	if len(steps) == 0 {
		steps = []models.OrderState{models.OrderStateComplete}
	}
	f.orders[id] = &fakeOrder{req: req, steps: steps, state: models.OrderStatePending}
	return id, nil
}

// QueryStatus advances the scripted sequence by one step and reports the
// resulting state.
func (f *Fake) QueryStatus(_ context.Context, orderID string) (models.OrderStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return models.OrderStatus{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if !o.state.Terminal() && o.step < len(o.steps) {
		o.state = o.steps[o.step]
		o.step++
	}

	st := models.OrderStatus{OrderID: orderID, State: o.state}
	switch o.state {
	case models.OrderStateComplete:
		st.FilledQuantity = o.req.Quantity
		st.AveragePrice = o.req.Price
	case models.OrderStatePartial:
		st.FilledQuantity = o.req.Quantity / 2
		st.AveragePrice = o.req.Price
	case models.OrderStateRejected:
		st.Reason = "demo rejection"
	}
	return st, nil
}

// Cancel fails once the scripted order is terminal.
func (f *Fake) Cancel(_ context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if o.state.Terminal() {
		return fmt.Errorf("%w: %s", ErrAlreadyTerminal, orderID)
	}
	o.state = models.OrderStateCancelled
	return nil
}

// Submissions returns the requests submitted so far, for assertions.
func (f *Fake) Submissions() []models.OrderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.OrderRequest, 0, len(f.orders))
	for _, o := range f.orders {
		out = append(out, o.req)
	}
	return out
}
