package workflow

import (
	"context"

	"driver-companion/internal/domain"
)

// session returns the open session of orderID or opens one.
func (r *Registry) session(ctx context.Context, orderID string) (*Session, error) {
	if s, ok := r.Get(orderID); ok && !s.Closed() {
		return s, nil
	}
	s, _, err := r.Open(ctx, orderID)
	return s, err
}

// AcceptOrder runs Accept on the session of orderID.
func (r *Registry) AcceptOrder(ctx context.Context, orderID string) (domain.AcceptResult, domain.OrderView, error) {
	s, err := r.session(ctx, orderID)
	if err != nil {
		return domain.AcceptResult{}, domain.OrderView{}, err
	}
	res, err := s.Accept(ctx)
	return res, s.View(), err
}

// ToggleProduct runs ToggleProduct on the session of orderID.
func (r *Registry) ToggleProduct(ctx context.Context, orderID, productID string, collected bool) (domain.OrderView, error) {
	s, err := r.session(ctx, orderID)
	if err != nil {
		return domain.OrderView{}, err
	}
	return s.ToggleProduct(ctx, productID, collected)
}

// MarkOutForDelivery runs MarkOutForDelivery on the session of orderID.
func (r *Registry) MarkOutForDelivery(ctx context.Context, orderID string) (domain.OrderView, error) {
	s, err := r.session(ctx, orderID)
	if err != nil {
		return domain.OrderView{}, err
	}
	return s.MarkOutForDelivery(ctx)
}

// CompleteDelivery runs CompleteDelivery on the session of orderID.
func (r *Registry) CompleteDelivery(ctx context.Context, orderID, code string) (domain.OrderView, error) {
	s, err := r.session(ctx, orderID)
	if err != nil {
		return domain.OrderView{}, err
	}
	return s.CompleteDelivery(ctx, code)
}

// OpenView opens or refreshes the session of orderID and returns its view.
func (r *Registry) OpenView(ctx context.Context, orderID string) (domain.OrderView, error) {
	_, view, err := r.Open(ctx, orderID)
	return view, err
}
