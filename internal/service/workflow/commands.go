package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"driver-companion/internal/apperr"
	"driver-companion/internal/domain"
	"driver-companion/internal/logx"
)

const (
	cmdAccept   = "accept"
	cmdToggle   = "toggle_product"
	cmdDispatch = "out_for_delivery"
	cmdComplete = "complete_delivery"
)

// Accept claims the order for the driver. An order the driver already holds is a success.
// On success the session re-fetches the order.
func (s *Session) Accept(ctx context.Context) (domain.AcceptResult, error) {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return domain.AcceptResult{}, err
	}
	if s.order.Status.IsTerminal() {
		status := s.order.Status
		s.mu.Unlock()
		return domain.AcceptResult{}, fmt.Errorf("accept order in status %q: %w", status, apperr.ErrValidation)
	}
	if s.accepting || s.busy > 0 {
		s.mu.Unlock()
		return domain.AcceptResult{}, fmt.Errorf("accept order: another command is in flight: %w", apperr.ErrValidation)
	}
	s.accepting = true
	s.mu.Unlock()

	res, err := s.deps.Backend.AcceptOrder(ctx, s.orderID)

	s.mu.Lock()
	s.accepting = false
	if err == nil && !s.closed {
		s.order.Assignment = domain.Assignment{
			Assigned:     true,
			AssignedToMe: true,
			DriverID:     s.deps.DriverID(ctx),
			DriverName:   s.order.Assignment.DriverName,
		}
		if s.order.Status.CanTransitionTo(domain.StatusProcessing) {
			s.order.Status = domain.StatusProcessing
		}
	}
	status := s.order.Status
	s.mu.Unlock()

	s.record(ctx, cmdAccept, domain.EventOrderAccepted, status, err, nil)
	if err != nil {
		return domain.AcceptResult{}, err
	}
	if res.AlreadyAssigned {
		s.logger.Info("order already assigned to driver")
	}

	if _, rerr := s.Refresh(ctx); rerr != nil && !errors.Is(rerr, ErrSessionClosed) {
		s.logger.Warn("refresh after accept failed", logx.Err(rerr))
	}
	return res, nil
}

// ToggleProduct marks every line of a product collected or not. The lines change tentatively
// at once; a failed request puts them back unless a newer toggle of the same product started
// meanwhile. When responses race the last one to arrive wins.
func (s *Session) ToggleProduct(ctx context.Context, productID string, collected bool) (domain.OrderView, error) {
	productID = strings.TrimSpace(productID)

	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return domain.OrderView{}, err
	}
	if !s.order.Assignment.AssignedToMe {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, apperr.ErrNotAssigned
	}
	lines := s.items.Lines(productID)
	if len(lines) == 0 {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, fmt.Errorf("product %q: %w", productID, apperr.ErrNotFound)
	}
	prev := make([]domain.ChecklistItem, len(lines))
	now := s.deps.Engine.Now()
	for k, i := range lines {
		prev[k] = s.items[i]
		s.items[i].MarkCollected(collected, now)
	}
	s.toggleSeq++
	seq := s.toggleSeq
	s.toggles[productID] = seq
	s.mu.Unlock()

	ack, err := s.deps.Backend.ToggleProduct(ctx, s.orderID, productID, collected, "")

	s.mu.Lock()
	latest := s.toggles[productID] == seq
	if latest {
		delete(s.toggles, productID)
	}
	if s.closed {
		s.mu.Unlock()
		return domain.OrderView{}, ErrSessionClosed
	}

	if err != nil {
		reverted := false
		if latest {
			for k, i := range s.items.Lines(productID) {
				if k < len(prev) {
					s.items[i] = prev[k]
					reverted = true
				}
			}
		}
		view := s.viewLocked()
		status := s.order.Status
		s.mu.Unlock()

		if reverted {
			if s.deps.Reverts != nil {
				s.deps.Reverts.Inc()
			}
			s.publish(ctx, domain.EventToggleReverted, status, err, toggleFields(productID, prev[0].Collected))
		}
		s.record(ctx, cmdToggle, domain.EventProductToggled, status, err, toggleFields(productID, collected))
		return view, err
	}

	if items, ok := s.deps.Engine.ParseChecklist(s.order, ack.Checklist); ok {
		s.items = items
	} else {
		for _, i := range s.items.Lines(productID) {
			at := s.deps.Engine.Now()
			if cur := s.items[i].CollectedAt; collected && cur != nil {
				at = *cur
			}
			s.items[i].MarkCollected(collected, at)
		}
	}
	view := s.viewLocked()
	status := s.order.Status
	s.mu.Unlock()

	if ack.AllItemsCollected != view.Progress.Complete() {
		s.logger.Debug("backend checklist completion differs from local",
			logx.Bool("backend", ack.AllItemsCollected),
			logx.Bool("local", view.Progress.Complete()),
		)
	}
	s.record(ctx, cmdToggle, domain.EventProductToggled, status, nil, toggleFields(productID, collected))
	return view, nil
}

func toggleFields(productID string, collected bool) func(*domain.WorkflowEvent) {
	return func(e *domain.WorkflowEvent) {
		c := collected
		e.ProductID = productID
		e.Collected = &c
	}
}

// MarkOutForDelivery dispatches the order. It is permitted only while the resolved next
// action offers it.
func (s *Session) MarkOutForDelivery(ctx context.Context) (domain.OrderView, error) {
	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return domain.OrderView{}, err
	}
	if act := s.viewLocked().Action; act.Handler != domain.HandlerMarkOutForDelivery || !act.Enabled {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, fmt.Errorf("mark out for delivery: next action is %q: %w", act.Label, apperr.ErrValidation)
	}
	s.busy++
	s.mu.Unlock()

	err := s.deps.Backend.MarkOutForDelivery(ctx, s.orderID)

	s.mu.Lock()
	s.busy--
	if err == nil && !s.closed && s.order.Status.CanTransitionTo(domain.StatusOutForDelivery) {
		s.order.Status = domain.StatusOutForDelivery
	}
	view := s.viewLocked()
	status := s.order.Status
	s.mu.Unlock()

	s.record(ctx, cmdDispatch, domain.EventOutForDelivery, status, err, nil)
	return view, err
}

// CompleteDelivery hands the order over using the customer's verification code.
// A blank code is rejected without contacting the backend.
func (s *Session) CompleteDelivery(ctx context.Context, code string) (domain.OrderView, error) {
	code = strings.TrimSpace(code)
	if err := s.validate.Var(code, "required,max=64,printascii"); err != nil {
		return s.View(), fmt.Errorf("verification code: %w", apperr.ErrValidation)
	}

	s.mu.Lock()
	if err := s.usableLocked(); err != nil {
		s.mu.Unlock()
		return domain.OrderView{}, err
	}
	if act := s.viewLocked().Action; act.Handler != domain.HandlerOpenVerificationPrompt || !act.Enabled {
		view := s.viewLocked()
		s.mu.Unlock()
		return view, fmt.Errorf("complete delivery: next action is %q: %w", act.Label, apperr.ErrValidation)
	}
	s.busy++
	s.mu.Unlock()

	err := s.deps.Backend.CompleteDelivery(ctx, s.orderID, code)

	s.mu.Lock()
	s.busy--
	if err == nil && !s.closed {
		s.order.Status = domain.StatusDelivered
		s.order.DeliveredAt = s.deps.Engine.Now()
	}
	view := s.viewLocked()
	status := s.order.Status
	s.mu.Unlock()

	s.record(ctx, cmdComplete, domain.EventDeliveryCompleted, status, err, nil)
	return view, err
}
