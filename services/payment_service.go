package services

import (
	"context"
	"errors"

	"github.com/fedsports/registration-system/models"
	"github.com/fedsports/registration-system/repositories"
)

// PaymentService exposes the association's fee bookkeeping. Amounts are
// recorded, never charged.
type PaymentService struct {
	paymentRepo repositories.PaymentRepository
	eventRepo   repositories.EventRepository
	scope       *ScopeService
}

func NewPaymentService(paymentRepo repositories.PaymentRepository, eventRepo repositories.EventRepository, scope *ScopeService) *PaymentService {
	return &PaymentService{paymentRepo: paymentRepo, eventRepo: eventRepo, scope: scope}
}

// ListByEvent returns one row per academy with a payment record.
func (s *PaymentService) ListByEvent(ctx context.Context, user *models.User, eventID int) ([]models.AcademyPayment, error) {
	if _, err := s.ownedEvent(ctx, user, eventID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByEvent(ctx, eventID)
}

// RecordPayment sets the amount an academy has paid so far and rebalances
// the status.
func (s *PaymentService) RecordPayment(ctx context.Context, user *models.User, eventID, academyID int, paidTotal float64) (*models.AcademyPayment, error) {
	if paidTotal < 0 {
		return nil, ErrValidationFailed
	}
	if _, err := s.ownedEvent(ctx, user, eventID); err != nil {
		return nil, err
	}

	payment, err := s.paymentRepo.Get(ctx, eventID, academyID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	payment.PaidTotal = paidTotal
	payment.Recalculate()
	if err := s.paymentRepo.Upsert(ctx, nil, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) ownedEvent(ctx context.Context, user *models.User, eventID int) (*models.Event, error) {
	associationID, err := s.scope.RequireAssociationManager(ctx, user)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.AssociationID != associationID && !user.HasRole(models.RoleAdmin) {
		return nil, ErrEventNotFound
	}
	return event, nil
}
