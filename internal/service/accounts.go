package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/payshield/payshield/internal/models"
)

// AccountService exposes account reads for the API surface.
type AccountService struct {
	store Store
}

func NewAccountService(store Store) *AccountService {
	return &AccountService{store: store}
}

// PrimaryAccount returns the user's primary account with its live balance.
func (s *AccountService) PrimaryAccount(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	account, err := s.store.Accounts().GetPrimaryAccount(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("primary account: %w", err)
	}
	return account, nil
}
