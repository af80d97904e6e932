package account

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"aos/internal/identity/models"
	id "aos/pkg/domain"
	"aos/pkg/platform/sentinel"
)

// InMemoryStore keeps accounts and their specialization rows in memory for
// tests and development.
type InMemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	nextSpec int64
	accounts map[id.AccountID]*models.Account
	specs    map[id.AccountID][]models.Specialization
}

// New constructs an empty in-memory account store.
func New() *InMemoryStore {
	return &InMemoryStore{
		accounts: make(map[id.AccountID]*models.Account),
		specs:    make(map[id.AccountID][]models.Specialization),
	}
}

func (s *InMemoryStore) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			return fmt.Errorf("email %q: %w", account.Email, sentinel.ErrDuplicate)
		}
		if account.NationalID != "" && existing.NationalID == account.NationalID {
			return fmt.Errorf("national id %q: %w", account.NationalID, sentinel.ErrDuplicate)
		}
		if account.EmployeeNumber != "" && existing.EmployeeNumber == account.EmployeeNumber {
			return fmt.Errorf("employee number %q: %w", account.EmployeeNumber, sentinel.ErrDuplicate)
		}
	}
	s.nextID++
	account.ID = id.AccountID(s.nextID)
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", accountID, sentinel.ErrNotFound)
	}
	copied := *account
	return &copied, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accounts {
		if strings.EqualFold(account.Email, email) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("account with email %q: %w", email, sentinel.ErrNotFound)
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]*models.Account, 0, len(s.accounts))
	for i := int64(1); i <= s.nextID; i++ {
		if account, ok := s.accounts[id.AccountID(i)]; ok {
			copied := *account
			accounts = append(accounts, &copied)
		}
	}
	return accounts, nil
}

func (s *InMemoryStore) ListByRole(_ context.Context, role models.Role) ([]*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var accounts []*models.Account
	for i := int64(1); i <= s.nextID; i++ {
		if account, ok := s.accounts[id.AccountID(i)]; ok && account.HasRole(role) {
			copied := *account
			accounts = append(accounts, &copied)
		}
	}
	return accounts, nil
}

func (s *InMemoryStore) Update(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; !ok {
		return fmt.Errorf("account %s: %w", account.ID, sentinel.ErrNotFound)
	}
	for _, existing := range s.accounts {
		if existing.ID == account.ID {
			continue
		}
		if strings.EqualFold(existing.Email, account.Email) {
			return fmt.Errorf("email %q: %w", account.Email, sentinel.ErrDuplicate)
		}
		if account.NationalID != "" && existing.NationalID == account.NationalID {
			return fmt.Errorf("national id %q: %w", account.NationalID, sentinel.ErrDuplicate)
		}
		if account.EmployeeNumber != "" && existing.EmployeeNumber == account.EmployeeNumber {
			return fmt.Errorf("employee number %q: %w", account.EmployeeNumber, sentinel.ErrDuplicate)
		}
	}
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, accountID id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[accountID]; !ok {
		return fmt.Errorf("account %s: %w", accountID, sentinel.ErrNotFound)
	}
	delete(s.accounts, accountID)
	delete(s.specs, accountID)
	return nil
}

func (s *InMemoryStore) CreateSpecializations(_ context.Context, accountID id.AccountID, roles []models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[accountID]; !ok {
		return fmt.Errorf("account %s: %w", accountID, sentinel.ErrNotFound)
	}
	for _, role := range roles {
		s.nextSpec++
		s.specs[accountID] = append(s.specs[accountID], models.Specialization{
			ID:        s.nextSpec,
			AccountID: accountID,
			Role:      role,
		})
	}
	return nil
}

func (s *InMemoryStore) DeleteSpecializations(_ context.Context, accountID id.AccountID, roles []models.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	remove := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		remove[role] = true
	}
	kept := s.specs[accountID][:0]
	for _, spec := range s.specs[accountID] {
		if !remove[spec.Role] {
			kept = append(kept, spec)
		}
	}
	s.specs[accountID] = kept
	return nil
}

func (s *InMemoryStore) ListSpecializations(_ context.Context, accountID id.AccountID) ([]models.Specialization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	specs := make([]models.Specialization, len(s.specs[accountID]))
	copy(specs, s.specs[accountID])
	return specs, nil
}
