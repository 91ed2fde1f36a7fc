package services

import (
	"context"
	"fmt"

	"zando/internal/backend"
	"zando/internal/domain"
)

// AccountService covers the profile page and the admin customer and
// dashboard views.
type AccountService struct {
	API AccountAPI
}

func NewAccountService(api AccountAPI) *AccountService { return &AccountService{API: api} }

func (s *AccountService) Profile(ctx context.Context, u *domain.User) (domain.Profile, error) {
	if token(u) == "" {
		return domain.Profile{}, ErrUnauthenticated
	}
	p, err := s.API.Profile(ctx, u.Token, u.ID)
	if err != nil {
		return p, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, u *domain.User, f backend.ProfileForm) (domain.Profile, error) {
	if token(u) == "" {
		return domain.Profile{}, ErrUnauthenticated
	}
	f.UserID = u.ID
	p, err := s.API.UpdateProfile(ctx, u.Token, f)
	if err != nil {
		return p, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

// CustomerRow is a registered account joined with its profile, if any.
type CustomerRow struct {
	domain.Customer
	Profile domain.Profile
}

func (s *AccountService) Customers(ctx context.Context, admin *domain.User) ([]CustomerRow, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	customers, err := s.API.Customers(ctx, admin.Token)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	profiles, err := s.API.Profiles(ctx, admin.Token)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	byUser := make(map[int64]domain.Profile, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
	}
	rows := make([]CustomerRow, 0, len(customers))
	for _, c := range customers {
		rows = append(rows, CustomerRow{Customer: c, Profile: byUser[c.UserID]})
	}
	return rows, nil
}

func (s *AccountService) CustomerProfile(ctx context.Context, admin *domain.User, userID int64) (domain.Profile, error) {
	if err := requireAdmin(admin); err != nil {
		return domain.Profile{}, err
	}
	p, err := s.API.Profile(ctx, admin.Token, userID)
	if err != nil {
		return p, fmt.Errorf("load customer %d: %w", userID, err)
	}
	return p, nil
}

func (s *AccountService) DashboardStats(ctx context.Context, admin *domain.User) (domain.DashboardStats, error) {
	if err := requireAdmin(admin); err != nil {
		return domain.DashboardStats{}, err
	}
	st, err := s.API.DashboardStats(ctx, admin.Token)
	if err != nil {
		return st, fmt.Errorf("dashboard stats: %w", err)
	}
	return st, nil
}
