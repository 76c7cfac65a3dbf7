package hotel

import (
	"context"
	"strings"
)

// CreateRequest carries data to create a hotel.
type CreateRequest struct {
	OwnerID     string
	Name        string
	City        string
	Country     string
	Address     string
	Description string
}

// UpdateRequest carries data for partial updates.
type UpdateRequest struct {
	Name        *string
	City        *string
	Country     *string
	Address     *string
	Description *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Hotel, error)
	GetByID(ctx context.Context, id string) (*Hotel, error)
	List(ctx context.Context, filter Filter) ([]*Hotel, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Hotel, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Hotel, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(req.City) == "" {
		return nil, ErrEmptyCity
	}

	h := &Hotel{
		OwnerID:     req.OwnerID,
		Name:        strings.TrimSpace(req.Name),
		City:        strings.TrimSpace(req.City),
		Country:     strings.TrimSpace(req.Country),
		Address:     strings.TrimSpace(req.Address),
		Description: req.Description,
	}

	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Hotel, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Hotel, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Hotel, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		h.Name = strings.TrimSpace(*req.Name)
	}
	if req.City != nil {
		if strings.TrimSpace(*req.City) == "" {
			return nil, ErrEmptyCity
		}
		h.City = strings.TrimSpace(*req.City)
	}
	if req.Country != nil {
		h.Country = strings.TrimSpace(*req.Country)
	}
	if req.Address != nil {
		h.Address = strings.TrimSpace(*req.Address)
	}
	if req.Description != nil {
		h.Description = *req.Description
	}

	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
