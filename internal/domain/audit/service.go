package audit

import (
	"context"

	"staffleave/internal/domain/apperr"
	"staffleave/internal/domain/auth"
)

type Reader interface {
	Count(ctx context.Context, filter Filter) (int, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]Entry, error)
}

type Page struct {
	Items  []Entry `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// Service exposes the trail for review. Only administrators may read it.
type Service struct {
	Store Reader
}

func NewService(store Reader) *Service {
	return &Service{Store: store}
}

func (s *Service) List(ctx context.Context, actor auth.Actor, filter Filter, limit, offset int) (Page, error) {
	if !auth.CanManageUsers(actor.Role) {
		return Page{}, apperr.ErrForbidden
	}
	total, err := s.Store.Count(ctx, filter)
	if err != nil {
		return Page{}, err
	}
	items, err := s.Store.List(ctx, filter, limit, offset)
	if err != nil {
		return Page{}, err
	}
	return Page{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}
