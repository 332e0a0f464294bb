package services

import (
	"context"
	"time"

	"orderdesk/internal/domain"
	"orderdesk/internal/domain/models"
	"orderdesk/internal/listing"
	"orderdesk/internal/utils"
)

type UserService struct {
	Users   UserStore
	MaxPage int
	Now     func() time.Time
}

func (s UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// List returns regular users matching search against name, email or phone.
func (s UserService) List(ctx context.Context, search, rawPage, rawLimit string) (listing.Result[models.User], error) {
	page := listing.ParsePage(rawPage, rawLimit, s.MaxPage)
	users, total, err := s.Users.List(ctx, listing.BuildUserFilter(search), page)
	if err != nil {
		return listing.Result[models.User]{}, err
	}
	return listing.NewResult(users, page, total), nil
}

func (s UserService) Update(ctx context.Context, id string, body map[string]any) (models.User, error) {
	if !domain.ValidID(id) {
		return models.User{}, domain.ValidationError{Field: "id", Msg: "Invalid user id"}
	}
	set, err := domain.UserUpdates.Apply(body)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.Users.Update(ctx, id, set, s.now())
	if err != nil {
		return models.User{}, err
	}
	utils.LogEvent(utils.RequestID(ctx), "users", "update", "user_id="+id)
	return u, nil
}

func (s UserService) Delete(ctx context.Context, id string) error {
	if !domain.ValidID(id) {
		return domain.ValidationError{Field: "id", Msg: "Invalid user id"}
	}
	if err := s.Users.Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(utils.RequestID(ctx), "users", "delete", "user_id="+id)
	return nil
}
