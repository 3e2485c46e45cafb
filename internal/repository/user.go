package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/storage"
)

// UserRepository: справочник users (общий для всех устройств на сервере).
type UserRepository struct {
	store storage.DocumentStore
}

func NewUserRepository(store storage.DocumentStore) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	defer logger.DeferLogDuration("user.List", time.Now())()
	users := make([]model.User, 0, 16)
	if _, err := loadJSON(ctx, r.store, storage.UsersKey, &users); err != nil {
		return nil, fmt.Errorf("userRepo.List: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

// Save добавляет пользователя или заменяет запись с тем же id.
func (r *UserRepository) Save(ctx context.Context, u *model.User) error {
	defer logger.DeferLogDuration("user.Save", time.Now())()
	users, err := r.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range users {
		if users[i].ID == u.ID {
			users[i] = *u
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, *u)
	}
	if err := saveJSON(ctx, r.store, storage.UsersKey, users); err != nil {
		return fmt.Errorf("userRepo.Save: %w", err)
	}
	return nil
}
