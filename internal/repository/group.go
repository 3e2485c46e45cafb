package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/lingochat/internal/logger"
	"github.com/lingochat/internal/model"
	"github.com/lingochat/internal/storage"
)

type GroupRepository struct {
	store storage.DocumentStore
}

func NewGroupRepository(store storage.DocumentStore) *GroupRepository {
	return &GroupRepository{store: store}
}

func (r *GroupRepository) List(ctx context.Context) ([]model.Group, error) {
	defer logger.DeferLogDuration("group.List", time.Now())()
	groups := make([]model.Group, 0, 8)
	if _, err := loadJSON(ctx, r.store, storage.GroupsKey, &groups); err != nil {
		return nil, fmt.Errorf("groupRepo.List: %w", err)
	}
	return groups, nil
}

func (r *GroupRepository) GetByID(ctx context.Context, id string) (*model.Group, error) {
	groups, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].ID == id {
			return &groups[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *GroupRepository) Save(ctx context.Context, g *model.Group) error {
	defer logger.DeferLogDuration("group.Save", time.Now())()
	groups, err := r.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for i := range groups {
		if groups[i].ID == g.ID {
			groups[i] = *g
			replaced = true
			break
		}
	}
	if !replaced {
		groups = append(groups, *g)
	}
	if err := saveJSON(ctx, r.store, storage.GroupsKey, groups); err != nil {
		return fmt.Errorf("groupRepo.Save: %w", err)
	}
	return nil
}
