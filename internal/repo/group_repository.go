package repo

import (
	"context"
	"fmt"

	"github.com/fayyozbobokulov/workplace-connect-server/internal/db"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/model"
)

// GroupRepository answers the persistent-membership question used to
// authorize room joins and group sends. It is deliberately separate from the
// hub's room state: being a group member does not imply having joined the
// group's broadcast room.
type GroupRepository interface {
	IsMember(ctx context.Context, userID, groupID string) (bool, error)
}

type groupRepository struct {
	mongoRepo *db.Repository[model.Group]
}

func NewGroupRepository(repo *db.Repository[model.Group]) GroupRepository {
	return &groupRepository{
		mongoRepo: repo,
	}
}

func (r *groupRepository) IsMember(ctx context.Context, userID, groupID string) (bool, error) {
	filter := db.NewFilter().
		Eq("group_id", groupID).
		Eq("is_active", true).
		Eq("member_ids", userID).
		Build()

	ok, err := r.mongoRepo.Exists(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("membership check failed: %w", err)
	}
	return ok, nil
}
