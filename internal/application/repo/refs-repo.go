package repo

import (
	"context"
	"errors"
	"fmt"

	"activities/internal/appers"
	"activities/internal/application/entity"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
)

func (r *RepoImpl) AddressByID(ctx context.Context, id uuid.UUID) (*entity.Address, error) {
	var addr entity.Address
	err := r.db.QueryRow(ctx, getAddress, id).Scan(&addr.ID, &addr.Street, &addr.City, &addr.Country)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil
	case err != nil:
		r.logger.Errorf("[address: %s] error getting from DB: %v", id, err)
		return nil, fmt.Errorf("error getting address from DB: %w", err)
	}
	return &addr, nil
}

func (r *RepoImpl) TagByID(ctx context.Context, id uuid.UUID) (*entity.Tag, error) {
	var tag entity.Tag
	err := r.db.QueryRow(ctx, getTagByID, id).Scan(&tag.ID, &tag.Name)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil
	case err != nil:
		r.logger.Errorf("[tag: %s] error getting from DB: %v", id, err)
		return nil, fmt.Errorf("error getting tag from DB: %w", err)
	}
	return &tag, nil
}

func (r *RepoImpl) TagByName(ctx context.Context, name string) (*entity.Tag, error) {
	var tag entity.Tag
	err := r.db.QueryRow(ctx, getTagByName, name).Scan(&tag.ID, &tag.Name)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil
	case err != nil:
		r.logger.Errorf("[tag: %s] error getting from DB: %v", name, err)
		return nil, fmt.Errorf("error getting tag from DB: %w", err)
	}
	return &tag, nil
}

func (r *RepoImpl) TagExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, tagExists, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking tag existence: %w", err)
	}
	return exists, nil
}

func (r *RepoImpl) UserByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var u entity.User
	err := r.db.QueryRow(ctx, getUserByID, id).Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.BirthDate)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil
	case err != nil:
		r.logger.Errorf("[user: %s] error getting from DB: %v", id, err)
		return nil, fmt.Errorf("error getting user from DB: %w", err)
	}
	return &u, nil
}

func (r *RepoImpl) UserByUsername(ctx context.Context, username string) (*entity.User, error) {
	var u entity.User
	err := r.db.QueryRow(ctx, getUserByUsername, username).Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.BirthDate)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil
	case err != nil:
		r.logger.Errorf("[user: %s] error getting from DB: %v", username, err)
		return nil, fmt.Errorf("error getting user from DB: %w", err)
	}
	return &u, nil
}

func (r *RepoImpl) OpinionsByActivity(ctx context.Context, activityID uuid.UUID) ([]*entity.Opinion, error) {
	rows, err := r.db.Query(ctx, opinionsByActivity, activityID)
	if err != nil {
		r.logger.Errorf("[activity: %s] error getting opinions from DB: %v", activityID, err)
		return nil, fmt.Errorf("error getting opinions from DB: %w", err)
	}
	defer rows.Close()

	opinions := make([]*entity.Opinion, 0)
	for rows.Next() {
		var op entity.Opinion
		if err := rows.Scan(&op.ActivityID, &op.UserID, &op.Username, &op.Rating, &op.Comment); err != nil {
			return nil, fmt.Errorf("error scanning opinion: %w", err)
		}
		opinions = append(opinions, &op)
	}
	return opinions, rows.Err()
}

func (r *RepoImpl) OpinionExists(ctx context.Context, activityID, userID uuid.UUID) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, opinionExists, activityID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking opinion existence: %w", err)
	}
	return exists, nil
}

func (r *RepoImpl) InsertOpinion(ctx context.Context, op *entity.Opinion) error {
	r.logger.Debugf("[activity: %s] inserting opinion from user %s", op.ActivityID, op.UserID)

	_, err := r.db.Exec(ctx, insertOpinion, op.ActivityID, op.UserID, op.Rating, op.Comment)
	if isDuplicateKeyError(err) {
		return appers.ErrOpinionExists
	}
	if err != nil {
		r.logger.Errorf("[activity: %s] error inserting opinion: %v", op.ActivityID, err)
		return fmt.Errorf("error inserting opinion: %w", err)
	}
	return nil
}

func (r *RepoImpl) DeleteOpinion(ctx context.Context, activityID, userID uuid.UUID) error {
	result, err := r.db.Exec(ctx, deleteOpinion, activityID, userID)
	if err != nil {
		r.logger.Errorf("[activity: %s] error deleting opinion: %v", activityID, err)
		return fmt.Errorf("error deleting opinion: %w", err)
	}
	if result.RowsAffected() == 0 {
		return appers.ErrOpinionNotFound
	}
	return nil
}

func (r *RepoImpl) DeleteOpinionsByActivity(ctx context.Context, activityID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, deleteOpinionsByActivity, activityID); err != nil {
		r.logger.Errorf("[activity: %s] error deleting opinions: %v", activityID, err)
		return fmt.Errorf("error deleting opinions: %w", err)
	}
	return nil
}
