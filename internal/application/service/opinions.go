package service

import (
	"context"

	"activities/internal/appers"
	"activities/internal/application/entity"

	"github.com/gofrs/uuid"
)

func (s *ServiceImpl) OpinionsByActivity(ctx context.Context, activityID uuid.UUID) ([]*entity.Opinion, error) {
	s.logger.Debugf("[activity: %s] OpinionsByActivity started", activityID)

	act, err := s.repo.ActivityByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if act == nil {
		return nil, appers.ErrActivityNotFound
	}

	opinions, err := s.repo.OpinionsByActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if len(opinions) == 0 {
		return nil, appers.ErrOpinionNotFound
	}
	return opinions, nil
}

// AddOpinion принимает оценку только от текущего участника, одну на пару
// (активность, пользователь), rating в пределах [0,10].
func (s *ServiceImpl) AddOpinion(ctx context.Context, user *entity.User, activityID uuid.UUID, req *entity.OpinionRequest) (*entity.Opinion, error) {
	s.logger.Debugf("[activity: %s] AddOpinion from %s started", activityID, user.Username)

	var opinion *entity.Opinion
	err := s.transactions.Within(ctx, func(ctx context.Context) error {
		act, err := s.repo.ActivityByIDForUpdate(ctx, activityID)
		if err != nil {
			return err
		}
		if act == nil {
			return appers.ErrActivityNotFound
		}
		if !act.IsParticipant(user.ID) {
			return appers.NotParticipantConflict(user.Username)
		}
		if req.Rating < 0 || req.Rating > 10 {
			return appers.ErrRatingOutOfRange
		}

		exists, err := s.repo.OpinionExists(ctx, activityID, user.ID)
		if err != nil {
			return err
		}
		if exists {
			return appers.OpinionAlreadyAdded(user.Username)
		}

		opinion = &entity.Opinion{
			ActivityID: activityID,
			UserID:     user.ID,
			Username:   user.Username,
			Rating:     req.Rating,
			Comment:    req.Comment,
		}
		return s.repo.InsertOpinion(ctx, opinion)
	})
	if err != nil {
		return nil, err
	}
	return opinion, nil
}

// DeleteOpinion удаляет собственную оценку пользователя.
func (s *ServiceImpl) DeleteOpinion(ctx context.Context, user *entity.User, activityID uuid.UUID) error {
	s.logger.Debugf("[activity: %s] DeleteOpinion from %s started", activityID, user.Username)

	return s.transactions.Within(ctx, func(ctx context.Context) error {
		return s.repo.DeleteOpinion(ctx, activityID, user.ID)
	})
}

// ClearOpinionsForActivity — ворота удаления активности: false, пока по
// активности существует хоть одна оценка.
func (s *ServiceImpl) ClearOpinionsForActivity(ctx context.Context, activityID uuid.UUID) (bool, error) {
	opinions, err := s.repo.OpinionsByActivity(ctx, activityID)
	if err != nil {
		return false, err
	}
	if len(opinions) > 0 {
		return false, nil
	}
	if err := s.repo.DeleteOpinionsByActivity(ctx, activityID); err != nil {
		return false, err
	}
	return true, nil
}
