package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"activities/internal/appers"
	"activities/internal/application/entity"

	"github.com/gofrs/uuid"
)

func creatorCheck(user *entity.User, act *entity.Activity) bool {
	return act.Creator.Username == user.Username
}

func (s *ServiceImpl) CreateActivity(ctx context.Context, creator *entity.User, req *entity.ActivityRequest) (*entity.Activity, error) {
	s.logger.Debugf("[user: %s] CreateActivity started", creator.Username)

	if err := checkRules(req, s.now()); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate activity id: %w", err)
	}

	act := &entity.Activity{
		ID:           id,
		Name:         req.Name,
		Description:  req.Description,
		Date:         req.ComposedDate(),
		StartTime:    entity.ClockTime{Hour: req.StartHour, Minute: req.StartMinute},
		EndTime:      entity.ClockTime{Hour: req.EndHour, Minute: req.EndMinute},
		NumPlaces:    req.NumPlaces,
		AgeLimit:     req.AgeLimit,
		Creator:      *creator,
		Tags:         []entity.Tag{},
		Participants: []entity.User{},
		WaitingList:  []entity.User{},
	}

	payload, err := json.Marshal(act)
	if err != nil {
		s.logger.Errorf("[activity: %s] failed to marshal activity to JSON: %v", act.ID, err)
		return nil, fmt.Errorf("failed to marshal activity: %w", err)
	}

	if err := s.transactions.CreateActivity(ctx, act, payload); err != nil {
		return nil, err
	}
	return act, nil
}

func (s *ServiceImpl) AllActivities(ctx context.Context) ([]*entity.Activity, error) {
	s.logger.Debug("AllActivities started")

	activities, err := s.repo.AllActivities(ctx)
	if err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		return nil, appers.ErrNoDataFound
	}
	return activities, nil
}

// AvailableActivities возвращает активности с датой позже сегодняшней.
func (s *ServiceImpl) AvailableActivities(ctx context.Context) ([]*entity.Activity, error) {
	s.logger.Debug("AvailableActivities started")

	activities, err := s.repo.AllActivities(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	available := make([]*entity.Activity, 0)
	for _, act := range activities {
		if act.Date.After(today) {
			available = append(available, act)
		}
	}
	if len(available) == 0 {
		return nil, appers.ErrNoDataFound
	}
	return available, nil
}

func (s *ServiceImpl) ActivityByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	s.logger.Debugf("[activity: %s] ActivityByID started", id)

	act, err := s.repo.ActivityByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if act == nil {
		return nil, appers.ErrActivityNotFound
	}
	return act, nil
}

func (s *ServiceImpl) ActivitiesByTagName(ctx context.Context, tagName string) ([]*entity.Activity, error) {
	s.logger.Debugf("[tag: %s] ActivitiesByTagName started", tagName)

	tag, err := s.repo.TagByName(ctx, tagName)
	if err != nil {
		return nil, err
	}
	if tag == nil {
		return nil, appers.ErrTagNotFound
	}

	activities, err := s.repo.ActivitiesByTag(ctx, tag.ID)
	if err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		return nil, appers.ErrNoDataFound
	}
	return activities, nil
}

func (s *ServiceImpl) ActivitiesByName(ctx context.Context, name string) ([]*entity.Activity, error) {
	s.logger.Debugf("[name: %s] ActivitiesByName started", name)

	activities, err := s.repo.ActivitiesByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		return nil, appers.ErrNoDataFound
	}
	return activities, nil
}

func (s *ServiceImpl) ActivitiesByDate(ctx context.Context, date time.Time) ([]*entity.Activity, error) {
	s.logger.Debugf("[date: %s] ActivitiesByDate started", date.Format("2006-01-02"))

	activities, err := s.repo.ActivitiesByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		return nil, appers.ErrNoDataFound
	}
	return activities, nil
}

// ModifyActivity применяет поля заявки без повторного прогона правил,
// затем проверяет коллизию (имя, дата, время) по всей базе. Проверка не
// исключает саму изменяемую активность.
func (s *ServiceImpl) ModifyActivity(ctx context.Context, user *entity.User, id uuid.UUID, req *entity.ActivityRequest) (*entity.Activity, error) {
	s.logger.Debugf("[activity: %s] ModifyActivity started by %s", id, user.Username)

	var updated *entity.Activity
	err := s.transactions.Within(ctx, func(ctx context.Context) error {
		act, err := s.repo.ActivityByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if act == nil {
			return appers.ErrActivityNotFound
		}
		if !creatorCheck(user, act) {
			return appers.NotCreator(user.Username)
		}

		act.Name = req.Name
		act.Description = req.Description
		act.Date = req.ComposedDate()
		act.StartTime = entity.ClockTime{Hour: req.StartHour, Minute: req.StartMinute}
		act.EndTime = entity.ClockTime{Hour: req.EndHour, Minute: req.EndMinute}
		act.NumPlaces = req.NumPlaces
		act.AgeLimit = req.AgeLimit

		exists, err := s.repo.ActivityExists(ctx, act.Name, act.Date, act.StartTime, act.EndTime)
		if err != nil {
			return err
		}
		if exists {
			return appers.ErrActivityExists
		}

		if err := s.repo.UpdateActivity(ctx, act); err != nil {
			return err
		}
		updated = act
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteActivity удаляет активность целиком. Предварительно должны удалиться
// связанные оценки; если это невозможно, активность остаётся нетронутой.
func (s *ServiceImpl) DeleteActivity(ctx context.Context, user *entity.User, id uuid.UUID) error {
	s.logger.Debugf("[activity: %s] DeleteActivity started by %s", id, user.Username)

	return s.transactions.Within(ctx, func(ctx context.Context) error {
		act, err := s.repo.ActivityByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if act == nil {
			return appers.ErrActivityNotFound
		}
		if !creatorCheck(user, act) {
			return appers.NotCreator(user.Username)
		}

		ok, err := s.ClearOpinionsForActivity(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return appers.ErrOpinionsNotDeleted
		}

		if err := s.repo.DeleteActivity(ctx, id); err != nil {
			return err
		}

		payload, err := json.Marshal(act)
		if err != nil {
			return fmt.Errorf("failed to marshal activity: %w", err)
		}
		return s.repo.InsertOutbox(ctx, &entity.OutboxEvent{
			AggregateID:   act.ID,
			AggregateType: entity.AggregateActivity,
			EventType:     entity.ActivityDeleted,
			Payload:       payload,
			Status:        entity.OutboxNew,
		})
	})
}

func (s *ServiceImpl) AddAddress(ctx context.Context, user *entity.User, activityID, addressID uuid.UUID) error {
	s.logger.Debugf("[activity: %s] AddAddress %s started by %s", activityID, addressID, user.Username)

	return s.transactions.Within(ctx, func(ctx context.Context) error {
		act, err := s.repo.ActivityByIDForUpdate(ctx, activityID)
		if err != nil {
			return err
		}
		if act == nil {
			return appers.ErrActivityNotFound
		}

		address, err := s.repo.AddressByID(ctx, addressID)
		if err != nil {
			return err
		}
		if address == nil {
			return appers.ErrAddressNotFound
		}

		if !creatorCheck(user, act) {
			return appers.NotCreator(user.Username)
		}

		if err := s.checkBookingConflict(ctx, act, address); err != nil {
			return err
		}

		act.AddressID = &address.ID
		return s.repo.UpdateActivity(ctx, act)
	})
}

// AddTags привязывает существующие тэги по именам. Неизвестные имена и уже
// привязанные тэги молча пропускаются, но пустой итоговый набор — ошибка.
func (s *ServiceImpl) AddTags(ctx context.Context, user *entity.User, activityID uuid.UUID, names []string) (*entity.Activity, error) {
	s.logger.Debugf("[activity: %s] AddTags started by %s", activityID, user.Username)

	var result *entity.Activity
	err := s.transactions.Within(ctx, func(ctx context.Context) error {
		act, err := s.repo.ActivityByIDForUpdate(ctx, activityID)
		if err != nil {
			return err
		}
		if act == nil {
			return appers.ErrActivityNotFound
		}
		if !creatorCheck(user, act) {
			return appers.NotCreator(user.Username)
		}

		for _, name := range names {
			if act.HasTag(name) {
				continue
			}
			tag, err := s.repo.TagByName(ctx, name)
			if err != nil {
				return err
			}
			if tag == nil {
				continue
			}
			if err := s.repo.AttachTag(ctx, act.ID, tag.ID); err != nil {
				return err
			}
			act.Tags = append(act.Tags, *tag)
		}

		if len(act.Tags) == 0 {
			return appers.ErrNoTagsResolved
		}
		result = act
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddParticipant записывает самого пользователя: единственная операция без
// проверки создателя после создания активности.
func (s *ServiceImpl) AddParticipant(ctx context.Context, user *entity.User, activityID uuid.UUID) (string, error) {
	s.logger.Debugf("[activity: %s] AddParticipant %s started", activityID, user.Username)

	var message string
	err := s.transactions.Within(ctx, func(ctx context.Context) error {
		act, err := s.repo.ActivityByIDForUpdate(ctx, activityID)
		if err != nil {
			return err
		}
		if act == nil {
			return appers.ErrActivityNotFound
		}

		message, err = enroll(act, user, s.now())
		if err != nil {
			return err
		}

		if err := s.repo.ReplaceParticipants(ctx, act.ID, act.Participants); err != nil {
			return err
		}
		if err := s.repo.ReplaceWaitingList(ctx, act.ID, act.WaitingList); err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]any{
			"activityId": act.ID,
			"userId":     user.ID,
			"username":   user.Username,
			"waitlisted": act.IsWaiting(user.ID),
		})
		if err != nil {
			return fmt.Errorf("failed to marshal enrollment: %w", err)
		}
		return s.repo.InsertOutbox(ctx, &entity.OutboxEvent{
			AggregateID:   act.ID,
			AggregateType: entity.AggregateActivity,
			EventType:     entity.ParticipantEnrolled,
			Payload:       payload,
			Status:        entity.OutboxNew,
		})
	})
	if err != nil {
		return "", err
	}
	return message, nil
}

func (s *ServiceImpl) RemoveParticipant(ctx context.Context, creator *entity.User, activityID, userID uuid.UUID) (string, error) {
	s.logger.Debugf("[activity: %s] RemoveParticipant %s started by %s", activityID, userID, creator.Username)

	var message string
	err := s.transactions.Within(ctx, func(ctx context.Context) error {
		act, err := s.repo.ActivityByIDForUpdate(ctx, activityID)
		if err != nil {
			return err
		}
		if act == nil {
			return appers.ErrActivityNotFound
		}

		target, err := s.repo.UserByID(ctx, userID)
		if err != nil {
			return err
		}
		if target == nil {
			return appers.ErrUserNotFound
		}

		if !creatorCheck(creator, act) {
			return appers.NotCreator(creator.Username)
		}

		message, err = removeParticipant(act, target)
		if err != nil {
			return err
		}
		return s.repo.ReplaceParticipants(ctx, act.ID, act.Participants)
	})
	if err != nil {
		return "", err
	}
	return message, nil
}

// FreePlace продвигает одного случайного пользователя из листа ожидания.
func (s *ServiceImpl) FreePlace(ctx context.Context, user *entity.User, activityID uuid.UUID) (string, error) {
	s.logger.Debugf("[activity: %s] FreePlace started by %s", activityID, user.Username)

	var message string
	err := s.transactions.Within(ctx, func(ctx context.Context) error {
		act, err := s.repo.ActivityByIDForUpdate(ctx, activityID)
		if err != nil {
			return err
		}
		if act == nil {
			return appers.ErrActivityNotFound
		}
		if !creatorCheck(user, act) {
			return appers.NotCreator(user.Username)
		}

		message, err = freePlace(act, s.intn)
		if err != nil {
			return err
		}

		if err := s.repo.ReplaceParticipants(ctx, act.ID, act.Participants); err != nil {
			return err
		}
		return s.repo.ReplaceWaitingList(ctx, act.ID, act.WaitingList)
	})
	if err != nil {
		return "", err
	}
	return message, nil
}

// RemoveAddressFromActivities отвязывает удалённый адрес от всех активностей.
func (s *ServiceImpl) RemoveAddressFromActivities(ctx context.Context, addressID uuid.UUID) error {
	s.logger.Infof("[address: %s] RemoveAddressFromActivities started", addressID)

	return s.transactions.Within(ctx, func(ctx context.Context) error {
		activities, err := s.repo.ActivitiesByAddress(ctx, addressID)
		if err != nil {
			return err
		}
		for _, act := range activities {
			if err := s.repo.DetachAddress(ctx, act.ID); err != nil {
				return err
			}
		}
		s.logger.Infof("[address: %s] detached from %d activities", addressID, len(activities))
		return nil
	})
}

// RemoveTagFromActivities отвязывает удалённый тэг от всех активностей.
func (s *ServiceImpl) RemoveTagFromActivities(ctx context.Context, tagID uuid.UUID) error {
	s.logger.Infof("[tag: %s] RemoveTagFromActivities started", tagID)

	return s.transactions.Within(ctx, func(ctx context.Context) error {
		activities, err := s.repo.ActivitiesByTag(ctx, tagID)
		if err != nil {
			return err
		}
		for _, act := range activities {
			if err := s.repo.DetachTag(ctx, act.ID, tagID); err != nil {
				return err
			}
		}
		s.logger.Infof("[tag: %s] detached from %d activities", tagID, len(activities))
		return nil
	})
}

func (s *ServiceImpl) DeleteOldActivities(ctx context.Context, days *int) {
	s.logger.Debug("DeleteOldActivities started")

	_ = s.repo.DeleteOldActivities(ctx, days)
}
