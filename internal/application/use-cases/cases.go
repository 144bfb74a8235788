package use_cases

import (
	"context"
	"encoding/json"
	"time"

	"activities/internal/application/entity"
	"activities/internal/application/service"
	"activities/pkg/config"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type UseCaser interface {
	CreateActivity(ctx context.Context, creator entity.User, req entity.ActivityRequest) (*entity.Activity, error)
	AllActivities(ctx context.Context) ([]*entity.Activity, error)
	AvailableActivities(ctx context.Context) ([]*entity.Activity, error)
	ActivityByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error)
	ActivitiesByTagName(ctx context.Context, tagName string) ([]*entity.Activity, error)
	ActivitiesByName(ctx context.Context, name string) ([]*entity.Activity, error)
	ActivitiesByDate(ctx context.Context, date time.Time) ([]*entity.Activity, error)
	ModifyActivity(ctx context.Context, user entity.User, id uuid.UUID, req entity.ActivityRequest) (*entity.Activity, error)
	DeleteActivity(ctx context.Context, user entity.User, id uuid.UUID) error
	AddAddress(ctx context.Context, user entity.User, activityID, addressID uuid.UUID) error
	AddTags(ctx context.Context, user entity.User, activityID uuid.UUID, names []string) (*entity.Activity, error)
	AddParticipant(ctx context.Context, user entity.User, activityID uuid.UUID) (string, error)
	RemoveParticipant(ctx context.Context, creator entity.User, activityID, userID uuid.UUID) (string, error)
	FreePlace(ctx context.Context, user entity.User, activityID uuid.UUID) (string, error)
	DeleteOldActivities(ctx context.Context)

	IdentityByUsername(ctx context.Context, username string) (*entity.User, error)

	OpinionsByActivity(ctx context.Context, activityID uuid.UUID) ([]*entity.Opinion, error)
	AddOpinion(ctx context.Context, user entity.User, activityID uuid.UUID, req entity.OpinionRequest) (*entity.Opinion, error)
	DeleteOpinion(ctx context.Context, user entity.User, activityID uuid.UUID) error

	RunRelay(ctx context.Context)
	ConsumerMessage(ctx context.Context, msg []byte, msgTime time.Time)

	HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error)
}
type UseCase struct {
	service service.Service
	logger  *zap.SugaredLogger
	conf    *config.Config
}

func NewUseCase(service service.Service, logger *zap.SugaredLogger, conf *config.Config) *UseCase {
	return &UseCase{
		service: service,
		logger:  logger,
		conf:    conf,
	}
}

func (u *UseCase) HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error) {
	return u.service.HealthCheck(ctx)
}

func (u *UseCase) CreateActivity(ctx context.Context, creator entity.User, req entity.ActivityRequest) (*entity.Activity, error) {
	u.logger.Debugf("[user: %s] CreateActivity started", creator.Username)
	return u.service.CreateActivity(ctx, &creator, &req)
}

func (u *UseCase) AllActivities(ctx context.Context) ([]*entity.Activity, error) {
	return u.service.AllActivities(ctx)
}

func (u *UseCase) AvailableActivities(ctx context.Context) ([]*entity.Activity, error) {
	return u.service.AvailableActivities(ctx)
}

func (u *UseCase) ActivityByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	return u.service.ActivityByID(ctx, id)
}

func (u *UseCase) ActivitiesByTagName(ctx context.Context, tagName string) ([]*entity.Activity, error) {
	return u.service.ActivitiesByTagName(ctx, tagName)
}

func (u *UseCase) ActivitiesByName(ctx context.Context, name string) ([]*entity.Activity, error) {
	return u.service.ActivitiesByName(ctx, name)
}

func (u *UseCase) ActivitiesByDate(ctx context.Context, date time.Time) ([]*entity.Activity, error) {
	return u.service.ActivitiesByDate(ctx, date)
}

func (u *UseCase) ModifyActivity(ctx context.Context, user entity.User, id uuid.UUID, req entity.ActivityRequest) (*entity.Activity, error) {
	u.logger.Debugf("[activity: %s] ModifyActivity started", id)
	return u.service.ModifyActivity(ctx, &user, id, &req)
}

func (u *UseCase) DeleteActivity(ctx context.Context, user entity.User, id uuid.UUID) error {
	u.logger.Debugf("[activity: %s] DeleteActivity started", id)
	return u.service.DeleteActivity(ctx, &user, id)
}

func (u *UseCase) AddAddress(ctx context.Context, user entity.User, activityID, addressID uuid.UUID) error {
	return u.service.AddAddress(ctx, &user, activityID, addressID)
}

func (u *UseCase) AddTags(ctx context.Context, user entity.User, activityID uuid.UUID, names []string) (*entity.Activity, error) {
	return u.service.AddTags(ctx, &user, activityID, names)
}

func (u *UseCase) AddParticipant(ctx context.Context, user entity.User, activityID uuid.UUID) (string, error) {
	return u.service.AddParticipant(ctx, &user, activityID)
}

func (u *UseCase) RemoveParticipant(ctx context.Context, creator entity.User, activityID, userID uuid.UUID) (string, error) {
	return u.service.RemoveParticipant(ctx, &creator, activityID, userID)
}

func (u *UseCase) FreePlace(ctx context.Context, user entity.User, activityID uuid.UUID) (string, error) {
	return u.service.FreePlace(ctx, &user, activityID)
}

func (u *UseCase) DeleteOldActivities(ctx context.Context) {
	days := u.conf.Cron.DaysToDelete
	u.logger.Infof("DeleteOldActivities called with daysToDelete=%d", days)
	u.service.DeleteOldActivities(ctx, &days)
}

func (u *UseCase) IdentityByUsername(ctx context.Context, username string) (*entity.User, error) {
	return u.service.UserByUsername(ctx, username)
}

func (u *UseCase) OpinionsByActivity(ctx context.Context, activityID uuid.UUID) ([]*entity.Opinion, error) {
	return u.service.OpinionsByActivity(ctx, activityID)
}

func (u *UseCase) AddOpinion(ctx context.Context, user entity.User, activityID uuid.UUID, req entity.OpinionRequest) (*entity.Opinion, error) {
	return u.service.AddOpinion(ctx, &user, activityID, &req)
}

func (u *UseCase) DeleteOpinion(ctx context.Context, user entity.User, activityID uuid.UUID) error {
	return u.service.DeleteOpinion(ctx, &user, activityID)
}

func (u *UseCase) RunRelay(ctx context.Context) {
	u.logger.Debug("relay started")
	u.service.RelayActivityRun(ctx)
}

// resourceDeleted — уведомление о внешнем удалении справочного ресурса.
type resourceDeleted struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// ConsumerMessage обрабатывает уведомления address_deleted / tag_deleted:
// массово отвязывает удалённый ресурс от всех активностей.
func (u *UseCase) ConsumerMessage(ctx context.Context, msg []byte, msgTime time.Time) {
	u.logger.Debugf("consumer message: %s, time: %v", msg, msgTime)

	var notice resourceDeleted
	if err := json.Unmarshal(msg, &notice); err != nil {
		u.logger.Errorf("consumer message parse failed: %v", err)
		return
	}

	switch notice.Type {
	case "address_deleted":
		if err := u.service.RemoveAddressFromActivities(ctx, notice.ID); err != nil {
			u.logger.Errorf("[address: %s] bulk detach failed: %v", notice.ID, err)
		}
	case "tag_deleted":
		if err := u.service.RemoveTagFromActivities(ctx, notice.ID); err != nil {
			u.logger.Errorf("[tag: %s] bulk detach failed: %v", notice.ID, err)
		}
	default:
		u.logger.Warnf("unknown consumer message type: %q", notice.Type)
	}
}
