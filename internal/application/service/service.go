package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"activities/internal/appers"
	"activities/internal/application/entity"
	"activities/internal/application/repo"
	"activities/internal/transport/producer"
	"activities/pkg/config"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

type Service interface {
	CreateActivity(ctx context.Context, creator *entity.User, req *entity.ActivityRequest) (*entity.Activity, error)
	AllActivities(ctx context.Context) ([]*entity.Activity, error)
	AvailableActivities(ctx context.Context) ([]*entity.Activity, error)
	ActivityByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error)
	ActivitiesByTagName(ctx context.Context, tagName string) ([]*entity.Activity, error)
	ActivitiesByName(ctx context.Context, name string) ([]*entity.Activity, error)
	ActivitiesByDate(ctx context.Context, date time.Time) ([]*entity.Activity, error)
	ModifyActivity(ctx context.Context, user *entity.User, id uuid.UUID, req *entity.ActivityRequest) (*entity.Activity, error)
	DeleteActivity(ctx context.Context, user *entity.User, id uuid.UUID) error
	AddAddress(ctx context.Context, user *entity.User, activityID, addressID uuid.UUID) error
	AddTags(ctx context.Context, user *entity.User, activityID uuid.UUID, names []string) (*entity.Activity, error)
	AddParticipant(ctx context.Context, user *entity.User, activityID uuid.UUID) (string, error)
	RemoveParticipant(ctx context.Context, creator *entity.User, activityID, userID uuid.UUID) (string, error)
	FreePlace(ctx context.Context, user *entity.User, activityID uuid.UUID) (string, error)
	RemoveAddressFromActivities(ctx context.Context, addressID uuid.UUID) error
	RemoveTagFromActivities(ctx context.Context, tagID uuid.UUID) error
	DeleteOldActivities(ctx context.Context, days *int)

	UserByUsername(ctx context.Context, username string) (*entity.User, error)

	OpinionsByActivity(ctx context.Context, activityID uuid.UUID) ([]*entity.Opinion, error)
	AddOpinion(ctx context.Context, user *entity.User, activityID uuid.UUID, req *entity.OpinionRequest) (*entity.Opinion, error)
	DeleteOpinion(ctx context.Context, user *entity.User, activityID uuid.UUID) error

	RelayActivityRun(ctx context.Context)

	HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error)
}

type ServiceImpl struct {
	repo          repo.Repo
	transactions  repo.Transactions
	kafkaProducer producer.Producer
	logger        *zap.SugaredLogger
	cfg           *config.RelayConfig

	// intn — источник случайности для продвижения из листа ожидания,
	// подменяется в тестах на детерминированный.
	intn func(n int) int
	now  func() time.Time
}

func NewService(repo repo.Repo, transactions repo.Transactions, kafkaProducer producer.Producer, logger *zap.SugaredLogger, cfg *config.RelayConfig) *ServiceImpl {
	return &ServiceImpl{
		repo:          repo,
		transactions:  transactions,
		kafkaProducer: kafkaProducer,
		logger:        logger,
		cfg:           cfg,
		intn:          rand.Intn,
		now:           time.Now,
	}
}

// UserByUsername отдаёт личность по логину из токена.
func (s *ServiceImpl) UserByUsername(ctx context.Context, username string) (*entity.User, error) {
	user, err := s.repo.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, appers.ErrUserNotFound
	}
	return user, nil
}

// HealthCheck проверяет доступность БД и Kafka
func (s *ServiceImpl) HealthCheck(ctx context.Context) (dbHealthy bool, kafkaHealthy bool, err error) {
	// Проверка БД через repo
	dbErr := s.repo.HealthCheck(ctx)
	dbHealthy = dbErr == nil

	// Проверка Kafka через producer
	kafkaErr := s.kafkaProducer.HealthCheck(ctx)
	kafkaHealthy = kafkaErr == nil

	// Возвращаем ошибку только если обе проверки провалились
	if !dbHealthy && !kafkaHealthy {
		return dbHealthy, kafkaHealthy, fmt.Errorf("database: %v, kafka: %v", dbErr, kafkaErr)
	}

	return dbHealthy, kafkaHealthy, nil
}
