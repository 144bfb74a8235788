package use_cases

import (
	"context"
	"testing"
	"time"

	"activities/internal/application/entity"
	"activities/pkg/config"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubService фиксирует только вызовы массовой отвязки ресурсов.
type stubService struct {
	detachedAddresses []uuid.UUID
	detachedTags      []uuid.UUID
	deleteDays        []*int
}

func (s *stubService) CreateActivity(context.Context, *entity.User, *entity.ActivityRequest) (*entity.Activity, error) {
	return nil, nil
}
func (s *stubService) AllActivities(context.Context) ([]*entity.Activity, error)       { return nil, nil }
func (s *stubService) AvailableActivities(context.Context) ([]*entity.Activity, error) { return nil, nil }
func (s *stubService) ActivityByID(context.Context, uuid.UUID) (*entity.Activity, error) {
	return nil, nil
}
func (s *stubService) ActivitiesByTagName(context.Context, string) ([]*entity.Activity, error) {
	return nil, nil
}
func (s *stubService) ActivitiesByName(context.Context, string) ([]*entity.Activity, error) {
	return nil, nil
}
func (s *stubService) ActivitiesByDate(context.Context, time.Time) ([]*entity.Activity, error) {
	return nil, nil
}
func (s *stubService) ModifyActivity(context.Context, *entity.User, uuid.UUID, *entity.ActivityRequest) (*entity.Activity, error) {
	return nil, nil
}
func (s *stubService) DeleteActivity(context.Context, *entity.User, uuid.UUID) error { return nil }
func (s *stubService) AddAddress(context.Context, *entity.User, uuid.UUID, uuid.UUID) error {
	return nil
}
func (s *stubService) AddTags(context.Context, *entity.User, uuid.UUID, []string) (*entity.Activity, error) {
	return nil, nil
}
func (s *stubService) AddParticipant(context.Context, *entity.User, uuid.UUID) (string, error) {
	return "", nil
}
func (s *stubService) RemoveParticipant(context.Context, *entity.User, uuid.UUID, uuid.UUID) (string, error) {
	return "", nil
}
func (s *stubService) FreePlace(context.Context, *entity.User, uuid.UUID) (string, error) {
	return "", nil
}

func (s *stubService) RemoveAddressFromActivities(_ context.Context, addressID uuid.UUID) error {
	s.detachedAddresses = append(s.detachedAddresses, addressID)
	return nil
}

func (s *stubService) RemoveTagFromActivities(_ context.Context, tagID uuid.UUID) error {
	s.detachedTags = append(s.detachedTags, tagID)
	return nil
}

func (s *stubService) DeleteOldActivities(_ context.Context, days *int) {
	s.deleteDays = append(s.deleteDays, days)
}

func (s *stubService) UserByUsername(context.Context, string) (*entity.User, error) {
	return nil, nil
}
func (s *stubService) OpinionsByActivity(context.Context, uuid.UUID) ([]*entity.Opinion, error) {
	return nil, nil
}
func (s *stubService) AddOpinion(context.Context, *entity.User, uuid.UUID, *entity.OpinionRequest) (*entity.Opinion, error) {
	return nil, nil
}
func (s *stubService) DeleteOpinion(context.Context, *entity.User, uuid.UUID) error { return nil }
func (s *stubService) RelayActivityRun(context.Context)                             {}
func (s *stubService) HealthCheck(context.Context) (bool, bool, error)              { return true, true, nil }

func newTestUseCase(svc *stubService) *UseCase {
	return NewUseCase(svc, zap.NewNop().Sugar(), &config.Config{})
}

func TestConsumerMessageAddressDeleted(t *testing.T) {
	svc := &stubService{}
	uc := newTestUseCase(svc)
	id, err := uuid.NewV4()
	require.NoError(t, err)

	uc.ConsumerMessage(context.Background(), []byte(`{"type":"address_deleted","id":"`+id.String()+`"}`), time.Now())

	require.Len(t, svc.detachedAddresses, 1)
	assert.Equal(t, id, svc.detachedAddresses[0])
	assert.Empty(t, svc.detachedTags)
}

func TestConsumerMessageTagDeleted(t *testing.T) {
	svc := &stubService{}
	uc := newTestUseCase(svc)
	id, err := uuid.NewV4()
	require.NoError(t, err)

	uc.ConsumerMessage(context.Background(), []byte(`{"type":"tag_deleted","id":"`+id.String()+`"}`), time.Now())

	require.Len(t, svc.detachedTags, 1)
	assert.Equal(t, id, svc.detachedTags[0])
}

func TestConsumerMessageIgnoresGarbage(t *testing.T) {
	svc := &stubService{}
	uc := newTestUseCase(svc)

	uc.ConsumerMessage(context.Background(), []byte(`not json`), time.Now())
	uc.ConsumerMessage(context.Background(), []byte(`{"type":"unknown","id":"00000000-0000-0000-0000-000000000000"}`), time.Now())

	assert.Empty(t, svc.detachedAddresses)
	assert.Empty(t, svc.detachedTags)
}
