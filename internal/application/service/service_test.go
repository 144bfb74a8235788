package service

import (
	"context"
	"time"

	"activities/internal/appers"
	"activities/internal/application/entity"
	"activities/pkg/config"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// fakeRepo — репозиторий в памяти для тестов сервиса.
type fakeRepo struct {
	activities map[uuid.UUID]*entity.Activity
	addresses  map[uuid.UUID]*entity.Address
	tags       map[string]*entity.Tag
	users      map[uuid.UUID]*entity.User
	opinions   map[uuid.UUID][]*entity.Opinion
	outbox     []entity.OutboxEvent
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		activities: make(map[uuid.UUID]*entity.Activity),
		addresses:  make(map[uuid.UUID]*entity.Address),
		tags:       make(map[string]*entity.Tag),
		users:      make(map[uuid.UUID]*entity.User),
		opinions:   make(map[uuid.UUID][]*entity.Opinion),
	}
}

func copyActivity(act *entity.Activity) *entity.Activity {
	cp := *act
	cp.Tags = append([]entity.Tag(nil), act.Tags...)
	cp.Participants = append([]entity.User(nil), act.Participants...)
	cp.WaitingList = append([]entity.User(nil), act.WaitingList...)
	return &cp
}

func (r *fakeRepo) CreateActivity(_ context.Context, act *entity.Activity) (bool, error) {
	if _, ok := r.activities[act.ID]; ok {
		return false, appers.ErrActivityExists
	}
	r.activities[act.ID] = copyActivity(act)
	return true, nil
}

func (r *fakeRepo) UpdateActivity(_ context.Context, act *entity.Activity) error {
	stored, ok := r.activities[act.ID]
	if !ok {
		return appers.ErrActivityNotFound
	}
	cp := copyActivity(act)
	cp.Participants = stored.Participants
	cp.WaitingList = stored.WaitingList
	r.activities[act.ID] = cp
	return nil
}

func (r *fakeRepo) DeleteActivity(_ context.Context, id uuid.UUID) error {
	if _, ok := r.activities[id]; !ok {
		return appers.ErrActivityNotFound
	}
	delete(r.activities, id)
	return nil
}

func (r *fakeRepo) ActivityByID(_ context.Context, id uuid.UUID) (*entity.Activity, error) {
	act, ok := r.activities[id]
	if !ok {
		return nil, nil
	}
	return copyActivity(act), nil
}

func (r *fakeRepo) ActivityByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	return r.ActivityByID(ctx, id)
}

func (r *fakeRepo) AllActivities(_ context.Context) ([]*entity.Activity, error) {
	res := make([]*entity.Activity, 0, len(r.activities))
	for _, act := range r.activities {
		res = append(res, copyActivity(act))
	}
	return res, nil
}

func (r *fakeRepo) ActivitiesByAddress(_ context.Context, addressID uuid.UUID) ([]*entity.Activity, error) {
	res := make([]*entity.Activity, 0)
	for _, act := range r.activities {
		if act.AddressID != nil && *act.AddressID == addressID {
			res = append(res, copyActivity(act))
		}
	}
	return res, nil
}

func (r *fakeRepo) ActivitiesByTag(_ context.Context, tagID uuid.UUID) ([]*entity.Activity, error) {
	res := make([]*entity.Activity, 0)
	for _, act := range r.activities {
		for _, t := range act.Tags {
			if t.ID == tagID {
				res = append(res, copyActivity(act))
				break
			}
		}
	}
	return res, nil
}

func (r *fakeRepo) ActivitiesByName(_ context.Context, name string) ([]*entity.Activity, error) {
	res := make([]*entity.Activity, 0)
	for _, act := range r.activities {
		if act.Name == name {
			res = append(res, copyActivity(act))
		}
	}
	return res, nil
}

func (r *fakeRepo) ActivitiesByDate(_ context.Context, date time.Time) ([]*entity.Activity, error) {
	res := make([]*entity.Activity, 0)
	for _, act := range r.activities {
		if act.Date.Equal(date) {
			res = append(res, copyActivity(act))
		}
	}
	return res, nil
}

func (r *fakeRepo) ActivityExists(_ context.Context, name string, date time.Time, start, end entity.ClockTime) (bool, error) {
	for _, act := range r.activities {
		if act.Name == name && act.Date.Equal(date) && act.StartTime.Equal(start) && act.EndTime.Equal(end) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) DeleteOldActivities(_ context.Context, _ *int) error { return nil }

func (r *fakeRepo) ReplaceParticipants(_ context.Context, activityID uuid.UUID, users []entity.User) error {
	act, ok := r.activities[activityID]
	if !ok {
		return appers.ErrActivityNotFound
	}
	act.Participants = append([]entity.User(nil), users...)
	return nil
}

func (r *fakeRepo) ReplaceWaitingList(_ context.Context, activityID uuid.UUID, users []entity.User) error {
	act, ok := r.activities[activityID]
	if !ok {
		return appers.ErrActivityNotFound
	}
	act.WaitingList = append([]entity.User(nil), users...)
	return nil
}

func (r *fakeRepo) AttachTag(_ context.Context, activityID, tagID uuid.UUID) error {
	act, ok := r.activities[activityID]
	if !ok {
		return appers.ErrActivityNotFound
	}
	for _, t := range r.tags {
		if t.ID == tagID {
			act.Tags = append(act.Tags, *t)
			return nil
		}
	}
	return appers.ErrTagNotFound
}

func (r *fakeRepo) DetachTag(_ context.Context, activityID, tagID uuid.UUID) error {
	act, ok := r.activities[activityID]
	if !ok {
		return appers.ErrActivityNotFound
	}
	for i, t := range act.Tags {
		if t.ID == tagID {
			act.Tags = append(act.Tags[:i], act.Tags[i+1:]...)
			break
		}
	}
	return nil
}

func (r *fakeRepo) DetachAddress(_ context.Context, activityID uuid.UUID) error {
	act, ok := r.activities[activityID]
	if !ok {
		return appers.ErrActivityNotFound
	}
	act.AddressID = nil
	return nil
}

func (r *fakeRepo) AddressByID(_ context.Context, id uuid.UUID) (*entity.Address, error) {
	return r.addresses[id], nil
}

func (r *fakeRepo) TagByID(_ context.Context, id uuid.UUID) (*entity.Tag, error) {
	for _, t := range r.tags {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) TagByName(_ context.Context, name string) (*entity.Tag, error) {
	return r.tags[name], nil
}

func (r *fakeRepo) TagExists(_ context.Context, name string) (bool, error) {
	_, ok := r.tags[name]
	return ok, nil
}

func (r *fakeRepo) UserByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	return r.users[id], nil
}

func (r *fakeRepo) UserByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) OpinionsByActivity(_ context.Context, activityID uuid.UUID) ([]*entity.Opinion, error) {
	return r.opinions[activityID], nil
}

func (r *fakeRepo) OpinionExists(_ context.Context, activityID, userID uuid.UUID) (bool, error) {
	for _, op := range r.opinions[activityID] {
		if op.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) InsertOpinion(_ context.Context, op *entity.Opinion) error {
	r.opinions[op.ActivityID] = append(r.opinions[op.ActivityID], op)
	return nil
}

func (r *fakeRepo) DeleteOpinion(_ context.Context, activityID, userID uuid.UUID) error {
	ops := r.opinions[activityID]
	for i, op := range ops {
		if op.UserID == userID {
			r.opinions[activityID] = append(ops[:i], ops[i+1:]...)
			return nil
		}
	}
	return appers.ErrOpinionNotFound
}

func (r *fakeRepo) DeleteOpinionsByActivity(_ context.Context, activityID uuid.UUID) error {
	delete(r.opinions, activityID)
	return nil
}

func (r *fakeRepo) InsertOutbox(_ context.Context, e *entity.OutboxEvent) error {
	e.ID = len(r.outbox) + 1
	r.outbox = append(r.outbox, *e)
	return nil
}

func (r *fakeRepo) ReserveOutboxBatch(_ context.Context, _ time.Duration, limit, _ int) ([]entity.OutboxEvent, error) {
	res := make([]entity.OutboxEvent, 0)
	for _, e := range r.outbox {
		if e.Status == entity.OutboxNew && len(res) < limit {
			res = append(res, e)
		}
	}
	return res, nil
}

func (r *fakeRepo) MarkFailedWithBackoff(_ context.Context, outboxID int, _ time.Time) error {
	return r.markOutbox(outboxID, entity.OutboxFailed)
}

func (r *fakeRepo) MarkGaveUp(_ context.Context, outboxID int) error {
	return r.markOutbox(outboxID, entity.OutboxGaveUp)
}

func (r *fakeRepo) markOutbox(outboxID int, status entity.OutboxStatus) error {
	for i := range r.outbox {
		if r.outbox[i].ID == outboxID {
			r.outbox[i].Status = status
			return nil
		}
	}
	return appers.ErrNoDataFound
}

func (r *fakeRepo) HealthCheck(_ context.Context) error { return nil }

func (r *fakeRepo) outboxEventTypes() []entity.OutboxEventType {
	types := make([]entity.OutboxEventType, 0, len(r.outbox))
	for _, e := range r.outbox {
		types = append(types, e.EventType)
	}
	return types
}

// fakeTransactions выполняет fn без реальной транзакции.
type fakeTransactions struct {
	repo *fakeRepo
}

func (t *fakeTransactions) Within(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (t *fakeTransactions) CreateActivity(ctx context.Context, in *entity.Activity, payload []byte) error {
	inserted, err := t.repo.CreateActivity(ctx, in)
	if err != nil {
		return err
	}
	if !inserted {
		return appers.ErrActivityExists
	}
	return t.repo.InsertOutbox(ctx, &entity.OutboxEvent{
		AggregateID:   in.ID,
		AggregateType: entity.AggregateActivity,
		EventType:     entity.ActivityCreated,
		Payload:       payload,
		Status:        entity.OutboxNew,
	})
}

func (t *fakeTransactions) GetOperationsFromOutbox(ctx context.Context, c config.RelayConfig) ([]entity.OutboxEvent, error) {
	return t.repo.ReserveOutboxBatch(ctx, c.Lease, c.BatchSize, c.MaxAttempts)
}

func (t *fakeTransactions) MarkSentAndUpdateActivity(_ context.Context, outboxID int) error {
	return t.repo.markOutbox(outboxID, entity.OutboxSent)
}

type fakeProducer struct {
	sent [][]byte
	err  error
}

func (p *fakeProducer) ProduceMessage(_ context.Context, _ int, message []byte) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, message)
	return nil
}

func (p *fakeProducer) HealthCheck(_ context.Context) error { return nil }

var testNow = time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestService(r *fakeRepo) *ServiceImpl {
	cfg := &config.RelayConfig{
		Workers:     1,
		BatchSize:   10,
		Lease:       time.Minute,
		PollPeriod:  time.Second,
		MaxAttempts: 3,
	}
	s := NewService(r, &fakeTransactions{repo: r}, &fakeProducer{}, zap.NewNop().Sugar(), cfg)
	s.now = func() time.Time { return testNow }
	s.intn = func(n int) int { return 0 }
	return s
}

func mustUUID(t interface{ Fatalf(string, ...interface{}) }) uuid.UUID {
	id, err := uuid.NewV4()
	if err != nil {
		t.Fatalf("uuid: %v", err)
	}
	return id
}

func newUser(t interface{ Fatalf(string, ...interface{}) }, username string, birthYear int) *entity.User {
	return &entity.User{
		ID:        mustUUID(t),
		Username:  username,
		BirthDate: time.Date(birthYear, time.March, 10, 0, 0, 0, 0, time.UTC),
	}
}

func validRequest() *entity.ActivityRequest {
	return &entity.ActivityRequest{
		Name:        "chess evening",
		Description: "friendly blitz",
		Day:         20,
		Month:       10,
		Year:        2026,
		StartHour:   18,
		StartMinute: 0,
		EndHour:     20,
		EndMinute:   30,
		NumPlaces:   4,
		AgeLimit:    0,
	}
}
