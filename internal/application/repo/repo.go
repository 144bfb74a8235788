package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"activities/internal/appers"
	"activities/internal/application/entity"
	"activities/pkg/db"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	defaultDeleteDays = 365
)

type Repo interface {
	CreateActivity(ctx context.Context, act *entity.Activity) (bool, error)
	UpdateActivity(ctx context.Context, act *entity.Activity) error
	DeleteActivity(ctx context.Context, id uuid.UUID) error
	ActivityByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error)
	ActivityByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Activity, error)
	AllActivities(ctx context.Context) ([]*entity.Activity, error)
	ActivitiesByAddress(ctx context.Context, addressID uuid.UUID) ([]*entity.Activity, error)
	ActivitiesByTag(ctx context.Context, tagID uuid.UUID) ([]*entity.Activity, error)
	ActivitiesByName(ctx context.Context, name string) ([]*entity.Activity, error)
	ActivitiesByDate(ctx context.Context, date time.Time) ([]*entity.Activity, error)
	ActivityExists(ctx context.Context, name string, date time.Time, start, end entity.ClockTime) (bool, error)
	DeleteOldActivities(ctx context.Context, days *int) error

	ReplaceParticipants(ctx context.Context, activityID uuid.UUID, users []entity.User) error
	ReplaceWaitingList(ctx context.Context, activityID uuid.UUID, users []entity.User) error
	AttachTag(ctx context.Context, activityID, tagID uuid.UUID) error
	DetachTag(ctx context.Context, activityID, tagID uuid.UUID) error
	DetachAddress(ctx context.Context, activityID uuid.UUID) error

	AddressByID(ctx context.Context, id uuid.UUID) (*entity.Address, error)
	TagByID(ctx context.Context, id uuid.UUID) (*entity.Tag, error)
	TagByName(ctx context.Context, name string) (*entity.Tag, error)
	TagExists(ctx context.Context, name string) (bool, error)
	UserByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	UserByUsername(ctx context.Context, username string) (*entity.User, error)

	OpinionsByActivity(ctx context.Context, activityID uuid.UUID) ([]*entity.Opinion, error)
	OpinionExists(ctx context.Context, activityID, userID uuid.UUID) (bool, error)
	InsertOpinion(ctx context.Context, op *entity.Opinion) error
	DeleteOpinion(ctx context.Context, activityID, userID uuid.UUID) error
	DeleteOpinionsByActivity(ctx context.Context, activityID uuid.UUID) error

	InsertOutbox(ctx context.Context, e *entity.OutboxEvent) error
	ReserveOutboxBatch(ctx context.Context, lease time.Duration, limit, maxAttempts int) ([]entity.OutboxEvent, error)
	MarkFailedWithBackoff(ctx context.Context, outboxID int, nextAttemptAt time.Time) error
	MarkGaveUp(ctx context.Context, outboxID int) error

	HealthCheck(ctx context.Context) error
}

type RepoImpl struct {
	db     db.DB
	logger *zap.SugaredLogger
}

func NewRepo(db db.DB, logger *zap.SugaredLogger) *RepoImpl {
	return &RepoImpl{db: db, logger: logger}
}

func (r *RepoImpl) HealthCheck(ctx context.Context) error {
	var result int
	err := r.db.QueryRow(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

func (r *RepoImpl) CreateActivity(ctx context.Context, act *entity.Activity) (bool, error) {
	r.logger.Debugf("[activity: %s] start inserting into DB", act.ID)

	var addressID any
	if act.AddressID != nil {
		addressID = *act.AddressID
	}

	var insertedID uuid.UUID
	err := r.db.QueryRow(ctx, createActivity,
		act.ID, act.Name, act.Description, act.Date, act.StartTime.Minutes(), act.EndTime.Minutes(),
		act.NumPlaces, act.AgeLimit, act.Creator.ID, addressID).Scan(&insertedID)

	switch {
	case err == nil:
		r.logger.Debugf("[activity: %s] inserted into DB successfully", act.ID)
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		// ON CONFLICT DO NOTHING вернул 0 строк - активность уже существует
		r.logger.Warnf("[activity: %s] inserting activity: already exists (conflict)", act.ID)
		return false, appers.ErrActivityExists
	case isDuplicateKeyError(err):
		r.logger.Warnf("[activity: %s] inserting activity: already exists (duplicate key)", act.ID)
		return false, appers.ErrActivityExists
	default:
		r.logger.Errorf("[activity: %s] error inserting into DB: %v", act.ID, err)
		return false, fmt.Errorf("error inserting into DB: %w", err)
	}
}

func (r *RepoImpl) UpdateActivity(ctx context.Context, act *entity.Activity) error {
	r.logger.Debugf("[activity: %s] start updating in DB", act.ID)

	var addressID any
	if act.AddressID != nil {
		addressID = *act.AddressID
	}

	result, err := r.db.Exec(ctx, updateActivity,
		act.ID, act.Name, act.Description, act.Date, act.StartTime.Minutes(), act.EndTime.Minutes(),
		act.NumPlaces, act.AgeLimit, addressID)
	if err != nil {
		r.logger.Errorf("[activity: %s] error updating in DB: %v", act.ID, err)
		return fmt.Errorf("error updating in DB: %w", err)
	}
	if result.RowsAffected() == 0 {
		r.logger.Warnf("[activity: %s] no rows updated", act.ID)
		return appers.ErrActivityNotFound
	}
	r.logger.Debugf("[activity: %s] updated in DB successfully", act.ID)
	return nil
}

func (r *RepoImpl) DeleteActivity(ctx context.Context, id uuid.UUID) error {
	r.logger.Debugf("[activity: %s] start deleting from DB", id)

	result, err := r.db.Exec(ctx, deleteActivity, id)
	if err != nil {
		r.logger.Errorf("[activity: %s] error deleting from DB: %v", id, err)
		return fmt.Errorf("error deleting from DB: %w", err)
	}
	if result.RowsAffected() == 0 {
		r.logger.Warnf("[activity: %s] no rows deleted", id)
		return appers.ErrActivityNotFound
	}
	r.logger.Debugf("[activity: %s] deleted from DB successfully", id)
	return nil
}

// scanActivity читает строку основного запроса (activityBase).
func scanActivity(row pgx.Row) (*entity.Activity, error) {
	var act entity.Activity
	var startMin, endMin int
	var addressID uuid.NullUUID

	err := row.Scan(&act.ID, &act.Name, &act.Description, &act.Date, &startMin, &endMin,
		&act.NumPlaces, &act.AgeLimit, &addressID, &act.Creator.ID, &act.Creator.Username)
	if err != nil {
		return nil, err
	}

	act.StartTime = entity.ClockTimeFromMinutes(startMin)
	act.EndTime = entity.ClockTimeFromMinutes(endMin)
	if addressID.Valid {
		id := addressID.UUID
		act.AddressID = &id
	}
	return &act, nil
}

func (r *RepoImpl) activityByQuery(ctx context.Context, query string, id uuid.UUID) (*entity.Activity, error) {
	act, err := scanActivity(r.db.QueryRow(ctx, query, id))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil
	case err != nil:
		r.logger.Errorf("[activity: %s] error getting from DB: %v", id, err)
		return nil, fmt.Errorf("error getting from DB: %w", err)
	}

	if err := r.loadRelations(ctx, act); err != nil {
		return nil, err
	}
	return act, nil
}

func (r *RepoImpl) ActivityByID(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	r.logger.Debugf("[activity: %s] start getting from DB", id)
	return r.activityByQuery(ctx, getActivity, id)
}

// ActivityByIDForUpdate блокирует строку активности до конца текущей транзакции.
func (r *RepoImpl) ActivityByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Activity, error) {
	r.logger.Debugf("[activity: %s] start getting from DB (for update)", id)
	return r.activityByQuery(ctx, getActivityForUpdate, id)
}

func (r *RepoImpl) loadRelations(ctx context.Context, act *entity.Activity) error {
	var err error
	if act.Tags, err = r.queryTags(ctx, tagsByActivity, act.ID); err != nil {
		return err
	}
	if act.Participants, err = r.queryUsers(ctx, participantsByActivity, act.ID); err != nil {
		return err
	}
	if act.WaitingList, err = r.queryUsers(ctx, waitingByActivity, act.ID); err != nil {
		return err
	}
	return nil
}

func (r *RepoImpl) listActivities(ctx context.Context, query string, args ...any) ([]*entity.Activity, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Errorf("error listing activities from DB: %v", err)
		return nil, fmt.Errorf("error listing activities from DB: %w", err)
	}
	defer rows.Close()

	activities := make([]*entity.Activity, 0)
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			r.logger.Errorf("error scanning activity: %v", err)
			return nil, fmt.Errorf("error scanning activity: %w", err)
		}
		activities = append(activities, act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error listing activities from DB: %w", err)
	}
	return activities, nil
}

func (r *RepoImpl) AllActivities(ctx context.Context) ([]*entity.Activity, error) {
	return r.listActivities(ctx, listActivities)
}

func (r *RepoImpl) ActivitiesByAddress(ctx context.Context, addressID uuid.UUID) ([]*entity.Activity, error) {
	return r.listActivities(ctx, listActivitiesByAddress, addressID)
}

func (r *RepoImpl) ActivitiesByTag(ctx context.Context, tagID uuid.UUID) ([]*entity.Activity, error) {
	return r.listActivities(ctx, listActivitiesByTag, tagID)
}

func (r *RepoImpl) ActivitiesByName(ctx context.Context, name string) ([]*entity.Activity, error) {
	return r.listActivities(ctx, listActivitiesByName, name)
}

func (r *RepoImpl) ActivitiesByDate(ctx context.Context, date time.Time) ([]*entity.Activity, error) {
	return r.listActivities(ctx, listActivitiesByDate, date)
}

func (r *RepoImpl) ActivityExists(ctx context.Context, name string, date time.Time, start, end entity.ClockTime) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, activityExists, name, date, start.Minutes(), end.Minutes()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking activity existence: %w", err)
	}
	return exists, nil
}

func (r *RepoImpl) DeleteOldActivities(ctx context.Context, days *int) error {
	d := defaultDeleteDays
	if days != nil && *days > 0 {
		d = *days
	} else if days != nil && *days == 0 {
		r.logger.Warnf("daysToDelete is 0, skipping deletion to prevent deleting all activities")
		return nil
	}

	r.logger.Infof("start deleting old activities from DB: activities older than %d days", d)

	result, err := r.db.Exec(ctx, deleteOldActivities, d)
	if err != nil {
		r.logger.Errorf("error deleting old activities from DB: %v", err)
		return fmt.Errorf("error deleting old activities from DB: %w", err)
	}
	rowsAffected := result.RowsAffected()
	if rowsAffected == 0 {
		r.logger.Infof("no rows deleted (no activities older than %d days)", d)
		return nil
	}
	r.logger.Infof("deleted %d old activities from DB (older than %d days)", rowsAffected, d)
	return nil
}

func (r *RepoImpl) replaceMembership(ctx context.Context, clearSQL, insertSQL string, activityID uuid.UUID, users []entity.User) error {
	if _, err := r.db.Exec(ctx, clearSQL, activityID); err != nil {
		return fmt.Errorf("error clearing membership: %w", err)
	}
	if len(users) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	if _, err := r.db.Exec(ctx, insertSQL, activityID, ids); err != nil {
		return fmt.Errorf("error inserting membership: %w", err)
	}
	return nil
}

func (r *RepoImpl) ReplaceParticipants(ctx context.Context, activityID uuid.UUID, users []entity.User) error {
	r.logger.Debugf("[activity: %s] replacing participants (%d)", activityID, len(users))
	return r.replaceMembership(ctx, clearParticipants, insertParticipants, activityID, users)
}

func (r *RepoImpl) ReplaceWaitingList(ctx context.Context, activityID uuid.UUID, users []entity.User) error {
	r.logger.Debugf("[activity: %s] replacing waiting list (%d)", activityID, len(users))
	return r.replaceMembership(ctx, clearWaiting, insertWaiting, activityID, users)
}

func (r *RepoImpl) AttachTag(ctx context.Context, activityID, tagID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, attachTag, activityID, tagID); err != nil {
		return fmt.Errorf("error attaching tag: %w", err)
	}
	return nil
}

func (r *RepoImpl) DetachTag(ctx context.Context, activityID, tagID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, detachTag, activityID, tagID); err != nil {
		return fmt.Errorf("error detaching tag: %w", err)
	}
	return nil
}

func (r *RepoImpl) DetachAddress(ctx context.Context, activityID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, detachAddress, activityID); err != nil {
		return fmt.Errorf("error detaching address: %w", err)
	}
	return nil
}

func (r *RepoImpl) queryUsers(ctx context.Context, query string, activityID uuid.UUID) ([]entity.User, error) {
	rows, err := r.db.Query(ctx, query, activityID)
	if err != nil {
		return nil, fmt.Errorf("error getting members from DB: %w", err)
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("error scanning member: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *RepoImpl) queryTags(ctx context.Context, query string, activityID uuid.UUID) ([]entity.Tag, error) {
	rows, err := r.db.Query(ctx, query, activityID)
	if err != nil {
		return nil, fmt.Errorf("error getting tags from DB: %w", err)
	}
	defer rows.Close()

	tags := make([]entity.Tag, 0)
	for rows.Next() {
		var t entity.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("error scanning tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// isDuplicateKeyError проверяет, является ли ошибка ошибкой дубликата ключа (SQLSTATE 23505)
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
