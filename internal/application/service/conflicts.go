package service

import (
	"context"

	"activities/internal/appers"
	"activities/internal/application/entity"
)

func sameDate(a, b entity.Activity) bool {
	ay, am, ad := a.Date.Date()
	by, bm, bd := b.Date.Date()
	return ay == by && am == bm && ad == bd
}

func sameSlot(a, b entity.Activity) bool {
	return sameDate(a, b) && a.StartTime.Equal(b.StartTime) && a.EndTime.Equal(b.EndTime)
}

// checkBookingConflict сверяет кандидата со всеми активностями, привязанными к адресу.
// Полное совпадение (имя, дата, время) означает дубликат: кандидат удаляется из БД,
// существующая активность остаётся. Совпадение слота (дата, время) при другом имени
// означает занятый адрес, ничего не изменяется. Порядок обхода списка определяет
// исход при нескольких совпадениях: побеждает первое.
func (s *ServiceImpl) checkBookingConflict(ctx context.Context, candidate *entity.Activity, address *entity.Address) error {
	bound, err := s.repo.ActivitiesByAddress(ctx, address.ID)
	if err != nil {
		return err
	}

	for _, other := range bound {
		if other.Name == candidate.Name && sameSlot(*other, *candidate) {
			s.logger.Warnf("[activity: %s] duplicate of %s at address %s, deleting candidate", candidate.ID, other.ID, address.ID)
			if err := s.repo.DeleteActivity(ctx, candidate.ID); err != nil {
				return err
			}
			return appers.ErrDuplicateDeleted
		}
		if sameSlot(*other, *candidate) {
			return appers.ErrSlotTaken
		}
	}
	return nil
}
