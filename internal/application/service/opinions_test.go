package service

import (
	"context"
	"testing"

	"activities/internal/appers"
	"activities/internal/application/entity"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOpinionByParticipant(t *testing.T) {
	r := newFakeRepo()
	s := newTestService(r)
	creator := newUser(t, "owner", 1990)
	act := seedActivity(t, r, creator, 2)
	anna := newUser(t, "anna", 1995)
	require.NoError(t, r.ReplaceParticipants(context.Background(), act.ID, []entity.User{*anna}))

	opinion, err := s.AddOpinion(context.Background(), anna, act.ID, &entity.OpinionRequest{Rating: 8, Comment: "great"})
	require.NoError(t, err)
	assert.Equal(t, 8, opinion.Rating)
	assert.Equal(t, anna.Username, opinion.Username)

	stored, err := s.OpinionsByActivity(context.Background(), act.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
}

func TestAddOpinionRejectsNonParticipant(t *testing.T) {
	r := newFakeRepo()
	s := newTestService(r)
	creator := newUser(t, "owner", 1990)
	act := seedActivity(t, r, creator, 2)

	_, err := s.AddOpinion(context.Background(), newUser(t, "ghost", 1995), act.ID, &entity.OpinionRequest{Rating: 5})
	require.EqualError(t, err, "USER GHOST IS NOT A PARTICIPANT")
	assert.Empty(t, r.opinions[act.ID])
}

func TestAddOpinionRatingBounds(t *testing.T) {
	r := newFakeRepo()
	s := newTestService(r)
	creator := newUser(t, "owner", 1990)
	act := seedActivity(t, r, creator, 2)
	anna := newUser(t, "anna", 1995)
	require.NoError(t, r.ReplaceParticipants(context.Background(), act.ID, []entity.User{*anna}))

	for _, rating := range []int{-1, 11} {
		_, err := s.AddOpinion(context.Background(), anna, act.ID, &entity.OpinionRequest{Rating: rating})
		require.ErrorIs(t, err, appers.ErrRatingOutOfRange)
	}

	for _, rating := range []int{0, 10} {
		r.opinions = map[uuid.UUID][]*entity.Opinion{}
		_, err := s.AddOpinion(context.Background(), anna, act.ID, &entity.OpinionRequest{Rating: rating})
		require.NoError(t, err)
	}
}

func TestAddOpinionOnlyOnce(t *testing.T) {
	r := newFakeRepo()
	s := newTestService(r)
	creator := newUser(t, "owner", 1990)
	act := seedActivity(t, r, creator, 2)
	anna := newUser(t, "anna", 1995)
	require.NoError(t, r.ReplaceParticipants(context.Background(), act.ID, []entity.User{*anna}))

	_, err := s.AddOpinion(context.Background(), anna, act.ID, &entity.OpinionRequest{Rating: 8})
	require.NoError(t, err)

	_, err = s.AddOpinion(context.Background(), anna, act.ID, &entity.OpinionRequest{Rating: 3})
	require.EqualError(t, err, "USER ANNA ALREADY ADDED AN OPINION TO THIS ACTIVITY")
}

func TestAddOpinionActivityNotFound(t *testing.T) {
	r := newFakeRepo()
	s := newTestService(r)

	_, err := s.AddOpinion(context.Background(), newUser(t, "anna", 1995), mustUUID(t), &entity.OpinionRequest{Rating: 5})
	require.ErrorIs(t, err, appers.ErrActivityNotFound)
}

func TestDeleteOwnOpinion(t *testing.T) {
	r := newFakeRepo()
	s := newTestService(r)
	creator := newUser(t, "owner", 1990)
	act := seedActivity(t, r, creator, 2)
	anna := newUser(t, "anna", 1995)
	require.NoError(t, r.ReplaceParticipants(context.Background(), act.ID, []entity.User{*anna}))

	_, err := s.AddOpinion(context.Background(), anna, act.ID, &entity.OpinionRequest{Rating: 8})
	require.NoError(t, err)

	require.NoError(t, s.DeleteOpinion(context.Background(), anna, act.ID))
	assert.Empty(t, r.opinions[act.ID])
}

func TestDeleteOpinionMissing(t *testing.T) {
	r := newFakeRepo()
	s := newTestService(r)
	creator := newUser(t, "owner", 1990)
	act := seedActivity(t, r, creator, 2)

	err := s.DeleteOpinion(context.Background(), newUser(t, "anna", 1995), act.ID)
	require.ErrorIs(t, err, appers.ErrOpinionNotFound)
}

func TestOpinionsByActivityEmpty(t *testing.T) {
	r := newFakeRepo()
	s := newTestService(r)
	creator := newUser(t, "owner", 1990)
	act := seedActivity(t, r, creator, 2)

	_, err := s.OpinionsByActivity(context.Background(), act.ID)
	require.ErrorIs(t, err, appers.ErrOpinionNotFound)
}

func TestClearOpinionsGate(t *testing.T) {
	r := newFakeRepo()
	s := newTestService(r)
	creator := newUser(t, "owner", 1990)
	act := seedActivity(t, r, creator, 2)

	ok, err := s.ClearOpinionsForActivity(context.Background(), act.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	r.opinions[act.ID] = []*entity.Opinion{{ActivityID: act.ID, UserID: mustUUID(t), Rating: 7}}
	ok, err = s.ClearOpinionsForActivity(context.Background(), act.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	// оценки остаются на месте, пока ворота закрыты
	assert.Len(t, r.opinions[act.ID], 1)
}
