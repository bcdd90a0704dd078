package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/models/dtos"
)

func TestConnectionService_Lifecycle(t *testing.T) {
	orm := setupTestDB(t)
	ctx := context.Background()
	chapter := seedChapter(t, orm, "Alpha Beta")
	alice := seedProfile(t, orm, chapter.ID, "Alice Adams")
	bob := seedProfile(t, orm, chapter.ID, "Bob Brown")

	notifier := &recordingNotifier{}
	svc := NewConnectionService(repositories.NewConnectionRepository(orm), repositories.NewProfileRepository(orm), notifier, "https://app.example.com")

	created, err := svc.Create(ctx, alice, dtos.CreateConnectionRequest{RecipientID: bob.ID, Message: "Hey!"})
	require.NoError(t, err)
	assert.Equal(t, string(constants.ConnectionPending), created.Status)
	assert.Equal(t, "outgoing", created.Direction)

	jobs := notifier.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, constants.NotifyConnectionRequest, jobs[0].Kind)
	assert.Equal(t, []string{bob.ID}, jobs[0].UserIDs)

	_, err = svc.Create(ctx, bob, dtos.CreateConnectionRequest{RecipientID: alice.ID})
	requireInvalid(t, err, constants.MsgConnectionExists)

	incoming, err := svc.List(ctx, bob, "pending")
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "incoming", incoming[0].Direction)
	require.NotNil(t, incoming[0].OtherUser)
	assert.Equal(t, alice.ID, incoming[0].OtherUser.ID)

	accepted, err := svc.UpdateStatus(ctx, bob, created.ID, dtos.UpdateConnectionRequest{Status: "accepted"})
	require.NoError(t, err)
	assert.Equal(t, string(constants.ConnectionAccepted), accepted.Status)

	jobs = notifier.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, constants.NotifyConnectionAccepted, jobs[1].Kind)
	assert.Equal(t, []string{alice.ID}, jobs[1].UserIDs)

	// re-accepting does not notify again
	_, err = svc.UpdateStatus(ctx, bob, created.ID, dtos.UpdateConnectionRequest{Status: "accepted"})
	require.NoError(t, err)
	assert.Len(t, notifier.Jobs(), 2)

	require.NoError(t, svc.Delete(ctx, alice, created.ID))
	remaining, err := svc.List(ctx, alice, "")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestConnectionService_Rejections(t *testing.T) {
	orm := setupTestDB(t)
	ctx := context.Background()
	chapter := seedChapter(t, orm, "Alpha Beta")
	alice := seedProfile(t, orm, chapter.ID, "Alice Adams")
	bob := seedProfile(t, orm, chapter.ID, "Bob Brown")
	mallory := seedProfile(t, orm, chapter.ID, "Mallory Moe")

	svc := NewConnectionService(repositories.NewConnectionRepository(orm), repositories.NewProfileRepository(orm), &recordingNotifier{}, "")

	_, err := svc.Create(ctx, alice, dtos.CreateConnectionRequest{RecipientID: alice.ID})
	requireInvalid(t, err, "You cannot connect with yourself")

	_, err = svc.Create(ctx, alice, dtos.CreateConnectionRequest{RecipientID: "00000000-0000-0000-0000-000000000000"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	created, err := svc.Create(ctx, alice, dtos.CreateConnectionRequest{RecipientID: bob.ID})
	require.NoError(t, err)

	for _, status := range []string{"pending", "friends", ""} {
		_, err = svc.UpdateStatus(ctx, bob, created.ID, dtos.UpdateConnectionRequest{Status: status})
		requireInvalid(t, err, constants.MsgInvalidStatus)
	}

	_, err = svc.UpdateStatus(ctx, mallory, created.ID, dtos.UpdateConnectionRequest{Status: "accepted"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = svc.Delete(ctx, mallory, created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.List(ctx, alice, "bogus")
	assert.True(t, errors.Is(err, ErrInvalid))
}

// declined and blocked connections can be moved again by the recipient
func TestConnectionService_PermissiveTransitions(t *testing.T) {
	orm := setupTestDB(t)
	ctx := context.Background()
	chapter := seedChapter(t, orm, "Alpha Beta")
	alice := seedProfile(t, orm, chapter.ID, "Alice Adams")
	bob := seedProfile(t, orm, chapter.ID, "Bob Brown")

	svc := NewConnectionService(repositories.NewConnectionRepository(orm), repositories.NewProfileRepository(orm), &recordingNotifier{}, "")
	created, err := svc.Create(ctx, alice, dtos.CreateConnectionRequest{RecipientID: bob.ID})
	require.NoError(t, err)

	for _, step := range []string{"declined", "accepted", "blocked", "accepted"} {
		v, err := svc.UpdateStatus(ctx, bob, created.ID, dtos.UpdateConnectionRequest{Status: step})
		require.NoError(t, err, step)
		assert.Equal(t, step, v.Status)
	}

	v, err := svc.UpdateStatus(ctx, alice, created.ID, dtos.UpdateConnectionRequest{Status: "blocked"})
	require.NoError(t, err)
	assert.Equal(t, "blocked", v.Status)
}

func TestConnectionService_RequesterCannotAnswerOwnRequest(t *testing.T) {
	orm := setupTestDB(t)
	ctx := context.Background()
	chapter := seedChapter(t, orm, "Alpha Beta")
	alice := seedProfile(t, orm, chapter.ID, "Alice Adams")
	bob := seedProfile(t, orm, chapter.ID, "Bob Brown")

	notifier := &recordingNotifier{}
	svc := NewConnectionService(repositories.NewConnectionRepository(orm), repositories.NewProfileRepository(orm), notifier, "")
	created, err := svc.Create(ctx, alice, dtos.CreateConnectionRequest{RecipientID: bob.ID})
	require.NoError(t, err)

	for _, status := range []string{"accepted", "declined"} {
		_, err = svc.UpdateStatus(ctx, alice, created.ID, dtos.UpdateConnectionRequest{Status: status})
		require.Error(t, err, status)
		assert.True(t, errors.Is(err, ErrForbidden))
		assert.Equal(t, constants.MsgConnectionAnswer, err.Error())
	}

	list, err := svc.List(ctx, alice, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, string(constants.ConnectionPending), list[0].Status)
	require.Len(t, notifier.Jobs(), 1, "only the original request notification")
	assert.Equal(t, constants.NotifyConnectionRequest, notifier.Jobs()[0].Kind)
}
