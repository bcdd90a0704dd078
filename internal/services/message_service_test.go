package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greek-row/chapterhouse/internal/constants"
	"greek-row/chapterhouse/internal/db/repositories"
	"greek-row/chapterhouse/internal/models/dtos"
	gormModels "greek-row/chapterhouse/internal/models/gorm"
)

func TestMessageService_RequiresAcceptedConnection(t *testing.T) {
	orm := setupTestDB(t)
	ctx := context.Background()
	chapter := seedChapter(t, orm, "Alpha Beta")
	alice := seedProfile(t, orm, chapter.ID, "Alice Adams")
	bob := seedProfile(t, orm, chapter.ID, "Bob Brown")

	connections := repositories.NewConnectionRepository(orm)
	notifier := &recordingNotifier{}
	svc := NewMessageService(repositories.NewMessageRepository(orm), connections, repositories.NewProfileRepository(orm), notifier, "https://app.example.com")

	_, err := svc.Send(ctx, alice, dtos.SendMessageRequest{RecipientID: bob.ID, Content: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, constants.MsgNotConnected, err.Error())

	conn := &gormModels.Connection{RequesterID: alice.ID, RecipientID: bob.ID, Status: constants.ConnectionPending}
	require.NoError(t, connections.Create(ctx, conn))

	_, err = svc.Send(ctx, alice, dtos.SendMessageRequest{RecipientID: bob.ID, Content: "hi"})
	assert.True(t, errors.Is(err, ErrForbidden), "pending is not enough")

	require.NoError(t, connections.UpdateStatus(ctx, conn.ID, constants.ConnectionAccepted))

	// either direction works once accepted
	sent, err := svc.Send(ctx, bob, dtos.SendMessageRequest{RecipientID: alice.ID, Content: "  hello back  "})
	require.NoError(t, err)
	assert.Equal(t, "hello back", sent.Content)

	jobs := notifier.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, constants.NotifyMessage, jobs[0].Kind)
	assert.Equal(t, []string{alice.ID}, jobs[0].UserIDs)

	history, err := svc.List(ctx, alice, bob.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), history.Total)

	// only the recipient may mark read
	err = svc.MarkRead(ctx, bob, sent.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	require.NoError(t, svc.MarkRead(ctx, alice, sent.ID))
}

func TestMessageService_Validation(t *testing.T) {
	orm := setupTestDB(t)
	ctx := context.Background()
	chapter := seedChapter(t, orm, "Alpha Beta")
	alice := seedProfile(t, orm, chapter.ID, "Alice Adams")

	svc := NewMessageService(repositories.NewMessageRepository(orm), repositories.NewConnectionRepository(orm), repositories.NewProfileRepository(orm), &recordingNotifier{}, "")

	_, err := svc.Send(ctx, alice, dtos.SendMessageRequest{RecipientID: "x", Content: strings.Repeat("a", 5001)})
	requireInvalid(t, err, "Message must be at most 5000 characters")

	_, err = svc.Send(ctx, alice, dtos.SendMessageRequest{RecipientID: "x", Content: "   "})
	requireInvalid(t, err, constants.MsgMissingFields)

	_, err = svc.List(ctx, alice, "", 1, 20)
	assert.True(t, errors.Is(err, ErrInvalid))
}
