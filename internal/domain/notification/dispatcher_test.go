package notification_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain/notification"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/events"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/storage/sqlstore/sqlstoretest"
)

type mail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, mail{to, subject, body})
	return nil
}

var receiver = domain.Identity{UID: "cand-1", Email: "cand@example.com", Role: domain.RoleCandidate}

func sample() domain.Notification {
	return domain.Notification{
		SenderID:      "hr-1",
		ReceiverID:    receiver.UID,
		ReceiverEmail: receiver.Email,
		Type:          domain.NotifyInterviewScheduled,
		Title:         "Interview scheduled",
		Message:       "A HR interview has been scheduled.",
		Metadata:      map[string]string{"interview_id": "iv-1"},
	}
}

func TestNotifyPersistsPublishesAndMails(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mailer := &fakeMailer{}

	d, err := notification.NewDispatcher(store.Notifications(),
		notification.WithPublisher(events.NewPublisher(client, events.DefaultStream, nil)),
		notification.WithMailer(mailer),
	)
	require.NoError(t, err)

	d.Notify(ctx, sample())
	require.NoError(t, d.Close(ctx))

	list, err := d.List(ctx, receiver, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.NotifyInterviewScheduled, list[0].Type)
	assert.Equal(t, "iv-1", list[0].Metadata["interview_id"])
	assert.False(t, list[0].Read)

	n, err := client.XLen(ctx, events.DefaultStream).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, receiver.Email, mailer.sent[0].to)
	assert.Equal(t, "Interview scheduled", mailer.sent[0].subject)

	require.NoError(t, d.MarkRead(ctx, receiver, list[0].ID))
	list, err = d.List(ctx, receiver, 10)
	require.NoError(t, err)
	assert.True(t, list[0].Read)

	other := domain.Identity{UID: "cand-2", Role: domain.RoleCandidate}
	assert.ErrorIs(t, d.MarkRead(ctx, other, list[0].ID), domain.ErrNotFound)
}

func TestDeliverKeepsInAppCopyWhenChannelsFail(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	d, err := notification.NewDispatcher(store.Notifications(),
		notification.WithPublisher(events.NewPublisher(client, "", nil)),
		notification.WithMailer(&fakeMailer{err: errors.New("smtp quota")}),
		notification.WithTimeout(time.Second),
	)
	require.NoError(t, err)

	err = d.Deliver(ctx, sample())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDependencyFailure)

	list, err := store.Notifications().ListForReceiver(ctx, receiver.UID, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestNotifyAfterCloseIsDropped(t *testing.T) {
	ctx := context.Background()
	store := sqlstoretest.New(t)

	d, err := notification.NewDispatcher(store.Notifications())
	require.NoError(t, err)
	require.NoError(t, d.Close(ctx))

	d.Notify(ctx, sample())

	list, err := store.Notifications().ListForReceiver(ctx, receiver.UID, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListRequiresIdentity(t *testing.T) {
	store := sqlstoretest.New(t)
	d, err := notification.NewDispatcher(store.Notifications())
	require.NoError(t, err)

	_, err = d.List(context.Background(), domain.Identity{}, 10)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	assert.ErrorIs(t, d.Deliver(context.Background(), domain.Notification{}), domain.ErrInvalidInput)
}
