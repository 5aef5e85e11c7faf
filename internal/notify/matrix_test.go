// ABOUTME: Tests for the Matrix notifier and the fan-out notifier
// ABOUTME: Uses in-memory senders instead of a homeserver

package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"
)

type fakeRoom struct {
	room id.RoomID
	text string
	err  error
}

func (f *fakeRoom) SendText(_ context.Context, roomID id.RoomID, text string) (*mautrix.RespSendEvent, error) {
	f.room = roomID
	f.text = text
	if f.err != nil {
		return nil, f.err
	}
	return &mautrix.RespSendEvent{EventID: id.EventID("$evt")}, nil
}

func TestMatrixNotifier_PostsToRoom(t *testing.T) {
	room := &fakeRoom{}
	n := &MatrixNotifier{room: id.RoomID("!leads:example.com"), client: room}

	require.NoError(t, n.Notify(context.Background(), "Email: a@example.com"))
	assert.Equal(t, id.RoomID("!leads:example.com"), room.room)
	assert.Equal(t, "Email: a@example.com", room.text)
}

func TestMatrixNotifier_Error(t *testing.T) {
	room := &fakeRoom{err: errors.New("M_FORBIDDEN")}
	n := &MatrixNotifier{room: id.RoomID("!leads:example.com"), client: room}

	err := n.Notify(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, room.err)
}

func TestNewMatrixNotifier(t *testing.T) {
	n, err := NewMatrixNotifier(MatrixConfig{
		Homeserver:  "https://matrix.example.com",
		UserID:      "@bot:example.com",
		AccessToken: "token",
		RoomID:      "!leads:example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, id.RoomID("!leads:example.com"), n.room)
}

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	var calls []string
	mailErr := errors.New("smtp down")

	m := Multi{
		{Name: "mail", Notifier: NotifierFunc(func(_ context.Context, info string) error {
			calls = append(calls, "mail:"+info)
			return mailErr
		})},
		{Name: "matrix", Notifier: NotifierFunc(func(_ context.Context, info string) error {
			calls = append(calls, "matrix:"+info)
			return nil
		})},
	}

	err := m.Notify(context.Background(), "lead")
	require.Error(t, err)
	assert.ErrorIs(t, err, mailErr)
	assert.Contains(t, err.Error(), "mail: smtp down")
	assert.Equal(t, []string{"mail:lead", "matrix:lead"}, calls)
}

func TestMulti_Empty(t *testing.T) {
	assert.NoError(t, Multi{}.Notify(context.Background(), "lead"))
}
