// ABOUTME: Matrix lead notifier that posts lead text to one room
// ABOUTME: Uses mautrix with a pre-issued access token; no sync loop is started

package notify

import (
	"context"
	"fmt"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/id"
)

// roomSender is the part of *mautrix.Client the notifier uses.
type roomSender interface {
	SendText(ctx context.Context, roomID id.RoomID, text string) (*mautrix.RespSendEvent, error)
}

// MatrixConfig identifies the account and room to post to.
type MatrixConfig struct {
	Homeserver  string
	UserID      string
	AccessToken string
	RoomID      string
}

// MatrixNotifier posts lead text into a Matrix room.
type MatrixNotifier struct {
	room   id.RoomID
	client roomSender
}

// NewMatrixNotifier creates the Matrix client for cfg.
func NewMatrixNotifier(cfg MatrixConfig) (*MatrixNotifier, error) {
	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("creating matrix client: %w", err)
	}
	return &MatrixNotifier{room: id.RoomID(cfg.RoomID), client: client}, nil
}

// Notify posts info as a plain text message.
func (n *MatrixNotifier) Notify(ctx context.Context, info string) error {
	if _, err := n.client.SendText(ctx, n.room, info); err != nil {
		return fmt.Errorf("sending to room %s: %w", n.room, err)
	}
	return nil
}
