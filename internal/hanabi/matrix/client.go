// Package matrix provides the Matrix chat front-end for Hanabi.
package matrix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/bdobrica/Hanabi/common/retry"
	"github.com/bdobrica/Hanabi/internal/hanabi/store"
)

// Config holds Matrix client configuration.
type Config struct {
	Homeserver  string
	UserID      string
	AccessToken string
	// Rooms is an optional allow-list of room IDs. When empty, messages from
	// every joined room are handled.
	Rooms []string
	// Store is an optional persistence layer for the sync position. When
	// nil, an in-memory store is used and room history replays on restart.
	Store *store.Store
}

// MessageHandler processes one incoming text message and returns the reply
// to send, or "" for no reply.
type MessageHandler func(ctx context.Context, roomID, sender, text string) string

// Client wraps the mautrix client with Hanabi's message routing.
type Client struct {
	client  *mautrix.Client
	config  *Config
	stopCh  chan struct{}
	handler MessageHandler
}

// New creates a Matrix client.
func New(config *Config) (*Client, error) {
	client, err := mautrix.NewClient(config.Homeserver, id.UserID(config.UserID), config.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Matrix client: %w", err)
	}

	c := &Client{
		client: client,
		config: config,
		stopCh: make(chan struct{}),
	}

	// Persist the sync position so a restart resumes where it left off
	// instead of replaying old room history.
	if config.Store != nil {
		client.Store = newStoreSyncStore(config.Store)
		slog.Info("Matrix sync store: using persistent SQLite store")
	} else {
		slog.Warn("Matrix sync store: no store configured, using in-memory store (history will replay on restart)")
	}

	return c, nil
}

// Start verifies credentials, joins the configured rooms, and begins syncing
// in the background. The sync loop reconnects with exponential backoff until
// Stop is called.
func (c *Client) Start(ctx context.Context, handler MessageHandler) error {
	c.handler = handler

	// Homeservers flap on startup in containerized deployments, so the
	// credential check gets a few attempts before we give up.
	err := retry.Do(ctx, retry.DefaultConfig, func() error {
		_, err := c.client.Whoami(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to verify Matrix credentials: %w", err)
	}

	syncer := c.client.Syncer.(*mautrix.DefaultSyncer)
	syncer.OnEventType(event.EventMessage, c.handleMessage)

	for _, roomID := range c.config.Rooms {
		if err := c.joinRoom(id.RoomID(roomID)); err != nil {
			return fmt.Errorf("failed to join room %s: %w", roomID, err)
		}
	}

	go c.syncLoop()

	return nil
}

// syncLoop keeps the /sync long-poll alive. Without reconnection a transient
// homeserver error would silently kill the goroutine and leave the bot deaf.
func (c *Client) syncLoop() {
	const (
		backoffMin = 2 * time.Second
		backoffMax = 5 * time.Minute
	)
	backoff := backoffMin
	for {
		start := time.Now()
		err := c.client.Sync()
		if err == nil {
			// Sync returns nil only on a clean StopSync() call.
			return
		}
		select {
		case <-c.stopCh:
			return
		default:
		}
		// A sync that survived for a while means the connection was healthy;
		// start the backoff over instead of compounding old failures.
		if time.Since(start) > time.Minute {
			backoff = backoffMin
		}
		slog.Error("Matrix sync stopped; reconnecting", "err", err, "backoff", backoff)
		select {
		case <-c.stopCh:
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > backoffMax {
			backoff = backoffMax
		}
	}
}

// Stop stops the Matrix client.
func (c *Client) Stop() {
	close(c.stopCh)
	c.client.StopSync()
}

// SendMessage sends a text message to a room.
func (c *Client) SendMessage(roomID, message string) error {
	_, err := c.client.SendText(context.Background(), id.RoomID(roomID), message)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendNotice sends a notice message (rendered less prominently by clients).
func (c *Client) SendNotice(roomID, message string) error {
	content := event.MessageEventContent{
		MsgType: event.MsgNotice,
		Body:    message,
	}
	_, err := c.client.SendMessageEvent(context.Background(), id.RoomID(roomID), event.EventMessage, &content)
	if err != nil {
		return fmt.Errorf("failed to send notice: %w", err)
	}
	return nil
}

// SetTyping sets the typing indicator, shown while a turn is in flight.
func (c *Client) SetTyping(roomID string, typing bool, timeout time.Duration) error {
	_, err := c.client.UserTyping(context.Background(), id.RoomID(roomID), typing, timeout)
	if err != nil {
		return fmt.Errorf("failed to set typing: %w", err)
	}
	return nil
}

// allowedRoom reports whether messages from roomID should be handled.
func (c *Client) allowedRoom(roomID string) bool {
	if len(c.config.Rooms) == 0 {
		return true
	}
	for _, allowed := range c.config.Rooms {
		if allowed == roomID {
			return true
		}
	}
	return false
}

// handleMessage routes one incoming event to the registered handler. Each
// message is processed in its own goroutine so a slow turn in one room does
// not stall the sync loop or other rooms.
func (c *Client) handleMessage(ctx context.Context, evt *event.Event) {
	if evt.Sender == id.UserID(c.config.UserID) {
		return
	}

	msgContent := evt.Content.AsMessage()
	if msgContent == nil || msgContent.MsgType != event.MsgText {
		return
	}

	roomID := evt.RoomID.String()
	if !c.allowedRoom(roomID) {
		return
	}

	if c.handler == nil {
		return
	}

	sender := evt.Sender.String()
	text := msgContent.Body
	go func() {
		if err := c.SetTyping(roomID, true, 2*time.Minute); err != nil {
			slog.Debug("failed to set typing indicator", "room", roomID, "err", err)
		}
		reply := c.handler(ctx, roomID, sender, text)
		if err := c.SetTyping(roomID, false, 0); err != nil {
			slog.Debug("failed to clear typing indicator", "room", roomID, "err", err)
		}
		if reply == "" {
			return
		}
		if err := c.SendMessage(roomID, reply); err != nil {
			slog.Error("failed to send reply", "room", roomID, "err", err)
		}
	}()
}

// joinRoom attempts to join a room.
func (c *Client) joinRoom(roomID id.RoomID) error {
	_, err := c.client.JoinRoomByID(context.Background(), roomID)
	if err != nil {
		// Homeservers return M_FORBIDDEN when the bot is already a member
		// of the room.
		if errors.Is(err, mautrix.MForbidden) {
			slog.Warn("joinRoom: already a member or access denied, continuing", "room", roomID)
			return nil
		}
		return err
	}
	return nil
}

// GetUserID returns the client's user ID.
func (c *Client) GetUserID() string {
	return c.config.UserID
}
