// Package flash implements one-shot feedback messages carried across a
// redirect. Messages are stored next to the session data and removed on
// first read.
package flash

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/deploypanel/deploypanel/internal/web/session"
)

// Message channels. Templates map them onto alert styles.
const (
	ChannelSuccess = "success"
	ChannelError   = "error"
	ChannelInfo    = "info"
	ChannelWarning = "warning"
)

// Messages survive one redirect; anything older is stale.
const expiry = 5 * time.Minute

// Message is a single flash entry.
type Message struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

// Success queues a success message for the next rendered page.
func Success(c *fiber.Ctx, text string) { add(c, ChannelSuccess, text) }

// Error queues an error message for the next rendered page.
func Error(c *fiber.Ctx, text string) { add(c, ChannelError, text) }

// Info queues an info message for the next rendered page.
func Info(c *fiber.Ctx, text string) { add(c, ChannelInfo, text) }

// Warning queues a warning message for the next rendered page.
func Warning(c *fiber.Ctx, text string) { add(c, ChannelWarning, text) }

// Pop returns the queued messages for this session and clears them.
func Pop(c *fiber.Ctx) []Message {
	key, ok := storageKey(c)
	if !ok {
		return nil
	}

	raw, err := session.Store.Storage.Get(key)
	if err != nil || len(raw) == 0 {
		return nil
	}

	if err = session.Store.Storage.Delete(key); err != nil {
		log.Error().Err(err).Msg("failed to clear flash messages")
	}

	var messages []Message
	if err = json.Unmarshal(raw, &messages); err != nil {
		log.Error().Err(err).Msg("failed to decode flash messages")
		return nil
	}

	return messages
}

func add(c *fiber.Ctx, channel, text string) {
	key, ok := storageKey(c)
	if !ok {
		return
	}

	var messages []Message
	if raw, err := session.Store.Storage.Get(key); err == nil && len(raw) > 0 {
		// A failed decode drops stale entries, the new message still goes out.
		_ = json.Unmarshal(raw, &messages)
	}

	messages = append(messages, Message{Channel: channel, Text: text})

	out, err := json.Marshal(messages)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode flash messages")
		return
	}

	if err = session.Store.Storage.Set(key, out, expiry); err != nil {
		log.Error().Err(err).Msg("failed to store flash messages")
	}
}

// storageKey derives the flash storage key from the session cookie. Without
// a session there is nobody to show the message to.
func storageKey(c *fiber.Ctx) (string, bool) {
	sessionID := c.Cookies("session")
	if sessionID == "" {
		return "", false
	}

	return "flash:" + sessionID, true
}
