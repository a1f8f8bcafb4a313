// Package client implements the chat state machine used by terminal and
// embedded front ends of the relay.
package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"zen-backend/internal/models"
	"zen-backend/internal/sanitize"
	"zen-backend/internal/services"
)

// DefaultTimeout is the client-side deadline for one send.
const DefaultTimeout = 25 * time.Second

var errEmptyReply = errors.New("relay returned an empty reply")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the on-screen transcript.
type Message struct {
	Role      Role
	Text      string
	Timestamp time.Time
	// Local marks text produced by the client itself (greeting, failure
	// notices). Local messages are never sent back as history.
	Local bool
}

// Status reflects the outcome of the last round trip.
type Status string

const (
	StatusConnecting Status = "connecting"
	StatusConnected  Status = "connected"
	StatusError      Status = "error"
)

// Conversation holds one transient transcript and allows at most one send
// in flight.
type Conversation struct {
	mu        sync.Mutex
	transport Transport
	timeout   time.Duration
	messages  []Message
	status    Status
	inFlight  bool
	onPending func(pending bool)
	now       func() time.Time
}

// NewConversation starts a transcript with the assistant's greeting. The
// timeout is capped at the relay's own deadline.
func NewConversation(transport Transport, timeout time.Duration) *Conversation {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if timeout > services.DefaultChatTimeout {
		timeout = services.DefaultChatTimeout
	}

	c := &Conversation{
		transport: transport,
		timeout:   timeout,
		status:    StatusConnecting,
		now:       time.Now,
	}
	c.messages = []Message{{Role: RoleAssistant, Text: services.SeedGreeting, Timestamp: c.now(), Local: true}}
	return c
}

// OnPending registers the typing indicator callback. It is called with true
// when a send starts and with false exactly once when it ends.
func (c *Conversation) OnPending(fn func(pending bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPending = fn
}

// Send submits text and blocks until the reply or failure notice has been
// appended, which it returns. It reports false without contacting the relay
// when the sanitized text is empty or another send is still pending.
func (c *Conversation) Send(ctx context.Context, text string) (Message, bool) {
	text = sanitize.Message(text, models.MaxMessageLength)
	if text == "" {
		return Message{}, false
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return Message{}, false
	}
	c.inFlight = true
	history := c.historyLocked()
	c.messages = append(c.messages, Message{Role: RoleUser, Text: text, Timestamp: c.now()})
	onPending := c.onPending
	c.mu.Unlock()

	if onPending != nil {
		onPending(true)
	}
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
		if onPending != nil {
			onPending(false)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := c.transport.Send(ctx, models.ChatRequest{Message: text, History: history})
	if err == nil {
		if reply = services.CleanReply(reply); reply == "" {
			err = errEmptyReply
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	msg := Message{Role: RoleAssistant, Timestamp: c.now()}
	if err != nil {
		msg.Text = FailureText(err)
		msg.Local = true
		c.status = StatusError
	} else {
		msg.Text = reply
		c.status = StatusConnected
	}
	c.messages = append(c.messages, msg)
	return msg, true
}

// historyLocked converts the answered part of the transcript into prior
// turns. A user message whose send failed has no model turn after it and is
// left out, so the turns always alternate user, model.
func (c *Conversation) historyLocked() []models.HistoryEntry {
	var history []models.HistoryEntry
	var asked *Message
	for i := range c.messages {
		m := &c.messages[i]
		switch {
		case m.Local:
			asked = nil
		case m.Role == RoleUser:
			asked = m
		case asked != nil:
			history = append(history,
				models.HistoryEntry{Role: "user", Parts: []models.Part{{Text: asked.Text}}},
				models.HistoryEntry{Role: "model", Parts: []models.Part{{Text: m.Text}}},
			)
			asked = nil
		}
	}
	return history
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

func (c *Conversation) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Pending reports whether a send is in flight.
func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}
