package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"wa-gateway/contract"
	"wa-gateway/domain"

	"github.com/samber/lo"
)

const (
	noGroupsReply     = "You have no group yet."
	groupsReplyHeader = "*YOUR GROUPS*\n\n"
	groupsReplyFooter = "_You can use the group id to send a message to the group._"
)

// Responder answers a few fixed commands received by the session.
type Responder struct {
	log     *slog.Logger
	engine  contract.Engine
	enabled bool
}

func NewResponder(log *slog.Logger, engine contract.Engine, enabled bool) *Responder {
	return &Responder{log: log.With("component", "responder"), engine: engine, enabled: enabled}
}

func (r *Responder) Handle(ctx context.Context, msg domain.IncomingMessage) error {
	if !r.enabled || msg.FromMe {
		return nil
	}
	reply, err := r.replyFor(ctx, msg.Body)
	if err != nil || reply == "" {
		return err
	}
	to := msg.Chat
	if to.IsZero() {
		to = msg.From
	}
	if _, err := r.engine.SendMessage(ctx, to, domain.TextContent(reply)); err != nil {
		return fmt.Errorf("auto reply to %s: %w", to.String(), err)
	}
	r.log.Debug("Auto reply sent", "to", to.String(), "command", msg.Body)
	return nil
}

func (r *Responder) replyFor(ctx context.Context, body string) (string, error) {
	switch body {
	case "!ping":
		return "pong", nil
	case "good morning":
		return "selamat pagi", nil
	case "!groups":
		chats, err := r.engine.GetChats(ctx)
		if err != nil {
			return "", fmt.Errorf("listing chats: %w", err)
		}
		return formatGroups(lo.Filter(chats, func(c domain.Chat, _ int) bool { return c.IsGroup })), nil
	default:
		return "", nil
	}
}

func formatGroups(groups []domain.Chat) string {
	if len(groups) == 0 {
		return noGroupsReply
	}
	var b strings.Builder
	b.WriteString(groupsReplyHeader)
	for _, g := range groups {
		fmt.Fprintf(&b, "ID: %s\nName: %s\n\n", g.ID.String(), g.Name)
	}
	b.WriteString(groupsReplyFooter)
	return b.String()
}
