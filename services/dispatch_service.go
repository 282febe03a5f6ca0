package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"wa-gateway/contract"
	"wa-gateway/domain"
	"wa-gateway/errors"
	"wa-gateway/observability"

	"github.com/samber/lo"
)

type DispatcherConfig struct {
	Policy             domain.CountryCodePolicy
	MediaSendTimeout   time.Duration
	GroupInviteComment string
}

// Dispatcher runs every outbound operation through the same steps: readiness,
// normalization, ingestion when there is media, one registration check, then
// the engine call.
type Dispatcher struct {
	log          *slog.Logger
	engine       contract.Engine
	session      contract.ISession
	gate         *Gate
	registration *RegistrationChecker
	media        *MediaIngestor
	monitoring   *observability.MonitoringManager
	config       DispatcherConfig
}

func NewDispatcher(log *slog.Logger, engine contract.Engine, session contract.ISession,
	monitoring *observability.MonitoringManager, config DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		log:          log.With("component", "dispatcher"),
		engine:       engine,
		session:      session,
		gate:         NewGate(session),
		registration: NewRegistrationChecker(engine),
		media:        NewMediaIngestor(log),
		monitoring:   monitoring,
		config:       config,
	}
}

func (d *Dispatcher) Status() domain.Status {
	return domain.NewStatus(d.session.State(), d.session.Info())
}

func (d *Dispatcher) CheckRegistered(ctx context.Context, rawNumber string) (domain.AddressableID, error) {
	if err := d.gate.RequireReady(); err != nil {
		return domain.AddressableID{}, err
	}
	id, err := domain.NormalizePhone(rawNumber, d.config.Policy)
	if err != nil {
		return domain.AddressableID{}, err
	}
	if err := d.registration.Require(ctx, id); err != nil {
		return domain.AddressableID{}, err
	}
	return id, nil
}

func (d *Dispatcher) SendText(ctx context.Context, rawNumber, text string) (domain.SentMessage, error) {
	id, err := d.CheckRegistered(ctx, rawNumber)
	if err != nil {
		return domain.SentMessage{}, err
	}
	return d.send(ctx, id, domain.TextContent(text), errors.ErrSendFailed)
}

func (d *Dispatcher) SendMedia(ctx context.Context, rawNumber string, upload domain.Upload, caption string) (domain.SentMessage, error) {
	if err := d.gate.RequireReady(); err != nil {
		return domain.SentMessage{}, err
	}
	id, err := domain.NormalizePhone(rawNumber, d.config.Policy)
	if err != nil {
		return domain.SentMessage{}, err
	}
	envelope, err := d.media.Ingest(upload)
	if err != nil {
		return domain.SentMessage{}, err
	}
	if err := d.registration.Require(ctx, id); err != nil {
		return domain.SentMessage{}, err
	}

	return d.sendWithin(ctx, id, domain.MediaContent(envelope, caption))
}

type sendResult struct {
	sent domain.SentMessage
	err  error
}

// sendWithin races the engine against MediaSendTimeout. A deadline only ends
// the caller's wait: the engine call keeps running and may still deliver.
func (d *Dispatcher) sendWithin(ctx context.Context, to domain.AddressableID, content domain.Content) (domain.SentMessage, error) {
	sendCtx, cancel := context.WithTimeout(ctx, d.config.MediaSendTimeout)
	defer cancel()
	results := make(chan sendResult, 1)
	go func() {
		sent, err := d.send(sendCtx, to, content, errors.ErrMediaSendFailed)
		results <- sendResult{sent: sent, err: err}
	}()

	select {
	case r := <-results:
		return r.sent, r.err
	case <-sendCtx.Done():
		select {
		case r := <-results:
			return r.sent, r.err
		default:
		}
		if ctx.Err() != nil {
			return domain.SentMessage{}, &errors.SendError{Kind: errors.ErrMediaSendFailed, Cause: ctx.Err()}
		}
		d.log.Warn("Media send deadline reached, the send may still complete", "to", to.String(),
			"timeout", d.config.MediaSendTimeout)
		return domain.SentMessage{}, &errors.SendError{Kind: errors.ErrSendTimeout, Cause: sendCtx.Err()}
	}
}

// SendToGroup targets groupID when given, otherwise the first group whose
// name matches groupName without regard to case.
func (d *Dispatcher) SendToGroup(ctx context.Context, groupID, groupName, text string) (domain.SentMessage, error) {
	if err := d.gate.RequireReady(); err != nil {
		return domain.SentMessage{}, err
	}
	target, err := d.resolveGroup(ctx, groupID, groupName)
	if err != nil {
		return domain.SentMessage{}, err
	}
	return d.send(ctx, target, domain.TextContent(text), errors.ErrSendFailed)
}

func (d *Dispatcher) AddToGroup(ctx context.Context, rawNumber, groupID string) error {
	id, err := d.CheckRegistered(ctx, rawNumber)
	if err != nil {
		return err
	}
	gid, err := domain.ParseGroupID(groupID)
	if err != nil {
		return err
	}
	group, err := d.engine.GetChatByID(ctx, gid)
	switch {
	case err != nil && !stderrors.Is(err, errors.ErrGroupNotFound):
		d.log.Error("Group lookup failed", "group", gid.String(), "error", err)
		return &errors.SendError{Kind: errors.ErrGroupLookupFailed, Cause: err}
	case err != nil || !group.IsGroup:
		d.log.Warn("Group not found", "group", gid.String(), "error", err)
		return &errors.GroupIDNotFoundError{ID: gid.String()}
	}
	if err := d.engine.AddParticipants(ctx, group.ID, []domain.AddressableID{id}, d.config.GroupInviteComment); err != nil {
		d.log.Error("Adding participant failed", "group", group.ID.String(), "number", id.String(), "error", err)
		return &errors.SendError{Kind: errors.ErrGroupMutationFailed, Cause: err}
	}
	d.log.Info("Participant added", "group", group.ID.String(), "number", id.String())
	return nil
}

func (d *Dispatcher) ClearChat(ctx context.Context, rawNumber string) (bool, error) {
	id, err := d.CheckRegistered(ctx, rawNumber)
	if err != nil {
		return false, err
	}
	cleared, err := d.engine.ClearMessages(ctx, id)
	if err != nil {
		return false, &errors.SendError{Kind: errors.ErrClearFailed, Cause: err}
	}
	return cleared, nil
}

func (d *Dispatcher) ListGroups(ctx context.Context) ([]domain.Chat, error) {
	if err := d.gate.RequireReady(); err != nil {
		return nil, err
	}
	chats, err := d.engine.GetChats(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	return lo.Filter(chats, func(c domain.Chat, _ int) bool { return c.IsGroup }), nil
}

func (d *Dispatcher) resolveGroup(ctx context.Context, groupID, groupName string) (domain.AddressableID, error) {
	if strings.TrimSpace(groupID) != "" {
		return domain.ParseGroupID(groupID)
	}
	if strings.TrimSpace(groupName) == "" {
		return domain.AddressableID{}, fmt.Errorf("%w: a group id or name is required", errors.ErrValidation)
	}
	groups, err := d.ListGroups(ctx)
	if err != nil {
		return domain.AddressableID{}, err
	}
	group, ok := FindGroupByName(groups, groupName)
	if !ok {
		return domain.AddressableID{}, &errors.GroupNotFoundError{Name: groupName}
	}
	return group.ID, nil
}

// FindGroupByName returns the first group whose name equals name, ignoring case.
func FindGroupByName(chats []domain.Chat, name string) (domain.Chat, bool) {
	return lo.Find(chats, func(c domain.Chat) bool {
		return c.IsGroup && strings.EqualFold(c.Name, name)
	})
}

func (d *Dispatcher) send(ctx context.Context, to domain.AddressableID, content domain.Content, fallback error) (domain.SentMessage, error) {
	sent, err := d.engine.SendMessage(ctx, to, content)
	if err != nil {
		d.monitoring.IncrSendFailures()
		d.log.Error("Sending failed", "to", to.String(), "media", content.IsMedia(), "error", err)
		return domain.SentMessage{}, translateSendError(err, fallback)
	}
	d.monitoring.IncrMessagesSent()
	d.log.Info("Message sent", "to", to.String(), "id", sent.ID, "media", content.IsMedia())
	return sent, nil
}

// translateSendError maps engine failures onto the messages callers act on.
func translateSendError(err error, fallback error) error {
	msg := err.Error()
	kind := fallback
	switch {
	case stderrors.Is(err, context.DeadlineExceeded),
		strings.Contains(strings.ToLower(msg), "timeout"),
		strings.Contains(msg, "timed out"):
		kind = errors.ErrSendTimeout
	case strings.Contains(msg, "Evaluation failed"):
		kind = errors.ErrEvaluationFailed
	case strings.Contains(msg, "Protocol error"):
		kind = errors.ErrProtocolError
	case strings.Contains(msg, "Target closed"),
		strings.Contains(msg, "not connected"):
		kind = errors.ErrConnectionLost
	}
	return &errors.SendError{Kind: kind, Cause: err}
}
