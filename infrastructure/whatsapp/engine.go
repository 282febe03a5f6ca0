package whatsapp

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"wa-gateway/domain"
	"wa-gateway/errors"

	_ "github.com/mattn/go-sqlite3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/appstate"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
)

type Config struct {
	// DSN of the sqlite database holding the paired device.
	DSN            string
	SignalBuffer   int
	IncomingBuffer int
}

// Engine drives a single whatsmeow client. Reconnection is left to the
// caller: auto reconnect is disabled and every drop is reported as a
// disconnected signal.
type Engine struct {
	log      *slog.Logger
	config   Config
	signals  chan domain.EngineSignal
	incoming chan domain.IncomingMessage

	mu        sync.RWMutex
	container *sqlstore.Container
	client    *whatsmeow.Client
	lifetime  context.Context
	stopQR    context.CancelFunc
	// teardown runs without mu held: whatsmeow takes its handler lock there
	// while handlers may be waiting on mu.
	teardown func(*whatsmeow.Client)
}

func NewEngine(log *slog.Logger, config Config) *Engine {
	return &Engine{
		log:      log.With("component", "whatsapp"),
		config:   config,
		signals:  make(chan domain.EngineSignal, config.SignalBuffer),
		incoming: make(chan domain.IncomingMessage, config.IncomingBuffer),
		teardown: teardownClient,
	}
}

func (e *Engine) Signals() <-chan domain.EngineSignal      { return e.signals }
func (e *Engine) Incoming() <-chan domain.IncomingMessage { return e.incoming }

// Initialize opens the device store, builds a fresh client and connects it.
// An unpaired device starts the pairing flow: every code is reported as a
// challenge signal.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.client != nil {
		return nil
	}
	container, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return fmt.Errorf("loading device: %w", err)
	}
	client := whatsmeow.NewClient(device, newLogAdapter(e.log, "client"))
	client.EnableAutoReconnect = false
	client.AddEventHandler(e.handleEvent)

	e.lifetime = ctx
	if client.Store.ID == nil {
		qrCtx, stop := context.WithCancel(e.lifetime)
		qrChan, err := client.GetQRChannel(qrCtx)
		if err != nil {
			stop()
			return fmt.Errorf("opening pairing channel: %w", err)
		}
		e.stopQR = stop
		go e.pumpPairing(qrCtx, qrChan)
	}
	if err := client.Connect(); err != nil {
		e.cancelPairing()
		client.RemoveEventHandlers()
		return fmt.Errorf("connecting: %w", err)
	}
	e.client = client
	e.log.Info("Client connecting", "paired", client.Store.ID != nil)
	return nil
}

func (e *Engine) Destroy(_ context.Context) error {
	e.mu.Lock()
	e.cancelPairing()
	client := e.client
	e.client = nil
	e.mu.Unlock()
	if client == nil {
		return nil
	}
	e.teardown(client)
	e.log.Info("Client destroyed")
	return nil
}

func teardownClient(client *whatsmeow.Client) {
	client.RemoveEventHandlers()
	client.Disconnect()
}

func (e *Engine) IsRegisteredUser(ctx context.Context, id domain.AddressableID) (bool, error) {
	client, err := e.connected()
	if err != nil {
		return false, err
	}
	if id.IsGroup() {
		return false, nil
	}
	resp, err := client.IsOnWhatsApp(ctx, []string{phoneQuery(id)})
	if err != nil {
		return false, err
	}
	return len(resp) > 0 && resp[0].IsIn, nil
}

func (e *Engine) SendMessage(ctx context.Context, to domain.AddressableID, content domain.Content) (domain.SentMessage, error) {
	client, err := e.connected()
	if err != nil {
		return domain.SentMessage{}, err
	}
	jid, err := toJID(to)
	if err != nil {
		return domain.SentMessage{}, err
	}
	msg := textMessage(content.Text)
	body := content.Text
	if content.IsMedia() {
		raw, err := content.Media.Decode()
		if err != nil {
			return domain.SentMessage{}, err
		}
		up, err := client.Upload(ctx, raw, mediaTypeOf(content.Media.Category()))
		if err != nil {
			return domain.SentMessage{}, fmt.Errorf("uploading media: %w", err)
		}
		msg = mediaMessage(*content.Media, content.Caption, up)
		body = content.Caption
	}
	resp, err := client.SendMessage(ctx, jid, msg)
	if err != nil {
		return domain.SentMessage{}, err
	}
	return domain.SentMessage{
		ID:        resp.ID,
		To:        to.String(),
		Body:      body,
		HasMedia:  content.IsMedia(),
		Timestamp: resp.Timestamp,
	}, nil
}

func (e *Engine) GetChatByID(ctx context.Context, id domain.AddressableID) (domain.Chat, error) {
	client, err := e.connected()
	if err != nil {
		return domain.Chat{}, err
	}
	jid, err := toJID(id)
	if err != nil {
		return domain.Chat{}, err
	}
	if id.IsGroup() {
		info, err := client.GetGroupInfo(ctx, jid)
		if stderrors.Is(err, whatsmeow.ErrGroupNotFound) || stderrors.Is(err, whatsmeow.ErrNotInGroup) {
			return domain.Chat{}, fmt.Errorf("%w: %s: %v", errors.ErrGroupNotFound, id, err)
		}
		if err != nil {
			return domain.Chat{}, err
		}
		return groupChat(info), nil
	}
	chat := domain.Chat{ID: id}
	if contact, err := client.Store.Contacts.GetContact(ctx, jid); err == nil {
		chat.Name = contact.FullName
		if chat.Name == "" {
			chat.Name = contact.PushName
		}
	}
	return chat, nil
}

// GetChats lists the joined groups. The protocol keeps no server side list
// of individual chats.
func (e *Engine) GetChats(ctx context.Context) ([]domain.Chat, error) {
	client, err := e.connected()
	if err != nil {
		return nil, err
	}
	groups, err := client.GetJoinedGroups(ctx)
	if err != nil {
		return nil, err
	}
	chats := make([]domain.Chat, 0, len(groups))
	for _, g := range groups {
		chats = append(chats, groupChat(g))
	}
	return chats, nil
}

// AddParticipants adds members directly. Members whose privacy settings
// refuse it receive an invitation carrying comment instead.
func (e *Engine) AddParticipants(ctx context.Context, group domain.AddressableID, participants []domain.AddressableID, comment string) error {
	client, err := e.connected()
	if err != nil {
		return err
	}
	groupJID, err := toJID(group)
	if err != nil {
		return err
	}
	jids := make([]types.JID, 0, len(participants))
	for _, p := range participants {
		jid, err := toJID(p)
		if err != nil {
			return err
		}
		jids = append(jids, jid)
	}
	results, err := client.UpdateGroupParticipants(ctx, groupJID, jids, whatsmeow.ParticipantChangeAdd)
	if err != nil {
		return err
	}
	var groupName string
	for _, r := range results {
		if r.Error == 0 {
			continue
		}
		if r.AddRequest == nil {
			return fmt.Errorf("adding %s failed with code %d", r.JID.String(), r.Error)
		}
		if groupName == "" {
			if info, err := client.GetGroupInfo(ctx, groupJID); err == nil {
				groupName = info.Name
			}
		}
		invite := inviteMessage(group, groupName, r.AddRequest.Code, r.AddRequest.Expiration.Unix(), comment)
		if _, err := client.SendMessage(ctx, r.JID.ToNonAD(), invite); err != nil {
			return fmt.Errorf("inviting %s: %w", r.JID.String(), err)
		}
		e.log.Info("Participant invited instead of added", "group", group.String(), "participant", r.JID.String())
	}
	return nil
}

func (e *Engine) ClearMessages(ctx context.Context, chat domain.AddressableID) (bool, error) {
	client, err := e.connected()
	if err != nil {
		return false, err
	}
	jid, err := toJID(chat)
	if err != nil {
		return false, err
	}
	if err := client.SendAppState(ctx, appstate.BuildDeleteChat(jid, time.Now(), nil, true)); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) openStore(ctx context.Context) (*sqlstore.Container, error) {
	if e.container != nil {
		return e.container, nil
	}
	container, err := sqlstore.New(ctx, "sqlite3", e.config.DSN, newLogAdapter(e.log, "store"))
	if err != nil {
		return nil, fmt.Errorf("opening device store: %w", err)
	}
	e.container = container
	return container, nil
}

func (e *Engine) connected() (*whatsmeow.Client, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.client == nil || !e.client.IsConnected() {
		return nil, whatsmeow.ErrNotConnected
	}
	return e.client, nil
}

func (e *Engine) cancelPairing() {
	if e.stopQR != nil {
		e.stopQR()
		e.stopQR = nil
	}
}

func groupChat(info *types.GroupInfo) domain.Chat {
	return domain.Chat{ID: fromJID(info.JID), Name: info.Name, IsGroup: true}
}
