package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"
	"time"
	"wa-gateway/domain"
	"wa-gateway/errors"
	"wa-gateway/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type dispatcherFixture struct {
	dispatcher *Dispatcher
	engine     *mocks.MockEngine
	session    *mocks.MockISession
}

func newDispatcherFixture(t *testing.T, state domain.SessionState) dispatcherFixture {
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	session := mocks.NewMockISession(ctrl)
	var info *domain.SessionInfo
	if state == domain.Ready {
		info = &domain.SessionInfo{ID: "62800000000@s.whatsapp.net"}
	}
	session.EXPECT().State().Return(state).AnyTimes()
	session.EXPECT().Info().Return(info).AnyTimes()
	return dispatcherFixture{
		dispatcher: NewDispatcher(slog.Default(), engine, session, nil, DispatcherConfig{
			Policy:             domain.DefaultCountryCodePolicy(),
			MediaSendTimeout:   50 * time.Millisecond,
			GroupInviteComment: "Group invitation",
		}),
		engine:  engine,
		session: session,
	}
}

func mustPhone(t *testing.T, raw string) domain.AddressableID {
	id, err := domain.NormalizePhone(raw, domain.DefaultCountryCodePolicy())
	require.NoError(t, err)
	return id
}

func mustGroup(t *testing.T, raw string) domain.AddressableID {
	id, err := domain.ParseGroupID(raw)
	require.NoError(t, err)
	return id
}

func TestDispatcher_SendText_Normalized_And_Registered(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	to := mustPhone(t, "628123456789")

	// Given a registered recipient
	f.engine.EXPECT().IsRegisteredUser(gomock.Any(), to).Return(true, nil).Times(1)
	f.engine.EXPECT().SendMessage(gomock.Any(), to, domain.TextContent("hi")).
		Return(domain.SentMessage{ID: "3EB0", To: to.String(), Body: "hi"}, nil)

	// When a text is sent to a national number
	sent, err := f.dispatcher.SendText(context.Background(), "0812-345-6789", "hi")

	// Then the engine got the canonical id and the response is handed back
	req.NoError(err)
	req.Equal("3EB0", sent.ID)
	req.Equal("628123456789@c.us", sent.To)
}

func TestDispatcher_Not_Ready_Fails_Every_Operation(t *testing.T) {
	for _, state := range []domain.SessionState{domain.Uninitialized, domain.Authenticating, domain.Authenticated, domain.Disconnected} {
		t.Run(state.String(), func(t *testing.T) {
			req := require.New(t)
			f := newDispatcherFixture(t, state)
			ctx := context.Background()

			// No engine call is expected at all
			_, err := f.dispatcher.SendText(ctx, "0812345678", "hi")
			req.ErrorIs(err, errors.ErrSessionNotReady)
			_, err = f.dispatcher.SendMedia(ctx, "0812345678", domain.Upload{Data: []byte("x")}, "")
			req.ErrorIs(err, errors.ErrSessionNotReady)
			_, err = f.dispatcher.SendToGroup(ctx, "", "Ops", "go")
			req.ErrorIs(err, errors.ErrSessionNotReady)
			req.ErrorIs(f.dispatcher.AddToGroup(ctx, "0812345678", "1203@g.us"), errors.ErrSessionNotReady)
			_, err = f.dispatcher.ClearChat(ctx, "0812345678")
			req.ErrorIs(err, errors.ErrSessionNotReady)
			_, err = f.dispatcher.CheckRegistered(ctx, "0812345678")
			req.ErrorIs(err, errors.ErrSessionNotReady)
			_, err = f.dispatcher.ListGroups(ctx)
			req.ErrorIs(err, errors.ErrSessionNotReady)
		})
	}
}

func TestDispatcher_SendText_Invalid_Number(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)

	_, err := f.dispatcher.SendText(context.Background(), "call me", "hi")

	req.ErrorIs(err, errors.ErrInvalidIdentifier)
}

func TestDispatcher_SendText_Not_Registered(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	f.engine.EXPECT().IsRegisteredUser(gomock.Any(), gomock.Any()).Return(false, nil)

	_, err := f.dispatcher.SendText(context.Background(), "0812345678", "hi")

	req.ErrorIs(err, errors.ErrRecipientNotRegistered)
}

func TestDispatcher_Registration_Check_Failure(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	cause := fmt.Errorf("usync query failed")
	f.engine.EXPECT().IsRegisteredUser(gomock.Any(), gomock.Any()).Return(false, cause)

	_, err := f.dispatcher.SendText(context.Background(), "0812345678", "hi")

	req.ErrorIs(err, errors.ErrRegistrationCheckFailed)
	req.ErrorIs(err, cause)
	req.True(errors.IsTransient(err))
}

func TestDispatcher_SendText_Engine_Failure(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	f.engine.EXPECT().IsRegisteredUser(gomock.Any(), gomock.Any()).Return(true, nil)
	f.engine.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).Return(domain.SentMessage{}, fmt.Errorf("server returned error 479"))

	_, err := f.dispatcher.SendText(context.Background(), "0812345678", "hi")

	req.ErrorIs(err, errors.ErrSendFailed)
	req.EqualError(err, errors.ErrSendFailed.Error())
}

func TestDispatcher_SendMedia_Oversized_Image(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)

	// When a 17 MiB image is sent, nothing reaches the engine
	_, err := f.dispatcher.SendMedia(context.Background(), "0812345678", domain.Upload{
		Data:         []byte("jpeg"),
		ContentType:  "image/jpeg",
		Filename:     "big.jpg",
		DeclaredSize: 17 * domain.MiB,
	}, "")

	// Then the caller is told about the 16MB ceiling
	req.ErrorIs(err, errors.ErrPayloadTooLarge)
	req.ErrorContains(err, "16MB")
}

func TestDispatcher_SendMedia_Success(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	to := mustPhone(t, "0812345678")

	f.engine.EXPECT().IsRegisteredUser(gomock.Any(), to).Return(true, nil).Times(1)
	f.engine.EXPECT().SendMessage(gomock.Any(), to, gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.AddressableID, content domain.Content) (domain.SentMessage, error) {
			// The send runs under the media deadline
			_, ok := ctx.Deadline()
			req.True(ok)
			req.True(content.IsMedia())
			req.Equal("look", content.Caption)
			req.Equal("application/pdf", content.Media.ContentType())
			return domain.SentMessage{ID: "3EB1", HasMedia: true}, nil
		})

	sent, err := f.dispatcher.SendMedia(context.Background(), "0812345678", domain.Upload{
		Data: []byte("%PDF-1.7"), ContentType: "application/pdf", Filename: "doc.pdf",
	}, "look")

	req.NoError(err)
	req.True(sent.HasMedia)
}

func TestDispatcher_SendMedia_Timeout(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	f.engine.EXPECT().IsRegisteredUser(gomock.Any(), gomock.Any()).Return(true, nil)

	// Given an engine slower than the media deadline
	f.engine.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.AddressableID, _ domain.Content) (domain.SentMessage, error) {
			<-ctx.Done()
			return domain.SentMessage{}, ctx.Err()
		})

	_, err := f.dispatcher.SendMedia(context.Background(), "0812345678", domain.Upload{
		Data: []byte("img"), ContentType: "image/png", Filename: "a.png",
	}, "")

	req.ErrorIs(err, errors.ErrSendTimeout)
	req.True(errors.IsTransient(err))
}

func TestDispatcher_SendMedia_Timeout_Engine_Ignores_Context(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	f.engine.EXPECT().IsRegisteredUser(gomock.Any(), gomock.Any()).Return(true, nil)

	// Given an engine that never looks at its context and answers late with a success
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	f.engine.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.AddressableID, domain.Content) (domain.SentMessage, error) {
			<-release
			return domain.SentMessage{ID: "late"}, nil
		})

	// When
	start := time.Now()
	sent, err := f.dispatcher.SendMedia(context.Background(), "0812345678", domain.Upload{
		Data: []byte("img"), ContentType: "image/png", Filename: "a.png",
	}, "")

	// Then the caller stops waiting at the deadline
	req.ErrorIs(err, errors.ErrSendTimeout)
	req.Empty(sent.ID)
	req.Less(time.Since(start), time.Second)
}

func TestDispatcher_SendMedia_Caller_Cancelled(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	f.engine.EXPECT().IsRegisteredUser(gomock.Any(), gomock.Any()).Return(true, nil)

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	ctx, cancel := context.WithCancel(context.Background())
	f.engine.EXPECT().SendMessage(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.AddressableID, domain.Content) (domain.SentMessage, error) {
			cancel()
			<-release
			return domain.SentMessage{}, nil
		})

	_, err := f.dispatcher.SendMedia(ctx, "0812345678", domain.Upload{
		Data: []byte("img"), ContentType: "image/png", Filename: "a.png",
	}, "")

	req.ErrorIs(err, errors.ErrMediaSendFailed)
	req.ErrorIs(err, context.Canceled)
	req.NotErrorIs(err, errors.ErrSendTimeout)
}

func TestDispatcher_SendToGroup_By_Name_Ignores_Case(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	teamA := mustGroup(t, "111@g.us")

	f.engine.EXPECT().GetChats(gomock.Any()).Return([]domain.Chat{
		{ID: mustPhone(t, "0812345678"), Name: "Team A"},
		{ID: teamA, Name: "team a", IsGroup: true},
		{ID: mustGroup(t, "222@g.us"), Name: "TEAM A", IsGroup: true},
	}, nil)
	f.engine.EXPECT().SendMessage(gomock.Any(), teamA, domain.TextContent("go")).
		Return(domain.SentMessage{ID: "3EB2", To: teamA.String()}, nil)

	// When the group is addressed by name with another casing
	sent, err := f.dispatcher.SendToGroup(context.Background(), "", "Team A", "go")

	// Then the first matching group wins and the contact with the same name is ignored
	req.NoError(err)
	req.Equal("111@g.us", sent.To)
}

func TestDispatcher_SendToGroup_Unknown_Name(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	f.engine.EXPECT().GetChats(gomock.Any()).Return([]domain.Chat{
		{ID: mustGroup(t, "111@g.us"), Name: "Dev", IsGroup: true},
	}, nil)

	_, err := f.dispatcher.SendToGroup(context.Background(), "", "Ops", "go")

	req.ErrorIs(err, errors.ErrGroupNotFound)
	req.EqualError(err, "No group found with name: Ops")
}

func TestDispatcher_SendToGroup_By_ID(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	gid := mustGroup(t, "120363021234567890@g.us")
	f.engine.EXPECT().SendMessage(gomock.Any(), gid, gomock.Any()).Return(domain.SentMessage{ID: "3EB3"}, nil)

	// The id wins over the name, no chat listing is needed
	_, err := f.dispatcher.SendToGroup(context.Background(), "120363021234567890", "ignored", "go")

	req.NoError(err)
}

func TestDispatcher_SendToGroup_Neither_ID_Nor_Name(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)

	_, err := f.dispatcher.SendToGroup(context.Background(), " ", "", "go")

	req.ErrorIs(err, errors.ErrValidation)
}

func TestDispatcher_AddToGroup(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	member := mustPhone(t, "0812345678")
	gid := mustGroup(t, "111@g.us")

	f.engine.EXPECT().IsRegisteredUser(gomock.Any(), member).Return(true, nil).Times(1)
	f.engine.EXPECT().GetChatByID(gomock.Any(), gid).Return(domain.Chat{ID: gid, Name: "Dev", IsGroup: true}, nil)
	f.engine.EXPECT().AddParticipants(gomock.Any(), gid, []domain.AddressableID{member}, "Group invitation").Return(nil)

	req.NoError(f.dispatcher.AddToGroup(context.Background(), "0812345678", "111@g.us"))
}

func TestDispatcher_AddToGroup_Mutation_Failure(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	gid := mustGroup(t, "111@g.us")

	f.engine.EXPECT().IsRegisteredUser(gomock.Any(), gomock.Any()).Return(true, nil)
	f.engine.EXPECT().GetChatByID(gomock.Any(), gid).Return(domain.Chat{ID: gid, IsGroup: true}, nil)
	f.engine.EXPECT().AddParticipants(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(fmt.Errorf("403 not admin"))

	err := f.dispatcher.AddToGroup(context.Background(), "0812345678", "111@g.us")

	req.ErrorIs(err, errors.ErrGroupMutationFailed)
	req.Equal(500, errors.HTTPStatus(err))
}

func TestDispatcher_AddToGroup_Unknown_Group(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)

	f.engine.EXPECT().IsRegisteredUser(gomock.Any(), gomock.Any()).Return(true, nil)
	f.engine.EXPECT().GetChatByID(gomock.Any(), gomock.Any()).
		Return(domain.Chat{}, fmt.Errorf("%w: 111@g.us", errors.ErrGroupNotFound))

	err := f.dispatcher.AddToGroup(context.Background(), "0812345678", "111@g.us")

	req.ErrorIs(err, errors.ErrGroupNotFound)
	req.EqualError(err, "No group found with id: 111@g.us")
	req.Equal(http.StatusUnprocessableEntity, errors.HTTPStatus(err))
}

func TestDispatcher_AddToGroup_Lookup_Failure(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	cause := fmt.Errorf("websocket not connected")

	f.engine.EXPECT().IsRegisteredUser(gomock.Any(), gomock.Any()).Return(true, nil)
	f.engine.EXPECT().GetChatByID(gomock.Any(), gomock.Any()).Return(domain.Chat{}, cause)

	err := f.dispatcher.AddToGroup(context.Background(), "0812345678", "111@g.us")

	// The engine failure is kept and answered as a server error
	req.ErrorIs(err, errors.ErrGroupLookupFailed)
	req.ErrorIs(err, cause)
	req.NotErrorIs(err, errors.ErrGroupNotFound)
	req.Equal(http.StatusInternalServerError, errors.HTTPStatus(err))
}

func TestDispatcher_ClearChat(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	to := mustPhone(t, "0812345678")
	f.engine.EXPECT().IsRegisteredUser(gomock.Any(), to).Return(true, nil)
	f.engine.EXPECT().ClearMessages(gomock.Any(), to).Return(true, nil)

	cleared, err := f.dispatcher.ClearChat(context.Background(), "0812345678")

	req.NoError(err)
	req.True(cleared)
}

func TestDispatcher_ListGroups(t *testing.T) {
	req := require.New(t)
	f := newDispatcherFixture(t, domain.Ready)
	f.engine.EXPECT().GetChats(gomock.Any()).Return([]domain.Chat{
		{ID: mustPhone(t, "0812345678"), Name: "Alice"},
		{ID: mustGroup(t, "111@g.us"), Name: "Dev", IsGroup: true},
	}, nil)

	groups, err := f.dispatcher.ListGroups(context.Background())

	req.NoError(err)
	req.Len(groups, 1)
	req.Equal("Dev", groups[0].Name)
}

func TestDispatcher_Status(t *testing.T) {
	req := require.New(t)

	ready := newDispatcherFixture(t, domain.Ready).dispatcher.Status()
	req.True(ready.Ready)
	req.Equal(domain.StatusReadyText, ready.Message)

	notReady := newDispatcherFixture(t, domain.Authenticating).dispatcher.Status()
	req.False(notReady.Ready)
	req.Equal(domain.StatusNotReadyText, notReady.Message)
}

func TestTranslateSendError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", context.DeadlineExceeded, errors.ErrSendTimeout},
		{"timeout text", fmt.Errorf("Send media timeout after 120 seconds"), errors.ErrSendTimeout},
		{"timed out", fmt.Errorf("info query timed out"), errors.ErrSendTimeout},
		{"evaluation", fmt.Errorf("Evaluation failed: undefined"), errors.ErrEvaluationFailed},
		{"protocol", fmt.Errorf("Protocol error (Runtime.callFunctionOn)"), errors.ErrProtocolError},
		{"target closed", fmt.Errorf("Target closed"), errors.ErrConnectionLost},
		{"websocket", fmt.Errorf("websocket not connected"), errors.ErrConnectionLost},
		{"other", fmt.Errorf("boom"), errors.ErrMediaSendFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			got := translateSendError(tt.err, errors.ErrMediaSendFailed)
			req.ErrorIs(got, tt.want)
			req.True(stderrors.Is(got, tt.err))
			req.EqualError(got, tt.want.Error())
		})
	}
}

func TestFindGroupByName_First_Match(t *testing.T) {
	req := require.New(t)
	chats := []domain.Chat{
		{ID: mustGroup(t, "1@g.us"), Name: "Ops", IsGroup: true},
		{ID: mustGroup(t, "2@g.us"), Name: "ops", IsGroup: true},
	}

	group, ok := FindGroupByName(chats, "OPS")

	req.True(ok)
	req.Equal("1@g.us", group.ID.String())
}
