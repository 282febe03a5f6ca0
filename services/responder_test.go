package services

import (
	"context"
	"log/slog"
	"testing"
	"wa-gateway/domain"
	"wa-gateway/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestResponder_Fixed_Replies(t *testing.T) {
	tests := []struct {
		body  string
		reply string
	}{
		{"!ping", "pong"},
		{"good morning", "selamat pagi"},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			engine := mocks.NewMockEngine(ctrl)
			from := mustPhone(t, "0812345678")

			engine.EXPECT().SendMessage(gomock.Any(), from, domain.TextContent(tt.reply)).Return(domain.SentMessage{}, nil)

			err := NewResponder(slog.Default(), engine, true).Handle(context.Background(),
				domain.IncomingMessage{From: from, Chat: from, Body: tt.body})
			req.NoError(err)
		})
	}
}

func TestResponder_Groups(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	from := mustPhone(t, "0812345678")

	engine.EXPECT().GetChats(gomock.Any()).Return([]domain.Chat{
		{ID: from, Name: "Alice"},
		{ID: mustGroup(t, "111@g.us"), Name: "Dev", IsGroup: true},
	}, nil)
	engine.EXPECT().SendMessage(gomock.Any(), from, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.AddressableID, content domain.Content) (domain.SentMessage, error) {
			req.Equal("*YOUR GROUPS*\n\nID: 111@g.us\nName: Dev\n\n_You can use the group id to send a message to the group._", content.Text)
			return domain.SentMessage{}, nil
		})

	req.NoError(NewResponder(slog.Default(), engine, true).Handle(context.Background(),
		domain.IncomingMessage{From: from, Chat: from, Body: "!groups"}))
}

func TestResponder_No_Groups(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	engine := mocks.NewMockEngine(ctrl)
	from := mustPhone(t, "0812345678")

	engine.EXPECT().GetChats(gomock.Any()).Return(nil, nil)
	engine.EXPECT().SendMessage(gomock.Any(), from, domain.TextContent("You have no group yet.")).Return(domain.SentMessage{}, nil)

	req.NoError(NewResponder(slog.Default(), engine, true).Handle(context.Background(),
		domain.IncomingMessage{From: from, Body: "!groups"}))
}

func TestResponder_Ignores(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		msg     domain.IncomingMessage
	}{
		{"disabled", false, domain.IncomingMessage{Body: "!ping"}},
		{"own message", true, domain.IncomingMessage{Body: "!ping", FromMe: true}},
		{"unknown command", true, domain.IncomingMessage{Body: "hello"}},
		{"different casing", true, domain.IncomingMessage{Body: "!PING"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			// No engine call expected
			engine := mocks.NewMockEngine(ctrl)
			require.NoError(t, NewResponder(slog.Default(), engine, tt.enabled).Handle(context.Background(), tt.msg))
		})
	}
}
