package workers

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"
	"wa-gateway/domain"
	"wa-gateway/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSignalPump_Forwards_In_Order(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	handler := mocks.NewMockSignalHandler(ctrl)
	signals := make(chan domain.EngineSignal, 3)

	signals <- domain.EngineSignal{Kind: domain.SignalChallenge}
	signals <- domain.EngineSignal{Kind: domain.SignalAuthenticated}
	signals <- domain.EngineSignal{Kind: domain.SignalReady}
	close(signals)

	gomock.InOrder(
		handler.EXPECT().Handle(gomock.Any(), domain.EngineSignal{Kind: domain.SignalChallenge}).Return(nil),
		handler.EXPECT().Handle(gomock.Any(), domain.EngineSignal{Kind: domain.SignalAuthenticated}).Return(nil),
		handler.EXPECT().Handle(gomock.Any(), domain.EngineSignal{Kind: domain.SignalReady}).Return(nil),
	)

	// When the channel is drained then closed
	err := NewSignalPump(slog.Default(), signals, handler).Run(context.Background())

	// Then the pump stops cleanly
	req.NoError(err)
}

func TestSignalPump_Returns_Handler_Error(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	handler := mocks.NewMockSignalHandler(ctrl)
	signals := make(chan domain.EngineSignal, 1)
	signals <- domain.EngineSignal{Kind: domain.SignalDisconnected}

	handler.EXPECT().Handle(gomock.Any(), gomock.Any()).Return(fmt.Errorf("boom"))

	err := NewSignalPump(slog.Default(), signals, handler).Run(context.Background())

	req.EqualError(err, "boom")
}

func TestIncomingPump_Skips_Failures(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	handler := mocks.NewMockIncomingHandler(ctrl)
	incoming := make(chan domain.IncomingMessage, 2)
	incoming <- domain.IncomingMessage{ID: "1", Body: "!ping"}
	incoming <- domain.IncomingMessage{ID: "2", Body: "good morning"}
	close(incoming)

	gomock.InOrder(
		handler.EXPECT().Handle(gomock.Any(), domain.IncomingMessage{ID: "1", Body: "!ping"}).Return(fmt.Errorf("send failed")),
		handler.EXPECT().Handle(gomock.Any(), domain.IncomingMessage{ID: "2", Body: "good morning"}).Return(nil),
	)

	done := make(chan error, 1)
	go func() { done <- NewIncomingPump(slog.Default(), incoming, handler).Run(context.Background()) }()

	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("pump did not stop")
	}
}
