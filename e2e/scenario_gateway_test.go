package e2e

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
	"wa-gateway/client"
	"wa-gateway/domain/event"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testGatewaySuite struct {
	BaseGatewaySuite
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, &testGatewaySuite{})
}

var errFirstFrame = fmt.Errorf("first frame received")

func (s *testGatewaySuite) TestMessagingFlow() {
	// --- STEP 0: SESSION MUST BE PAIRED ---
	var ready bool
	s.WithGateway("Checking session status", func(ctx context.Context, c *client.Client) {
		status, err := c.Status(ctx)
		s.Require().NoError(err)
		ready = status.ClientReady
	})
	if !ready {
		s.T().Skip("session is not paired, run `wactl watch` and scan the code first")
	}

	// --- STEP 1: OBSERVER IS GREETED ---
	s.Run("Step 1: Realtime channel greets new observers", func() {
		s.WithGateway("Attaching an observer", func(ctx context.Context, c *client.Client) {
			ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			var first event.Frame
			err := c.Watch(ctx, func(f event.Frame) error {
				first = f
				return errFirstFrame
			})
			s.Require().True(stderrors.Is(err, errFirstFrame), "watch ended with %v", err)
			s.Require().Equal(event.NameMessage, first.Event)
			s.Require().Equal(event.TextConnecting, first.Data)
		})
	})

	if s.Config.TestNumber == "" {
		s.T().Log("E2E_TEST_NUMBER is not set, skipping the sending steps")
		return
	}

	// --- STEP 2: REGISTRATION & TEXT ---
	s.Run("Step 2: Send a text to a registered number", func() {
		s.WithGateway("Checking and messaging the test number", func(ctx context.Context, c *client.Client) {
			msg, err := c.IsRegistered(ctx, s.Config.TestNumber)
			s.Require().NoError(err)
			s.Require().Equal("The number is registered", msg)

			sent, err := c.SendMessage(ctx, s.Config.TestNumber, "e2e "+uuid.NewString())
			s.Require().NoError(err)
			s.Require().NotEmpty(sent.ID)
		})
	})

	// --- STEP 3: MEDIA ---
	s.Run("Step 3: Send a document", func() {
		path := filepath.Join(s.T().TempDir(), "e2e.txt")
		s.Require().NoError(os.WriteFile(path, []byte("sent by the e2e suite\n"), 0o600))

		s.WithGateway("Uploading a small text file", func(ctx context.Context, c *client.Client) {
			msg, err := c.SendMedia(ctx, s.Config.TestNumber, path, "e2e document")
			s.Require().NoError(err)
			s.Require().Equal("Media sent successfully", msg)
		})
	})

	// --- STEP 4: VALIDATION ---
	s.Run("Step 4: Invalid input is rejected with 422", func() {
		s.WithGateway("Sending without a number", func(ctx context.Context, c *client.Client) {
			_, err := c.SendMessage(ctx, "", "nobody")
			var apiErr *client.APIError
			s.Require().ErrorAs(err, &apiErr)
			s.Require().Equal(422, apiErr.StatusCode)
			s.Require().False(client.IsRetryable(err))
		})
	})
}

