package commands

import (
	"context"
	"encoding/base64"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"wa-gateway/domain/event"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
)

const pngDataURLPrefix = "data:image/png;base64,"

var errStopWatching = fmt.Errorf("stop watching")

// watch: follow the session lifecycle, saving pairing codes as PNG.
func watchCmd() *cobra.Command {
	var (
		untilReady bool
		qrFile     string
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream session events, saving each pairing QR code to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			out := cmd.OutOrStdout()
			err := api.Watch(ctx, func(f event.Frame) error {
				switch f.Event {
				case event.NameQR:
					if err := saveQR(f.Data, qrFile); err != nil {
						return err
					}
					fmt.Fprintln(out, color.Cyan.Sprintf("new pairing code written to %s", qrFile))
				case event.NameReady:
					success(cmd, "%s", f.Data)
					if untilReady {
						return errStopWatching
					}
				case event.NameAuthenticated:
					success(cmd, "%s", f.Data)
				default:
					fmt.Fprintln(out, f.Data)
				}
				return nil
			})
			if stderrors.Is(err, errStopWatching) || stderrors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&untilReady, "until-ready", false, "exit once the session reports ready")
	cmd.Flags().StringVar(&qrFile, "qr-file", "wactl-qr.png", "where pairing codes are written")
	return cmd
}

func saveQR(dataURL, path string) error {
	encoded, ok := strings.CutPrefix(dataURL, pngDataURLPrefix)
	if !ok {
		return fmt.Errorf("unexpected qr payload")
	}
	png, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("qr payload is not base64: %w", err)
	}
	return os.WriteFile(path, png, 0o600)
}
