package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/deppfellow/usercrud/internal/cloudfn"
	"github.com/spf13/cobra"
)

func newInvokeCmd() *cobra.Command {
	var eventPath string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Handle one gateway event and print the function response",
		Long: "Reads a gateway event as JSON (from --event, or stdin when it is \"-\"),\n" +
			"runs it the way the serverless function does and prints the response.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invoke(cmd.Context(), eventPath, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&eventPath, "event", "e", "-", "path to the event JSON, - for stdin")
	return cmd
}

func invoke(ctx context.Context, eventPath string, stdin io.Reader, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	event, err := readEvent(eventPath, stdin)
	if err != nil {
		return err
	}

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.close(context.Background()); err != nil {
			a.server.Logger.Error().Err(err).Msg("failed to release resources")
		}
	}()

	fn := cloudfn.New(a.services.Users, *a.server.Logger)
	resp := fn.Handle(ctx, event)

	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(resp)
}

func readEvent(path string, stdin io.Reader) (*cloudfn.Event, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read event: %w", err)
	}

	var event cloudfn.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return &event, nil
}
