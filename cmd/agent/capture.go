package main

import (
	"errors"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/RodolfoMedinaCS/LinkLensV4/internal/dispatcher"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/extractor"
	"github.com/RodolfoMedinaCS/LinkLensV4/internal/session"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/httpclient"
	"github.com/RodolfoMedinaCS/LinkLensV4/pkg/redisclient"
)

func newCaptureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capture <url>",
		Short: "Capture a page and save it to LinkLens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := createLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			redisClient, err := redisclient.New(cfg.Redis)
			if err != nil {
				return err
			}
			defer func() { _ = redisClient.Close() }()

			d := dispatcher.New(
				cfg.Capture,
				extractor.New(log),
				session.NewStore(redisClient),
				httpclient.NewDefault(),
				log,
			)

			ack := d.SaveLink(cmd.Context(), dispatcher.Tab{URL: args[0]})
			renderSaveAck(ack)

			if !ack.Success {
				return errors.New(ack.Error)
			}
			return nil
		},
	}
}

// renderSaveAck prints the capture result as a table.
func renderSaveAck(ack dispatcher.SaveAck) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	if ack.Data != nil {
		t.AppendHeader(table.Row{"Field", "Value"})
		t.AppendRows([]table.Row{
			{"ID", ack.Data.ID},
			{"URL", ack.Data.URL},
			{"Title", ack.Data.Title},
			{"Status", ack.Data.Status},
		})
		if ack.Data.SiteName.Valid {
			t.AppendRow(table.Row{"Site", ack.Data.SiteName.String})
		}
	} else {
		t.AppendHeader(table.Row{"Result", "Detail"})
		t.AppendRow(table.Row{"failed", ack.Error})
	}

	t.Render()
}
