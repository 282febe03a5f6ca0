package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the session is ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			s, err := api.Status(ctx)
			if err != nil {
				return err
			}
			if s.ClientReady {
				success(cmd, "%s", s.Message)
			} else {
				warn(cmd, "%s", s.Message)
			}
			return nil
		},
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show gateway counters and process statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			h, err := api.Health(ctx)
			if err != nil {
				return err
			}
			table := newTable(cmd, []string{"Metric", "Value"})
			table.AppendBulk([][]string{
				{"session", h.SessionState},
				{"ready", strconv.FormatBool(h.ClientReady)},
				{"observers", strconv.Itoa(h.Observers)},
				{"messages sent", strconv.FormatUint(h.MessagesSent, 10)},
				{"send failures", strconv.FormatUint(h.SendFailures, 10)},
				{"observers evicted", strconv.FormatUint(h.ObserversEvicted, 10)},
				{"goroutines", strconv.Itoa(h.Goroutines)},
				{"heap (MB)", strconv.FormatUint(h.AllocMemMb, 10)},
				{"cpu (%)", fmt.Sprintf("%.1f", h.Process.CPUPercent)},
				{"uptime", (time.Duration(h.UptimeSeconds) * time.Second).String()},
			})
			table.Render()
			return nil
		},
	}
}

func groupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List the groups the session belongs to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := requestContext(cmd)
			defer cancel()
			groups, err := api.Groups(ctx)
			if err != nil {
				return err
			}
			if len(groups) == 0 {
				warn(cmd, "no groups")
				return nil
			}
			table := newTable(cmd, []string{"ID", "Name"})
			for _, g := range groups {
				table.Append([]string{g.ID, g.Name})
			}
			table.Render()
			return nil
		},
	}
}

func newTable(cmd *cobra.Command, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}
