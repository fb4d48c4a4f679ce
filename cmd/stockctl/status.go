package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Filipe-Ambrozio/stockwatch/internal/service"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
)

func newStatusCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Read or change the store-wide banner",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current banner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := c.app.Status.Get(c.ctx(cmd))
			if err != nil {
				return err
			}
			c.printf("[%s] %s\n", st.Color, st.Message)
			return nil
		},
	}

	var req transport.SetStatusRequest
	set := &cobra.Command{
		Use:   "set",
		Short: "Replace the banner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.app.Status.Set(c.ctx(cmd), c.principal(), req)
			if err != nil {
				return err
			}
			c.printf("[%s] %s\n", e.Color, e.Message)
			return nil
		},
	}
	set.Flags().StringVar(&req.Color, "color", "", "green, yellow, red or blue")
	set.Flags().StringVar(&req.Message, "message", "", "banner text")

	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List previous banners, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := c.app.Status.History(c.ctx(cmd), limit)
			if err != nil {
				return err
			}
			t := c.table()
			t.AppendHeader(table.Row{"#", "When", "Color", "Message", "By"})
			for _, e := range entries {
				t.AppendRow(table.Row{e.ID, e.CreatedAt.Format("2006-01-02 15:04"), e.Color, e.Message, e.CreatedBy})
			}
			t.Render()
			return nil
		},
	}
	history.Flags().IntVar(&limit, "limit", service.DefaultHistoryLimit, "entries to show")

	cmd.AddCommand(show, set, history)
	return cmd
}
