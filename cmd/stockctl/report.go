package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newReportCmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise stock per section and tier, or export it as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := c.ctx(cmd)
			switch format {
			case "csv":
				return c.app.Reports.ExportCSV(ctx, c.principal(), c.out)
			case "table":
			default:
				return fmt.Errorf("unknown --format %q", format)
			}

			sum, err := c.app.Reports.Summary(ctx, c.principal())
			if err != nil {
				return err
			}
			c.printf("Stock on %s\n", sum.Today)

			tiers := c.table()
			tiers.AppendHeader(table.Row{"Tier", "Products", "Units"})
			for _, b := range sum.ByTier {
				tiers.AppendRow(table.Row{c.paint(b.Tier, string(b.Tier)), b.Products, b.Quantity})
			}
			tiers.AppendFooter(table.Row{"Total", sum.TotalProducts, sum.TotalQuantity})
			tiers.Render()

			sections := c.table()
			sections.AppendHeader(table.Row{"Section", "Products", "Units"})
			for _, b := range sum.BySection {
				sections.AppendRow(table.Row{b.Section, b.Products, b.Quantity})
			}
			sections.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "table or csv")
	return cmd
}
