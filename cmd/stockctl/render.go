package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Filipe-Ambrozio/stockwatch/internal/expiry"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
)

func (c *cli) table() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(c.out)
	t.SetStyle(table.StyleLight)
	return t
}

var tierColors = map[expiry.Tier]text.Colors{
	expiry.TierExpired: {text.FgRed, text.Bold},
	expiry.TierUrgent:  {text.FgHiYellow},
	expiry.TierWarning: {text.FgYellow},
	expiry.TierHeld:    {text.FgGreen},
}

func (c *cli) paint(t expiry.Tier, s string) string {
	if c.noColor {
		return s
	}
	return tierColors[t].Sprint(s)
}

func (c *cli) renderProducts(rows []transport.ProductView) {
	t := c.table()
	t.AppendHeader(table.Row{"ID", "Code", "Name", "Expiry", "Lot", "Qty", "Section", "Days", "Status"})
	qty := 0
	for _, v := range rows {
		t.AppendRow(table.Row{
			v.ID.String(), v.Code, v.Name, v.ExpiryDate, v.Lot, v.Quantity, v.Section,
			v.DaysRemaining, c.paint(v.Tier, v.Label),
		})
		qty += v.Quantity
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", qty, len(rows)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 6, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
	})
	t.Render()
}
