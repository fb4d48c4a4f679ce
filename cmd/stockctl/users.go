package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
)

func newUsersCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage staff accounts",
	}

	var req transport.RegisterUserRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := c.app.Users.Register(c.ctx(cmd), c.principal(), req)
			if err != nil {
				return err
			}
			c.printf("created %s (%s)\n", u.Username, u.Section)
			return nil
		},
	}
	add.Flags().StringVar(&req.Username, "username", "", "login name")
	add.Flags().StringVar(&req.Password, "password", "", "initial password")
	add.Flags().StringVar(&req.Section, "section", "", "Admin, Management or a department")

	list := &cobra.Command{
		Use:   "list",
		Short: "Show every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := c.app.Users.List(c.ctx(cmd), c.principal())
			if err != nil {
				return err
			}
			t := c.table()
			t.AppendHeader(table.Row{"Username", "Section", "Created"})
			for _, u := range users {
				t.AppendRow(table.Row{u.Username, u.Section, u.CreatedAt.Format("2006-01-02 15:04")})
			}
			t.Render()
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}
