package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Filipe-Ambrozio/stockwatch/internal/csvstore"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
)

func newImportCmd(c *cli) *cobra.Command {
	var (
		from      string
		withUsers bool
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the product table with the rows of a CSV store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := c.ctx(cmd)
			if from == "" {
				return errors.New("--from is required")
			}
			if src, ok := c.app.Store.(*csvstore.Store); ok && sameDir(src.Dir(), from) {
				return errors.New("--from is the configured store itself")
			}

			src, err := csvstore.OpenSource(from)
			if err != nil {
				return err
			}
			rows, err := src.Products()
			if err != nil {
				return err
			}
			if len(rows) == 0 && !force {
				current, err := c.app.Store.ListProducts(ctx, store.ProductFilter{})
				if err != nil {
					return err
				}
				if len(current) > 0 {
					return fmt.Errorf("%s has no products and would clear %d row(s); pass --force to proceed", from, len(current))
				}
			}
			res, err := c.app.Products.Import(ctx, c.principal(), rows)
			if err != nil {
				return err
			}
			c.printf("imported %d product(s), skipped %d\n", res.Imported, res.Skipped)

			if !withUsers {
				return nil
			}
			users, err := src.Users()
			if err != nil {
				return err
			}
			added := 0
			for i := range users {
				err := c.app.Store.CreateUser(ctx, &users[i])
				if errors.Is(err, store.ErrConflict) {
					continue
				}
				if err != nil {
					return fmt.Errorf("import user %s: %w", users[i].Username, err)
				}
				added++
			}
			c.printf("imported %d user(s)\n", added)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "directory holding products.csv")
	cmd.Flags().BoolVar(&withUsers, "users", false, "also copy accounts that do not exist yet")
	cmd.Flags().BoolVar(&force, "force", false, "allow an empty source to clear the product table")
	return cmd
}

func sameDir(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	return err1 == nil && err2 == nil && aa == bb
}
