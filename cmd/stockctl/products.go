package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
	"github.com/Filipe-Ambrozio/stockwatch/internal/util"
)

func newProductsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"p"},
		Short:   "List, add and remove product rows",
	}
	cmd.AddCommand(newProductsListCmd(c), newProductsAddCmd(c), newProductsRemoveCmd(c))
	return cmd
}

func newProductsListCmd(c *cli) *cobra.Command {
	var q transport.ListProductsQuery

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show products, soonest expiry first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := c.ctx(cmd)
			var all []transport.ProductView
			for page := 1; ; page++ {
				q.Page, q.Size = page, util.MaxPageSize
				res, err := c.app.Products.List(ctx, c.principal(), q)
				if err != nil {
					return err
				}
				all = append(all, res.Data...)
				if !res.Meta.HasNext {
					break
				}
			}
			c.renderProducts(all)
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Section, "section", "", "only this department")
	cmd.Flags().StringVar(&q.Tier, "tier", "", "only this tier: expired, urgent, warning or held")
	cmd.Flags().StringVarP(&q.Query, "query", "q", "", "substring of code or name")
	return cmd
}

// bindProductFlags registers the tuple flags shared by add and remove --match.
func bindProductFlags(cmd *cobra.Command, r *transport.RegisterProductRequest) {
	f := cmd.Flags()
	f.StringVar(&r.Code, "code", "", "barcode")
	f.StringVar(&r.Name, "name", "", "product name")
	f.StringVar(&r.ExpiryDate, "expiry", "", "expiry date, YYYY-MM-DD or DD/MM/YYYY")
	f.StringVar(&r.Lot, "lot", "", "lot number")
	f.IntVar(&r.Quantity, "qty", 0, "units on the shelf")
	f.StringVar(&r.Section, "section", "", "department")
}

func newProductsAddCmd(c *cli) *cobra.Command {
	var req transport.RegisterProductRequest

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a product row",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := c.app.Products.Register(c.ctx(cmd), c.principal(), req)
			if err != nil {
				return err
			}
			c.renderProducts([]transport.ProductView{*v})
			return nil
		},
	}
	bindProductFlags(cmd, &req)
	return cmd
}

func newProductsRemoveCmd(c *cli) *cobra.Command {
	var (
		id    string
		match bool
		req   transport.RegisterProductRequest
	)

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Delete a row by id, or every row equal to the given fields",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := c.ctx(cmd)
			switch {
			case id != "" && match:
				return errors.New("use either --id or --match")
			case id != "":
				pid, err := uuid.Parse(id)
				if err != nil {
					return fmt.Errorf("--id: %w", err)
				}
				if err := c.app.Products.Delete(ctx, c.principal(), pid); err != nil {
					return err
				}
				c.printf("removed 1 product\n")
				return nil
			case match:
				n, err := c.app.Products.DeleteMatching(ctx, c.principal(), transport.DeleteMatchRequest(req))
				if err != nil {
					return err
				}
				c.printf("removed %d product(s)\n", n)
				return nil
			}
			return errors.New("one of --id or --match is required")
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "product id")
	cmd.Flags().BoolVar(&match, "match", false, "delete rows equal to --code --name --expiry --lot --qty --section")
	bindProductFlags(cmd, &req)
	return cmd
}
