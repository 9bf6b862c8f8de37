package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/slimeyayush/altair-frontend/internal/app"
	"github.com/slimeyayush/altair-frontend/internal/checkout"
	"github.com/slimeyayush/altair-frontend/internal/domain"
)

type cartView struct {
	Mode    string          `json:"mode"`
	Cart    *domain.Cart    `json:"cart"`
	Totals  checkout.Totals `json:"totals"`
	Message string          `json:"message,omitempty"`
}

func printCart(rt *runtime, a *app.App, c *domain.Cart, msg string) error {
	v := cartView{
		Mode:    a.Cart.Mode().String(),
		Cart:    c,
		Totals:  checkout.ComputeTotals(c, a.Config().ShippingFee),
		Message: msg,
	}
	return rt.out().Print(v, func(w io.Writer) {
		if msg != "" {
			fmt.Fprintln(w, msg)
		}
		renderCart(w, v.Cart, v.Totals)
	})
}

func newCartCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change your cart",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the cart with totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			c, err := a.Cart.Items(cmd.Context())
			if err != nil {
				return err
			}
			return printCart(rt, a, c, "")
		},
	})
	cmd.AddCommand(newCartAddCommand(rt))
	cmd.AddCommand(newCartAdjustCommand(rt, "inc", "Add one more unit", 1))
	cmd.AddCommand(newCartAdjustCommand(rt, "dec", "Remove one unit; the line goes at zero", -1))
	cmd.AddCommand(newCartRemoveCommand(rt))
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			c, err := a.Cart.Clear(cmd.Context())
			if err != nil {
				return err
			}
			return printCart(rt, a, c, "Cart cleared.")
		},
	})
	return cmd
}

func newCartAddCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add one unit of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("product", args[0])
			if err != nil {
				return err
			}
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			p, err := a.Catalog.Get(ctx, id)
			if err != nil {
				return err
			}
			if !p.InStock() {
				return NewExitError(ExitFailure, "%s is out of stock", p.Name)
			}

			before, err := a.Cart.Items(ctx)
			if err != nil {
				return err
			}
			c, err := a.Cart.Add(ctx, p)
			if err != nil {
				return err
			}
			msg := fmt.Sprintf("Added %s to your cart.", p.Name)
			if c.QuantityOf(id) == before.QuantityOf(id) {
				msg = fmt.Sprintf("Only %d of %s in stock; quantity unchanged.", p.StockQuantity, p.Name)
			}
			return printCart(rt, a, c, msg)
		},
	}
}

func newCartAdjustCommand(rt *runtime, use, short string, delta int) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <product-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("product", args[0])
			if err != nil {
				return err
			}
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			cur, err := a.Cart.Items(ctx)
			if err != nil {
				return err
			}
			i := cur.Find(id)
			if i < 0 {
				return NewExitError(ExitFailure, "product %d is not in your cart", id)
			}
			p, err := productForAdjust(ctx, a, cur.Items[i], delta)
			if err != nil {
				return err
			}

			c, err := a.Cart.SetQuantity(ctx, p, delta)
			if err != nil {
				return err
			}
			msg := ""
			if delta > 0 && c.QuantityOf(id) == cur.Items[i].Quantity {
				msg = fmt.Sprintf("Only %d of %s in stock; quantity unchanged.", p.StockQuantity, p.Name)
			}
			return printCart(rt, a, c, msg)
		},
	}
}

// productForAdjust reads the product's current stock for increments so the
// cap reflects the catalog now, not the snapshot saved with the line. The
// snapshot is used when the lookup fails or for decrements.
func productForAdjust(ctx context.Context, a *app.App, line domain.CartLine, delta int) (*domain.Product, error) {
	if delta > 0 || line.Product == nil {
		p, err := a.Catalog.Get(ctx, line.ProductID)
		if err == nil {
			return p, nil
		}
		if line.Product == nil {
			return nil, err
		}
	}
	return line.Product, nil
}

func newCartRemoveCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("product", args[0])
			if err != nil {
				return err
			}
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			c, err := a.Cart.Remove(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printCart(rt, a, c, "")
		},
	}
}
