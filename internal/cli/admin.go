package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/slimeyayush/altair-frontend/internal/admin"
	"github.com/slimeyayush/altair-frontend/internal/domain"
)

func newAdminCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Back office",
	}

	var password string
	login := &cobra.Command{
		Use:   "login <username>",
		Short: "Sign in to the back office",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd, password, "password")
			if err != nil {
				return err
			}
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			if err := a.Admin.Login(cmd.Context(), args[0], pw); err != nil {
				return err
			}
			return printMessage(rt, fmt.Sprintf("Signed in as %s.", args[0]))
		},
	}
	login.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")

	cmd.AddCommand(login)
	cmd.AddCommand(&cobra.Command{
		Use:   "logout",
		Short: "Sign out of the back office",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			if err := a.Admin.Logout(cmd.Context()); err != nil {
				return err
			}
			return printMessage(rt, "Signed out of the back office.")
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "orders",
		Short: "List every order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			orders, err := a.Admin.Orders(cmd.Context())
			if err != nil {
				return err
			}
			return rt.out().Print(orders, func(w io.Writer) { renderOrders(w, orders) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status <order-id> <status>",
		Short: "Set an order's status (PAID, SHIPPED, DELIVERED)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("order", args[0])
			if err != nil {
				return err
			}
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			if err := a.Admin.UpdateOrderStatus(cmd.Context(), id, args[1]); err != nil {
				return err
			}
			return printMessage(rt, fmt.Sprintf("Order #%d updated.", id))
		},
	})
	cmd.AddCommand(newAdminOrderActionCommand(rt, "cancel", "Cancel an order", "cancelled", (*admin.Service).CancelOrder))
	cmd.AddCommand(newAdminOrderActionCommand(rt, "mark-paid", "Mark a pending order as paid", "marked paid", (*admin.Service).MarkPaid))
	cmd.AddCommand(&cobra.Command{
		Use:   "inventory",
		Short: "List every product, archived ones included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			products, err := a.Admin.Inventory(cmd.Context())
			if err != nil {
				return err
			}
			return rt.out().Print(products, func(w io.Writer) { renderInventory(w, products) })
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "stock <product-id> <quantity>",
		Short: "Set a product's stock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("product", args[0])
			if err != nil {
				return err
			}
			qty, err := parseInt("quantity", args[1])
			if err != nil {
				return err
			}
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			if err := a.Admin.UpdateStock(cmd.Context(), id, qty); err != nil {
				return err
			}
			return printMessage(rt, fmt.Sprintf("Stock of product %d set to %d.", id, qty))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <product-id>",
		Short: "Archive or restore a product",
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
			if err := a.Admin.ToggleVisibility(cmd.Context(), id); err != nil {
				return err
			}
			return printMessage(rt, fmt.Sprintf("Visibility of product %d toggled.", id))
		},
	})
	cmd.AddCommand(newAddProductCommand(rt))
	cmd.AddCommand(newUpdateProductCommand(rt))
	cmd.AddCommand(&cobra.Command{
		Use:   "admins",
		Short: "List back-office accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			admins, err := a.Admin.Admins(cmd.Context())
			if err != nil {
				return err
			}
			return rt.out().Print(admins, func(w io.Writer) { renderAdmins(w, admins) })
		},
	})

	var newPassword string
	register := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a back-office account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd, newPassword, "password")
			if err != nil {
				return err
			}
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			if err := a.Admin.RegisterAdmin(cmd.Context(), args[0], pw); err != nil {
				return err
			}
			return printMessage(rt, fmt.Sprintf("Admin %s created.", args[0]))
		},
	}
	register.Flags().StringVar(&newPassword, "password", "", "password for the new admin (read from stdin when omitted)")
	cmd.AddCommand(register)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-admin <admin-id>",
		Short: "Delete a back-office account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("admin", args[0])
			if err != nil {
				return err
			}
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			if err := a.Admin.DeleteAdmin(cmd.Context(), id); err != nil {
				return err
			}
			return printMessage(rt, fmt.Sprintf("Admin %d deleted.", id))
		},
	})
	return cmd
}

func newAdminOrderActionCommand(rt *runtime, use, short, done string, action func(*admin.Service, context.Context, int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <order-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("order", args[0])
			if err != nil {
				return err
			}
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			if err := action(a.Admin, cmd.Context(), id); err != nil {
				return err
			}
			return printMessage(rt, fmt.Sprintf("Order #%d %s.", id, done))
		},
	}
}

type productFlags struct {
	in       domain.ProductInput
	oldPrice float64
}

func (f *productFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.in.Name, "name", "", "product name")
	fs.StringVar(&f.in.Description, "description", "", "description")
	fs.Float64Var(&f.in.Price, "price", 0, "price")
	fs.Float64Var(&f.oldPrice, "old-price", 0, "previous price, shown struck through")
	fs.IntVar(&f.in.StockQuantity, "stock", 0, "units in stock")
	fs.StringVar(&f.in.Category, "category", "", "category")
	fs.StringVar(&f.in.Tag, "tag", "", "badge such as Bestseller")
	fs.StringVar(&f.in.ImageURL, "image", "", "image URL")
}

// overlay applies the flags that were set on top of in.
func (f *productFlags) overlay(fs *pflag.FlagSet, in domain.ProductInput) domain.ProductInput {
	if fs.Changed("name") {
		in.Name = f.in.Name
	}
	if fs.Changed("description") {
		in.Description = f.in.Description
	}
	if fs.Changed("price") {
		in.Price = f.in.Price
	}
	if fs.Changed("old-price") {
		in.OldPrice = nil
		if f.oldPrice > 0 {
			v := f.oldPrice
			in.OldPrice = &v
		}
	}
	if fs.Changed("stock") {
		in.StockQuantity = f.in.StockQuantity
	}
	if fs.Changed("category") {
		in.Category = f.in.Category
	}
	if fs.Changed("tag") {
		in.Tag = f.in.Tag
	}
	if fs.Changed("image") {
		in.ImageURL = f.in.ImageURL
	}
	return in
}

func inputOf(p *domain.Product) domain.ProductInput {
	return domain.ProductInput{
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		OldPrice:      p.OldPrice,
		StockQuantity: p.StockQuantity,
		Category:      p.Category,
		Tag:           p.Tag,
		ImageURL:      p.ImageURL,
	}
}

func newAddProductCommand(rt *runtime) *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:   "add-product",
		Short: "Create a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := flags.overlay(cmd.Flags(), domain.ProductInput{})
			if err := admin.ValidateProduct(in); err != nil {
				return err
			}
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			p, err := a.Admin.AddProduct(cmd.Context(), in)
			if err != nil {
				return err
			}
			return rt.out().Print(p, func(w io.Writer) { renderProduct(w, p, nil) })
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newUpdateProductCommand(rt *runtime) *cobra.Command {
	var flags productFlags
	cmd := &cobra.Command{
		Use:   "update-product <product-id>",
		Short: "Change a product; only the given flags are changed",
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
			inventory, err := a.Admin.Inventory(ctx)
			if err != nil {
				return err
			}
			var current *domain.Product
			for i := range inventory {
				if inventory[i].ID == id {
					current = &inventory[i]
					break
				}
			}
			if current == nil {
				return NewExitError(ExitFailure, "product %d not found", id)
			}

			p, err := a.Admin.UpdateProduct(ctx, id, flags.overlay(cmd.Flags(), inputOf(current)))
			if err != nil {
				return err
			}
			return rt.out().Print(p, func(w io.Writer) { renderProduct(w, p, nil) })
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
