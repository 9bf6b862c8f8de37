package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/slimeyayush/altair-frontend/internal/checkout"
)

func newCheckoutCommand(rt *runtime) *cobra.Command {
	var in checkout.Input
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Long: `Place an order for everything in the cart.

Members default to their account email and saved address. The order is
sent once; on success the cart is cleared and a WhatsApp confirmation
link is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if s := a.Session.Current(); s.IsMember() {
				if in.Email == "" {
					in.Email = s.Identity.Email
				}
				if in.ShippingAddress == "" {
					in.ShippingAddress, _ = a.Profile.Address(ctx)
				}
			}

			receipt, err := a.Checkout.Place(ctx, in)
			if err != nil {
				return err
			}
			return rt.out().Print(receipt, func(w io.Writer) { renderReceipt(w, receipt) })
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "contact email for the order")
	cmd.Flags().StringVar(&in.ShippingAddress, "address", "", "shipping address")
	return cmd
}
