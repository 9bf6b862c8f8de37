package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/slimeyayush/altair-frontend/internal/whatsapp"
)

func printLink(rt *runtime, text, url string) error {
	return rt.out().Print(message{Message: text, URL: url}, func(w io.Writer) {
		fmt.Fprintf(w, "%s\n%s\n", text, url)
	})
}

func newRentCPAPCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "rent-cpap",
		Short: "Ask about renting a CPAP machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			return printLink(rt, "Open this link to ask about CPAP rental:", a.Links.RentCPAP())
		},
	}
}

func newContactCommand(rt *runtime) *cobra.Command {
	var form whatsapp.ContactForm
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Write to support on WhatsApp",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			url, err := a.Links.Contact(form)
			if err != nil {
				return err
			}
			return printLink(rt, "Open this link to send your message:", url)
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "your name")
	cmd.Flags().StringVar(&form.Message, "message", "", "your message")
	return cmd
}
