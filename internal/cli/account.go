package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slimeyayush/altair-frontend/internal/domain"
)

// readSecret returns flagValue, or the first line of stdin when it is empty.
func readSecret(cmd *cobra.Command, flagValue, name string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", NewExitError(ExitUsage, "%s is required (flag or first line of stdin)", name)
	}
	return line, nil
}

type sessionView struct {
	State    string           `json:"state"`
	Identity *domain.Identity `json:"identity,omitempty"`
}

func viewOf(s domain.Session) sessionView {
	v := sessionView{State: s.State.String()}
	if s.IsMember() {
		id := *s.Identity
		id.IDToken, id.RefreshToken = "", ""
		v.Identity = &id
	}
	return v
}

func printSession(rt *runtime, s domain.Session) error {
	return rt.out().Print(viewOf(s), func(w io.Writer) { renderSession(w, s) })
}

func newLoginCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as a member",
	}

	var email, password string
	emailCmd := &cobra.Command{
		Use:   "email",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd, password, "password")
			if err != nil {
				return err
			}
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			id, err := a.Identity.SignInWithEmail(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			a.SignIn(cmd.Context(), id)
			return printSession(rt, a.Session.Current())
		},
	}
	emailCmd.Flags().StringVar(&email, "email", "", "account email")
	emailCmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")
	_ = emailCmd.MarkFlagRequired("email")

	var recaptcha string
	phoneCmd := &cobra.Command{
		Use:   "phone <number>",
		Short: "Send a one-time code to a phone number",
		Long:  "Send a one-time code by SMS. Numbers without a country code are taken as +91.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			if _, err := a.Identity.StartPhoneSignIn(cmd.Context(), args[0], recaptcha); err != nil {
				return err
			}
			return printMessage(rt, "Code sent. Run `storefront login verify <code>` to finish signing in.")
		},
	}
	phoneCmd.Flags().StringVar(&recaptcha, "recaptcha-token", "", "reCAPTCHA token, when the provider requires one")

	verifyCmd := &cobra.Command{
		Use:   "verify <code>",
		Short: "Finish a phone sign-in with the 6-digit code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			id, err := a.Identity.VerifyPhoneCode(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.SignIn(cmd.Context(), id)
			return printSession(rt, a.Session.Current())
		},
	}

	cmd.AddCommand(emailCmd, phoneCmd, verifyCmd)
	return cmd
}

func newLogoutCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; the cart returns to the one saved on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			if err := a.Session.SignOut(cmd.Context()); err != nil {
				return err
			}
			return printMessage(rt, "Signed out.")
		},
	}
}

func newWhoamiCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			return printSession(rt, a.Session.Current())
		},
	}
}

func newProfileCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Member profile",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "address [new address]",
		Short: "Show, or save, the shipping address kept on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if len(args) > 0 {
				if err := a.Profile.SaveAddress(ctx, strings.Join(args, " ")); err != nil {
					return err
				}
			}
			addr, err := a.Profile.Address(ctx)
			if err != nil {
				return err
			}
			return rt.out().Print(map[string]string{"address": addr}, func(w io.Writer) {
				if addr == "" {
					fmt.Fprintln(w, "No address saved.")
					return
				}
				fmt.Fprintln(w, addr)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "orders",
		Short: "List your orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rt.App(cmd)
			if err != nil {
				return err
			}
			orders, err := a.Profile.MyOrders(cmd.Context())
			if err != nil {
				return err
			}
			return rt.out().Print(orders, func(w io.Writer) { renderOrders(w, orders) })
		},
	})
	return cmd
}
