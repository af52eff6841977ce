package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Register, log in, or request a password reset",
	}

	var password string
	register := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := r.deps()
			if err != nil {
				return err
			}
			if err := d.gate.Register(args[0], password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", args[0])
			return nil
		},
	}
	register.Flags().StringVarP(&password, "password", "p", "", "password")

	login := &cobra.Command{
		Use:   "login <username>",
		Short: "Check a username and password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := r.deps()
			if err != nil {
				return err
			}
			if err := d.gate.Login(args[0], password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", args[0])
			return nil
		},
	}
	login.Flags().StringVarP(&password, "password", "p", "", "password")

	forgot := &cobra.Command{
		Use:   "forgot <email>",
		Short: "Send a password reset notice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := r.deps()
			if err != nil {
				return err
			}
			ref, err := d.gate.ForgotPassword(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset notice sent to %s (reference %s)\n", args[0], ref)
			return nil
		},
	}

	cmd.AddCommand(register, login, forgot)
	return cmd
}
