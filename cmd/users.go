package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/oksasatya/go-ddd-identity/internal/application"
	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage users"}
	cmd.AddCommand(
		newUserCreateCmd(),
		userAction("show USER", "Show a user", 0, func(c *cobra.Command, r *request, u *entity.User, _ []string) error {
			printUser(c, u)
			return nil
		}),
		userAction("roles USER", "List the user's roles", 0, func(c *cobra.Command, r *request, u *entity.User, _ []string) error {
			names, err := r.users.GetRoles(c.Context(), u)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(c.OutOrStdout(), n)
			}
			return nil
		}),
		userAction("add-role USER ROLE", "Add the user to a role", 1, func(c *cobra.Command, r *request, u *entity.User, args []string) error {
			return r.users.AddToRole(c.Context(), u, args[0])
		}),
		userAction("remove-role USER ROLE", "Remove the user from a role", 1, func(c *cobra.Command, r *request, u *entity.User, args []string) error {
			return r.users.RemoveFromRole(c.Context(), u, args[0])
		}),
		userAction("claims USER", "List the user's claims", 0, func(c *cobra.Command, r *request, u *entity.User, _ []string) error {
			claims, err := r.users.GetClaims(c.Context(), u)
			if err != nil {
				return err
			}
			for _, cl := range claims {
				fmt.Fprintf(c.OutOrStdout(), "%s\t%s\n", cl.Type, cl.Value)
			}
			return nil
		}),
		userAction("add-claim USER TYPE VALUE", "Add a claim to the user", 2, func(c *cobra.Command, r *request, u *entity.User, args []string) error {
			return r.users.AddClaim(c.Context(), u, entity.Claim{Type: args[0], Value: args[1]})
		}),
		userAction("remove-claim USER TYPE VALUE", "Remove matching claims from the user", 2, func(c *cobra.Command, r *request, u *entity.User, args []string) error {
			return r.users.RemoveClaim(c.Context(), u, entity.Claim{Type: args[0], Value: args[1]})
		}),
		userAction("logins USER", "List the user's external logins", 0, func(c *cobra.Command, r *request, u *entity.User, _ []string) error {
			logins, err := r.users.GetLogins(c.Context(), u)
			if err != nil {
				return err
			}
			for _, l := range logins {
				fmt.Fprintf(c.OutOrStdout(), "%s\t%s\n", l.LoginProvider, l.ProviderKey)
			}
			return nil
		}),
		userAction("add-login USER PROVIDER KEY", "Link an external login", 2, func(c *cobra.Command, r *request, u *entity.User, args []string) error {
			return r.users.AddLogin(c.Context(), u, entity.LoginInfo{LoginProvider: args[0], ProviderKey: args[1]})
		}),
		userAction("remove-login USER PROVIDER", "Unlink every login of the user at PROVIDER", 1, func(c *cobra.Command, r *request, u *entity.User, args []string) error {
			return r.users.RemoveLogin(c.Context(), u, entity.LoginInfo{LoginProvider: args[0]})
		}),
		userAction("unlock USER", "Clear lockout and failed attempts", 0, func(c *cobra.Command, r *request, u *entity.User, _ []string) error {
			return r.userManager.Unlock(c.Context(), u)
		}),
		userAction("enable-2fa USER", "Require a second factor at sign-in", 0, func(c *cobra.Command, r *request, u *entity.User, _ []string) error {
			return r.users.SetTwoFactorEnabled(c.Context(), u, true)
		}),
		newUserPasswdCmd(),
		newSendCodeCmd(),
		newVerifyCodeCmd(),
	)
	return cmd
}

// userAction builds a subcommand resolving its first argument to a user and
// passing the remaining extra arguments on.
func userAction(use, short string, extra int, fn func(c *cobra.Command, r *request, u *entity.User, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1 + extra),
		RunE: func(c *cobra.Command, args []string) error {
			return withRequest(c.Context(), func(r *request) error {
				u, err := r.userManager.FindByName(c.Context(), args[0])
				if err != nil {
					return err
				}
				return fn(c, r, u, args[1:])
			})
		},
	}
}

func newUserCreateCmd() *cobra.Command {
	var in application.CreateUserInput
	cmd := &cobra.Command{
		Use:   "create USER",
		Short: "Create a user with a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.UserName = args[0]
			return withRequest(cmd.Context(), func(r *request) error {
				u, err := r.userManager.CreateUser(cmd.Context(), in)
				if err != nil {
					return err
				}
				printUser(cmd, u)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "e-mail address")
	cmd.Flags().StringVar(&in.PhoneNumber, "phone", "", "phone number in E.164 form")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newUserPasswdCmd() *cobra.Command {
	var current, next string
	cmd := userAction("passwd USER", "Change the user's password", 0, func(c *cobra.Command, r *request, u *entity.User, _ []string) error {
		return r.userManager.ChangePassword(c.Context(), u, current, next)
	})
	cmd.Flags().StringVar(&current, "current", "", "current password")
	cmd.Flags().StringVar(&next, "new", "", "new password")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}

func newSendCodeCmd() *cobra.Command {
	cmd := userAction("send-code USER PROVIDER", `Issue a two-factor code ("Phone Code" or "Email Code")`, 1, func(c *cobra.Command, r *request, u *entity.User, args []string) error {
		if err := r.userManager.GenerateTwoFactorCode(c.Context(), u, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(c.OutOrStdout(), "sent")
		return nil
	})
	cmd.PreRunE = func(c *cobra.Command, _ []string) error { return connectCodes(c.Context()) }
	return cmd
}

func newVerifyCodeCmd() *cobra.Command {
	cmd := userAction("verify-code USER PROVIDER CODE", "Verify and consume a two-factor code", 2, func(c *cobra.Command, r *request, u *entity.User, args []string) error {
		ok, err := r.userManager.VerifyTwoFactorCode(c.Context(), u, args[0], args[1])
		if err != nil {
			return err
		}
		if !ok {
			return application.ErrInvalidTwoFactorCode
		}
		fmt.Fprintln(c.OutOrStdout(), "valid")
		return nil
	})
	cmd.PreRunE = func(c *cobra.Command, _ []string) error { return connectCodes(c.Context()) }
	return cmd
}

func printUser(cmd *cobra.Command, u *entity.User) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "id\t%d\n", u.ID)
	fmt.Fprintf(w, "user_name\t%s\n", u.UserName)
	fmt.Fprintf(w, "email\t%s (confirmed: %t)\n", u.Email, u.EmailConfirmed)
	fmt.Fprintf(w, "phone\t%s (confirmed: %t)\n", u.PhoneNumber, u.PhoneNumberConfirmed)
	fmt.Fprintf(w, "two_factor\t%t\n", u.TwoFactorEnabled)
	fmt.Fprintf(w, "lockout_enabled\t%t\n", u.LockoutEnabled)
	if u.LockoutEndDateUTC != nil {
		fmt.Fprintf(w, "locked_until\t%s\n", u.LockoutEndDateUTC.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "access_failed\t%d\n", u.AccessFailedCount)
	_ = w.Flush()
}
