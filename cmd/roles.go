package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oksasatya/go-ddd-identity/internal/domain/entity"
)

func newRoleCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "role", Short: "Manage roles"}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRequest(cmd.Context(), func(r *request) error {
				role, err := r.roleManager.CreateRole(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printRole(cmd, role)
				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a role and its memberships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRequest(cmd.Context(), func(r *request) error {
				if err := r.roleManager.DeleteRole(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "deleted")
				return nil
			})
		},
	}

	show := &cobra.Command{
		Use:   "show NAME|ID",
		Short: "Show a role by name, or by id with --id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			byID, _ := cmd.Flags().GetBool("id")
			return withRequest(cmd.Context(), func(r *request) error {
				if !byID {
					role, err := r.roleManager.FindByName(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					printRole(cmd, role)
					return nil
				}
				role, err := r.roles.FindByStringID(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if role == nil {
					return fmt.Errorf("role %s not found", args[0])
				}
				printRole(cmd, role)
				return nil
			})
		},
	}
	show.Flags().Bool("id", false, "treat the argument as a role id")

	cmd.AddCommand(create, del, show)
	return cmd
}

func printRole(cmd *cobra.Command, r *entity.Role) {
	fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", r.ID, r.Name)
}
