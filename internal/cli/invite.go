package cli

import (
	"github.com/spf13/cobra"
)

// NewInviteCmd manages contributor invites from the operator shell.
func NewInviteCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invite",
		Short: "Manage contributor invites",
	}

	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a contributor invite code",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			c, err := rt.services.Contributors.CreateInviteUnchecked(cmd.Context(), name)
			if err != nil {
				return err
			}
			cmd.Printf("contributor %s invite code %s\n", c.ID, c.InviteCode)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "contributor display name")
	cmd.AddCommand(create)
	return cmd
}
