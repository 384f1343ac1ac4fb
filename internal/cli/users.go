package cli

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mailib/mailib-server/internal/di/providers"
	"github.com/mailib/mailib-server/internal/domain"
)

// usersFile is the document read by "users import".
type usersFile struct {
	Users []struct {
		ID        string `yaml:"id"`
		FirstName string `yaml:"first_name"`
		LastName  string `yaml:"last_name"`
		FamilyID  string `yaml:"family_id"`
	} `yaml:"users"`
}

func (a *app) newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Sync the local copy of user accounts",
	}
	cmd.AddCommand(a.newUsersAddCmd(), a.newUsersImportCmd())
	return cmd
}

func (a *app) newUsersAddCmd() *cobra.Command {
	var u domain.User

	cmd := &cobra.Command{
		Use:   "add <user-id>",
		Short: "Create or update one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u.ID = args[0]
			if u.FirstName == "" {
				return fmt.Errorf("--first-name is required")
			}
			return a.upsertUsers(cmd, []domain.User{u})
		},
	}

	cmd.Flags().StringVar(&u.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&u.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&u.FamilyID, "family", "", "Family id shared by members")
	return cmd
}

func (a *app) newUsersImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yml>",
		Short: "Create or update every user listed in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0]) //#nosec G304 -- operator supplied path
			if err != nil {
				return err
			}
			var doc usersFile
			if err := yaml.Unmarshal(data, &doc); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			users := make([]domain.User, 0, len(doc.Users))
			for i, u := range doc.Users {
				if u.ID == "" || u.FirstName == "" {
					return fmt.Errorf("users[%d]: id and first_name are required", i)
				}
				users = append(users, domain.User{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, FamilyID: u.FamilyID})
			}
			return a.upsertUsers(cmd, users)
		},
	}
}

func (a *app) upsertUsers(cmd *cobra.Command, users []domain.User) error {
	return a.withContainer(func(i do.Injector) error {
		storeHandle, err := do.Invoke[*providers.StoreHandle](i)
		if err != nil {
			return err
		}
		for idx := range users {
			if err := storeHandle.UpsertUser(cmd.Context(), &users[idx]); err != nil {
				return err
			}
		}
		if a.settings.Output != outputText {
			return render(cmd.OutOrStdout(), a.settings.Output, users)
		}
		ok(cmd.OutOrStdout(), "synced %d users", len(users))
		return nil
	})
}
