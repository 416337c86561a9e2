// User commands: list, add, delete.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/stockroom/pkg/types"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var (
	userEmail    string
	userName     string
	userPassword string
	userRole     string
)

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		users, err := s.ListUsers()
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if len(users) == 0 {
			fmt.Println("No users found.")
			return nil
		}
		for i := range users {
			u := &users[i]
			fmt.Printf("%s  %s <%s> (%s)\n", u.ID, u.Name, u.Email, u.Role)
		}
		return nil
	},
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new user",
	Long: `Add creates a user with a bcrypt-hashed password.

Example:
  stockroom user add --email admin@example.com --name Admin --password secret --role admin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		u := types.User{
			Email: userEmail,
			Name:  userName,
			Role:  userRole,
		}
		if err := u.SetPassword(userPassword); err != nil {
			return fmt.Errorf("set password: %w", err)
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		created, err := s.AddUser(u)
		if err != nil {
			return fmt.Errorf("add user: %w", err)
		}
		fmt.Println("Created user", created.ID)
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		deleted, err := s.DeleteUser(args[0])
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if !deleted {
			fmt.Println("No user found with id", args[0])
			return nil
		}
		fmt.Println("Deleted user", args[0])
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "user email (required)")
	userAddCmd.Flags().StringVar(&userName, "name", "", "user name (required)")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "user password (required)")
	userAddCmd.Flags().StringVar(&userRole, "role", "", "role: admin or user (default user)")
	_ = userAddCmd.MarkFlagRequired("email")
	_ = userAddCmd.MarkFlagRequired("name")
	_ = userAddCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userDeleteCmd)
}
