package main

import (
	"fmt"

	"github.com/ahmetcoskunkizilkaya/travel-assistant/internal/dto"
	"github.com/spf13/cobra"
)

var (
	username string
	password string
	email    string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		user, err := c.Login(cmd.Context(), dto.LoginRequest{Username: username, Password: password})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s)\n", user.Username, user.ID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		return c.Logout()
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		err = c.Register(cmd.Context(), dto.RegisterRequest{Username: username, Email: email, Password: password})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "registered, run login to start a session")
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{loginCmd, registerCmd} {
		cmd.Flags().StringVarP(&username, "username", "u", "", "username")
		cmd.Flags().StringVarP(&password, "password", "p", "", "password")
		_ = cmd.MarkFlagRequired("username")
		_ = cmd.MarkFlagRequired("password")
	}
	registerCmd.Flags().StringVar(&email, "email", "", "email address")
	_ = registerCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd)
}
