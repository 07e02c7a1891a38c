package command

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	username string
	password string
	email    string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := api.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}

		color.Green("Logged in as %s (%s)", resp.Username, resp.Role)
		fmt.Println("\nexport NOVELHUB_TOKEN=" + resp.AccessToken)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := api.Register(cmd.Context(), username, password, email); err != nil {
			return err
		}
		color.Green("Account created, you can log in now")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "password")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVarP(&username, "username", "u", "", "username")
	registerCmd.Flags().StringVarP(&password, "password", "p", "", "password")
	registerCmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd, registerCmd)
}
