package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func credentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("email", "e", "", "Account email")
	cmd.Flags().StringP("password", "p", "", "Password (default $TASKCTL_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
}

func passwordFlag(cmd *cobra.Command) (string, error) {
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("TASKCTL_PASSWORD")
	}
	if password == "" {
		return "", errors.New("password is required")
	}
	return password, nil
}

func signUpCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			password, err := passwordFlag(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := commandContext()
			defer cancel()
			if err := a.session.SignUp(ctx, email, password, name); err != nil {
				return err
			}
			return a.persist(email)
		},
	}
	credentialFlags(cmd)
	cmd.Flags().StringP("name", "n", "", "Display name")
	return cmd
}

func signInCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and save the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, err := passwordFlag(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := commandContext()
			defer cancel()
			if err := a.session.SignIn(ctx, email, password); err != nil {
				return err
			}
			return a.persist(email)
		},
	}
	credentialFlags(cmd)
	return cmd
}

func signOutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Revoke the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := commandContext()
			defer cancel()
			if err := a.restore(ctx); err != nil {
				return err
			}
			signOutErr := a.session.SignOut(ctx)
			if err := removeCredentials(opts.credentials); err != nil {
				return err
			}
			if signOutErr != nil {
				return signOutErr
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func whoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := commandContext()
			defer cancel()
			if err := a.restore(ctx); err != nil {
				return err
			}
			user := a.session.User()
			if user == nil {
				fmt.Println("Not signed in.")
				return nil
			}
			fmt.Printf("%s <%s>\n", user.DisplayName(), user.Email)
			fmt.Printf("  id:      %s\n", user.ID)
			fmt.Printf("  since:   %s\n", user.CreatedAt.Format(time.RFC1123))
			return nil
		},
	}
}

func (a *app) persist(email string) error {
	if err := saveCredentials(a.opts.credentials, &savedCredentials{
		Server:  a.opts.server,
		Email:   email,
		Token:   a.session.Token(),
		SavedAt: time.Now().UTC(),
	}); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s.\n", a.session.User().DisplayName())
	return nil
}
