package main

import (
	"time"

	"github.com/spf13/cobra"

	"igapi/pkg/auth"
	"igapi/pkg/retry"
	"igapi/pkg/ui"
)

var (
	loginPassword    string
	rememberPassword bool
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the session",
	Long: `Log in with username and password and save the session for later commands.

The password is read from --password, IGAPI_PASSWORD, the stored account, or
an interactive prompt, in that order. With --remember it is stored next to
the session so an expired session can be renewed without asking again.`,
	Example: `  # Interactive login
  igapi login -u myusername

  # Keep the session in a plain file
  igapi login -u myusername --settings ./settings.json`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session on the server and forget it locally",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&rememberPassword, "remember", false, "store the password to allow automatic relogin")
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	user := a.cfg.Session.Username
	if user == "" {
		if user, err = readLine("Instagram username: "); err != nil {
			return err
		}
	}

	password := loginPassword
	if password == "" {
		if account, err := a.store.Load(user); err == nil {
			password = account.Password
		}
	}
	if password == "" {
		if password, err = readPassword("Password: "); err != nil {
			return err
		}
	}

	client, err := a.newClient(&auth.Account{Username: user, Password: password})
	if err != nil {
		return err
	}

	// OnLogin saves the snapshot; a failed login is never renewed by relogin
	err = retry.NewRetrier(retry.FromConfig(a.cfg.Retry, a.log)).
		WithContext(cmd.Context()).
		Do(client.Login)
	if err != nil {
		return err
	}

	if rememberPassword {
		if err := a.store.SavePassword(user, password); err != nil {
			ui.PrintWarning("Password not saved", err)
		} else {
			ui.PrintHighlight("Password stored, expired sessions will be renewed automatically")
		}
	}

	ui.PrintSuccess("Logged in as " + user)
	ui.PrintInfo("User ID", client.AuthenticatedUserID())
	ui.PrintInfo("Session store", a.store.Describe())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	client, err := a.loggedInClient()
	if err != nil {
		return err
	}

	// Best effort with one quick second try; the local session goes either way
	logoutErr := retry.NewRetrier(retry.FromConfig(a.cfg.Retry, a.log)).
		WithMaxAttempts(2).
		WithBackoff(&retry.ConstantBackoff{Delay: 2 * time.Second}).
		WithContext(cmd.Context()).
		Do(client.Logout)
	if err := a.store.Clear(client.Username()); err != nil {
		return err
	}
	if logoutErr != nil {
		ui.PrintWarning("Server logout failed, local session removed", logoutErr)
		return nil
	}

	ui.PrintSuccess("Logged out " + client.Username())
	return nil
}
