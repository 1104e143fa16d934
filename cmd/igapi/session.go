package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"igapi/pkg/auth"
	"igapi/pkg/logger"
	"igapi/pkg/session"
	"igapi/pkg/ui"
)

// sessionCmd groups saved session commands
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or remove the saved session",
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved session with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runSessionShow,
}

var clearAll bool

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the saved session without contacting the server",
	Long: `Forget the saved session without contacting the server.

With --all every account the store can list is removed. The system keychain
cannot be listed, so keychain entries go only for accounts also known to
the encrypted file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if clearAll {
			if err := a.store.ClearAll(); err != nil {
				return err
			}
			ui.PrintSuccess("All sessions removed")
			return nil
		}
		if err := a.store.Clear(a.cfg.Session.Username); err != nil {
			return err
		}
		ui.PrintSuccess("Session removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionClearCmd)
	sessionClearCmd.Flags().BoolVar(&clearAll, "all", false, "remove every saved account")
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	account, err := a.store.Load(a.cfg.Session.Username)
	if err != nil {
		return errNotLoggedIn
	}

	fields := accountFields(auth.SanitizeAccount(account))
	fields = append(fields, ui.Field{Label: "Store", Value: a.store.Describe()})

	if len(account.Snapshot) == 0 {
		fields = append(fields, ui.Field{Label: "State", Value: "unauthenticated"})
		ui.PrintPanel("Session", fields)
		return nil
	}

	// Restoring is local; nothing is sent
	client, err := a.newClient(account)
	if err != nil {
		return err
	}
	s := client.Session()

	sessionID, _ := s.Jar.Get(session.CookieSessionID)
	expiry := "none"
	if t, ok := client.CookieExpiry(); ok {
		expiry = t.Local().Format(time.RFC1123)
		if time.Now().After(t) {
			expiry += " (expired)"
		}
	}

	state := client.State().String()
	if s.AuthExpired(time.Now()) {
		state = "expired"
	}

	fields = append(fields,
		ui.Field{Label: "State", Value: state},
		ui.Field{Label: "User ID", Value: client.AuthenticatedUserID()},
		ui.Field{Label: "Session ID", Value: logger.Mask(sessionID)},
		ui.Field{Label: "Expires", Value: expiry},
		ui.Field{Label: "Cookies", Value: strconv.Itoa(s.Jar.Len())},
		ui.Field{Label: "UUID", Value: s.UUID},
		ui.Field{Label: "Device ID", Value: s.DeviceID},
		ui.Field{Label: "User agent", Value: s.UserAgent},
		ui.Field{Label: "Created", Value: s.Created.Local().Format(time.RFC1123)},
	)

	ui.PrintPanel("Session", fields)
	return nil
}

// accountFields renders an already sanitized account
func accountFields(account *auth.Account) []ui.Field {
	password := "not stored"
	if account.Password != "" {
		password = account.Password
	}
	snapshot := "none"
	if len(account.Snapshot) > 0 {
		snapshot = strings.Trim(string(account.Snapshot), `"`)
	}
	return []ui.Field{
		{Label: "User", Value: account.Username},
		{Label: "Password", Value: password},
		{Label: "Snapshot", Value: snapshot},
	}
}
