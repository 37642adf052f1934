package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/yi-nology/showcase/pkg/ui"
)

var (
	adminPassword string
	codeCopy      bool
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create an admin account",
	Long: `Create an admin account with a bcrypt hashed password.

The password is read from --password or, when omitted, from the first line of stdin.

Examples:
  showcasectl admin add owner --password 's3cret'
  echo 's3cret' | showcasectl admin add owner`,
	Args: cobra.ExactArgs(1),
	RunE: runAdminAdd,
}

var adminCodeCmd = &cobra.Command{
	Use:   "code <username>",
	Short: "Print the pending login code of an admin",
	Long: `Print the newest unexpired verification code of an admin.

Useful when outgoing mail is not configured and the code only reached the server log.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdminCode,
}

func init() {
	adminAddCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "password of the new admin")
	adminCodeCmd.Flags().BoolVar(&codeCopy, "copy", false, "copy the code to the clipboard")

	adminCmd.AddCommand(adminAddCmd)
	adminCmd.AddCommand(adminCodeCmd)
}

func runAdminAdd(cmd *cobra.Command, args []string) error {
	password := adminPassword
	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("password required: pass --password or pipe it on stdin")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	admin, err := showcase.Service.CreateAdmin(getContext(cmd), args[0], password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatSuccess(fmt.Sprintf("Admin %q created (id %d)", admin.Username, admin.ID)))
	return nil
}

func runAdminCode(cmd *cobra.Command, args []string) error {
	challenge, err := showcase.Service.PendingCode(getContext(cmd), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, ui.StyleBold.Render(challenge.VerificationCode))
	fmt.Fprintln(out, ui.FormatMuted("expires "+challenge.ExpiresAt.Local().Format("15:04:05")))
	if codeCopy {
		if err := clipboard.WriteAll(challenge.VerificationCode); err != nil {
			fmt.Fprintln(out, ui.FormatMuted("(Clipboard access failed, please copy manually)"))
		}
	}
	return nil
}
