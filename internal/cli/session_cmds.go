package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/jrsteele09/baysawarr-web/apiclient"
	"github.com/jrsteele09/baysawarr-web/internal/utils"
	"github.com/spf13/cobra"
)

// passwordEnv lets scripts pass the password without a flag
const passwordEnv = "BSW_PASSWORD"

var errNotLoggedIn = errors.New("not logged in")

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeEnv, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()
			if _, err := e.wait(cmd.Context()); err != nil {
				return err
			}

			if password == "" {
				password = os.Getenv(passwordEnv)
			}
			if password == "" {
				fmt.Fprint(e.errOut, "Mot de passe : ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("[cli login] read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			if _, err := e.store.Login(cmd.Context(), email, password); err != nil {
				return fmt.Errorf("login failed (%d): %w", apiclient.StatusCode(err), err)
			}
			u := e.store.User()
			fmt.Fprintf(e.out, "Connecté en tant que %s <%s> (%s)\n", u.DisplayName(), u.Email, u.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (or "+passwordEnv+", or prompted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account of the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeEnv, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()
			st, err := e.wait(cmd.Context())
			if err != nil {
				return err
			}
			if st.User == nil {
				return errNotLoggedIn
			}
			fmt.Fprintf(e.out, "%s <%s>\nrôle : %s\ntéléphone : %s\n",
				st.User.DisplayName(), st.User.Email, st.User.Role, utils.ValueOr(st.User.Phone, "-"))
			if c := st.User.Company; c != nil && c.Name != "" {
				fmt.Fprintf(e.out, "entreprise : %s\n", c.Name)
			}
			return nil
		},
	}
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeEnv, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()
			// no need to wait for the restore: logout wins over it
			e.store.Logout(cmd.Context())
			fmt.Fprintln(e.out, "Déconnecté.")
			return nil
		},
	}
}

func newEnrollmentsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "enrollments",
		Short: "List your membership applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeEnv, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeEnv()
			st, err := e.wait(cmd.Context())
			if err != nil {
				return err
			}
			if st.User == nil {
				return errNotLoggedIn
			}

			items, err := e.client.MyEnrollments(cmd.Context())
			if err != nil {
				if apiclient.IsUnauthorized(err) {
					return errNotLoggedIn
				}
				return err
			}
			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tENTREPRISE\tSTATUT")
			for _, item := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", item.CreatedAt.Format("2006-01-02"), item.Company, item.Status)
			}
			return tw.Flush()
		},
	}
}
