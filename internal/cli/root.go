// Package cli is the terminal client. It drives the same session store as the web
// front-end, persisting the session in a file between invocations.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jrsteele09/baysawarr-web/apiclient"
	"github.com/jrsteele09/baysawarr-web/internal/config"
	"github.com/jrsteele09/baysawarr-web/internal/logging"
	"github.com/jrsteele09/baysawarr-web/navigation"
	"github.com/jrsteele09/baysawarr-web/session"
	"github.com/jrsteele09/baysawarr-web/storage/filestore"
	"github.com/spf13/cobra"
)

// sessionFileName is the file under the user config dir used when none is configured
const sessionFileName = "baysawarr/session.json"

type rootOptions struct {
	configFile  string
	apiURL      string
	sessionFile string
	verbose     bool
}

// env is what every subcommand runs against
type env struct {
	out    io.Writer
	errOut io.Writer
	client *apiclient.Client
	store  *session.Store
	files  *filestore.Store
	nav    *navigation.Recorder
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "baysawarr",
		Short: "BAY SA WARR account from the terminal",
		Long: `baysawarr logs into the BAY SA WARR platform and keeps the session between runs.

Example usage:
  baysawarr login --email awa.diop@example.com
  baysawarr whoami
  baysawarr enrollments
  baysawarr logout`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", os.Getenv("CONFIG_FILE"), "YAML config file")
	root.PersistentFlags().StringVar(&opts.apiURL, "api", "", "API base URL (default from config)")
	root.PersistentFlags().StringVar(&opts.sessionFile, "session-file", "", "session file (default from config or user config dir)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newLoginCmd(opts),
		newWhoamiCmd(opts),
		newLogoutCmd(opts),
		newEnrollmentsCmd(opts),
	)
	return root
}

// open builds the client and store for one invocation and mounts the store. The
// caller must call the returned close function.
func (o *rootOptions) open(cmd *cobra.Command) (*env, func(), error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, nil, err
	}
	// the terminal only shows problems unless asked for more
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	logger := logging.Init(cfg.GetEnv(), level)

	apiURL := o.apiURL
	if apiURL == "" {
		apiURL = cfg.GetAPIURL()
	}
	path, err := o.sessionPath(cfg)
	if err != nil {
		return nil, nil, err
	}

	e := &env{
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
		files:  filestore.New(path),
		nav:    &navigation.Recorder{},
	}
	e.client = apiclient.New(apiURL, e.files, e.nav,
		apiclient.WithTimeout(cfg.GetAPITimeout()),
		apiclient.WithUploadTimeout(cfg.GetAPIUploadTimeout()),
		apiclient.WithLogger(logger),
	)
	e.store = session.NewStore(e.client, e.files, e.nav, session.WithLogger(logger))
	e.store.Mount(cmd.Context())
	return e, e.store.Unmount, nil
}

func (o *rootOptions) sessionPath(cfg config.Config) (string, error) {
	if o.sessionFile != "" {
		return o.sessionFile, nil
	}
	if p := cfg.GetSessionFile(); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("[cli sessionPath] no session file configured: %w", err)
	}
	return filepath.Join(dir, sessionFileName), nil
}

// wait blocks until the persisted session has been checked against the API
func (e *env) wait(ctx context.Context) (session.State, error) {
	st, err := e.store.Wait(ctx)
	if err != nil {
		return st, fmt.Errorf("[cli wait] session restore: %w", err)
	}
	if loc, ok := e.nav.Location(); ok && loc == navigation.Login {
		fmt.Fprintln(e.errOut, "Session expirée, veuillez vous reconnecter.")
	}
	return st, nil
}
