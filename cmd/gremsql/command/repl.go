package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/gremsql/clog"
	"github.com/cayleygraph/gremsql/graph/sql"
	"github.com/cayleygraph/gremsql/internal/repl"
	"github.com/cayleygraph/gremsql/query"
)

const (
	keyQueryTimeout = "query.timeout"
)

func getContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		select {
		case <-ch:
		case <-ctx.Done():
		}
		signal.Stop(ch)
		cancel()
	}()
	return ctx, cancel
}

func registerQueryFlags(cmd *cobra.Command) {
	langs := query.Languages()
	cmd.Flags().String("lang", "js", `query language to use ("`+strings.Join(langs, `", "`)+`")`)
	cmd.Flags().DurationP("timeout", "t", 30*time.Second, "elapsed time until an individual query times out")
}

// readQuery returns the only argument or reads the query from stdin.
func readQuery(cmd *cobra.Command, args []string) (string, error) {
	switch len(args) {
	case 0:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("cannot read query from stdin: %w", err)
		}
		return string(data), nil
	case 1:
		return args[0], nil
	}
	return "", fmt.Errorf("expected one argument, the query string, or nothing for reading from stdin")
}

func newSession(db *sql.Database, dialect string) (*query.Session, error) {
	opts, err := optionsFromConfig()
	if err != nil {
		return nil, err
	}
	return query.NewSession(query.Config{DB: db, Dialect: dialect, Options: opts})
}

func NewCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile [query]",
		Short: "Print SQL statements for a traversal without running it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			qu, err := readQuery(cmd, args)
			if err != nil {
				return err
			}
			dialect, _ := cmd.Flags().GetString("dialect")
			if dialect == "" {
				dialect = viper.GetString(KeyBackend)
			}
			ses, err := newSession(nil, dialect)
			if err != nil {
				return err
			}
			lang, _ := cmd.Flags().GetString("lang")
			ctx, cancel := getContext()
			defer cancel()
			return repl.Explain(ctx, cmd.OutOrStdout(), ses, lang, qu)
		},
	}
	registerQueryFlags(cmd)
	cmd.Flags().String("dialect", "", `SQL dialect ("default" or a backend name); defaults to the configured backend`)
	return cmd
}

func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query [query]",
		Aliases: []string{"qu"},
		Short:   "Run a query in a specified database and print results.",
		RunE: func(cmd *cobra.Command, args []string) error {
			qu, err := readQuery(cmd, args)
			if err != nil {
				return err
			}
			clog.Infof("Query:\n%s", qu)
			printBackendInfo()
			p := mustSetupProfile(cmd)
			defer mustFinishProfile(p)

			db, err := openForQueries(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			ses, err := newSession(db, "")
			if err != nil {
				return err
			}

			ctx, cancel := getContext()
			defer cancel()
			if timeout := viper.GetDuration(keyQueryTimeout); timeout > 0 {
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			lang, _ := cmd.Flags().GetString("lang")
			res, err := ses.Query(ctx, lang, qu, false)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, m := range res.Maps() {
				if err = enc.Encode(m); err != nil {
					return err
				}
			}
			if len(res.Rows) == 0 && res.Affected > 0 {
				clog.Infof("%d rows affected", res.Affected)
			}
			return nil
		},
	}
	registerQueryFlags(cmd)
	registerInitFlags(cmd)
	cmd.Flags().IntP("limit", "n", 0, "limit a number of results")
	return cmd
}

func NewReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Drop into a REPL of the given query language.",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBackendInfo()
			p := mustSetupProfile(cmd)
			defer mustFinishProfile(p)

			var (
				db  *sql.Database
				err error
			)
			if viper.GetString(KeyBackend) != "" {
				db, err = openForQueries(cmd)
				if err != nil {
					return err
				}
				defer db.Close()
			}
			ses, err := newSession(db, "")
			if err != nil {
				return err
			}
			cat, err := openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()

			ctx, cancel := getContext()
			defer cancel()

			lang, _ := cmd.Flags().GetString("lang")
			explain, _ := cmd.Flags().GetBool("explain")
			return repl.Repl(ctx, repl.Config{
				Session:  ses,
				Catalog:  cat,
				Language: lang,
				Timeout:  viper.GetDuration(keyQueryTimeout),
				Explain:  explain || db == nil,
			})
		},
	}
	registerQueryFlags(cmd)
	registerInitFlags(cmd)
	cmd.Flags().Bool("explain", false, "print SQL instead of running queries")
	return cmd
}
