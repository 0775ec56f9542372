// Package command implements gremsql subcommands.
package command

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/gremsql/clog"
	"github.com/cayleygraph/gremsql/graph/sql"

	// Load all supported backends.
	_ "github.com/cayleygraph/gremsql/graph/sql/cockroach"
	_ "github.com/cayleygraph/gremsql/graph/sql/mysql"
	_ "github.com/cayleygraph/gremsql/graph/sql/postgres"
	_ "github.com/cayleygraph/gremsql/graph/sql/sqlite"

	// Load query languages and steps.
	_ "github.com/cayleygraph/gremsql/query/gremlin/js"
	_ "github.com/cayleygraph/gremsql/query/gremlin/steps"
)

// Filled in by `go build ldflags="-X github.com/cayleygraph/gremsql/cmd/gremsql/command.Version=ver"`.
var (
	Version   = "snapshot"
	BuildDate string
)

const configName = "gremsql"

// flagKeys binds flags of subcommands to config keys when the subcommand runs.
var flagKeys = map[string]string{
	"timeout":    keyQueryTimeout,
	"limit":      KeyQueryLimit,
	"host":       KeyHTTPHost,
	"read_only":  KeyReadOnly,
	"plan_cache": KeyPlanCache,
}

func bindFlags(cmd *cobra.Command) {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			viper.BindPFlag(key, f)
		}
	}
}

func configFile(cmd *cobra.Command) error {
	viper.SetEnvPrefix(strings.ToUpper(configName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if file, _ := cmd.Flags().GetString("config"); file != "" {
		viper.SetConfigFile(file)
	} else {
		viper.SetConfigName(configName)
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/." + configName)
		viper.AddConfigPath("/etc/" + configName)
	}
	err := viper.ReadInConfig()
	var nf viper.ConfigFileNotFoundError
	if errors.As(err, &nf) {
		return nil
	} else if err != nil {
		return err
	}
	clog.Infof("using config file: %s", viper.ConfigFileUsed())
	return nil
}

// NewRootCmd returns the gremsql command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gremsql",
		Short: "Gremlin traversal to SQL compiler.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// glog flags are parsed by pflag; silence "logging before flag.Parse"
			flag.CommandLine.Parse([]string{})
			bindFlags(cmd)
			return configFile(cmd)
		},
		SilenceUsage: true,
	}
	fl := root.PersistentFlags()
	fl.AddGoFlagSet(flag.CommandLine)
	fl.StringP("config", "c", "", "path to an explicit configuration file")
	fl.StringP("backend", "d", "", `database backend ("`+strings.Join(sql.Types(), `", "`)+`")`)
	fl.StringP("address", "a", "", "address or path of the database")
	fl.StringSlice("vertex_properties", nil, `property columns of vertices, in form "name:type"`)
	fl.StringSlice("edge_properties", nil, `property columns of edges, in form "name:type"`)
	fl.Bool("table_functions", false, "lower vertex hops to adjacency table functions")
	fl.String("catalog", "", "path to the saved traversals catalog; in-memory if empty")
	fl.String("catalog_backend", "leveldb", `storage of the catalog ("leveldb", "badger")`)
	fl.String("memprofile", "", "path to output memory profile")
	fl.String("cpuprofile", "", "path to output CPU profile")

	for key, name := range map[string]string{
		KeyBackend:          "backend",
		KeyAddress:          "address",
		KeyVertexProperties: "vertex_properties",
		KeyEdgeProperties:   "edge_properties",
		KeyTableFunctions:   "table_functions",
		KeyCatalog:          "catalog",
		KeyCatalogBackend:   "catalog_backend",
	} {
		viper.BindPFlag(key, fl.Lookup(name))
	}

	root.AddCommand(
		NewVersionCmd(),
		NewInitDatabaseCmd(),
		NewLoadDatabaseCmd(),
		NewCompileCmd(),
		NewQueryCmd(),
		NewReplCmd(),
		NewHttpCmd(),
		NewHealthCmd(),
		NewSaveCmd(),
		NewListCmd(),
	)
	return root
}

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Version information.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if BuildDate != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "gremsql %s built %s\n", Version, BuildDate)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "gremsql %s\n", Version)
			}
			return nil
		},
	}
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
