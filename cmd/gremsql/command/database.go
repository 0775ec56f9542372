package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/gremsql/clog"
	"github.com/cayleygraph/gremsql/graph/sql"
	"github.com/cayleygraph/gremsql/internal/catalog"
	"github.com/cayleygraph/gremsql/query/gremlin"
)

const (
	KeyBackend  = "store.backend"
	KeyAddress  = "store.address"
	KeyReadOnly = "http.read_only"

	KeyVertexProperties = "schema.vertex_properties"
	KeyEdgeProperties   = "schema.edge_properties"
	KeyTableFunctions   = "compiler.table_functions"

	KeyQueryLimit = "query.limit"
	KeyPlanCache  = "http.plan_cache"
	KeyHTTPHost   = "http.host"
	KeyCatalog    = "catalog.path"

	KeyCatalogBackend = "catalog.backend"
)

const (
	flagLoad = "load"
	flagInit = "init"
)

var ErrNoBackend = errors.New("database backend is not set; use --backend flag or store.backend config key")

func registerInitFlags(cmd *cobra.Command) {
	cmd.Flags().Bool(flagInit, false, "initialize the database before using it")
	cmd.Flags().StringP(flagLoad, "i", "", `JSON graph file to load after initialization ("-" for stdin)`)
}

func NewInitDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create graph tables in an empty database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBackendInfo()
			db, err := openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()
			s, err := schemaFromConfig()
			if err != nil {
				return err
			}
			return db.Init(cmd.Context(), s)
		},
	}
	return cmd
}

func NewLoadDatabaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [file]",
		Short: "Bulk-load a JSON graph file into the database.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printBackendInfo()
			p := mustSetupProfile(cmd)
			defer mustFinishProfile(p)
			load, _ := cmd.Flags().GetString(flagLoad)
			if load == "" && len(args) == 1 {
				load = args[0]
			}
			if load == "" {
				return errors.New("one graph file must be specified")
			}
			db, err := openForQueries(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			return loadFile(cmd.Context(), db, load)
		},
	}
	registerInitFlags(cmd)
	return cmd
}

func printBackendInfo() {
	name := viper.GetString(KeyBackend)
	if name == "" {
		clog.Infof("no database backend configured")
		return
	}
	clog.Infof("using backend %q", name)
}

func schemaFromConfig() (sql.Schema, error) {
	var (
		s   sql.Schema
		err error
	)
	s.Vertex, err = sql.ParseProperties(viper.GetStringSlice(KeyVertexProperties))
	if err != nil {
		return s, fmt.Errorf("vertex properties: %w", err)
	}
	s.Edge, err = sql.ParseProperties(viper.GetStringSlice(KeyEdgeProperties))
	if err != nil {
		return s, fmt.Errorf("edge properties: %w", err)
	}
	return s, nil
}

func optionsFromConfig() (*gremlin.Options, error) {
	s, err := schemaFromConfig()
	if err != nil {
		return nil, err
	}
	return &gremlin.Options{
		Schema:         s,
		TableFunctions: viper.GetBool(KeyTableFunctions),
	}, nil
}

func openDatabase() (*sql.Database, error) {
	name := viper.GetString(KeyBackend)
	if name == "" {
		return nil, ErrNoBackend
	}
	return sql.Open(name, viper.GetString(KeyAddress), sql.Options{
		Limit: viper.GetInt(KeyQueryLimit),
	})
}

// openOptional opens the database only if the backend is configured.
func openOptional() (*sql.Database, error) {
	if viper.GetString(KeyBackend) == "" {
		return nil, nil
	}
	return openDatabase()
}

func openCatalog() (*catalog.Catalog, error) {
	return catalog.Open(viper.GetString(KeyCatalogBackend), viper.GetString(KeyCatalog))
}

func openForQueries(cmd *cobra.Command) (*sql.Database, error) {
	db, err := openDatabase()
	if err != nil {
		return nil, err
	}
	if init, _ := cmd.Flags().GetBool(flagInit); init {
		s, err := schemaFromConfig()
		if err != nil {
			db.Close()
			return nil, err
		}
		if err = db.Init(cmd.Context(), s); errors.Is(err, sql.ErrDatabaseExists) {
			clog.Infof("database already initialized, skipping init")
		} else if err != nil {
			db.Close()
			return nil, err
		}
	}
	if load, _ := cmd.Flags().GetString(flagLoad); load != "" && cmd.Name() != "load" {
		if err = loadFile(cmd.Context(), db, load); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

func loadFile(ctx context.Context, db *sql.Database, path string) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	g, err := sql.ReadGraph(r)
	if err != nil {
		return fmt.Errorf("cannot read graph: %w", err)
	}
	s, err := schemaFromConfig()
	if err != nil {
		return err
	}
	start := time.Now()
	if err = db.Load(ctx, g, s); err != nil {
		return err
	}
	clog.Infof("loaded %d vertices and %d edges from %q in %v", len(g.Vertices), len(g.Edges), path, time.Since(start))
	return nil
}

type profileData struct {
	cpuProfile *os.File
	memPath    string
}

func mustSetupProfile(cmd *cobra.Command) profileData {
	p := profileData{}
	mpp := cmd.Flag("memprofile")
	p.memPath = mpp.Value.String()
	cpp := cmd.Flag("cpuprofile")
	v := cpp.Value.String()
	if v != "" {
		f, err := os.Create(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not open CPU profile file %s\n", v)
			os.Exit(1)
		}
		p.cpuProfile = f
		pprof.StartCPUProfile(f)
	}
	return p
}

func mustFinishProfile(p profileData) {
	if p.cpuProfile != nil {
		pprof.StopCPUProfile()
		p.cpuProfile.Close()
	}
	if p.memPath != "" {
		f, err := os.Create(p.memPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not open memory profile file %s\n", p.memPath)
			os.Exit(1)
		}
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write memory profile file %s\n", p.memPath)
		}
		f.Close()
	}
}
