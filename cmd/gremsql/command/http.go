package command

import (
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/gremsql/clog"
	"github.com/cayleygraph/gremsql/graph/sql"
	chttp "github.com/cayleygraph/gremsql/internal/http"
)

func NewHttpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve an HTTP endpoint on the given host and port.",
		RunE: func(cmd *cobra.Command, args []string) error {
			printBackendInfo()
			p := mustSetupProfile(cmd)
			defer mustFinishProfile(p)

			var db *sql.Database
			if viper.GetString(KeyBackend) != "" {
				var err error
				db, err = openForQueries(cmd)
				if err != nil {
					return err
				}
				defer db.Close()
			}
			cat, err := openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()

			opts, err := optionsFromConfig()
			if err != nil {
				return err
			}
			lang, _ := cmd.Flags().GetString("lang")
			api, err := chttp.NewAPI(&chttp.Config{
				ReadOnly:  viper.GetBool(KeyReadOnly),
				Timeout:   viper.GetDuration(keyQueryTimeout),
				Language:  lang,
				PlanCache: viper.GetInt(KeyPlanCache),
				Options:   *opts,
			}, db, cat)
			if err != nil {
				return err
			}
			host := viper.GetString(KeyHTTPHost)
			phost := host
			if h, port, err := net.SplitHostPort(host); err == nil && h == "" {
				phost = net.JoinHostPort("localhost", port)
			}
			clog.Infof("listening on %s, API at http://%s/api/v1/", host, phost)
			return http.ListenAndServe(host, api.Handler())
		},
	}
	cmd.Flags().String("host", "127.0.0.1:64210", "host:port to listen on")
	cmd.Flags().Bool("read_only", false, "reject traversals that modify the graph")
	cmd.Flags().Int("plan_cache", 1024, "number of compiled plans to cache")
	cmd.Flags().String("lang", "js", "query language used when a request does not set one")
	cmd.Flags().DurationP("timeout", "t", 30*time.Second, "elapsed time until an individual query times out")
	registerInitFlags(cmd)
	return cmd
}
