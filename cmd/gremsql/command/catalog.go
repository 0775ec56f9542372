package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/gremsql/internal/catalog"
)

func NewSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <name> [query]",
		Short: "Save a traversal to the catalog under a given name.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			qu, err := readQuery(cmd, args[1:])
			if err != nil {
				return err
			}
			ses, err := newSession(nil, "")
			if err != nil {
				return err
			}
			lang, _ := cmd.Flags().GetString("lang")
			ctx, cancel := getContext()
			defer cancel()
			t, err := ses.Parse(ctx, lang, qu)
			if err != nil {
				return err
			}
			cat, err := openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()
			return cat.Put(ctx, catalog.Entry{Name: name, Lang: lang, Text: qu, Traversal: t})
		},
	}
	cmd.Flags().String("lang", "js", "query language of the traversal")
	return cmd
}

func NewListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved traversals.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()
			ctx, cancel := getContext()
			defer cancel()
			list, err := cat.List(ctx)
			if err != nil {
				return err
			}
			for _, e := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t[%s]\t%s\n", e.Name, e.Lang, e.Text)
			}
			return nil
		},
	}
}
