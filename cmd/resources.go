package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/primerdw/bartender-api/internal/config"
	"github.com/primerdw/bartender-api/internal/lookup"
	"github.com/spf13/cobra"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "List the lookup routes and their parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		resources, err := lookup.Catalog(lookup.Tables{Items: cfg.Tables.Items, Products: cfg.Tables.Products})
		if err != nil {
			return err
		}
		return printResources(cmd, strings.TrimRight(cfg.HTTP.Prefix, "/"), resources)
	},
}

func printResources(cmd *cobra.Command, prefix string, resources []lookup.Resource) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROUTE\tTABLE\tPARAMS\tMATCH")
	for _, r := range resources {
		matches := make([]string, 0, len(r.Filters))
		for _, f := range r.Filters {
			matches = append(matches, f.Match.String())
		}
		fmt.Fprintf(tw, "GET %s%s\t%s\t%s\t%s\n",
			prefix, r.Path, r.Table, strings.Join(r.Params(), ","), strings.Join(matches, ","))
	}
	return tw.Flush()
}
