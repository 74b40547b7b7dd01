package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mintaslang/dew/internal/router"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the configured route table",
	Long: `Print the route table an embedding host would see: direct routes,
grouped routes with their prefixes and middleware, static mappings and
error handlers.`,
	RunE: runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	return printRoutes(cmd.OutOrStdout(), router.NewTable())
}

func printRoutes(out io.Writer, table *router.Table) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer w.Flush()

	count := 0
	for _, r := range table.Routes {
		fmt.Fprintf(w, "%s\t%s\n", r.Method, r.Path)
		count++
	}
	for _, g := range table.Groups {
		for _, r := range g.Routes {
			middleware := ""
			if len(g.Middleware) > 0 {
				middleware = "\t[" + strings.Join(g.Middleware, ", ") + "]"
			}
			fmt.Fprintf(w, "%s\t%s%s\n", r.Method, g.Prefix+r.Path, middleware)
			count++
		}
	}
	for _, s := range table.Static {
		fmt.Fprintf(w, "STATIC\t%s\t-> %s\n", s.URLPrefix, s.Dir)
	}
	for status := range table.ErrorHandlers {
		fmt.Fprintf(w, "ERROR\t%d\n", status)
	}
	if count == 0 && len(table.Static) == 0 {
		fmt.Fprintln(w, "no routes registered")
	}
	return nil
}
