package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bjaus/mvc"
	"github.com/bjaus/mvc/internal/config"
	"github.com/bjaus/mvc/internal/controllers"
)

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the routing table and registered controllers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			r := newRouter(cfg.Routing, newRenderer(cfg.Routing))
			controllers.Register(r, controllers.Deps{})
			return printRoutes(cmd.OutOrStdout(), r)
		},
	}
}

func printRoutes(out io.Writer, r *mvc.Router) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "TEMPLATE\tPATTERN\tDEFAULTS")
	for _, rt := range r.Routes() {
		tmpl := rt.Template
		if tmpl == "" {
			tmpl = "(root)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", tmpl, rt.Expr, formatParams(rt.Defaults))
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CONTROLLER\tACTIONS")
	for _, c := range r.Controllers() {
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, strings.Join(c.Actions, ", "))
	}

	return tw.Flush()
}

func formatParams(p mvc.Params) string {
	if len(p) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(p))
	for _, k := range []string{"namespace", "controller", "action"} {
		if v, ok := p[k]; ok {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, " ")
}
