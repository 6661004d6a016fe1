package main

import (
	"errors"
	"fmt"

	"github.com/matst80/council-finder/pkg/common/jsoncompat"
	"github.com/matst80/council-finder/pkg/render"
	"github.com/matst80/council-finder/pkg/server"
	"github.com/matst80/council-finder/pkg/store"
	"github.com/matst80/council-finder/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	viewQuery        string
	viewAffiliation  string
	viewMunicipality string
	viewSort         string
	viewDescending   bool
	viewJson         bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List prefectures and municipalities of the catalog",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var viewCmd = &cobra.Command{
	Use:   "view <municipality code | prefecture id>",
	Short: "Show the members of a municipality or prefecture",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func init() {
	viewCmd.Flags().StringVarP(&viewQuery, "query", "q", "", "Search name or reading")
	viewCmd.Flags().StringVar(&viewAffiliation, "affiliation", "", "Only members of this affiliation")
	viewCmd.Flags().StringVar(&viewMunicipality, "municipality", "", "Only members of this municipality (prefecture scope)")
	viewCmd.Flags().StringVarP(&viewSort, "sort", "s", "", "Sort column: name, reading, affiliation, hasSocialHandle, municipality")
	viewCmd.Flags().BoolVar(&viewDescending, "desc", false, "Sort descending")
	viewCmd.Flags().BoolVar(&viewJson, "json", false, "Print the display model as json")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range a.catalog.Prefectures() {
		fmt.Fprintf(out, "%s (%s)\n", p.Name, p.Id)
		for _, m := range p.Municipalities {
			fmt.Fprintf(out, "  %s %s\n", m.Code, m.Name)
		}
	}
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	scope, err := a.catalog.Resolve(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	st, err := a.loader.Load(cmd.Context(), scope)
	if errors.Is(err, types.ErrSourceUnavailable) {
		logger.Debug("scope unavailable", zap.Error(err))
		return render.Terminal(out, render.Failure(scope, store.Empty(scope).Variant()))
	}
	if err != nil {
		return err
	}
	ascending := !viewDescending
	model, err := server.BuildView(st, &server.ViewRequest{
		Query:        viewQuery,
		Affiliation:  viewAffiliation,
		Municipality: viewMunicipality,
		Sort:         viewSort,
		Ascending:    &ascending,
	}, a.collator)
	if err != nil {
		return err
	}
	if viewJson {
		return jsoncompat.NewEncoder(out).Encode(model)
	}
	return render.Terminal(out, model)
}
