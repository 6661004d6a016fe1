package main

import (
	"fmt"

	"github.com/matst80/council-finder/pkg/source"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every catalog municipality file for errors and warnings",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	r := source.Validate(cmd.Context(), a.source, a.catalog.Municipalities())
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "checked %d files, %d members, %d municipalities without data\n", r.Checked, r.Members, len(r.Missing))
	for _, issue := range r.Warnings {
		fmt.Fprintf(out, "warning: %s\n", issue)
	}
	for _, issue := range r.Errors {
		fmt.Fprintf(out, "error: %s\n", issue)
	}
	if !r.Ok() {
		return fmt.Errorf("%d files failed validation", len(r.Errors))
	}
	return nil
}
