package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/matst80/council-finder/pkg/overview"
	"github.com/matst80/council-finder/pkg/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reportOutput string

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Member and X registration counts per municipality",
	Args:  cobra.NoArgs,
	RunE:  runOverview,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the statistics report as Markdown",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write to file instead of stdout")
}

var prefectureStyle = lipgloss.NewStyle().Bold(true).MarginTop(1)

func runOverview(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ov, err := overview.Build(cmd.Context(), a.catalog, a.loader, logger)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(ov.Prefectures) == 0 {
		fmt.Fprintln(out, "データが見つかりません")
		return nil
	}
	for _, p := range ov.Prefectures {
		fmt.Fprintln(out, prefectureStyle.Render(p.Name))
		rows := make([][]string, 0, len(p.Municipalities))
		for _, m := range p.Municipalities {
			rows = append(rows, []string{
				m.Code,
				m.Name,
				strconv.Itoa(m.Total) + "名",
				fmt.Sprintf("%d名 (%d%%)", m.WithHandle, m.Percent),
			})
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("コード", "自治体", "議員数", "X登録").
			Rows(rows...)
		fmt.Fprintln(out, t.Render())
	}
	fmt.Fprintf(out, "総数: %d名  X保有: %d名\n", ov.Total, ov.WithHandle)
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ov, err := overview.Build(cmd.Context(), a.catalog, a.loader, logger)
	if err != nil {
		return err
	}
	r := report.Build(ov)
	if reportOutput == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), report.Markdown(r))
		return err
	}
	if err := report.WriteFile(reportOutput, r); err != nil {
		return err
	}
	logger.Info("report written", zap.String("path", reportOutput), zap.Int("municipalities", r.Municipalities))
	return nil
}
