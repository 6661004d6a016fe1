package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matst80/council-finder/pkg/overview"
	"github.com/natefinch/atomic"
)

const rankingSize = 10

type AffiliationCount struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type Ranked struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	Rate       float64 `json:"rate"`
	WithHandle int     `json:"withHandle"`
	Total      int     `json:"total"`
}

type Report struct {
	GeneratedAt    time.Time          `json:"generatedAt"`
	Municipalities int                `json:"municipalities"`
	Members        int                `json:"members"`
	WithHandle     int                `json:"withHandle"`
	Affiliations   []AffiliationCount `json:"affiliations"`
	Top            []Ranked           `json:"top"`
	Bottom         []Ranked           `json:"bottom"`
	Zero           []string           `json:"zero"`
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}

// Build derives the statistics report from an overview. Rankings keep
// overview order between municipalities with the same rate.
func Build(ov *overview.Overview) *Report {
	r := &Report{
		GeneratedAt:  ov.GeneratedAt,
		Affiliations: []AffiliationCount{},
		Top:          []Ranked{},
		Bottom:       []Ranked{},
		Zero:         []string{},
	}
	entries := ov.Entries()
	counts := map[string]int{}
	for _, e := range entries {
		r.Municipalities++
		r.Members += e.Total
		r.WithHandle += e.WithHandle
		for name, n := range e.Affiliations {
			counts[name] += n
		}
	}

	for name, n := range counts {
		r.Affiliations = append(r.Affiliations, AffiliationCount{Name: name, Count: n, Percent: rate(n, r.Members)})
	}
	slices.SortFunc(r.Affiliations, func(a, b AffiliationCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if len(r.Affiliations) > rankingSize {
		r.Affiliations = r.Affiliations[:rankingSize]
	}

	ranked := make([]Ranked, len(entries))
	for i, e := range entries {
		ranked[i] = Ranked{Name: e.Name, Rate: rate(e.WithHandle, e.Total), WithHandle: e.WithHandle, Total: e.Total}
	}
	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(b.Rate, a.Rate)
	})

	for i, e := range ranked[:min(rankingSize, len(ranked))] {
		e.Rank = i + 1
		r.Top = append(r.Top, e)
	}
	nonZero := make([]Ranked, 0, len(ranked))
	for _, e := range ranked {
		if e.Rate > 0 {
			nonZero = append(nonZero, e)
		} else {
			r.Zero = append(r.Zero, e.Name)
		}
	}
	for i, e := range nonZero[max(0, len(nonZero)-rankingSize):] {
		e.Rank = i + 1
		r.Bottom = append(r.Bottom, e)
	}
	return r
}

func writeRanking(b *strings.Builder, rows []Ranked) {
	b.WriteString("| 順位 | 自治体名 | 登録率 | 登録数/総数 |\n")
	b.WriteString("|------|----------|--------|-------------|\n")
	for _, e := range rows {
		fmt.Fprintf(b, "| %d | %s | %.1f%% | %d/%d |\n", e.Rank, e.Name, e.Rate, e.WithHandle, e.Total)
	}
}

// Markdown renders the report as a Markdown document.
func Markdown(r *Report) string {
	var b strings.Builder
	b.WriteString("# 議員データ統計レポート\n\n")
	fmt.Fprintf(&b, "生成日時: %s\n\n", r.GeneratedAt.Format("2006年01月02日 15:04"))

	b.WriteString("## 全体統計\n")
	fmt.Fprintf(&b, "- 収集自治体数: %d\n", r.Municipalities)
	fmt.Fprintf(&b, "- 総議員数: %d名\n", r.Members)
	fmt.Fprintf(&b, "- X登録議員数: %d名 (%.1f%%)\n\n", r.WithHandle, rate(r.WithHandle, r.Members))

	b.WriteString("## 会派別統計\n")
	b.WriteString("| 会派名 | 議員数 | 割合 |\n")
	b.WriteString("|--------|--------|------|\n")
	for _, a := range r.Affiliations {
		fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", a.Name, a.Count, a.Percent)
	}

	b.WriteString("\n## X登録率ランキング\n\n")
	b.WriteString("### TOP 10（登録率が高い自治体）\n")
	writeRanking(&b, r.Top)
	b.WriteString("\n### 改善が必要な自治体（登録率が低い、0%を除く）\n")
	writeRanking(&b, r.Bottom)

	if len(r.Zero) > 0 {
		fmt.Fprintf(&b, "\n### X登録率0%%の自治体（%d自治体）\n", len(r.Zero))
		b.WriteString(strings.Join(r.Zero, ", "))
		b.WriteString("\n")
	}
	return b.String()
}

// WriteFile replaces path with the Markdown report in one step.
func WriteFile(path string, r *Report) error {
	if err := atomic.WriteFile(path, strings.NewReader(Markdown(r))); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
