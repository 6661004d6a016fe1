package overview

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/matst80/council-finder/pkg/catalog"
	"github.com/matst80/council-finder/pkg/store"
	"github.com/matst80/council-finder/pkg/types"
	"go.uber.org/zap"
)

type Loader interface {
	Load(ctx context.Context, scope types.Scope) (*store.Store, error)
}

type Entry struct {
	Code         string         `json:"code"`
	Name         string         `json:"name"`
	Total        int            `json:"total"`
	WithHandle   int            `json:"withHandle"`
	Percent      int            `json:"percent"`
	Affiliations map[string]int `json:"affiliations,omitempty"`
}

type Prefecture struct {
	Id             string  `json:"id"`
	Name           string  `json:"name"`
	Total          int     `json:"total"`
	WithHandle     int     `json:"withHandle"`
	Municipalities []Entry `json:"municipalities"`
}

// Overview summarizes every municipality whose data could be loaded.
type Overview struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	Total       int          `json:"total"`
	WithHandle  int          `json:"withHandle"`
	Prefectures []Prefecture `json:"prefectures"`
}

// Percent is the rounded share of part in total, zero when total is zero.
func Percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}

// Entries lists all municipality entries in prefecture then code order.
func (o *Overview) Entries() []Entry {
	ret := make([]Entry, 0)
	for _, p := range o.Prefectures {
		ret = append(ret, p.Municipalities...)
	}
	return ret
}

// Build loads each prefecture of the catalog. Unavailable municipalities are
// left out; a prefecture without any available municipality is left out too.
func Build(ctx context.Context, c *catalog.Catalog, loader Loader, logger *zap.Logger) (*Overview, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ret := &Overview{
		GeneratedAt: time.Now(),
		Prefectures: make([]Prefecture, 0),
	}
	for _, p := range c.Prefectures() {
		scope := types.Scope{Kind: types.ScopePrefecture, Id: p.Id}
		s, err := loader.Load(ctx, scope)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if errors.Is(err, types.ErrSourceUnavailable) {
				logger.Warn("prefecture unavailable", zap.String("prefecture", p.Id), zap.Error(err))
				continue
			}
			return nil, err
		}
		ret.Prefectures = append(ret.Prefectures, summarize(p, s))
	}
	for _, p := range ret.Prefectures {
		ret.Total += p.Total
		ret.WithHandle += p.WithHandle
	}
	return ret, nil
}

func summarize(p catalog.Prefecture, s *store.Store) Prefecture {
	failed := map[string]bool{}
	for _, m := range s.Failed() {
		failed[m.Code] = true
	}
	entries := make([]Entry, 0, len(p.Municipalities))
	byCode := map[string]int{}
	for _, m := range p.Municipalities {
		if failed[m.Code] {
			continue
		}
		byCode[m.Code] = len(entries)
		entries = append(entries, Entry{Code: m.Code, Name: m.Name, Affiliations: map[string]int{}})
	}
	for m := range s.All() {
		i, ok := byCode[m.MunicipalityCode]
		if !ok {
			continue
		}
		entries[i].Total++
		if m.HasSocialHandle() {
			entries[i].WithHandle++
		}
		entries[i].Affiliations[m.Affiliation]++
	}
	ret := Prefecture{Id: p.Id, Name: p.Name, Municipalities: entries}
	for i := range entries {
		entries[i].Percent = Percent(entries[i].WithHandle, entries[i].Total)
		ret.Total += entries[i].Total
		ret.WithHandle += entries[i].WithHandle
	}
	return ret
}
