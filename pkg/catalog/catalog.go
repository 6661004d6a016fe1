package catalog

import (
	"cmp"
	"fmt"
	"os"
	"slices"

	"github.com/matst80/council-finder/pkg/types"
	"gopkg.in/yaml.v3"
)

type Prefecture struct {
	Id             string               `json:"id"`
	Name           string               `json:"name"`
	Municipalities []types.Municipality `json:"municipalities"`
}

// Catalog lists every known municipality and the prefecture it belongs to.
// It is the only place scope identifiers are resolved.
type Catalog struct {
	municipalities []types.Municipality
	byCode         map[string]int
	prefectures    []string
}

type catalogFile struct {
	Municipalities []types.Municipality `yaml:"municipalities"`
}

func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Municipalities)
}

func New(municipalities []types.Municipality) (*Catalog, error) {
	c := &Catalog{
		municipalities: make([]types.Municipality, 0, len(municipalities)),
		byCode:         make(map[string]int, len(municipalities)),
	}
	seenPrefecture := map[string]struct{}{}
	for i, m := range municipalities {
		if m.Code == "" || m.Name == "" || m.Prefecture == "" {
			return nil, fmt.Errorf("catalog entry %d: code, name and prefecture are required", i)
		}
		if _, found := c.byCode[m.Code]; found {
			return nil, fmt.Errorf("catalog entry %d: duplicate code %s", i, m.Code)
		}
		if _, found := seenPrefecture[m.Prefecture]; !found {
			seenPrefecture[m.Prefecture] = struct{}{}
			c.prefectures = append(c.prefectures, m.Prefecture)
		}
		c.byCode[m.Code] = len(c.municipalities)
		c.municipalities = append(c.municipalities, m)
	}
	return c, nil
}

func (c *Catalog) Municipality(code string) (types.Municipality, bool) {
	idx, ok := c.byCode[code]
	if !ok {
		return types.Municipality{}, false
	}
	return c.municipalities[idx], true
}

// Municipalities returns all entries in catalog order.
func (c *Catalog) Municipalities() []types.Municipality {
	return slices.Clone(c.municipalities)
}

// InPrefecture returns the municipalities tagged with the prefecture, ordered by code.
func (c *Catalog) InPrefecture(id string) []types.Municipality {
	ret := make([]types.Municipality, 0)
	for _, m := range c.municipalities {
		if m.Prefecture == id {
			ret = append(ret, m)
		}
	}
	slices.SortStableFunc(ret, func(a, b types.Municipality) int {
		return cmp.Compare(a.Code, b.Code)
	})
	return ret
}

// Prefectures are returned in order of first appearance in the catalog.
func (c *Catalog) Prefectures() []Prefecture {
	ret := make([]Prefecture, 0, len(c.prefectures))
	for _, id := range c.prefectures {
		ret = append(ret, Prefecture{
			Id:             id,
			Name:           types.PrefectureName(id),
			Municipalities: c.InPrefecture(id),
		})
	}
	return ret
}

// Resolve maps an identifier to a scope: a municipality code first, then a
// prefecture id.
func (c *Catalog) Resolve(id string) (types.Scope, error) {
	if _, ok := c.byCode[id]; ok {
		return types.Scope{Kind: types.ScopeMunicipality, Id: id}, nil
	}
	if slices.Contains(c.prefectures, id) {
		return types.Scope{Kind: types.ScopePrefecture, Id: id}, nil
	}
	return types.Scope{}, fmt.Errorf("%w: %q", types.ErrScopeNotFound, id)
}

// Members returns the municipalities a scope fans out to.
func (c *Catalog) Members(scope types.Scope) ([]types.Municipality, error) {
	switch scope.Kind {
	case types.ScopeMunicipality:
		m, ok := c.Municipality(scope.Id)
		if !ok {
			return nil, fmt.Errorf("%w: municipality %q", types.ErrScopeNotFound, scope.Id)
		}
		return []types.Municipality{m}, nil
	case types.ScopePrefecture:
		ms := c.InPrefecture(scope.Id)
		if len(ms) == 0 {
			return nil, fmt.Errorf("%w: prefecture %q", types.ErrScopeNotFound, scope.Id)
		}
		return ms, nil
	}
	return nil, fmt.Errorf("%w: %s", types.ErrScopeNotFound, scope)
}
