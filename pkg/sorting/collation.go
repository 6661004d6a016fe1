package sorting

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Collator interface {
	Compare(a, b string) int
}

// CodePoint orders strings by Unicode code point.
type CodePoint struct{}

func (CodePoint) Compare(a, b string) int {
	return strings.Compare(a, b)
}

// localeCollator wraps collate.Collator, which keeps internal buffers and
// can not be shared between goroutines.
type localeCollator struct {
	tag  language.Tag
	pool sync.Pool
}

func NewLocaleCollator(tag language.Tag) Collator {
	c := &localeCollator{tag: tag}
	c.pool.New = func() any {
		return collate.New(tag)
	}
	return c
}

func (c *localeCollator) Compare(a, b string) int {
	col := c.pool.Get().(*collate.Collator)
	defer c.pool.Put(col)
	return col.CompareString(a, b)
}

// NewCollator resolves the configured collation name: "codepoint", or a
// BCP 47 language tag. Empty means Japanese.
func NewCollator(name string) (Collator, error) {
	name = strings.TrimSpace(name)
	switch strings.ToLower(name) {
	case "codepoint", "binary":
		return CodePoint{}, nil
	case "", "locale":
		return NewLocaleCollator(language.Japanese), nil
	}
	tag, err := language.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("unknown collation %q: %w", name, err)
	}
	return NewLocaleCollator(tag), nil
}

var DefaultCollator = NewLocaleCollator(language.Japanese)
