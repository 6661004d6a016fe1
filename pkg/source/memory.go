package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/matst80/council-finder/pkg/common/jsoncompat"
	"github.com/matst80/council-finder/pkg/types"
)

// MemorySource serves payloads held in memory, keyed by municipality code.
type MemorySource struct {
	mu       sync.RWMutex
	payloads map[string]*types.RawRecords
	failures map[string]error
	fetches  map[string]int
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		payloads: map[string]*types.RawRecords{},
		failures: map[string]error{},
		fetches:  map[string]int{},
	}
}

func (s *MemorySource) Set(code string, format types.RawFormat, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, code)
	s.payloads[code] = &types.RawRecords{Format: format, Data: data}
}

// SetMembers stores members in the current flat file shape, with a null
// handle for members without one.
func (s *MemorySource) SetMembers(code string, members ...types.Member) error {
	records := make([]record, len(members))
	for i, m := range members {
		r := record{
			keyName:        m.Name,
			keyAffiliation: m.Affiliation,
			keySocial:      nil,
		}
		if m.Reading != "" {
			r[keyReading] = m.Reading
		}
		if m.SocialHandle != "" {
			r[keySocial] = m.SocialHandle
		}
		records[i] = r
	}
	data, err := jsoncompat.Marshal(records)
	if err != nil {
		return err
	}
	s.Set(code, types.FormatJSON, data)
	return nil
}

func (s *MemorySource) Fail(code string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[code] = err
}

func (s *MemorySource) Fetches(code string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetches[code]
}

func (s *MemorySource) Fetch(ctx context.Context, m types.Municipality) (*types.RawRecords, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[m.Code]++
	if err, ok := s.failures[m.Code]; ok {
		return nil, fmt.Errorf("%w: %w", types.ErrSourceUnavailable, err)
	}
	p, ok := s.payloads[m.Code]
	if !ok {
		return nil, fmt.Errorf("%w: %w for %s", types.ErrSourceUnavailable, ErrNoDataFile, m.Code)
	}
	return &types.RawRecords{Municipality: m, Format: p.Format, Data: p.Data}, nil
}
