package source

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/matst80/council-finder/pkg/common/jsoncompat"
	"github.com/matst80/council-finder/pkg/types"
	"github.com/tailscale/hujson"
)

var (
	ErrUnknownShape  = errors.New("unknown record shape")
	ErrInvalidRecord = errors.New("invalid record")
)

// Keys of the current data file shape, a plain list of records.
const (
	keyName        = "氏名"
	keyReading     = "よみ"
	keyAffiliation = "所属"
	keySocial      = "X（旧Twitter）"
)

// Keys of the older shape, the list wrapped under "議員".
const (
	keyLegacyName        = "議員名"
	keyLegacyReading     = "ふりがな"
	keyLegacyAffiliation = "政党・会派"
	keyLegacyXAccount    = "x_account"
	keyLegacyProfileURL  = "profile_url"
)

// record is decoded as a map since several keys contain characters that are
// not allowed in struct tags.
type record map[string]any

func (r record) str(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

type legacyFile struct {
	Members []record `json:"議員"`
}

// Normalize decodes one municipality payload into members. Every record
// must carry a name and an affiliation.
func Normalize(raw *types.RawRecords) ([]types.Member, types.Variant, error) {
	data := raw.Data
	if raw.Format == types.FormatScript {
		var err error
		if data, err = unwrapScript(data); err != nil {
			return nil, types.VariantFlat, err
		}
	}
	data, err := hujson.Standardize(bytes.Clone(data))
	if err != nil {
		return nil, types.VariantFlat, fmt.Errorf("standardize %s: %w", raw.Municipality.Code, err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, types.VariantFlat, fmt.Errorf("%w: empty payload", ErrUnknownShape)
	}

	switch trimmed[0] {
	case '[':
		var records []record
		if err := jsoncompat.Unmarshal(trimmed, &records); err != nil {
			return nil, types.VariantFlat, fmt.Errorf("decode %s: %w", raw.Municipality.Code, err)
		}
		members := make([]types.Member, 0, len(records))
		for i, r := range records {
			m := types.Member{
				Name:         r.str(keyName),
				Reading:      r.str(keyReading),
				Affiliation:  r.str(keyAffiliation),
				SocialHandle: r.str(keySocial),
			}
			if err := check(&m, i); err != nil {
				return nil, types.VariantFlat, err
			}
			members = append(members, m)
		}
		return members, types.VariantFlat, nil
	case '{':
		var f legacyFile
		if err := jsoncompat.Unmarshal(trimmed, &f); err != nil {
			return nil, types.VariantLegacy, fmt.Errorf("decode %s: %w", raw.Municipality.Code, err)
		}
		members := make([]types.Member, 0, len(f.Members))
		for i, r := range f.Members {
			m := types.Member{
				Name:         r.str(keyLegacyName),
				Reading:      r.str(keyLegacyReading),
				Affiliation:  r.str(keyLegacyAffiliation),
				SocialHandle: r.str(keyLegacyXAccount),
				ProfileURL:   r.str(keyLegacyProfileURL),
			}
			if err := check(&m, i); err != nil {
				return nil, types.VariantLegacy, err
			}
			members = append(members, m)
		}
		return members, types.VariantLegacy, nil
	}
	return nil, types.VariantFlat, fmt.Errorf("%w: starts with %q", ErrUnknownShape, trimmed[0])
}

func check(m *types.Member, idx int) error {
	if m.Name == "" {
		return fmt.Errorf("%w: record %d has no name", ErrInvalidRecord, idx)
	}
	if m.Affiliation == "" {
		return fmt.Errorf("%w: record %d (%s) has no affiliation", ErrInvalidRecord, idx, m.Name)
	}
	return nil
}

// unwrapScript turns a generated data script
//
//	// comment
//	window.municipalityMembers_132101 = [ ... ];
//
// into the array literal it assigns.
func unwrapScript(data []byte) ([]byte, error) {
	rest := data
	for len(rest) > 0 {
		line, next, _ := bytes.Cut(rest, []byte("\n"))
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) != 0 && !bytes.HasPrefix(trimmed, []byte("//")) {
			break
		}
		rest = next
	}
	_, value, found := bytes.Cut(rest, []byte("="))
	if !found {
		return nil, fmt.Errorf("%w: script has no assignment", ErrUnknownShape)
	}
	value = bytes.TrimSpace(value)
	value = bytes.TrimSuffix(value, []byte(";"))
	return value, nil
}
