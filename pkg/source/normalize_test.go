package source

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/matst80/council-finder/pkg/types"
)

func TestNormalizeFlat(t *testing.T) {
	raw := &types.RawRecords{Data: []byte(`[
		{"氏名": "太田　浩典", "よみ": "おおた　ひろのり", "所属": "小金井市政会", "X（旧Twitter）": "https://x.com/ohta_hironori"},
		{"氏名": "安田　桂子", "よみ": null, "所属": "市民ネットワーク", "X（旧Twitter）": null},
	]`)}
	members, variant, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if variant != types.VariantFlat {
		t.Errorf("Expected flat variant, got %v", variant)
	}
	expected := []types.Member{
		{Name: "太田　浩典", Reading: "おおた　ひろのり", Affiliation: "小金井市政会", SocialHandle: "https://x.com/ohta_hironori"},
		{Name: "安田　桂子", Affiliation: "市民ネットワーク"},
	}
	if diff := cmp.Diff(expected, members); diff != "" {
		t.Errorf("Unexpected members (-want +got):\n%s", diff)
	}
}

func TestNormalizeLegacy(t *testing.T) {
	raw := &types.RawRecords{Data: []byte(`{"議員": [
		{"議員名": "山田太郎", "ふりがな": "やまだたろう", "政党・会派": "無所属", "x_account": "yamada", "profile_url": "https://example.jp/yamada"}
	]}`)}
	members, variant, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if variant != types.VariantLegacy {
		t.Errorf("Expected legacy variant, got %v", variant)
	}
	expected := []types.Member{
		{Name: "山田太郎", Reading: "やまだたろう", Affiliation: "無所属", SocialHandle: "yamada", ProfileURL: "https://example.jp/yamada"},
	}
	if diff := cmp.Diff(expected, members); diff != "" {
		t.Errorf("Unexpected members (-want +got):\n%s", diff)
	}
}

func TestNormalizeScript(t *testing.T) {
	raw := &types.RawRecords{Format: types.FormatScript, Data: []byte(`// 議員データ - 132144 （2025年07月02日更新）
// このファイルは自動生成されます

window.municipalityMembers_132144 = [
    {
        "氏名": "鈴木　ちひろ",
        "よみ": "すずき　ちひろ",
        "所属": "無会派（グリーンな国分寺）",
        "X（旧Twitter）": "https://x.com/chihiro_bunji"
    },
];
`)}
	members, _, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(members) != 1 || members[0].Name != "鈴木　ちひろ" {
		t.Errorf("Expected one member, got %v", members)
	}
}

func TestNormalizeErrors(t *testing.T) {
	cases := []struct {
		name   string
		raw    *types.RawRecords
		target error
	}{
		{"missing name", &types.RawRecords{Data: []byte(`[{"氏名": " ", "所属": "A"}]`)}, ErrInvalidRecord},
		{"missing affiliation", &types.RawRecords{Data: []byte(`[{"氏名": "田中"}]`)}, ErrInvalidRecord},
		{"scalar", &types.RawRecords{Data: []byte(`"nope"`)}, ErrUnknownShape},
		{"empty", &types.RawRecords{Data: []byte(`  `)}, nil},
		{"script without assignment", &types.RawRecords{Format: types.FormatScript, Data: []byte("// only a comment")}, ErrUnknownShape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Normalize(tc.raw)
			if err == nil {
				t.Fatalf("Expected error")
			}
			if tc.target != nil && !errors.Is(err, tc.target) {
				t.Errorf("Expected %v, got %v", tc.target, err)
			}
		})
	}
}

func TestNormalizeDoesNotModifyInput(t *testing.T) {
	data := []byte(`[{"氏名": "田中", "所属": "A"}, // trailing comment
	]`)
	before := string(data)
	if _, _, err := Normalize(&types.RawRecords{Data: data}); err != nil {
		t.Fatal(err)
	}
	if string(data) != before {
		t.Errorf("Expected input to be untouched")
	}
}

func TestNormalizeDataFileKeepsHandles(t *testing.T) {
	src := NewDiskSource(filepath.Join("..", "..", "data"))
	raw, err := src.Fetch(context.Background(), types.Municipality{Code: "132101", Name: "小金井市", Prefecture: "13_東京都"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	members, variant, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if variant != types.VariantFlat {
		t.Errorf("Expected flat variant, got %v", variant)
	}
	withHandle := 0
	for _, m := range members {
		if m.HasSocialHandle() {
			withHandle++
			if !strings.HasPrefix(m.SocialHandle, "https://x.com/") {
				t.Errorf("Unexpected handle %q for %s", m.SocialHandle, m.Name)
			}
		}
	}
	if len(members) != 24 || withHandle != 14 {
		t.Errorf("Expected 24 members with 14 handles, got %d with %d", len(members), withHandle)
	}
}

func TestNormalizeLegacyAffiliationKey(t *testing.T) {
	raw := &types.RawRecords{Data: []byte(`{"議員":[{"議員名":"山田","政党・会派":"無所属"}]}`)}
	members, _, err := Normalize(raw)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(members) != 1 || members[0].Affiliation != "無所属" {
		t.Errorf("Expected affiliation 無所属, got %v", members)
	}
}

func TestMemorySourceWritesFileKeys(t *testing.T) {
	mem := NewMemorySource()
	if err := mem.SetMembers("1",
		types.Member{Name: "田中", Affiliation: "A", SocialHandle: "tanaka"},
		types.Member{Name: "佐藤", Reading: "さとう", Affiliation: "B"},
	); err != nil {
		t.Fatal(err)
	}
	raw, err := mem.Fetch(context.Background(), types.Municipality{Code: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw.Data), `"X（旧Twitter）"`) {
		t.Errorf("Expected the file key for handles, got %s", raw.Data)
	}
	members, _, err := Normalize(raw)
	if err != nil {
		t.Fatal(err)
	}
	expected := []types.Member{
		{Name: "田中", Affiliation: "A", SocialHandle: "tanaka"},
		{Name: "佐藤", Reading: "さとう", Affiliation: "B"},
	}
	if diff := cmp.Diff(expected, members); diff != "" {
		t.Errorf("Unexpected members (-want +got):\n%s", diff)
	}
}
