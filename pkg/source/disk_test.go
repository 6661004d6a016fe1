package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matst80/council-finder/pkg/types"
)

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiskSourceLookupOrder(t *testing.T) {
	root := t.TempDir()
	koganei := types.Municipality{Code: "132101", Name: "小金井市", Prefecture: "13_東京都"}
	kokubunji := types.Municipality{Code: "132144", Name: "国分寺市", Prefecture: "13_東京都"}

	writeFile(t, filepath.Join(root, "13_東京都", "議員リスト_132101_小金井市.json"), `[]`)
	writeFile(t, filepath.Join(root, "municipalities", "132101.js"), `window.x = [];`)
	writeFile(t, filepath.Join(root, "municipalities", "132144.js"), `window.x = [];`)

	src := NewDiskSource(root)
	ctx := context.Background()

	raw, err := src.Fetch(ctx, koganei)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if raw.Format != types.FormatJSON {
		t.Errorf("Expected the prefecture json file to win")
	}
	if raw.Municipality != koganei {
		t.Errorf("Expected municipality to be attached, got %v", raw.Municipality)
	}

	raw, err = src.Fetch(ctx, kokubunji)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if raw.Format != types.FormatScript {
		t.Errorf("Expected script fallback")
	}
}

func TestDiskSourceMissing(t *testing.T) {
	src := NewDiskSource(t.TempDir())
	_, err := src.Fetch(context.Background(), types.Municipality{Code: "1", Name: "x", Prefecture: "p"})
	if !errors.Is(err, types.ErrSourceUnavailable) {
		t.Errorf("Expected ErrSourceUnavailable, got %v", err)
	}
}

func TestDiskSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDiskSource(t.TempDir()).Fetch(ctx, types.Municipality{Code: "1"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
