package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/matst80/council-finder/pkg/types"
)

// ErrNoDataFile is returned, wrapped in types.ErrSourceUnavailable, when a
// municipality has no data file at any location.
var ErrNoDataFile = errors.New("no data file")

type candidate struct {
	path   string
	format types.RawFormat
}

// DiskSource reads the generated data files below RootFolder.
type DiskSource struct {
	RootFolder string
}

func NewDiskSource(rootFolder string) *DiskSource {
	return &DiskSource{RootFolder: rootFolder}
}

// fileNames lists the locations a municipality may be stored at, in lookup order.
func (d *DiskSource) fileNames(m types.Municipality) []candidate {
	fileName := fmt.Sprintf("議員リスト_%s_%s.json", m.Code, m.Name)
	return []candidate{
		{path: filepath.Join(d.RootFolder, m.Prefecture, fileName), format: types.FormatJSON},
		{path: filepath.Join(d.RootFolder, fileName), format: types.FormatJSON},
		{path: filepath.Join(d.RootFolder, "municipalities", m.Code+".js"), format: types.FormatScript},
	}
}

func (d *DiskSource) Fetch(ctx context.Context, m types.Municipality) (*types.RawRecords, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, c := range d.fileNames(m) {
		data, err := os.ReadFile(c.path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", types.ErrSourceUnavailable, c.path, err)
		}
		return &types.RawRecords{
			Municipality: m,
			Format:       c.format,
			Data:         data,
		}, nil
	}
	return nil, fmt.Errorf("%w: %w for %s (%s)", types.ErrSourceUnavailable, ErrNoDataFile, m.Name, m.Code)
}
