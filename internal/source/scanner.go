package source

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ScanDir walks dir and discovers every .csv file below it, sorted by path.
// A missing directory yields no files and no error.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		df, err := Discover(dir)
		if err != nil {
			return nil, err
		}
		return []DiscoveredFile{df}, nil
	}

	var files []DiscoveredFile
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // file vanished mid-walk
		}
		files = append(files, DiscoveredFile{Path: path, MtimeNs: fi.ModTime().UnixNano(), Size: fi.Size()})
		return nil
	})

	slices.SortFunc(files, func(a, b DiscoveredFile) int { return strings.Compare(a.Path, b.Path) })
	return files, err
}

// Discover stats a single file given explicitly on the command line.
func Discover(path string) (DiscoveredFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return DiscoveredFile{}, err
	}
	return DiscoveredFile{Path: path, MtimeNs: fi.ModTime().UnixNano(), Size: fi.Size()}, nil
}
