package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// SourceExtensions are the dataset formats the loader can read.
var SourceExtensions = []string{".xlsx", ".csv"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// FindSources lists the dataset files directly under dir, oldest first.
// Spreadsheet lock files ("~$...") and hidden files are skipped.
func FindSources(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") || !isSource(name) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(dir, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if !file.ModTime.Before(latest.ModTime) {
			latest = file
		}
	}

	return latest, true
}

// ResolveSource returns path when it exists, otherwise the newest dataset
// file in the same directory. ok is false when neither exists.
func ResolveSource(path string) (resolved string, ok bool) {
	if _, err := os.Stat(path); err == nil {
		return path, true
	}

	sources, err := FindSources(filepath.Dir(path))
	if err != nil {
		return "", false
	}
	latest, ok := GetLatestFile(sources)
	if !ok {
		return "", false
	}
	return latest.Path, true
}

func isSource(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range SourceExtensions {
		if ext == want {
			return true
		}
	}
	return false
}
