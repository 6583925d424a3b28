package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Saved is a layout document found on disk.
type Saved struct {
	Path     string
	Name     string
	Modified time.Time
	Size     int64
}

// Save writes doc to dir as <name>.json, creating dir if needed, and returns
// the path written.
func Save(dir, name string, doc Document) (string, error) {
	if name == "" {
		name = "untitled"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, FileName(name)+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Write(f, doc); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}

// Load reads a saved document.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return doc, nil
}

// List returns the documents in dir, newest first. A missing dir is empty.
func List(dir string) ([]Saved, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Saved{}, nil
		}
		return nil, err
	}

	var saved []Saved
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		saved = append(saved, Saved{
			Path:     filepath.Join(dir, entry.Name()),
			Name:     strings.TrimSuffix(entry.Name(), ".json"),
			Modified: info.ModTime(),
			Size:     info.Size(),
		})
	}

	sort.Slice(saved, func(i, j int) bool {
		if !saved[i].Modified.Equal(saved[j].Modified) {
			return saved[i].Modified.After(saved[j].Modified)
		}
		return saved[i].Name < saved[j].Name
	})
	return saved, nil
}

// FileName removes or replaces characters that are problematic in filenames.
func FileName(name string) string {
	r := strings.NewReplacer(
		" ", "-",
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	return r.Replace(name)
}
