// Package sectionindex maps environment keys to the configuration section that
// references them. Sections are discovered by scanning source files for
// env('KEY', ...) call sites with a single regular expression; nested
// parentheses in default arguments are not balanced.
package sectionindex

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// DefaultExtension is the file extension of section sources.
const DefaultExtension = ".php"

const space = `[\s\v\x{85}\p{Z}]`

var callPattern = regexp.MustCompile(`env\(` + space + `*['"]([A-Z0-9_]+)['"]` + space + `*,?` + space + `*[^)]*\)`)

// Index maps an environment key to the section that first referenced it.
type Index map[string]string

// Section returns the owning section of key.
func (idx Index) Section(key string) (string, bool) {
	s, ok := idx[key]
	return s, ok
}

// Build scans the files in dir carrying extension ext, without descending into
// subdirectories. Files are visited in directory-listing order, which decides
// ownership of keys referenced by more than one section.
func Build(dir, ext string) (Index, error) {
	if ext == "" {
		ext = DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	d, err := os.Open(dir)
	if err != nil {
		return nil, errors.Wrapf(ErrDirectoryRead, "%s: %v", dir, err)
	}
	defer d.Close()

	// File.ReadDir keeps the order the OS returns, unlike os.ReadDir.
	entries, err := d.ReadDir(-1)
	if err != nil {
		return nil, errors.Wrapf(ErrDirectoryRead, "%s: %v", dir, err)
	}

	idx := make(Index)
	for _, entry := range entries {
		section := strings.TrimSuffix(entry.Name(), ext)
		// A bare ".php" is a dotfile without an extension, not a section.
		if entry.IsDir() || filepath.Ext(entry.Name()) != ext || section == "" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(ErrFileRead, "%s: %v", path, err)
		}
		idx.add(section, string(content))
	}
	return idx, nil
}

// Scan returns the keys referenced in content, in order of appearance.
// Repeated keys are reported once.
func Scan(content string) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, m := range callPattern.FindAllStringSubmatch(content, -1) {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		keys = append(keys, m[1])
	}
	return keys
}

func (idx Index) add(section, content string) {
	for _, key := range Scan(content) {
		if _, ok := idx[key]; !ok {
			idx[key] = section
		}
	}
}
