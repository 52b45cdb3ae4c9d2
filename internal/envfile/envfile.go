package envfile

import (
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// space matches Unicode white space, not just the ASCII set \s covers.
const space = `[\s\v\x{85}\p{Z}]`

var linePattern = regexp.MustCompile(`^` + space + `*([A-Z0-9_]+)` + space + `*=` + space + `*(.*)$`)

// File holds the entries of an environment file. Keys iterate in the order of
// their first appearance; values reflect the last assignment.
type File struct {
	keys   []string
	values map[string]string
}

// Load reads the file at path and parses it.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFileRead, "%s: %v", path, err)
	}
	return Parse(string(data)), nil
}

// Parse builds a File from the raw contents of an environment file.
func Parse(content string) *File {
	f := &File{values: make(map[string]string)}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		m := linePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		f.set(m[1], unquote(strings.TrimSpace(m[2])))
	}
	return f
}

func (f *File) set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value for key.
func (f *File) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Len reports the number of distinct keys.
func (f *File) Len() int {
	return len(f.keys)
}

// Keys returns a copy of the keys in first-appearance order.
func (f *File) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Map returns a copy of the entries as a plain map.
func (f *File) Map() map[string]string {
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Each calls fn for every entry in key order until fn returns false.
func (f *File) Each(fn func(key, value string) bool) {
	for _, k := range f.keys {
		if !fn(k, f.values[k]) {
			return
		}
	}
}

// unquote strips one layer of matching single or double quotes.
func unquote(v string) string {
	if len(v) < 2 {
		return v
	}
	first, last := v[0], v[len(v)-1]
	if (first == '"' || first == '\'') && first == last {
		return v[1 : len(v)-1]
	}
	return v
}
