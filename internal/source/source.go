// Package source opens radar data files and exposes them as contract.DataSource.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/schema"
)

// Format names reported by the data sources.
const (
	CDFFormat  = "netcdf-classic"
	DumpFormat = "metadata-dump"
)

var (
	cdfMagic  = []byte("CDF")
	hdf5Magic = []byte("\x89HDF\r\n\x1a\n")
)

// Open sniffs the file at path and opens it with the matching reader.
func Open(path string) (contract.DataSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrDataSourceOpen, err)
	}
	head := make([]byte, 8)
	n, err := io.ReadFull(f, head)
	_ = f.Close()
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %v", contract.ErrDataSourceOpen, path, err)
	}
	head = head[:n]

	switch {
	case isCDF(head):
		return OpenCDF(path)
	case bytes.HasPrefix(head, hdf5Magic):
		return nil, fmt.Errorf("%w: %s is a netCDF-4/HDF5 file; export its metadata to a JSON or YAML dump and check that instead", contract.ErrDataSourceOpen, path)
	case isDumpPath(path) || bytes.HasPrefix(bytes.TrimSpace(head), []byte("{")):
		return OpenDump(path)
	default:
		return nil, fmt.Errorf("%w: %s is not a netCDF file or metadata dump", contract.ErrDataSourceOpen, path)
	}
}

func isCDF(head []byte) bool {
	if len(head) < 4 || !bytes.HasPrefix(head, cdfMagic) {
		return false
	}
	switch head[3] {
	case 1, 2, 5:
		return true
	default:
		return false
	}
}

func isDumpPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// HasAttribute reports whether scope carries the attribute. A nil scope has nothing.
func HasAttribute(scope contract.Group, name string) bool {
	_, ok := GetAttribute(scope, name)
	return ok
}

// GetAttribute looks up an attribute of scope.
func GetAttribute(scope contract.Group, name string) (schema.Value, bool) {
	if scope == nil {
		return schema.None, false
	}
	return scope.Attribute(name)
}

// HasVariable reports whether scope holds the variable.
func HasVariable(scope contract.Group, name string) bool {
	_, ok := GetVariable(scope, name)
	return ok
}

// GetVariable looks up a variable of scope.
func GetVariable(scope contract.Group, name string) (contract.Variable, bool) {
	if scope == nil {
		return nil, false
	}
	return scope.Variable(name)
}

// ResolvePath descends through the groups named by a slash-separated path.
// It returns the group holding the leaf and the leaf name, or false when any
// intermediate group is missing.
func ResolvePath(scope contract.Group, path string) (contract.Group, string, bool) {
	if scope == nil || path == "" {
		return nil, "", false
	}
	parts := strings.Split(path, "/")
	current := scope
	for _, part := range parts[:len(parts)-1] {
		next, ok := current.Group(part)
		if !ok {
			return nil, "", false
		}
		current = next
	}
	leaf := parts[len(parts)-1]
	if leaf == "" {
		return nil, "", false
	}
	return current, leaf, true
}

// ListGroupsWithPrefix returns the direct subgroups whose names start with prefix,
// in lexicographic order.
func ListGroupsWithPrefix(scope contract.Group, prefix string) []string {
	if scope == nil {
		return nil
	}
	var names []string
	for _, name := range scope.GroupNames() {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
