package source

import (
	"fmt"
	"os"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/huangsam/fm301check/internal/contract"
	"github.com/huangsam/fm301check/schema"
)

// CDFSource reads a netCDF classic (CDF-1/CDF-2) file. Classic files have
// no groups, so everything lives in the root scope.
type CDFSource struct {
	file *os.File
	nc   *cdf.File
	path string
	size int64
}

// OpenCDF opens a netCDF classic file read-only.
func OpenCDF(path string) (*CDFSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contract.ErrDataSourceOpen, err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: %v", contract.ErrDataSourceOpen, err)
	}
	nc, err := cdf.Open(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%w: %s: %v", contract.ErrDataSourceOpen, path, err)
	}
	return &CDFSource{file: file, nc: nc, path: path, size: info.Size()}, nil
}

// Root implements contract.DataSource.
func (s *CDFSource) Root() contract.Group { return &cdfGroup{src: s} }

// Path implements contract.DataSource.
func (s *CDFSource) Path() string { return s.path }

// Format implements contract.DataSource.
func (s *CDFSource) Format() string { return CDFFormat }

// Close implements contract.DataSource.
func (s *CDFSource) Close() error { return s.file.Close() }

type cdfGroup struct {
	src *CDFSource
}

func (g *cdfGroup) Name() string { return "/" }

func (g *cdfGroup) Attribute(name string) (schema.Value, bool) {
	return cdfAttribute(g.src.nc.Header, "", name)
}

func (g *cdfGroup) Variable(name string) (contract.Variable, bool) {
	for _, v := range g.src.nc.Header.Variables() {
		if v == name {
			return &cdfVariable{src: g.src, name: name}, true
		}
	}
	return nil, false
}

func (g *cdfGroup) Group(string) (contract.Group, bool) { return nil, false }

func (g *cdfGroup) GroupNames() []string { return nil }

func (g *cdfGroup) AttributeNames() []string { return g.src.nc.Header.Attributes("") }

func (g *cdfGroup) VariableNames() []string { return g.src.nc.Header.Variables() }

type cdfVariable struct {
	src  *CDFSource
	name string
}

func (v *cdfVariable) Name() string { return v.name }

func (v *cdfVariable) DataType() schema.DataType {
	return cdfDataType(v.src.nc.Header.ZeroValue(v.name, 0))
}

func (v *cdfVariable) Shape() []int {
	h := v.src.nc.Header
	lengths := h.Lengths(v.name)
	shape := make([]int, len(lengths))
	copy(shape, lengths)
	if h.IsRecordVariable(v.name) && len(shape) > 0 {
		shape[0] = int(h.NumRecs(v.src.size))
	}
	return shape
}

func (v *cdfVariable) Attribute(name string) (schema.Value, bool) {
	return cdfAttribute(v.src.nc.Header, v.name, name)
}

func (v *cdfVariable) AttributeNames() []string { return v.src.nc.Header.Attributes(v.name) }

// Representative reads the first element. Character variables yield their
// first string (the leading row along the last dimension).
func (v *cdfVariable) Representative() (val schema.Value, ok bool) {
	defer func() {
		if recover() != nil {
			val, ok = schema.None, false
		}
	}()

	shape := v.Shape()
	for _, n := range shape {
		if n <= 0 {
			return schema.None, false
		}
	}
	begin := make([]int, len(shape))
	end := make([]int, len(shape))
	dt := v.DataType()
	if dt == schema.CharType && len(shape) > 0 {
		end[len(end)-1] = shape[len(shape)-1] - 1
	}

	r := v.src.nc.Reader(v.name, begin, end)
	if r == nil {
		return schema.None, false
	}
	n := 1
	if dt == schema.CharType && len(shape) > 0 {
		n = shape[len(shape)-1]
	}
	buf := r.Zero(n)
	read, _ := r.Read(buf)
	if read < n {
		return schema.None, false
	}

	switch data := buf.(type) {
	case []uint8:
		if dt == schema.CharType {
			return schema.Value{Type: dt, Raw: strings.TrimRight(string(data), "\x00")}, true
		}
		return schema.Value{Type: dt, Raw: int64(int8(data[0]))}, true
	case []int16:
		return schema.Value{Type: dt, Raw: int64(data[0])}, true
	case []int32:
		return schema.Value{Type: dt, Raw: int64(data[0])}, true
	case []float32:
		return schema.Value{Type: dt, Raw: float64(data[0])}, true
	case []float64:
		return schema.Value{Type: dt, Raw: data[0]}, true
	default:
		return schema.None, false
	}
}

// cdfDataType maps the slice type the library uses for a netCDF type.
// BYTE is signed in netCDF even though the library stores it as uint8.
func cdfDataType(zero any) schema.DataType {
	switch zero.(type) {
	case string:
		return schema.CharType
	case []uint8:
		return schema.Int8Type
	case []int16:
		return schema.Int16Type
	case []int32:
		return schema.Int32Type
	case []float32:
		return schema.Float32Type
	case []float64:
		return schema.Float64Type
	default:
		return schema.UnknownType
	}
}

func cdfAttribute(h *cdf.Header, varName, name string) (schema.Value, bool) {
	raw := h.GetAttribute(varName, name)
	if raw == nil {
		return schema.None, false
	}
	switch vals := raw.(type) {
	case string:
		return schema.Value{Type: schema.StringType, Raw: strings.TrimRight(vals, "\x00")}, true
	case []uint8:
		return numericAttribute(schema.Int8Type, len(vals), func(i int) any { return int64(int8(vals[i])) }), true
	case []int16:
		return numericAttribute(schema.Int16Type, len(vals), func(i int) any { return int64(vals[i]) }), true
	case []int32:
		return numericAttribute(schema.Int32Type, len(vals), func(i int) any { return int64(vals[i]) }), true
	case []float32:
		return numericAttribute(schema.Float32Type, len(vals), func(i int) any { return float64(vals[i]) }), true
	case []float64:
		return numericAttribute(schema.Float64Type, len(vals), func(i int) any { return vals[i] }), true
	default:
		return schema.None, false
	}
}

// numericAttribute collapses single-element attributes to a scalar.
func numericAttribute(dt schema.DataType, n int, at func(int) any) schema.Value {
	if n == 1 {
		return schema.Value{Type: dt, Raw: at(0)}
	}
	list := make([]any, n)
	for i := range list {
		list[i] = at(i)
	}
	return schema.Value{Type: dt, Raw: list}
}
