// Package netcdf reads NetCDF files through libnetcdf.
package netcdf

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ctessum/sparse"
	nc "github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/ncview/internal/domain"
)

// Store is a domain.Dataset backed by an open NetCDF file. Metadata is read
// when the file is opened; values are read on demand.
type Store struct {
	path string
	ds   nc.Dataset
	mu   sync.Mutex // Protect ds, libnetcdf is not thread safe.

	order []string
	vars  map[string]*domain.Variable
	dims  map[string]int
}

// Open opens a NetCDF file read-only and loads its metadata.
func Open(path string) (*Store, error) {
	ds, err := nc.OpenFile(path, nc.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file %s: %w", path, err)
	}
	s := &Store{
		path: path,
		ds:   ds,
		vars: make(map[string]*domain.Variable),
		dims: make(map[string]int),
	}
	if err := s.loadMetadata(); err != nil {
		_ = ds.Close()
		return nil, fmt.Errorf("failed to read metadata of %s: %w", path, err)
	}
	return s, nil
}

// Close closes the underlying file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ds.Close()
}

func (s *Store) loadMetadata() error {
	n, err := s.ds.NVars()
	if err != nil {
		return fmt.Errorf("failed to count variables: %w", err)
	}
	for i := 0; i < n; i++ {
		v := s.ds.VarN(i)
		name, err := v.Name()
		if err != nil {
			return fmt.Errorf("failed to get variable name: %w", err)
		}
		meta, err := readVariable(name, v)
		if err != nil {
			return fmt.Errorf("variable %s: %w", name, err)
		}
		for j, d := range meta.Dims {
			s.dims[d] = meta.Shape[j]
		}
		s.order = append(s.order, name)
		s.vars[name] = meta
	}
	return nil
}

func readVariable(name string, v nc.Var) (*domain.Variable, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	meta := &domain.Variable{
		Name:  name,
		Dims:  make([]string, len(dims)),
		Shape: make([]int, len(dims)),
		Attrs: domain.Attrs{},
	}
	for i, d := range dims {
		if meta.Dims[i], err = d.Name(); err != nil {
			return nil, fmt.Errorf("failed to get dimension name: %w", err)
		}
		n, err := d.Len()
		if err != nil {
			return nil, fmt.Errorf("failed to get dimension length: %w", err)
		}
		meta.Shape[i] = int(n)
	}

	nattrs, err := v.NAttrs()
	if err != nil {
		return nil, fmt.Errorf("failed to count attributes: %w", err)
	}
	for i := 0; i < nattrs; i++ {
		a, err := v.AttrN(i)
		if err != nil {
			return nil, fmt.Errorf("failed to get attribute %d: %w", i, err)
		}
		val, ok, err := readAttr(a)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", a.Name(), err)
		}
		if ok {
			meta.Attrs[a.Name()] = val
		}
	}
	return meta, nil
}

// readAttr returns CHAR attributes as string and numeric ones as []float64.
// Other types are skipped.
func readAttr(a nc.Attr) (any, bool, error) {
	n, err := a.Len()
	if err != nil {
		return nil, false, err
	}
	t, err := a.Type()
	if err != nil {
		return nil, false, err
	}
	if t == nc.CHAR {
		buf := make([]byte, n)
		if err := a.ReadBytes(buf); err != nil {
			return nil, false, err
		}
		return strings.TrimRight(string(buf), "\x00"), true, nil
	}

	out := make([]float64, n)
	switch t {
	case nc.DOUBLE:
		err = a.ReadFloat64s(out)
	case nc.FLOAT:
		err = widen(out, a.ReadFloat32s)
	case nc.INT:
		err = widen(out, a.ReadInt32s)
	case nc.SHORT:
		err = widen(out, a.ReadInt16s)
	case nc.BYTE:
		err = widen(out, a.ReadInt8s)
	case nc.UBYTE:
		err = widen(out, a.ReadUint8s)
	case nc.USHORT:
		err = widen(out, a.ReadUint16s)
	case nc.UINT:
		err = widen(out, a.ReadUint32s)
	case nc.INT64:
		err = widen(out, a.ReadInt64s)
	case nc.UINT64:
		err = widen(out, a.ReadUint64s)
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

type number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32
}

// widen reads len(dst) values with read and converts them into dst.
func widen[T number](dst []float64, read func([]T) error) error {
	tmp := make([]T, len(dst))
	if err := read(tmp); err != nil {
		return err
	}
	for i, v := range tmp {
		dst[i] = float64(v)
	}
	return nil
}

// Variables implements domain.Dataset.
func (s *Store) Variables() []string {
	return append([]string(nil), s.order...)
}

// Variable implements domain.Dataset.
func (s *Store) Variable(name string) (*domain.Variable, error) {
	v, ok := s.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrVariableNotFound, name)
	}
	out := *v
	out.Dims = append([]string(nil), v.Dims...)
	out.Shape = append([]int(nil), v.Shape...)
	out.Attrs = v.Attrs.Clone()
	return &out, nil
}

// Dims implements domain.Dataset.
func (s *Store) Dims() map[string]int {
	out := make(map[string]int, len(s.dims))
	for k, v := range s.dims {
		out[k] = v
	}
	return out
}

// Values implements domain.Dataset. Fill values become NaN and packed
// values are unpacked.
func (s *Store) Values(name string) (*sparse.DenseArray, error) {
	meta, ok := s.vars[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrVariableNotFound, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.ds.Var(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get variable %s: %w", name, err)
	}
	out := sparse.ZerosDense(append([]int(nil), meta.Shape...)...)
	if len(out.Elements) == 0 {
		return out, nil
	}
	if err := readFloat64s(v, out.Elements); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	meta.Attrs.Unpack(out.Elements)
	return out, nil
}

// readFloat64s reads a whole variable of any numeric type into dst.
func readFloat64s(v nc.Var, dst []float64) error {
	t, err := v.Type()
	if err != nil {
		return fmt.Errorf("failed to get var type: %w", err)
	}
	switch t {
	case nc.DOUBLE:
		return v.ReadFloat64s(dst)
	case nc.FLOAT:
		return widen(dst, v.ReadFloat32s)
	case nc.INT:
		return widen(dst, v.ReadInt32s)
	case nc.SHORT:
		return widen(dst, v.ReadInt16s)
	case nc.BYTE:
		return widen(dst, v.ReadInt8s)
	case nc.UBYTE:
		return widen(dst, v.ReadUint8s)
	case nc.USHORT:
		return widen(dst, v.ReadUint16s)
	case nc.UINT:
		return widen(dst, v.ReadUint32s)
	case nc.INT64:
		return widen(dst, v.ReadInt64s)
	case nc.UINT64:
		return widen(dst, v.ReadUint64s)
	default:
		return fmt.Errorf("unsupported data type: %v", t)
	}
}
