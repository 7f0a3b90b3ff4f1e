package embedding

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Vector file layout (little-endian): 4-byte magic "TFV1", uint32 count,
// uint32 dim, then count records of int64 id followed by dim float32 values.
var fileMagic = [4]byte{'T', 'F', 'V', '1'}

// Repository holds a fixed-dimension vector per entity id. It is loaded once
// at startup and read-only afterwards, so concurrent reads need no locking.
type Repository struct {
	dim     int
	ids     []int64
	vectors [][]float32
	index   map[int64]int // id -> row
}

// Sentinel error kinds for artifact loading.
var (
	ErrBadMagic  = errors.New("not a vector artifact")
	ErrTruncated = errors.New("truncated vector artifact")
)

// NewRepository builds a repository from parallel id and vector slices.
// Used by tests and the snapshot simulator; production artifacts come from
// Load.
func NewRepository(ids []int64, vectors [][]float32) (*Repository, error) {
	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("ids and vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	r := &Repository{
		dim:     dim,
		ids:     ids,
		vectors: vectors,
		index:   make(map[int64]int, len(ids)),
	}
	for i, id := range ids {
		if len(vectors[i]) != dim {
			return nil, fmt.Errorf("vector %d has dim %d, want %d", id, len(vectors[i]), dim)
		}
		r.index[id] = i
	}
	return r, nil
}

// Load reads a vector artifact from disk. The whole file is decoded up
// front; lookups afterwards never touch the filesystem.
func Load(path string) (*Repository, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vector artifact: %w", err)
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}

// Read decodes a vector artifact from r.
func Read(r io.Reader) (*Repository, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	if magic != fileMagic {
		return nil, ErrBadMagic
	}

	var count, dim uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	if err := binary.Read(r, binary.LittleEndian, &dim); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}

	ids := make([]int64, 0, count)
	vectors := make([][]float32, 0, count)
	for i := uint32(0); i < count; i++ {
		var id int64
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrTruncated, i, err)
		}
		vec := make([]float32, dim)
		if err := binary.Read(r, binary.LittleEndian, &vec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrTruncated, i, err)
		}
		ids = append(ids, id)
		vectors = append(vectors, vec)
	}
	return NewRepository(ids, vectors)
}

// Write encodes the repository as a vector artifact.
func (r *Repository) Write(w io.Writer) error {
	if _, err := w.Write(fileMagic[:]); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(r.ids))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(r.dim)); err != nil {
		return fmt.Errorf("write dim: %w", err)
	}
	for i, id := range r.ids {
		if err := binary.Write(w, binary.LittleEndian, id); err != nil {
			return fmt.Errorf("write id %d: %w", id, err)
		}
		if err := binary.Write(w, binary.LittleEndian, r.vectors[i]); err != nil {
			return fmt.Errorf("write vector %d: %w", id, err)
		}
	}
	return nil
}

// Save writes the repository to a file at path.
func (r *Repository) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create vector artifact: %w", err)
	}
	w := bufio.NewWriter(f)
	if err := r.Write(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush vector artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close vector artifact: %w", err)
	}
	return nil
}

// Vector returns the stored vector for id, or false when absent.
func (r *Repository) Vector(id int64) ([]float32, bool) {
	row, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.vectors[row], true
}

// IDs returns every id in load order.
func (r *Repository) IDs() []int64 { return r.ids }

// Dim returns the vector dimension.
func (r *Repository) Dim() int { return r.dim }

// Len returns the number of stored vectors.
func (r *Repository) Len() int { return len(r.ids) }
