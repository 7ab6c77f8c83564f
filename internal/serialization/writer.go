package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// Writer writes checkpoints to a file.
type Writer struct {
	file   *os.File
	closed bool
}

// Create creates the checkpoint file at path, making parent directories as
// needed. An existing file is truncated.
func Create(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	//nolint:gosec // G304: the output path is chosen by the operator
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &Writer{file: file}, nil
}

// Write writes the state dictionary and header to the file. The tensor table
// of header is rebuilt from stateDict.
func (w *Writer) Write(stateDict map[string]*tensor.Tensor, header Header) error {
	if w.closed {
		return ErrClosed
	}

	buf := bufio.NewWriter(w.file)
	if _, err := WriteTo(buf, stateDict, header); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to flush checkpoint: %w", err)
	}
	return nil
}

// Close syncs and closes the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return fmt.Errorf("failed to sync file: %w", err)
	}
	return w.file.Close()
}

// WriteTo encodes a checkpoint to dst and returns the number of bytes written.
//
// Tensors are stored sorted by name, so the same state dictionary always
// produces the same data section and checksum.
func WriteTo(dst io.Writer, stateDict map[string]*tensor.Tensor, header Header) (int64, error) {
	if header.FormatVersion == 0 {
		header.FormatVersion = FormatVersion
	}
	if header.WriterVersion == "" {
		header.WriterVersion = WriterVersion
	}

	names := slices.Sorted(maps.Keys(stateDict))
	header.Tensors = make([]TensorMeta, 0, len(names))

	var offset int64
	for _, name := range names {
		if err := ValidateTensorName(name); err != nil {
			return 0, err
		}
		t := stateDict[name]
		if t == nil {
			return 0, fmt.Errorf("tensor %s is nil", name)
		}
		size := int64(t.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  t.DType().String(),
			Shape:  []int(t.Shape().Clone()),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	data := make([]byte, 0, offset)
	for _, name := range names {
		data = append(data, stateDict[name].Bytes()...)
	}
	checksum := ComputeChecksum(data)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return 0, ErrHeaderTooLarge
	}

	fixed := make([]byte, FixedHeaderSize)

	// 0x00-0x03: magic
	copy(fixed[0:4], MagicBytes)
	// 0x04-0x07: version
	binary.LittleEndian.PutUint32(fixed[4:8], uint32(header.FormatVersion))
	// 0x08-0x0B: flags
	var flags uint32
	if len(header.Payload) > 0 {
		flags |= FlagHasPayload
	}
	binary.LittleEndian.PutUint32(fixed[8:12], flags)
	// 0x0C-0x0F: reserved
	// 0x10-0x17: header size
	binary.LittleEndian.PutUint64(fixed[16:24], uint64(len(headerJSON)))
	// 0x18-0x1F: data size
	binary.LittleEndian.PutUint64(fixed[24:32], uint64(len(data)))
	// 0x20-0x3F: checksum
	copy(fixed[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	var written int64
	write := func(what string, b []byte) error {
		n, err := dst.Write(b)
		written += int64(n)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", what, err)
		}
		return nil
	}

	if err := write("fixed header", fixed); err != nil {
		return written, err
	}
	if err := write("header JSON", headerJSON); err != nil {
		return written, err
	}
	if pad := padding(int64(len(headerJSON))); pad > 0 {
		if err := write("padding", make([]byte, pad)); err != nil {
			return written, err
		}
	}
	if err := write("tensor data", data); err != nil {
		return written, err
	}
	return written, nil
}
