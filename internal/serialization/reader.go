package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// fixedHeader is the decoded 64-byte preamble.
type fixedHeader struct {
	version    uint32
	flags      uint32
	headerSize uint64
	dataSize   uint64
	checksum   [ChecksumSize]byte
}

func parseFixedHeader(b []byte) (fixedHeader, error) {
	var fh fixedHeader
	if string(b[0:4]) != MagicBytes {
		return fh, fmt.Errorf("%w: got %q, expected %q", ErrInvalidMagic, string(b[0:4]), MagicBytes)
	}
	fh.version = binary.LittleEndian.Uint32(b[4:8])
	if fh.version != FormatVersion {
		return fh, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, fh.version, FormatVersion)
	}
	fh.flags = binary.LittleEndian.Uint32(b[8:12])
	fh.headerSize = binary.LittleEndian.Uint64(b[16:24])
	fh.dataSize = binary.LittleEndian.Uint64(b[24:32])
	copy(fh.checksum[:], b[ChecksumOffset:ChecksumOffset+ChecksumSize])

	if fh.headerSize > MaxHeaderSize {
		return fh, ErrHeaderTooLarge
	}
	return fh, nil
}

// readHeader reads the fixed header and the JSON header from r.
func readHeader(r io.Reader) (fixedHeader, Header, error) {
	raw := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, raw); err != nil {
		return fixedHeader{}, Header{}, fmt.Errorf("failed to read fixed header: %w", err)
	}
	fh, err := parseFixedHeader(raw)
	if err != nil {
		return fixedHeader{}, Header{}, err
	}

	headerBytes := make([]byte, fh.headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return fixedHeader{}, Header{}, fmt.Errorf("failed to read header JSON: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return fixedHeader{}, Header{}, fmt.Errorf("failed to parse header JSON: %w", err)
	}
	return fh, header, nil
}

// Reader reads checkpoints from a file.
type Reader struct {
	file       *os.File
	header     Header
	flags      uint32
	dataOffset int64 // Offset where tensor data starts
	dataSize   int64 // Size of the data section
	checksum   [ChecksumSize]byte
	opts       ReaderOptions
	closed     bool
}

// ReaderOptions configures the behavior of Reader.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// Open opens a checkpoint with strict validation.
func Open(path string) (*Reader, error) {
	return OpenWithOptions(path, ReaderOptions{ValidationLevel: ValidationStrict})
}

// OpenWithOptions opens a checkpoint with custom options.
func OpenWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: the checkpoint path is chosen by the operator
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := &Reader{file: file, opts: opts}
	if err := r.init(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) init() error {
	fh, header, err := readHeader(r.file)
	if err != nil {
		return fmt.Errorf("failed to parse header: %w", err)
	}
	r.header = header
	r.flags = fh.flags
	r.checksum = fh.checksum
	//nolint:gosec // G115: both sizes are bounded by the file size checked below
	r.dataOffset = int64(FixedHeaderSize) + int64(fh.headerSize) + padding(int64(fh.headerSize))
	r.dataSize = int64(fh.dataSize) //nolint:gosec // G115: checked against the file size

	info, err := r.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if r.dataSize < 0 || r.dataOffset > info.Size() || r.dataSize > info.Size()-r.dataOffset {
		return &ValidationError{
			Kind:    ErrOutOfBounds,
			Details: fmt.Sprintf("data section at %d with %d bytes exceeds file size %d", r.dataOffset, r.dataSize, info.Size()),
		}
	}

	if err := ValidateHeader(&r.header, r.dataSize, r.opts.ValidationLevel); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if !r.opts.SkipChecksumValidation {
		data, err := r.readAt(0, r.dataSize)
		if err != nil {
			return fmt.Errorf("failed to read tensor data for checksum: %w", err)
		}
		if err := ValidateChecksum(ComputeChecksum(data), r.checksum); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reader) readAt(offset, size int64) ([]byte, error) {
	data := make([]byte, size)
	if _, err := r.file.ReadAt(data, r.dataOffset+offset); err != nil {
		return nil, err
	}
	return data, nil
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// HasPayload reports whether the payload flag is set.
func (r *Reader) HasPayload() bool {
	return r.flags&FlagHasPayload != 0
}

// Checksum returns the stored SHA-256 checksum of the data section.
func (r *Reader) Checksum() [ChecksumSize]byte {
	return r.checksum
}

// DataSize returns the size of the data section in bytes.
func (r *Reader) DataSize() int64 {
	return r.dataSize
}

// DecodePayload unmarshals the checkpoint record into v.
func (r *Reader) DecodePayload(v any) error {
	return r.header.DecodePayload(v)
}

// TensorNames returns the names of all tensors in file order.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns the table entry for a tensor.
func (r *Reader) TensorInfo(name string) (TensorMeta, error) {
	for _, meta := range r.header.Tensors {
		if meta.Name == name {
			return meta, nil
		}
	}
	return TensorMeta{}, fmt.Errorf("tensor %s not found", name)
}

// Tensor loads a single tensor.
func (r *Reader) Tensor(name string) (*tensor.Tensor, error) {
	if r.closed {
		return nil, ErrClosed
	}
	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	if !withinData(meta, r.dataSize) {
		return nil, &ValidationError{
			Kind:    ErrOutOfBounds,
			Tensor:  name,
			Details: fmt.Sprintf("offset %d + size %d exceeds data_size %d", meta.Offset, meta.Size, r.dataSize),
		}
	}
	data, err := r.readAt(meta.Offset, meta.Size)
	if err != nil {
		return nil, fmt.Errorf("failed to read tensor %s: %w", name, err)
	}
	t, err := tensor.FromBytes(tensor.Shape(meta.Shape), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode tensor %s: %w", name, err)
	}
	return t, nil
}

// StateDict loads every tensor into a state dictionary.
func (r *Reader) StateDict() (map[string]*tensor.Tensor, error) {
	if r.closed {
		return nil, ErrClosed
	}
	stateDict := make(map[string]*tensor.Tensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		t, err := r.Tensor(meta.Name)
		if err != nil {
			return nil, err
		}
		stateDict[meta.Name] = t
	}
	return stateDict, nil
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// ReadFrom decodes a whole checkpoint from src, verifying the checksum and
// validating the header strictly.
func ReadFrom(src io.Reader) (map[string]*tensor.Tensor, Header, error) {
	fh, header, err := readHeader(src)
	if err != nil {
		return nil, Header{}, err
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	if pad := padding(int64(fh.headerSize)); pad > 0 {
		if _, err := io.CopyN(io.Discard, src, pad); err != nil {
			return nil, Header{}, fmt.Errorf("failed to read padding: %w", err)
		}
	}

	//nolint:gosec // G115: validated against the tensor table below
	dataSize := int64(fh.dataSize)
	if dataSize < 0 {
		return nil, Header{}, &ValidationError{Kind: ErrNegativeOffset, Details: fmt.Sprintf("data size %d", fh.dataSize)}
	}
	if err := ValidateHeader(&header, dataSize, ValidationStrict); err != nil {
		return nil, Header{}, fmt.Errorf("validation failed: %w", err)
	}

	// Grows with the bytes actually read, so a lying data_size on a short
	// stream fails with EOF instead of a huge allocation.
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, src, dataSize); err != nil {
		return nil, Header{}, fmt.Errorf("failed to read tensor data: %w", err)
	}
	data := buf.Bytes()
	if err := ValidateChecksum(ComputeChecksum(data), fh.checksum); err != nil {
		return nil, Header{}, err
	}

	stateDict := make(map[string]*tensor.Tensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		t, err := tensor.FromBytes(tensor.Shape(meta.Shape), data[meta.Offset:meta.Offset+meta.Size])
		if err != nil {
			return nil, Header{}, fmt.Errorf("failed to decode tensor %s: %w", meta.Name, err)
		}
		stateDict[meta.Name] = t
	}
	return stateDict, header, nil
}
