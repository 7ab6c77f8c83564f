package serialization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Format constants.
const (
	MagicBytes      = "ALTH"
	FormatVersion   = 1
	HeaderAlignment = 64   // Tensor data starts on a 64-byte boundary
	FixedHeaderSize = 64   // Fixed binary header (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// WriterVersion identifies the library revision that produced a file.
const WriterVersion = "0.3.0"

// Flags for the fixed header.
const (
	FlagHasPayload uint32 = 1 << 0 // bit 0: header carries a payload record
)

// Header represents the JSON header of a checkpoint file.
type Header struct {
	FormatVersion int             `json:"format_version"`
	WriterVersion string          `json:"writer_version"`
	CheckpointID  string          `json:"checkpoint_id"`
	ModelType     string          `json:"model_type"` // Architecture name (e.g., "RealCCodeOptimizer")
	CreatedAt     time.Time       `json:"created_at"`
	Seed          uint64          `json:"seed"` // Seed used for weight initialization
	Tensors       []TensorMeta    `json:"tensors"`
	Payload       json.RawMessage `json:"payload,omitempty"` // Checkpoint record, minus the state dict
}

// TensorMeta describes a tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "encoder.weight_ih_l0")
	DType  string `json:"dtype"`  // Data type (always "float32" today)
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Bytes from the start of the data section
	Size   int64  `json:"size"`   // Size in bytes
}

// NewHeader creates a header with a fresh checkpoint id, the current time
// and payload marshaled as the checkpoint record.
func NewHeader(modelType string, payload any) (Header, error) {
	h := Header{
		FormatVersion: FormatVersion,
		WriterVersion: WriterVersion,
		CheckpointID:  uuid.NewString(),
		ModelType:     modelType,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.SetPayload(payload); err != nil {
		return Header{}, err
	}
	return h, nil
}

// SetPayload marshals v into the header payload. A nil v clears it.
func (h *Header) SetPayload(v any) error {
	if v == nil {
		h.Payload = nil
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	h.Payload = data
	return nil
}

// DecodePayload unmarshals the header payload into v.
func (h *Header) DecodePayload(v any) error {
	if len(h.Payload) == 0 {
		return ErrNoPayload
	}
	if err := json.Unmarshal(h.Payload, v); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}

// PayloadKeys returns the top-level keys of the payload in file order.
func (h *Header) PayloadKeys() ([]string, error) {
	if len(h.Payload) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(h.Payload))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("payload is not a JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read payload key: %w", err)
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, fmt.Errorf("failed to read payload value: %w", err)
		}
	}
	return keys, nil
}

// padding returns the zero bytes needed after a header of headerSize bytes.
func padding(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	return (HeaderAlignment - (pos % HeaderAlignment)) % HeaderAlignment
}
