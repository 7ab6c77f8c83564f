package report

import (
	"io"
	"strings"
	"time"
)

// CheckpointInfo is what `aletheia inspect` learned about a checkpoint.
type CheckpointInfo struct {
	Path          string
	ModelType     string
	CheckpointID  string
	FormatVersion int
	WriterVersion string
	CreatedAt     time.Time
	Seed          uint64
	Tensors       int
	Parameters    int
	DataBytes     int64
	Checksum      string // hex SHA-256 of the tensor data
	Verified      bool   // checksum recomputed and matched
	Reloaded      bool   // weights loaded into a fresh model
	PayloadKeys   []string
}

// Inspection prints a checkpoint inspection summary.
func Inspection(w io.Writer, in CheckpointInfo) error {
	p := newPrinter(w)

	p.styled(p.title, "ALETHEIA Checkpoint")
	p.line(rule)

	field := func(name string, format string, args ...any) {
		p.printf("%-16s"+format+"\n", append([]any{name + ":"}, args...)...)
	}
	field("Path", "%s", in.Path)
	field("Model type", "%s", in.ModelType)
	field("Checkpoint ID", "%s", in.CheckpointID)
	field("Format", "v%d (writer %s)", in.FormatVersion, in.WriterVersion)
	field("Created", "%s", in.CreatedAt.UTC().Format(time.RFC3339))
	field("Seed", "%d", in.Seed)
	field("Tensors", "%d", in.Tensors)
	field("Parameters", "%d", in.Parameters)
	field("Data size", "%d bytes", in.DataBytes)
	field("SHA-256", "%s", in.Checksum)
	field("Record keys", "%s", strings.Join(in.PayloadKeys, ", "))

	p.blank()
	if in.Verified {
		p.styled(p.success, "Checksum verified")
	} else {
		p.styled(p.note, "Checksum not verified (use --verify)")
	}
	if in.Reloaded {
		p.styled(p.success, "Weights reloaded into "+in.ModelType)
	}
	return p.err
}
