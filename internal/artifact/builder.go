package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/aletheia-ml/aletheia/internal/advisor"
	"github.com/aletheia-ml/aletheia/internal/config"
	"github.com/aletheia-ml/aletheia/internal/nn"
	"github.com/aletheia-ml/aletheia/internal/serialization"
	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// Result describes a finished build.
type Result struct {
	Profile         Profile
	ModelType       string
	CheckpointPath  string
	MetadataPath    string
	CheckpointBytes int64
	Parameters      int
	CheckpointID    string
	Seed            uint64
}

// Builder runs the artifact pipeline.
type Builder struct {
	Config *config.Config
	Logger *zap.Logger
	Out    io.Writer // receives the console report; nil disables it

	clock    func() time.Time
	seed     func() uint64
	newModel func(modelType string, rng *rand.Rand) (advisor.Model, error)
}

// NewBuilder creates a builder. A nil logger discards logs.
func NewBuilder(cfg *config.Config, logger *zap.Logger, out io.Writer) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		Config:   cfg,
		Logger:   logger,
		Out:      out,
		clock:    time.Now,
		seed:     randomSeed,
		newModel: advisor.New,
	}
}

func randomSeed() uint64 {
	for {
		if s := rand.Uint64(); s != 0 {
			return s
		}
	}
}

// Build constructs the profile's model and writes its checkpoint and
// metadata sidecar. The context is checked between stages.
func (b *Builder) Build(ctx context.Context, profile Profile) (Result, error) {
	if _, err := ParseProfile(profile.String()); err != nil {
		return Result{}, err
	}
	if err := b.Config.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid config: %w", err)
	}
	files := profile.Files(b.Config)
	res := Result{
		Profile:        profile,
		ModelType:      profile.ModelType(),
		CheckpointPath: filepath.Join(b.Config.OutputDir, files.Checkpoint),
		MetadataPath:   filepath.Join(b.Config.OutputDir, files.Metadata),
		Seed:           b.Config.Seed,
	}
	if res.Seed == 0 {
		res.Seed = b.seed()
	}
	log := b.Logger.With(zap.String("profile", profile.String()), zap.String("model_type", res.ModelType))

	if err := os.MkdirAll(b.Config.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("failed to create output directory: %w", err)
	}

	log.Debug("constructing model", zap.Uint64("seed", res.Seed))
	model, err := b.newModel(res.ModelType, tensor.NewRand(res.Seed))
	if err != nil {
		return Result{}, fmt.Errorf("failed to construct %s: %w", res.ModelType, err)
	}
	stateDict := model.StateDict()
	res.Parameters = nn.CountParameters(stateDict)
	log.Info("model constructed", zap.Int("parameters", res.Parameters), zap.Int("tensors", len(stateDict)))

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	header, err := serialization.NewHeader(res.ModelType, profile.checkpointRecord())
	if err != nil {
		return Result{}, fmt.Errorf("failed to build checkpoint header: %w", err)
	}
	header.CreatedAt = b.clock().UTC()
	header.Seed = res.Seed
	res.CheckpointID = header.CheckpointID

	if err := writeCheckpoint(res.CheckpointPath, stateDict, header); err != nil {
		return Result{}, err
	}
	info, err := os.Stat(res.CheckpointPath)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat checkpoint: %w", err)
	}
	res.CheckpointBytes = info.Size()
	log.Info("checkpoint written",
		zap.String("path", res.CheckpointPath),
		zap.Int64("bytes", res.CheckpointBytes),
		zap.String("checkpoint_id", res.CheckpointID))

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if err := writeJSON(res.MetadataPath, profile.metadataRecord()); err != nil {
		return Result{}, err
	}
	log.Info("metadata written", zap.String("path", res.MetadataPath))

	return res, nil
}

func writeCheckpoint(path string, stateDict map[string]*tensor.Tensor, header serialization.Header) (err error) {
	w, err := serialization.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close checkpoint: %w", cerr)
		}
	}()
	if err := w.Write(stateDict, header); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}

// writeJSON writes v indented by two spaces, keeping <, > and & literal.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Run is the top-level guard around Build. It prints the profile banner and
// summary to Out and reports success. Errors and panics are logged, never
// propagated.
func (b *Builder) Run(ctx context.Context, profile Profile) (ok bool) {
	log := b.Logger.With(zap.String("profile", profile.String()))
	defer func() {
		if r := recover(); r != nil {
			log.Error("artifact build panicked", zap.Any("panic", r), zap.Stack("stack"))
			ok = false
		}
	}()

	out := b.Out
	if out == nil {
		out = io.Discard
	}
	if err := profile.banner(out); err != nil {
		log.Warn("failed to print banner", zap.Error(err))
	}

	res, err := b.Build(ctx, profile)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Warn("artifact build interrupted", zap.Error(err))
		} else {
			log.Error("failed to create model", zap.String("model_type", profile.ModelType()), zap.Error(err))
		}
		return false
	}

	if err := profile.summary(out, res); err != nil {
		log.Warn("failed to print summary", zap.Error(err))
	}
	return true
}
