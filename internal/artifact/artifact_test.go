package artifact

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/aletheia-ml/aletheia/internal/advisor"
	"github.com/aletheia-ml/aletheia/internal/catalog"
	"github.com/aletheia-ml/aletheia/internal/config"
	"github.com/aletheia-ml/aletheia/internal/serialization"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedTime = time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)

// smallModel builds scaled-down networks with the production layer layout.
func smallModel(modelType string, rng *rand.Rand) (advisor.Model, error) {
	switch modelType {
	case advisor.FinalModelType:
		cfg := advisor.DefaultTransformerConfig()
		cfg.VocabSize, cfg.EmbedDim, cfg.NumHeads, cfg.FFDim, cfg.MaxSeqLen = 40, 8, 2, 16, 12
		return advisor.NewTransformerAdvisor(cfg, rng)
	case advisor.RealModelType:
		cfg := advisor.DefaultRecurrentConfig()
		cfg.VocabSize, cfg.EmbedDim, cfg.HiddenSize, cfg.NumHeads, cfg.FeatureDim, cfg.MaxSeqLen = 40, 8, 4, 2, 8, 12
		return advisor.NewRecurrentAdvisor(cfg, rng)
	}
	return advisor.New(modelType, rng)
}

func newTestBuilder(t *testing.T, out *bytes.Buffer) (*Builder, *observer.ObservedLogs) {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "ai", "models")
	cfg.Seed = 1234

	core, logs := observer.New(zapcore.DebugLevel)
	b := NewBuilder(cfg, zap.New(core), out)
	b.clock = func() time.Time { return fixedTime }
	b.newModel = smallModel
	return b, logs
}

func TestParseProfile(t *testing.T) {
	for _, p := range Profiles() {
		got, err := ParseProfile(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParseProfile("synthetic")
	assert.ErrorContains(t, err, `unknown profile "synthetic"`)

	assert.Equal(t, advisor.FinalModelType, ProfileFinal.ModelType())
	assert.Equal(t, advisor.RealModelType, ProfileReal.ModelType())
}

func TestBuild_Final(t *testing.T) {
	b, logs := newTestBuilder(t, nil)

	res, err := b.Build(context.Background(), ProfileFinal)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(b.Config.OutputDir, "aletheia_final.ckpt"), res.CheckpointPath)
	assert.Equal(t, filepath.Join(b.Config.OutputDir, "aletheia_final_metadata.json"), res.MetadataPath)
	assert.Equal(t, uint64(1234), res.Seed)
	assert.Positive(t, res.Parameters)

	info, err := os.Stat(res.CheckpointPath)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), res.CheckpointBytes)

	r, err := serialization.Open(res.CheckpointPath)
	require.NoError(t, err)
	defer r.Close()

	h := r.Header()
	assert.Equal(t, advisor.FinalModelType, h.ModelType)
	assert.Equal(t, res.CheckpointID, h.CheckpointID)
	assert.Equal(t, uint64(1234), h.Seed)
	assert.True(t, fixedTime.Equal(h.CreatedAt))

	var rec catalog.FinalCheckpointRecord
	require.NoError(t, r.DecodePayload(&rec))
	if diff := cmp.Diff(catalog.FinalCheckpoint(), rec); diff != "" {
		t.Errorf("checkpoint record mismatch (-want +got):\n%s", diff)
	}

	sd, err := r.StateDict()
	require.NoError(t, err)
	fresh, err := smallModel(advisor.FinalModelType, rand.New(rand.NewPCG(9, 9)))
	require.NoError(t, err)
	require.NoError(t, fresh.LoadStateDict(sd))

	raw, err := os.ReadFile(res.MetadataPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"model_info\": {\n    \"name\": \"ALETHEIA Final AI\""))
	assert.Contains(t, string(raw), "for(int i=0; i<n; i++) sum += arr[i];")

	var md catalog.FinalMetadataRecord
	require.NoError(t, json.Unmarshal(raw, &md))
	if diff := cmp.Diff(catalog.FinalMetadata(), md); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1, logs.FilterMessage("checkpoint written").Len())
	assert.Equal(t, 1, logs.FilterMessage("metadata written").Len())
}

func TestBuild_Real(t *testing.T) {
	b, _ := newTestBuilder(t, nil)

	res, err := b.Build(context.Background(), ProfileReal)
	require.NoError(t, err)
	assert.Equal(t, "aletheia_real_final.ckpt", filepath.Base(res.CheckpointPath))
	assert.Equal(t, "aletheia_real_metadata.json", filepath.Base(res.MetadataPath))

	r, err := serialization.Open(res.CheckpointPath)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, advisor.RealModelType, r.Header().ModelType)
	assert.Contains(t, r.TensorNames(), "encoder.weight_hh_l1_reverse")

	keys, err := r.Header().PayloadKeys()
	require.NoError(t, err)
	assert.Equal(t, "model_config", keys[0])
	assert.Equal(t, "created_by", keys[len(keys)-1])
	assert.NotContains(t, keys, "model_state_dict")

	raw, err := os.ReadFile(res.MetadataPath)
	require.NoError(t, err)
	var md catalog.RealMetadataRecord
	require.NoError(t, json.Unmarshal(raw, &md))
	if diff := cmp.Diff(catalog.RealMetadata(), md); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_SameSeedSameWeights(t *testing.T) {
	checksum := func() [serialization.ChecksumSize]byte {
		b, _ := newTestBuilder(t, nil)
		res, err := b.Build(context.Background(), ProfileFinal)
		require.NoError(t, err)
		r, err := serialization.Open(res.CheckpointPath)
		require.NoError(t, err)
		defer r.Close()
		return r.Checksum()
	}
	assert.Equal(t, checksum(), checksum())
}

func TestBuild_RandomSeed(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	b.Config.Seed = 0
	b.seed = func() uint64 { return 77 }

	res, err := b.Build(context.Background(), ProfileFinal)
	require.NoError(t, err)
	assert.Equal(t, uint64(77), res.Seed)

	r, err := serialization.Open(res.CheckpointPath)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, uint64(77), r.Header().Seed)
}

func TestBuild_Errors(t *testing.T) {
	t.Run("canceled context", func(t *testing.T) {
		b, _ := newTestBuilder(t, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := b.Build(ctx, ProfileFinal)
		assert.ErrorIs(t, err, context.Canceled)
		_, statErr := os.Stat(filepath.Join(b.Config.OutputDir, "aletheia_final.ckpt"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("unknown profile", func(t *testing.T) {
		b, _ := newTestBuilder(t, nil)
		_, err := b.Build(context.Background(), Profile("bogus"))
		assert.ErrorContains(t, err, `unknown profile "bogus"`)
		_, statErr := os.Stat(b.Config.OutputDir)
		assert.True(t, os.IsNotExist(statErr), "nothing written")
	})

	t.Run("invalid config", func(t *testing.T) {
		b, _ := newTestBuilder(t, nil)
		b.Config.Logging.Level = "chatty"
		_, err := b.Build(context.Background(), ProfileFinal)
		assert.ErrorContains(t, err, "invalid config")
	})

	t.Run("output dir is a file", func(t *testing.T) {
		b, _ := newTestBuilder(t, nil)
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
		b.Config.OutputDir = filepath.Join(blocker, "models")
		_, err := b.Build(context.Background(), ProfileReal)
		assert.ErrorContains(t, err, "failed to create output directory")
	})
}

func TestRun_Success(t *testing.T) {
	var out bytes.Buffer
	b, _ := newTestBuilder(t, &out)

	require.True(t, b.Run(context.Background(), ProfileFinal))
	s := out.String()
	assert.True(t, strings.HasPrefix(s, "ALETHEIA Final AI Model Creation\n"))
	assert.Contains(t, s, "Model file: "+filepath.Join(b.Config.OutputDir, "aletheia_final.ckpt"))
	assert.True(t, strings.HasSuffix(s, "ALETHEIA Final AI Model is ready for production!\n"))

	out.Reset()
	require.True(t, b.Run(context.Background(), ProfileReal))
	assert.Contains(t, out.String(), "SUCCESS: ALETHEIA Real C Code Model Created!")
	assert.Contains(t, out.String(), "Model size: ")
}

func TestRun_RecoversPanic(t *testing.T) {
	var out bytes.Buffer
	b, logs := newTestBuilder(t, &out)
	b.newModel = func(string, *rand.Rand) (advisor.Model, error) {
		panic("embed_dim must be divisible by num_heads")
	}

	assert.False(t, b.Run(context.Background(), ProfileFinal))
	entries := logs.FilterMessage("artifact build panicked").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.NotContains(t, out.String(), "SUCCESS")
}

func TestRun_LogsFailure(t *testing.T) {
	b, logs := newTestBuilder(t, nil)
	b.Config.Profiles.Final.Checkpoint = ""

	assert.False(t, b.Run(context.Background(), ProfileFinal))
	entries := logs.FilterMessage("failed to create model").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "checkpoint and metadata file names are required")
}
