package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aletheia-ml/aletheia/internal/advisor"
	"github.com/aletheia-ml/aletheia/internal/nn"
	"github.com/aletheia-ml/aletheia/internal/report"
	"github.com/aletheia-ml/aletheia/internal/serialization"
	"github.com/aletheia-ml/aletheia/internal/tensor"
)

func (a *app) inspectCmd() *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "inspect PATH",
		Short: "Describe a checkpoint and reload its weights",
		Long: `Reads a checkpoint, prints its header and record keys, and loads the
weights into a fresh model of the recorded type. With --verify the tensor
data checksum is recomputed first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := inspectCheckpoint(args[0], verify)
			if err != nil {
				a.logger.Error("failed to inspect checkpoint", zap.String("path", args[0]), zap.Error(err))
				return err
			}
			return report.Inspection(a.stdout, info)
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "recompute and check the data checksum")
	return cmd
}

func inspectCheckpoint(path string, verify bool) (report.CheckpointInfo, error) {
	r, err := serialization.OpenWithOptions(path, serialization.ReaderOptions{
		SkipChecksumValidation: !verify,
		ValidationLevel:        serialization.ValidationStrict,
	})
	if err != nil {
		return report.CheckpointInfo{}, err
	}
	defer r.Close()

	h := r.Header()
	info := report.CheckpointInfo{
		Path:          path,
		ModelType:     h.ModelType,
		CheckpointID:  h.CheckpointID,
		FormatVersion: h.FormatVersion,
		WriterVersion: h.WriterVersion,
		CreatedAt:     h.CreatedAt,
		Seed:          h.Seed,
		Tensors:       len(h.Tensors),
		DataBytes:     r.DataSize(),
		Verified:      verify,
	}
	sum := r.Checksum()
	info.Checksum = hex.EncodeToString(sum[:])

	if r.HasPayload() {
		if info.PayloadKeys, err = h.PayloadKeys(); err != nil {
			return report.CheckpointInfo{}, fmt.Errorf("failed to read checkpoint record: %w", err)
		}
	}

	sd, err := r.StateDict()
	if err != nil {
		return report.CheckpointInfo{}, err
	}
	info.Parameters = nn.CountParameters(sd)

	model, err := advisor.New(h.ModelType, tensor.NewRand(h.Seed))
	if err != nil {
		return report.CheckpointInfo{}, err
	}
	if err := model.LoadStateDict(sd); err != nil {
		return report.CheckpointInfo{}, fmt.Errorf("failed to reload weights into %s: %w", h.ModelType, err)
	}
	info.Reloaded = true
	return info, nil
}
