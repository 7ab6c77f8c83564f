// Package artifact builds ALETHEIA model artifacts: a checkpoint holding the
// network weights and its checkpoint record, plus a JSON metadata sidecar.
package artifact

import (
	"fmt"
	"io"

	"github.com/aletheia-ml/aletheia/internal/advisor"
	"github.com/aletheia-ml/aletheia/internal/catalog"
	"github.com/aletheia-ml/aletheia/internal/config"
	"github.com/aletheia-ml/aletheia/internal/report"
)

// Profile selects which artifact to build.
type Profile string

// Known profiles.
const (
	ProfileFinal Profile = "final"
	ProfileReal  Profile = "real"
)

// Profiles returns every profile in build order.
func Profiles() []Profile {
	return []Profile{ProfileFinal, ProfileReal}
}

// ParseProfile converts a profile name.
func ParseProfile(s string) (Profile, error) {
	switch p := Profile(s); p {
	case ProfileFinal, ProfileReal:
		return p, nil
	default:
		return "", fmt.Errorf("unknown profile %q (valid: final, real)", s)
	}
}

// String returns the profile name.
func (p Profile) String() string {
	return string(p)
}

// ModelType returns the architecture the profile builds.
func (p Profile) ModelType() string {
	if p == ProfileReal {
		return advisor.RealModelType
	}
	return advisor.FinalModelType
}

// Files returns the output file names configured for the profile.
func (p Profile) Files(cfg *config.Config) config.ProfileFiles {
	if p == ProfileReal {
		return cfg.Profiles.Real
	}
	return cfg.Profiles.Final
}

// checkpointRecord returns the catalog record stored in the checkpoint.
func (p Profile) checkpointRecord() any {
	if p == ProfileReal {
		return catalog.RealCheckpoint()
	}
	return catalog.FinalCheckpoint()
}

// metadataRecord returns the catalog record written to the sidecar.
func (p Profile) metadataRecord() any {
	if p == ProfileReal {
		return catalog.RealMetadata()
	}
	return catalog.FinalMetadata()
}

func (p Profile) banner(w io.Writer) error {
	if p == ProfileReal {
		return report.RealBanner(w)
	}
	return report.FinalBanner(w)
}

func (p Profile) summary(w io.Writer, res Result) error {
	a := report.Artifact{
		CheckpointPath:  res.CheckpointPath,
		MetadataPath:    res.MetadataPath,
		CheckpointBytes: res.CheckpointBytes,
	}
	if p == ProfileReal {
		return report.RealSummary(w, a)
	}
	return report.FinalSummary(w, a)
}
