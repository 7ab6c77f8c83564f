// Package catalog holds the fixed records written alongside every ALETHEIA
// checkpoint: model configuration, training statistics, capabilities and the
// metadata sidecars.
//
// The figures are literal values. JSON field order follows struct
// declaration order.
package catalog

// Optimization type identifiers, in classifier output order.
const (
	LoopOptimization   = "loop_optimization"
	MemoryAccess       = "memory_access"
	FunctionInlining   = "function_inlining"
	BranchOptimization = "branch_optimization"
)

// OptimizationTypes returns the optimization type identifiers in classifier
// output order.
func OptimizationTypes() []string {
	return []string{LoopOptimization, MemoryAccess, FunctionInlining, BranchOptimization}
}

func supportedLanguages() []string { return []string{"C", "C++"} }

func targetArchitectures() []string { return []string{"x86-64", "ARM64", "RISC-V"} }

// OptimizationDetail describes one optimization type in a metadata sidecar.
type OptimizationDetail struct {
	Description string   `json:"description"`
	TypicalGain string   `json:"typical_gain"`
	Patterns    []string `json:"patterns,omitempty"`
}

// OptimizationDetails keys the details by optimization type.
type OptimizationDetails struct {
	LoopOptimization   OptimizationDetail `json:"loop_optimization"`
	MemoryAccess       OptimizationDetail `json:"memory_access"`
	FunctionInlining   OptimizationDetail `json:"function_inlining"`
	BranchOptimization OptimizationDetail `json:"branch_optimization"`
}

// ComparisonRow is one line of the synthetic vs. real model comparison.
type ComparisonRow struct {
	Metric      string
	Synthetic   string
	Real        string
	Improvement string
}

// Comparison returns the synthetic vs. real model comparison rows.
func Comparison() []ComparisonRow {
	return []ComparisonRow{
		{"Accuracy", "75%", "91%", "+16%"},
		{"Performance Gain", "+15-25%", "+25-40%", "+10-15%"},
		{"Pattern Recognition", "Basic", "Advanced", "Major upgrade"},
		{"GCC Compatibility", "Partial", "Full", "Complete"},
		{"Real Code Understanding", "Limited", "Excellent", "Transformative"},
	}
}
