package catalog

// RealModelConfig is the "model_config" block of the real checkpoint.
type RealModelConfig struct {
	Architecture      string `json:"architecture"`
	VocabSize         int    `json:"vocab_size"`
	EmbeddingDim      int    `json:"embedding_dim"`
	HiddenSize        int    `json:"hidden_size"`
	AttentionHeads    int    `json:"attention_heads"`
	Layers            int    `json:"layers"`
	Bidirectional     bool   `json:"bidirectional"`
	MaxSequenceLength int    `json:"max_sequence_length"`
}

// RealPerformanceGains are fractional improvements per optimization type.
type RealPerformanceGains struct {
	Average            float64 `json:"average"`
	LoopOptimization   float64 `json:"loop_optimization"`
	MemoryAccess       float64 `json:"memory_access"`
	FunctionInlining   float64 `json:"function_inlining"`
	BranchOptimization float64 `json:"branch_optimization"`
}

// RealTrainingStats is the "training_stats" block of the real checkpoint.
type RealTrainingStats struct {
	Dataset           string               `json:"dataset"`
	Samples           int                  `json:"samples"`
	Epochs            int                  `json:"epochs"`
	FinalAccuracy     float64              `json:"final_accuracy"`
	TrainingTimeHours float64              `json:"training_time_hours"`
	DataSources       []string             `json:"data_sources"`
	PerformanceGains  RealPerformanceGains `json:"performance_gains"`
}

// RealCheckpointRecord is stored in the real checkpoint next to the weights.
type RealCheckpointRecord struct {
	ModelConfig        RealModelConfig   `json:"model_config"`
	TrainingStats      RealTrainingStats `json:"training_stats"`
	OptimizationTypes  []string          `json:"optimization_types"`
	Version            string            `json:"version"`
	Description        string            `json:"description"`
	Capabilities       []string          `json:"capabilities"`
	SupportedLanguages []string          `json:"supported_languages"`
	Architectures      []string          `json:"architectures"`
	TrainingData       string            `json:"training_data"`
	DataSize           int               `json:"data_size"`
	CreatedBy          string            `json:"created_by"`
}

const realDataset = "real_c_training_dataset.json"

func realTrainingStats() RealTrainingStats {
	return RealTrainingStats{
		Dataset:           realDataset,
		Samples:           2006,
		Epochs:            15,
		FinalAccuracy:     0.91,
		TrainingTimeHours: 2.5,
		DataSources:       []string{"GCC test suite", "AnghaBench patterns", "Real C projects"},
		PerformanceGains: RealPerformanceGains{
			Average:            0.31,
			LoopOptimization:   0.38,
			MemoryAccess:       0.29,
			FunctionInlining:   0.25,
			BranchOptimization: 0.22,
		},
	}
}

// RealCheckpoint returns the record stored in aletheia_real_final.ckpt.
func RealCheckpoint() RealCheckpointRecord {
	stats := realTrainingStats()
	return RealCheckpointRecord{
		ModelConfig: RealModelConfig{
			Architecture:      "RealCCodeOptimizer",
			VocabSize:         5000,
			EmbeddingDim:      256,
			HiddenSize:        512,
			AttentionHeads:    8,
			Layers:            2,
			Bidirectional:     true,
			MaxSequenceLength: 512,
		},
		TrainingStats:     stats,
		OptimizationTypes: OptimizationTypes(),
		Version:           "real-final-1.0",
		Description:       "ALETHEIA trained on real C code - GCC tests + AnghaBench patterns + Real project code",
		Capabilities: []string{
			"Real C code pattern recognition",
			"GCC-compatible optimization analysis",
			"Performance prediction on production code",
			"Continuous learning from compilation feedback",
			"Multi-target optimization with real code understanding",
			"Memory access pattern optimization",
			"Loop transformation suggestions",
			"Function inlining recommendations",
			"Branch prediction improvements",
		},
		SupportedLanguages: supportedLanguages(),
		Architectures:      targetArchitectures(),
		TrainingData:       realDataset,
		DataSize:           stats.Samples,
		CreatedBy:          "ALETHEIA Self-Learning Compiler System",
	}
}

// RealModelInfo identifies the real model in its sidecar.
type RealModelInfo struct {
	Name                   string   `json:"name"`
	Version                string   `json:"version"`
	Accuracy               float64  `json:"accuracy"`
	PerformanceImprovement string   `json:"performance_improvement"`
	DatasetSize            int      `json:"dataset_size"`
	TrainingSources        []string `json:"training_sources"`
}

// RealCapabilities are the feature flags of the real model.
type RealCapabilities struct {
	CodeAnalysis            bool `json:"code_analysis"`
	OptimizationSuggestions bool `json:"optimization_suggestions"`
	ConfidenceScoring       bool `json:"confidence_scoring"`
	PerformancePrediction   bool `json:"performance_prediction"`
	GCCCompatibility        bool `json:"gcc_compatibility"`
	RealCodePatterns        bool `json:"real_code_patterns"`
	ContinuousLearning      bool `json:"continuous_learning"`
	MultiTargetSupport      bool `json:"multi_target_support"`
}

// RealPerformanceMetrics are the reported evaluation figures.
type RealPerformanceMetrics struct {
	Accuracy           float64 `json:"accuracy"`
	Precision          float64 `json:"precision"`
	Recall             float64 `json:"recall"`
	F1Score            float64 `json:"f1_score"`
	AvgImprovement     string  `json:"avg_improvement"`
	LoopOptimization   string  `json:"loop_optimization"`
	MemoryAccess       string  `json:"memory_access"`
	FunctionInlining   string  `json:"function_inlining"`
	BranchOptimization string  `json:"branch_optimization"`
}

// RealTechnicalSpecs summarizes the real model's shape.
type RealTechnicalSpecs struct {
	ModelSize             string  `json:"model_size"`
	VocabularySize        int     `json:"vocabulary_size"`
	EmbeddingDimension    int     `json:"embedding_dimension"`
	AttentionHeads        int     `json:"attention_heads"`
	Layers                int     `json:"layers"`
	BidirectionalEncoding bool    `json:"bidirectional_encoding"`
	MaxSequenceLength     int     `json:"max_sequence_length"`
	DropoutRate           float64 `json:"dropout_rate"`
}

// TrainingInfo records the nominal training setup.
type TrainingInfo struct {
	Dataset      string `json:"dataset"`
	Samples      int    `json:"samples"`
	Epochs       int    `json:"epochs"`
	Optimizer    string `json:"optimizer"`
	LearningRate string `json:"learning_rate"`
	BatchSize    int    `json:"batch_size"`
}

// CodeExample is a named real-world code pattern with its suggestion.
type CodeExample struct {
	CodeType     string  `json:"code_type"`
	Description  string  `json:"description"`
	Optimization string  `json:"optimization"`
	Confidence   float64 `json:"confidence"`
	ExpectedGain string  `json:"expected_gain"`
}

// RealMetadataRecord is the aletheia_real_metadata.json sidecar.
type RealMetadataRecord struct {
	ModelInfo          RealModelInfo          `json:"model_info"`
	Capabilities       RealCapabilities       `json:"capabilities"`
	PerformanceMetrics RealPerformanceMetrics `json:"performance_metrics"`
	TechnicalSpecs     RealTechnicalSpecs     `json:"technical_specs"`
	TrainingInfo       TrainingInfo           `json:"training_info"`
	OptimizationTypes  OptimizationDetails    `json:"optimization_types"`
	RealCodeExamples   []CodeExample          `json:"real_code_examples"`
}

// RealMetadata returns the real model sidecar. Model info figures come from
// the checkpoint training stats.
func RealMetadata() RealMetadataRecord {
	stats := realTrainingStats()
	return RealMetadataRecord{
		ModelInfo: RealModelInfo{
			Name:                   "ALETHEIA Real C Code Model",
			Version:                "1.0.0",
			Accuracy:               stats.FinalAccuracy,
			PerformanceImprovement: "+31%",
			DatasetSize:            stats.Samples,
			TrainingSources:        stats.DataSources,
		},
		Capabilities: RealCapabilities{
			CodeAnalysis:            true,
			OptimizationSuggestions: true,
			ConfidenceScoring:       true,
			PerformancePrediction:   true,
			GCCCompatibility:        true,
			RealCodePatterns:        true,
			ContinuousLearning:      true,
			MultiTargetSupport:      true,
		},
		PerformanceMetrics: RealPerformanceMetrics{
			Accuracy:           0.91,
			Precision:          0.89,
			Recall:             0.90,
			F1Score:            0.895,
			AvgImprovement:     "+31%",
			LoopOptimization:   "+38%",
			MemoryAccess:       "+29%",
			FunctionInlining:   "+25%",
			BranchOptimization: "+22%",
		},
		TechnicalSpecs: RealTechnicalSpecs{
			ModelSize:             "~15MB",
			VocabularySize:        5000,
			EmbeddingDimension:    256,
			AttentionHeads:        8,
			Layers:                2,
			BidirectionalEncoding: true,
			MaxSequenceLength:     512,
			DropoutRate:           0.2,
		},
		TrainingInfo: TrainingInfo{
			Dataset:      stats.Dataset,
			Samples:      stats.Samples,
			Epochs:       stats.Epochs,
			Optimizer:    "AdamW",
			LearningRate: "1e-4",
			BatchSize:    16,
		},
		OptimizationTypes: OptimizationDetails{
			LoopOptimization: OptimizationDetail{
				Description: "Loop unrolling, cache blocking, SIMD vectorization",
				TypicalGain: "35-40%",
				Patterns:    []string{"for loops", "nested loops", "array traversals"},
			},
			MemoryAccess: OptimizationDetail{
				Description: "Cache optimization, prefetching, memory alignment",
				TypicalGain: "25-30%",
				Patterns:    []string{"pointer arithmetic", "array access", "memcpy patterns"},
			},
			FunctionInlining: OptimizationDetail{
				Description: "Function call overhead reduction, constant propagation",
				TypicalGain: "20-25%",
				Patterns:    []string{"small functions", "frequent calls", "simple operations"},
			},
			BranchOptimization: OptimizationDetail{
				Description: "Branch prediction, conditional move, code layout",
				TypicalGain: "15-25%",
				Patterns:    []string{"if-else chains", "switch statements", "conditional logic"},
			},
		},
		RealCodeExamples: []CodeExample{
			{
				CodeType:     "Linux kernel pattern",
				Description:  "Bit manipulation and loop constructs",
				Optimization: LoopOptimization,
				Confidence:   0.93,
				ExpectedGain: "+38%",
			},
			{
				CodeType:     "OpenSSL crypto pattern",
				Description:  "Memory operations and pointer arithmetic",
				Optimization: MemoryAccess,
				Confidence:   0.89,
				ExpectedGain: "+31%",
			},
			{
				CodeType:     "FFmpeg multimedia pattern",
				Description:  "Complex conditional logic and data processing",
				Optimization: BranchOptimization,
				Confidence:   0.87,
				ExpectedGain: "+26%",
			},
		},
	}
}
