package catalog

// FinalModelConfig is the "model_config" block of the final checkpoint.
type FinalModelConfig struct {
	VocabSize         int `json:"vocab_size"`
	EmbeddingDim      int `json:"embedding_dim"`
	AttentionHeads    int `json:"attention_heads"`
	Layers            int `json:"layers"`
	MaxSequenceLength int `json:"max_sequence_length"`
}

// FinalPerformanceGains are fractional improvements (0.28 means 28%).
type FinalPerformanceGains struct {
	Average          float64 `json:"average"`
	BestCase         float64 `json:"best_case"`
	MatrixOperations float64 `json:"matrix_operations"`
	MemoryAccess     float64 `json:"memory_access"`
	LoopConstructs   float64 `json:"loop_constructs"`
}

// FinalTrainingStats is the "training_stats" block of the final checkpoint.
type FinalTrainingStats struct {
	EpochsTrained     int                   `json:"epochs_trained"`
	DatasetSize       int                   `json:"dataset_size"`
	FinalAccuracy     float64               `json:"final_accuracy"`
	OptimizationTypes []string              `json:"optimization_types"`
	PerformanceGains  FinalPerformanceGains `json:"performance_gains"`
	ModelConfig       FinalModelConfig      `json:"model_config"`
}

// FinalCheckpointRecord is stored in the final checkpoint next to the weights.
type FinalCheckpointRecord struct {
	ModelConfig        FinalModelConfig   `json:"model_config"`
	TrainingStats      FinalTrainingStats `json:"training_stats"`
	Version            string             `json:"version"`
	Description        string             `json:"description"`
	Capabilities       []string           `json:"capabilities"`
	SupportedLanguages []string           `json:"supported_languages"`
	Architectures      []string           `json:"architectures"`
}

// FinalCheckpoint returns the record stored in aletheia_final.ckpt.
func FinalCheckpoint() FinalCheckpointRecord {
	cfg := FinalModelConfig{
		VocabSize:         5000,
		EmbeddingDim:      256,
		AttentionHeads:    8,
		Layers:            2,
		MaxSequenceLength: 512,
	}
	return FinalCheckpointRecord{
		ModelConfig: cfg,
		TrainingStats: FinalTrainingStats{
			EpochsTrained:     15,
			DatasetSize:       2005,
			FinalAccuracy:     0.89,
			OptimizationTypes: OptimizationTypes(),
			PerformanceGains: FinalPerformanceGains{
				Average:          0.28,
				BestCase:         0.45,
				MatrixOperations: 0.35,
				MemoryAccess:     0.25,
				LoopConstructs:   0.32,
			},
			ModelConfig: cfg,
		},
		Version:     "final-1.0-enhanced",
		Description: "ALETHEIA Final AI Model - GCC 100% + 20-40% Performance Gains",
		Capabilities: []string{
			"Code optimization suggestions",
			"Confidence scoring",
			"Performance prediction",
			"Multi-target hints",
			"GCC compatibility validation",
		},
		SupportedLanguages: supportedLanguages(),
		Architectures:      targetArchitectures(),
	}
}

// FinalModelInfo identifies the final model in its sidecar.
type FinalModelInfo struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	Description  string `json:"description"`
	Created      string `json:"created"`
	Architecture string `json:"architecture"`
}

// FinalCapabilities are the feature flags of the final model.
type FinalCapabilities struct {
	CodeAnalysis            bool `json:"code_analysis"`
	OptimizationSuggestions bool `json:"optimization_suggestions"`
	ConfidenceScoring       bool `json:"confidence_scoring"`
	PerformancePrediction   bool `json:"performance_prediction"`
	MultiTargetSupport      bool `json:"multi_target_support"`
	GCCCompatibility        bool `json:"gcc_compatibility"`
}

// FinalPerformanceMetrics are the reported evaluation figures.
type FinalPerformanceMetrics struct {
	Accuracy               float64 `json:"accuracy"`
	Precision              float64 `json:"precision"`
	Recall                 float64 `json:"recall"`
	F1Score                float64 `json:"f1_score"`
	PerformanceImprovement string  `json:"performance_improvement"`
}

// FinalTechnicalSpecs summarizes the final model's shape.
type FinalTechnicalSpecs struct {
	ModelSize          string `json:"model_size"`
	VocabularySize     int    `json:"vocabulary_size"`
	MaxSequenceLength  int    `json:"max_sequence_length"`
	EmbeddingDimension int    `json:"embedding_dimension"`
	AttentionHeads     int    `json:"attention_heads"`
	Layers             int    `json:"layers"`
}

// UsageExample is a sample snippet with its suggested optimization.
type UsageExample struct {
	Code         string  `json:"code"`
	Optimization string  `json:"optimization"`
	Confidence   float64 `json:"confidence"`
	ExpectedGain string  `json:"expected_gain"`
}

// FinalMetadataRecord is the aletheia_final_metadata.json sidecar.
type FinalMetadataRecord struct {
	ModelInfo          FinalModelInfo          `json:"model_info"`
	Capabilities       FinalCapabilities       `json:"capabilities"`
	PerformanceMetrics FinalPerformanceMetrics `json:"performance_metrics"`
	OptimizationTypes  OptimizationDetails     `json:"optimization_types"`
	TechnicalSpecs     FinalTechnicalSpecs     `json:"technical_specs"`
	UsageExamples      []UsageExample          `json:"usage_examples"`
}

// FinalMetadata returns the final model sidecar.
func FinalMetadata() FinalMetadataRecord {
	return FinalMetadataRecord{
		ModelInfo: FinalModelInfo{
			Name:         "ALETHEIA Final AI",
			Version:      "1.0.0",
			Description:  "Revolutionary AI-powered C compiler optimization model",
			Created:      "2024",
			Architecture: "Transformer-based with Multi-head Attention",
		},
		Capabilities: FinalCapabilities{
			CodeAnalysis:            true,
			OptimizationSuggestions: true,
			ConfidenceScoring:       true,
			PerformancePrediction:   true,
			MultiTargetSupport:      true,
			GCCCompatibility:        true,
		},
		PerformanceMetrics: FinalPerformanceMetrics{
			Accuracy:               0.89,
			Precision:              0.87,
			Recall:                 0.88,
			F1Score:                0.875,
			PerformanceImprovement: "+28%",
		},
		OptimizationTypes: OptimizationDetails{
			LoopOptimization: OptimizationDetail{
				Description: "Loop unrolling, vectorization, cache blocking",
				TypicalGain: "25-35%",
			},
			MemoryAccess: OptimizationDetail{
				Description: "Cache optimization, prefetching, alignment",
				TypicalGain: "20-30%",
			},
			FunctionInlining: OptimizationDetail{
				Description: "Function call optimization, constant propagation",
				TypicalGain: "15-25%",
			},
			BranchOptimization: OptimizationDetail{
				Description: "Branch prediction, conditional move",
				TypicalGain: "10-20%",
			},
		},
		TechnicalSpecs: FinalTechnicalSpecs{
			ModelSize:          "~50MB",
			VocabularySize:     5000,
			MaxSequenceLength:  512,
			EmbeddingDimension: 256,
			AttentionHeads:     8,
			Layers:             2,
		},
		UsageExamples: []UsageExample{
			{
				Code:         "for(int i=0; i<n; i++) sum += arr[i];",
				Optimization: LoopOptimization,
				Confidence:   0.92,
				ExpectedGain: "+32%",
			},
			{
				Code:         "memcpy(dest, src, size);",
				Optimization: MemoryAccess,
				Confidence:   0.88,
				ExpectedGain: "+25%",
			},
		},
	}
}
