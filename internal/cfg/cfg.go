package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"quakewatch/internal/common"
)

type Settings struct {
	DataSource     string
	DataPath       string
	CatalogURL     string
	CatalogStart   string
	CatalogEnd     string
	SyntheticCount int
	SyntheticSeed  int64
	SeqLength      int
	HiddenSize     int
	NumLayers      int
	BatchSize      int
	LearningRate   float64
	WeightDecay    float64
	Dropout        float64
	RecallTarget   float64
	MaxEpochs      int
	TrainSplit     float64
	MetricsPort    int
	RESTTimeout    time.Duration
}

type ConfigFile struct {
	Data struct {
		Source         string `yaml:"source"`
		Path           string `yaml:"path"`
		CatalogURL     string `yaml:"catalogURL"`
		CatalogStart   string `yaml:"catalogStart"`
		CatalogEnd     string `yaml:"catalogEnd"`
		SyntheticCount int    `yaml:"syntheticCount"`
		SyntheticSeed  int64  `yaml:"syntheticSeed"`
	} `yaml:"data"`

	Model struct {
		SeqLength  int     `yaml:"seqLength"`
		HiddenSize int     `yaml:"hiddenSize"`
		NumLayers  int     `yaml:"numLayers"`
		Dropout    float64 `yaml:"dropout"`
	} `yaml:"model"`

	Training struct {
		BatchSize    int     `yaml:"batchSize"`
		LearningRate float64 `yaml:"learningRate"`
		WeightDecay  float64 `yaml:"weightDecay"`
		RecallTarget float64 `yaml:"recallTarget"`
		MaxEpochs    int     `yaml:"maxEpochs"`
		TrainSplit   float64 `yaml:"trainSplit"`
	} `yaml:"training"`

	System struct {
		MetricsPort int    `yaml:"metricsPort"`
		RESTTimeout string `yaml:"restTimeout"`
	} `yaml:"system"`
}

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	restTimeout, err := time.ParseDuration(config.System.RESTTimeout)
	if err != nil {
		restTimeout = 30 * time.Second
	}

	settings := Settings{
		DataSource:     getEnvOrDefault(common.EnvDataSource, stringOr(config.Data.Source, common.DefaultDataSource)),
		DataPath:       getEnvOrDefault(common.EnvDataPath, stringOr(config.Data.Path, common.DefaultDataPath)),
		CatalogURL:     getEnvOrDefault(common.EnvCatalogURL, stringOr(config.Data.CatalogURL, common.DefaultCatalogURL)),
		CatalogStart:   getEnvOrDefault(common.EnvCatalogStart, config.Data.CatalogStart),
		CatalogEnd:     getEnvOrDefault(common.EnvCatalogEnd, config.Data.CatalogEnd),
		SyntheticCount: getIntFromEnvOrConfig(common.EnvSyntheticCount, config.Data.SyntheticCount, common.DefaultSyntheticCount),
		SyntheticSeed:  getInt64OrDefault(common.EnvSyntheticSeed, config.Data.SyntheticSeed),
		SeqLength:      getIntFromEnvOrConfig(common.EnvSeqLength, config.Model.SeqLength, common.DefaultSeqLength),
		HiddenSize:     getIntFromEnvOrConfig(common.EnvHiddenSize, config.Model.HiddenSize, common.DefaultHiddenSize),
		NumLayers:      getIntFromEnvOrConfig(common.EnvNumLayers, config.Model.NumLayers, common.DefaultNumLayers),
		BatchSize:      getIntFromEnvOrConfig(common.EnvBatchSize, config.Training.BatchSize, common.DefaultBatchSize),
		LearningRate:   getFloatFromEnvOrConfig(common.EnvLearningRate, config.Training.LearningRate, common.DefaultLearningRate),
		WeightDecay:    getFloatFromEnvOrConfig(common.EnvWeightDecay, config.Training.WeightDecay, common.DefaultWeightDecay),
		Dropout:        getFloatFromEnvOrConfig(common.EnvDropout, config.Model.Dropout, common.DefaultDropout),
		RecallTarget:   getFloatFromEnvOrConfig(common.EnvRecallTarget, config.Training.RecallTarget, common.DefaultRecallTarget),
		MaxEpochs:      getIntFromEnvOrConfig(common.EnvMaxEpochs, config.Training.MaxEpochs, common.DefaultMaxEpochs),
		TrainSplit:     getFloatFromEnvOrConfig(common.EnvTrainSplit, config.Training.TrainSplit, common.DefaultTrainSplit),
		MetricsPort:    getIntFromEnvOrConfig(common.EnvMetricsPort, config.System.MetricsPort, 0),
		RESTTimeout:    restTimeout,
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		DataSource:     getEnvOrDefault(common.EnvDataSource, common.DefaultDataSource),
		DataPath:       getEnvOrDefault(common.EnvDataPath, common.DefaultDataPath),
		CatalogURL:     getEnvOrDefault(common.EnvCatalogURL, common.DefaultCatalogURL),
		CatalogStart:   os.Getenv(common.EnvCatalogStart), // optional
		CatalogEnd:     os.Getenv(common.EnvCatalogEnd),   // optional
		SyntheticCount: getIntOrDefault(common.EnvSyntheticCount, common.DefaultSyntheticCount),
		SyntheticSeed:  getInt64OrDefault(common.EnvSyntheticSeed, 0),
		SeqLength:      getIntOrDefault(common.EnvSeqLength, common.DefaultSeqLength),
		HiddenSize:     getIntOrDefault(common.EnvHiddenSize, common.DefaultHiddenSize),
		NumLayers:      getIntOrDefault(common.EnvNumLayers, common.DefaultNumLayers),
		BatchSize:      getIntOrDefault(common.EnvBatchSize, common.DefaultBatchSize),
		LearningRate:   getFloatOrDefault(common.EnvLearningRate, common.DefaultLearningRate),
		WeightDecay:    getFloatOrDefault(common.EnvWeightDecay, common.DefaultWeightDecay),
		Dropout:        getFloatOrDefault(common.EnvDropout, common.DefaultDropout),
		RecallTarget:   getFloatOrDefault(common.EnvRecallTarget, common.DefaultRecallTarget),
		MaxEpochs:      getIntOrDefault(common.EnvMaxEpochs, common.DefaultMaxEpochs),
		TrainSplit:     getFloatOrDefault(common.EnvTrainSplit, common.DefaultTrainSplit),
		MetricsPort:    getIntOrDefault(common.EnvMetricsPort, 0),
		RESTTimeout:    getDurationOrDefault(common.EnvRESTTimeout, 30*time.Second),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func stringOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(settings *Settings) error {
	if settings.DataSource != common.SourceSynthetic && settings.DataSource != common.SourceCatalog {
		return fmt.Errorf("data source must be %q or %q, got %q", common.SourceSynthetic, common.SourceCatalog, settings.DataSource)
	}
	if settings.DataPath == "" {
		return fmt.Errorf("data path cannot be empty")
	}
	if settings.DataSource == common.SourceCatalog && settings.CatalogURL == "" {
		return fmt.Errorf("catalog URL cannot be empty for the %s source", common.SourceCatalog)
	}

	if settings.SeqLength < 2 || settings.SeqLength > 500 {
		return fmt.Errorf("sequence length must be between 2 and 500, got %d", settings.SeqLength)
	}
	if settings.HiddenSize <= 0 || settings.HiddenSize > 1024 {
		return fmt.Errorf("hidden size must be between 1 and 1024, got %d", settings.HiddenSize)
	}
	if settings.NumLayers <= 0 || settings.NumLayers > 8 {
		return fmt.Errorf("number of layers must be between 1 and 8, got %d", settings.NumLayers)
	}
	if settings.BatchSize <= 0 || settings.BatchSize > 4096 {
		return fmt.Errorf("batch size must be between 1 and 4096, got %d", settings.BatchSize)
	}
	if settings.SyntheticCount <= 0 {
		return fmt.Errorf("synthetic count must be positive, got %d", settings.SyntheticCount)
	}

	if settings.LearningRate <= 0 || settings.LearningRate > 1 {
		return fmt.Errorf("learning rate must be between 0 and 1, got %f", settings.LearningRate)
	}
	if settings.WeightDecay < 0 || settings.WeightDecay > 0.1 {
		return fmt.Errorf("weight decay must be between 0 and 0.1, got %f", settings.WeightDecay)
	}
	if settings.Dropout < 0 || settings.Dropout >= 1 {
		return fmt.Errorf("dropout must be in [0, 1), got %f", settings.Dropout)
	}
	if settings.RecallTarget <= 0 || settings.RecallTarget > 1 {
		return fmt.Errorf("recall target must be between 0 and 1, got %f", settings.RecallTarget)
	}
	if settings.MaxEpochs <= 0 || settings.MaxEpochs > 10000 {
		return fmt.Errorf("max epochs must be between 1 and 10000, got %d", settings.MaxEpochs)
	}
	if settings.TrainSplit <= 0 || settings.TrainSplit >= 1 {
		return fmt.Errorf("train split must be strictly between 0 and 1, got %f", settings.TrainSplit)
	}

	if settings.MetricsPort != 0 && (settings.MetricsPort < 1024 || settings.MetricsPort > 65535) {
		return fmt.Errorf("metrics port must be between 1024 and 65535, got %d", settings.MetricsPort)
	}
	if settings.RESTTimeout < time.Second || settings.RESTTimeout > 5*time.Minute {
		return fmt.Errorf("REST timeout must be between 1s and 5m, got %v", settings.RESTTimeout)
	}

	return nil
}
