package common

// Environment variable keys
const (
	EnvConfigFile     = "CONFIG_FILE"
	EnvDataSource     = "DATA_SOURCE"
	EnvDataPath       = "DATA_PATH"
	EnvCatalogURL     = "CATALOG_URL"
	EnvCatalogStart   = "CATALOG_START"
	EnvCatalogEnd     = "CATALOG_END"
	EnvSyntheticCount = "SYNTHETIC_COUNT"
	EnvSyntheticSeed  = "SYNTHETIC_SEED"
	EnvSeqLength      = "SEQ_LENGTH"
	EnvHiddenSize     = "HIDDEN_SIZE"
	EnvNumLayers      = "NUM_LAYERS"
	EnvBatchSize      = "BATCH_SIZE"
	EnvLearningRate   = "LEARNING_RATE"
	EnvWeightDecay    = "WEIGHT_DECAY"
	EnvDropout        = "DROPOUT"
	EnvRecallTarget   = "RECALL_TARGET"
	EnvMaxEpochs      = "MAX_EPOCHS"
	EnvTrainSplit     = "TRAIN_SPLIT"
	EnvMetricsPort    = "METRICS_PORT"
	EnvRESTTimeout    = "REST_TIMEOUT"
)

// Data source selectors
const (
	SourceSynthetic = "synthetic"
	SourceCatalog   = "usgs"
)

// Configuration defaults
const (
	DefaultDataSource     = SourceSynthetic
	DefaultDataPath       = "data"
	DefaultCatalogURL     = "https://earthquake.usgs.gov"
	DefaultSyntheticCount = 10000
	DefaultSeqLength      = 10
	DefaultHiddenSize     = 128
	DefaultNumLayers      = 2
	DefaultBatchSize      = 64
	DefaultLearningRate   = 0.001
	DefaultWeightDecay    = 1e-5
	DefaultDropout        = 0.2
	DefaultRecallTarget   = 0.95
	DefaultMaxEpochs      = 100
	DefaultTrainSplit     = 0.8
)
