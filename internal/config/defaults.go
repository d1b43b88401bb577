package config

const (
	defaultDocumentsDir = "~/.local/share/curator/documents"
	defaultStorePath    = "~/.local/share/curator/corpus.db"
	defaultLogDir       = "~/.local/share/curator/logs"

	defaultCurationBaseURL   = "https://curadoria-llm-curadoria.hf.space"
	defaultClassifyTimeout   = 60
	defaultExtractTimeout    = 120
	defaultApprovalFieldName = "approval"
	defaultFeedbackFieldName = "curator_feedback"

	defaultOverlapThreshold = 0.4
	defaultAuthorYearScore  = 0.9
	defaultMinTokenLength   = 3

	defaultBatchWorkers = 1

	defaultSearchBaseURL   = "https://api.openalex.org"
	defaultSearchPageLimit = 400

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DocumentsDir: defaultDocumentsDir,
			// ApprovedDir and RejectedDir default to partitions under
			// DocumentsDir during normalization.
			StorePath: defaultStorePath,
			LogDir:    defaultLogDir,
		},
		Curation: Curation{
			BaseURL:                defaultCurationBaseURL,
			ClassifyTimeoutSeconds: defaultClassifyTimeout,
			ExtractTimeoutSeconds:  defaultExtractTimeout,
			ApprovalField:          defaultApprovalFieldName,
			FeedbackField:          defaultFeedbackFieldName,
		},
		Correlate: Correlate{
			OverlapThreshold:   defaultOverlapThreshold,
			AuthorYearScore:    defaultAuthorYearScore,
			AuthorYearOverride: true,
			MinTokenLength:     defaultMinTokenLength,
		},
		Batch: Batch{
			Workers: defaultBatchWorkers,
		},
		Search: Search{
			BaseURL:   defaultSearchBaseURL,
			PageLimit: defaultSearchPageLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
