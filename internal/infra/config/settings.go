package config

import "time"

// LLMSettings configures the generation collaborator.
type LLMSettings struct {
	Model   string
	APIKey  string
	BaseURL string
}

// Settings is the explicit configuration struct passed into collaborator
// constructors. Nothing in the lifecycle controller reads ambient state.
type Settings struct {
	Home    string // base dir for setting.json and key files
	DataDir string // post store root

	LLM LLMSettings

	NewsBaseURL string // article-list endpoint (GDELT doc API compatible)
	NewsQuery   string // default candidate query

	ImageBaseURL string // photo search endpoint (Pexels compatible)
	ImageAPIKey  string
	AutoImage    bool

	AutomationBin string        // external browser-automation command
	ExecTimeout   time.Duration // per-attempt bound for the external save
	LoginHold     time.Duration // extra wait for manual login

	BodyMinChars int
	StderrLevel  string
}

// Default values. The news and image endpoints are public APIs the original
// workflow targets; both collaborators degrade gracefully when unreachable.
const (
	DefaultHome        = ".redraft"
	DefaultDataDir     = "data"
	DefaultLLMModel    = "deepseek/deepseek-v3-0324"
	DefaultLLMBaseURL  = "https://api.ppinfra.com/openai"
	DefaultNewsBaseURL = "https://api.gdeltproject.org/api/v2/doc/doc"
	DefaultNewsQuery   = "china"
	DefaultImageURL    = "https://api.pexels.com"
	DefaultExecTimeout = 5 * time.Minute
	DefaultBodyMin     = 1
)

// NewDefaultSettings returns settings with every default applied.
func NewDefaultSettings() *Settings {
	return &Settings{
		Home:         DefaultHome,
		DataDir:      DefaultDataDir,
		LLM:          LLMSettings{Model: DefaultLLMModel, BaseURL: DefaultLLMBaseURL},
		NewsBaseURL:  DefaultNewsBaseURL,
		NewsQuery:    DefaultNewsQuery,
		ImageBaseURL: DefaultImageURL,
		ExecTimeout:  DefaultExecTimeout,
		BodyMinChars: DefaultBodyMin,
		StderrLevel:  "info",
	}
}
