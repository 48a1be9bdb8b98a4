package cfg

type Cfg struct {
	// Inputs and state
	SourcesFile string
	DBPath      string

	// Output locations
	ContentDir string
	PublicDir  string
	BaseUrl    string
	SiteTitle  string

	// Run selection
	Sources []string
	Force   bool
	Limit   int

	// Build switches
	SkipMarkdown  bool
	SkipHtml      bool
	CleanMarkdown bool
	CleanHtml     bool
	Push          bool
	RepoURL       string

	// Collaborators
	EnrichWorkers int
	UserAgent     string
	GitHubToken   string

	// Status server
	Serve        bool
	Port         string
	APIAccessKey string

	// Application metadata
	Debug   bool
	Version string
}

// BuildMarkdown reports whether durable markdown documents are written.
func (c *Cfg) BuildMarkdown() bool {
	return !c.SkipMarkdown
}

// BuildHtml reports whether HTML pages and feeds are written.
func (c *Cfg) BuildHtml() bool {
	return !c.SkipHtml
}
