package cfg

import (
	"cmp"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Inputs and state
	SourcesFile string `long:"sources-file" env:"SOURCES_FILE" default:"./sources.yml" description:"YAML or TOML file describing tracked sources"`
	DBPath      string `long:"db-path" env:"DB_PATH" default:"./data/store.db" description:"SQLite database holding tracked entries"`

	// Output locations
	ContentDir string `long:"content-dir" env:"CONTENT_DIR" default:"./dist/repo" description:"Directory receiving markdown changelogs"`
	PublicDir  string `long:"public-dir" env:"PUBLIC_DIR" default:"./dist/public" description:"Directory receiving HTML pages and feeds"`
	BaseUrl    string `long:"base-url" env:"BASE_URL" default:"http://localhost:8080" description:"Public base URL of the generated site"`
	SiteTitle  string `long:"site-title" env:"SITE_TITLE" default:"List Comb" description:"Site title used in page titles"`

	// Run selection
	Sources []string `long:"source" description:"Rebuild only this source identifier (repeatable)"`
	Force   bool     `long:"force" description:"Ignore the last checked timestamp"`
	Limit   int      `long:"limit" description:"Maximum number of files to rebuild (0 means no limit)"`

	// Build switches
	SkipMarkdown  bool   `long:"skip-markdown" description:"Do not write markdown changelogs"`
	SkipHtml      bool   `long:"skip-html" description:"Do not write HTML pages and feeds"`
	CleanMarkdown bool   `long:"clean-markdown" description:"Remove previously generated markdown before building"`
	CleanHtml     bool   `long:"clean-html" description:"Remove previously generated HTML before building"`
	Push          bool   `long:"push" description:"Publish the markdown directory to its git remote"`
	RepoURL       string `long:"repo-url" env:"DIST_REPO_URL" description:"Git remote of the markdown directory"`

	// Collaborators
	EnrichWorkers int    `long:"enrich-workers" env:"ENRICH_WORKERS" default:"5" description:"Number of concurrent enrichment calls per file"`
	UserAgent     string `long:"user-agent" env:"USER_AGENT" default:"List Comb/1.0" description:"User agent string for HTTP requests"`
	GitHubToken   string `long:"github-token" env:"GITHUB_TOKEN" description:"GitHub token enabling star count enrichment"`

	// Status server
	Serve        bool   `long:"serve" description:"Serve the public directory after building"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses the process arguments and environment.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. A help request yields (nil, nil).
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.EnrichWorkers < 1 {
		raw.EnrichWorkers = 1
	}
	if raw.Limit < 0 {
		return nil, fmt.Errorf("limit must be non-negative")
	}

	return &Cfg{
		SourcesFile:   raw.SourcesFile,
		DBPath:        raw.DBPath,
		ContentDir:    raw.ContentDir,
		PublicDir:     raw.PublicDir,
		BaseUrl:       raw.BaseUrl,
		SiteTitle:     raw.SiteTitle,
		Sources:       raw.Sources,
		Force:         raw.Force,
		Limit:         raw.Limit,
		SkipMarkdown:  raw.SkipMarkdown,
		SkipHtml:      raw.SkipHtml,
		CleanMarkdown: raw.CleanMarkdown,
		CleanHtml:     raw.CleanHtml,
		Push:          raw.Push,
		RepoURL:       raw.RepoURL,
		EnrichWorkers: raw.EnrichWorkers,
		UserAgent:     raw.UserAgent,
		GitHubToken:   raw.GitHubToken,
		Serve:         raw.Serve,
		Port:          raw.Port,
		APIAccessKey:  raw.APIAccessKey,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}, nil
}
