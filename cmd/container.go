package cmd

import (
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/compozy/autopush/internal/config"
	"github.com/compozy/autopush/internal/logging"
	"github.com/compozy/autopush/internal/orchestrator"
	"github.com/compozy/autopush/internal/repository"
	"github.com/compozy/autopush/internal/service"
)

// container holds all the dependencies for the application.
type container struct {
	cfg *config.Config

	fsRepo    repository.FileSystemRepository
	syncOrch  *orchestrator.SyncOrchestrator
	batchOrch *orchestrator.BatchOrchestrator
}

// newContainer loads configuration and wires the orchestrators.
func newContainer(configFile string) (*container, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}
	if debug || viper.GetBool("debug") {
		cfg.Debug = true
	}

	fsRepo := repository.FileSystemRepository(afero.NewOsFs())
	logs := logging.NewFactory(fsRepo, logging.FactoryOptions{
		Dir:      cfg.LogDir,
		MaxBytes: cfg.MaxLogBytes,
		Debug:    cfg.Debug,
	})
	syncOrch := orchestrator.NewSyncOrchestrator(
		fsRepo,
		repository.NewOpener(fsRepo),
		service.NewTCPProber(cfg.ProbeTimeout),
		service.NewGithubPermissionChecker(cfg.GithubToken),
		logs,
	)

	return &container{
		cfg:       cfg,
		fsRepo:    fsRepo,
		syncOrch:  syncOrch,
		batchOrch: orchestrator.NewBatchOrchestrator(syncOrch),
	}, nil
}

// loadContainer builds the container once flags are parsed.
func loadContainer() (*container, error) {
	return newContainer(cfgFile)
}

// syncOptions maps configuration onto per-run options.
func (c *container) syncOptions() orchestrator.SyncOptions {
	return orchestrator.SyncOptions{
		RemoteName:     c.cfg.RemoteName,
		Branch:         c.cfg.Branch,
		LogPath:        c.cfg.LogFile,
		SSHKeyPath:     c.cfg.SSHKeyPath,
		AuthorName:     c.cfg.AuthorName,
		AuthorEmail:    c.cfg.AuthorEmail,
		CommandTimeout: c.cfg.CommandTimeout,
		NetworkTimeout: c.cfg.NetworkTimeout,
		PushPending:    c.cfg.PushPending,
	}
}

// batchEntries turns the enabled repository records into batch entries.
func (c *container) batchEntries() []orchestrator.BatchEntry {
	repos := c.cfg.EnabledRepositories()
	entries := make([]orchestrator.BatchEntry, 0, len(repos))
	for _, repo := range repos {
		opts := c.syncOptions()
		opts.LogPath = ""
		opts.Branch = repo.Branch
		entries = append(entries, orchestrator.BatchEntry{
			Name: repo.DisplayName(),
			Request: orchestrator.SyncRequest{
				RepositoryPath: repo.Path,
				RemoteURL:      repo.Remote,
				Options:        opts,
			},
		})
	}
	return entries
}

// InitCommands initializes all commands with their dependencies
func InitCommands() error {
	rootCmd.AddCommand(
		NewSyncCmd(loadContainer),
		NewBatchCmd(loadContainer),
		newVersionCmd(),
	)
	return nil
}
