package directory

import (
	"fmt"

	"github.com/SkylineCommunications/idpcheck/internal/config"
	"github.com/SkylineCommunications/idpcheck/internal/core"
)

// New builds the directory selected by the configuration.
func New(cfg config.Directory, fs core.FileSystem, logger core.Logger) (core.Directory, error) {
	switch cfg.Type {
	case config.DirectoryFile:
		logger.Debug("using file directory", "path", cfg.Path)
		return OpenFile(fs, cfg.Path)
	case config.DirectoryHTTP:
		logger.Debug("using http directory", "url", cfg.URL, "retries", cfg.Retries)
		return NewHTTP(cfg.URL, cfg.Token, cfg.Timeout, cfg.Retries, logger), nil
	default:
		return nil, fmt.Errorf("unknown directory type: %s", cfg.Type)
	}
}
