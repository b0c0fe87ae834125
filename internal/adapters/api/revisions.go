package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/just-nibble/service-miner/internal/core/domain/entities"
	"github.com/sirupsen/logrus"
)

type ContentFetcher interface {
	GetFileContent(ctx context.Context, owner, name, path, ref string) ([]byte, error)
}

// RevisionCache stores downloaded file revisions under <dir>/<sha>/<path>
// and serves later requests from disk.
type RevisionCache struct {
	dir     string
	fetcher ContentFetcher
	log     logrus.FieldLogger
}

func NewRevisionCache(dir string, fetcher ContentFetcher, log logrus.FieldLogger) *RevisionCache {
	return &RevisionCache{dir: dir, fetcher: fetcher, log: log}
}

// Fetch returns the local path of path at revision sha, downloading it on
// first use.
func (c *RevisionCache) Fetch(ctx context.Context, repo *entities.Repository, sha, path string) (string, error) {
	root := filepath.Join(c.dir, sha)
	local := filepath.Join(root, filepath.FromSlash(path))
	if !strings.HasPrefix(local, root+string(filepath.Separator)) {
		return "", fmt.Errorf("revision path %q escapes cache", path)
	}

	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	data, err := c.fetcher.GetFileContent(ctx, repo.Owner, repo.Name, path, sha)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(local), 0o755); err != nil {
		return "", fmt.Errorf("create revision dir: %w", err)
	}
	if err := os.WriteFile(local, data, 0o644); err != nil {
		return "", fmt.Errorf("write revision %s@%s: %w", path, sha, err)
	}

	c.log.WithFields(logrus.Fields{"repository": repo.FullName(), "sha": sha, "path": path}).Debug("revision downloaded")
	return local, nil
}
