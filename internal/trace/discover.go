package trace

import (
	"context"
	"io/fs"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/sirupsen/logrus"

	"github.com/ensigniasec/centerband/internal/config"
)

// Discover walks root and returns every JSON or YAML file under it, sorted.
func Discover(ctx context.Context, root string) ([]string, error) {
	expanded, err := config.ExpandTilde(root)
	if err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		found []string
	)
	conf := fastwalk.DefaultConfig
	err = fastwalk.Walk(&conf, expanded, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logrus.Debugf("skipping %s: %v", path, err)
			return nil // Skip unreadable entries.
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			if path != expanded && len(d.Name()) > 0 && d.Name()[0] == '.' {
				return fs.SkipDir
			}
			return nil
		}
		if config.IsSupported(path) {
			mu.Lock()
			found = append(found, path)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}
