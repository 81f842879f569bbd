package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// lockStaleAge is how old an abandoned lock file may be before another
	// process is allowed to take it over.
	lockStaleAge = 5 * time.Minute

	lockPollInterval = 100 * time.Millisecond
)

// acquireLock takes a per-environment advisory lock so two parallel workers
// cannot run the refresh path for the same environment at once. Returns a
// release function.
func acquireLock(dir, environment string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf(".refresh.%s.lock", environment))
	token := fmt.Sprintf("%d.%d\n", os.Getpid(), time.Now().UnixNano())
	deadline := time.Now().Add(timeout)

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			f.WriteString(token)
			f.Close()
			release := func() {
				// The lock may have been stale-reaped and re-acquired by
				// another worker; remove it only while it still carries
				// this holder's token.
				if data, err := os.ReadFile(path); err == nil && string(data) == token {
					os.Remove(path)
				}
			}
			return release, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lock file %s: %w", path, err)
		}

		// Take over locks abandoned by a crashed refresh.
		if info, statErr := os.Stat(path); statErr == nil && time.Since(info.ModTime()) > lockStaleAge {
			os.Remove(path)
			continue
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timed out waiting for refresh lock on environment %q", environment)
		}
		time.Sleep(lockPollInterval)
	}
}
