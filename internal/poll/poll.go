// Package poll runs sync cycles on an interval. The config file is
// watched between cycles so interval and mode changes apply without a
// restart; an optional rotating log file keeps long-running polls from
// filling the disk.
package poll

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures a poll loop.
type Options struct {
	// Interval between cycle starts. Must be positive.
	Interval time.Duration

	// RunOnce executes one sync cycle. Errors are logged, not fatal:
	// a transient provider outage must not kill a long-running poll.
	RunOnce func(ctx context.Context) error

	// ConfigPath, when set, is watched for writes; OnConfigChange fires
	// debounced between cycles.
	ConfigPath     string
	OnConfigChange func()

	// Reload returns the current interval, letting a config change
	// adjust the cadence without restarting the loop.
	Reload func() time.Duration
}

// SetupLogFile routes logrus output to a size-rotated file. Returns a
// closer for the rotation handle.
func SetupLogFile(path string) func() error {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	log.SetOutput(w)
	return w.Close
}

// Run executes cycles until ctx is canceled. The first cycle runs
// immediately; later cycles wait out the interval.
func Run(ctx context.Context, opts Options) error {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	logger := log.WithField("component", "poll")

	var stopWatch func()
	configChanged := make(chan struct{}, 1)
	if opts.ConfigPath != "" {
		var err error
		stopWatch, err = watchConfig(opts.ConfigPath, configChanged)
		if err != nil {
			logger.WithError(err).Warn("config watch unavailable; changes apply on restart")
		}
	}
	if stopWatch != nil {
		defer stopWatch()
	}

	interval := opts.Interval
	for {
		start := time.Now()
		if err := opts.RunOnce(ctx); err != nil {
			logger.WithError(err).Error("cycle failed")
		}

		select {
		case <-configChanged:
			if opts.OnConfigChange != nil {
				opts.OnConfigChange()
			}
			if opts.Reload != nil {
				if next := opts.Reload(); next > 0 && next != interval {
					logger.WithFields(log.Fields{"old": interval, "new": next}).Info("poll interval changed")
					interval = next
				}
			}
		default:
		}

		wait := interval - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// watchConfig signals configChanged on writes to the config file. The
// parent directory is watched too so editor rename-and-replace saves are
// caught.
func watchConfig(path string, changed chan<- struct{}) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	var once sync.Once
	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				select {
				case changed <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Debug("config watch error")
			case <-done:
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(done)
			_ = watcher.Close()
		})
	}, nil
}
