// Package config provides a configuration manager that loads and watches the dynamic configuration file
// of the web service. The file is JSON, or TOML when it has a .toml extension.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
)

// WildcardOrigin is the allowed origin entry matching any origin.
const WildcardOrigin = "*"

// Provider is an interface that defines methods to access configuration values.
type Provider interface {
	AllowsOrigin(origin string) bool
}

// Conf represents the configuration structure.
type Conf struct {
	AllowedOrigins []string `json:"allowedOrigins" toml:"allowedOrigins"`
}

// Manager is a struct that manages the configuration.
type Manager struct {
	config     Conf
	originSet  map[string]struct{}
	lock       sync.RWMutex
	configPath string

	log *slog.Logger
}

type options struct {
	Logger *slog.Logger
}

// Options represents an optional function to override Manager default values.
type Options func(*options)

// New creates a new configuration manager with the specified path.
//
// An empty path means there is no dynamic configuration: every origin is allowed and nothing is watched.
func New(path string, args ...Options) *Manager {
	opts := options{
		Logger: slog.Default(),
	}

	for _, opt := range args {
		opt(&opts)
	}

	return &Manager{
		configPath: path,
		log:        opts.Logger,
	}
}

// Load reads the configuration from the specified file and updates the internal state.
func (cm *Manager) Load() error {
	if cm.configPath == "" {
		return nil
	}

	file, err := os.Open(cm.configPath)
	if err != nil {
		return fmt.Errorf("opening config file: %w", err)
	}
	defer file.Close()

	newConfig, err := decode(file, filepath.Ext(cm.configPath))
	if err != nil {
		return err
	}

	originSet := make(map[string]struct{}, len(newConfig.AllowedOrigins))
	for _, o := range newConfig.AllowedOrigins {
		originSet[strings.TrimSuffix(strings.TrimSpace(o), "/")] = struct{}{}
	}

	cm.lock.Lock()
	cm.config = newConfig
	cm.originSet = originSet
	cm.lock.Unlock()

	cm.log.Info("Configuration loaded", "config", newConfig)
	return nil
}

func decode(r io.Reader, ext string) (c Conf, err error) {
	if strings.EqualFold(ext, ".toml") {
		if _, err := toml.NewDecoder(r).Decode(&c); err != nil {
			return Conf{}, fmt.Errorf("decoding config TOML: %w", err)
		}
		return c, nil
	}

	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return Conf{}, fmt.Errorf("decoding config JSON: %w", err)
	}
	return c, nil
}

// Watch starts watching the configuration file for changes.
//
// It returns two channels: one for configuration changes which result in a successful load and another for unrecoverable watcher errors.
// Without a configuration file, both channels stay open until ctx is done.
func (cm *Manager) Watch(ctx context.Context) (changes <-chan struct{}, errors <-chan error, err error) {
	changesCh := make(chan struct{}, 1)
	errorsCh := make(chan error, 1)

	if cm.configPath == "" {
		go func() {
			defer close(changesCh)
			defer close(errorsCh)
			<-ctx.Done()
		}()
		return changesCh, errorsCh, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create watcher: %v", err)
	}

	configDir, _ := filepath.Split(cm.configPath)
	if configDir == "" {
		configDir = "."
	}
	if err := watcher.Add(configDir); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("failed to add directory %s to watcher: %v", configDir, err)
	}

	cm.log.Info("Watching configuration directory", "dir", configDir)

	// Initial load of the configuration
	if err := cm.Load(); err != nil {
		cm.log.Warn("Error loading initial config", "err", err)
	}

	go func() {
		defer close(changesCh)
		defer close(errorsCh)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				cm.log.Info("Configuration watcher stopped")
				return
			case event, ok := <-watcher.Events:
				if !ok {
					errorsCh <- fmt.Errorf("watcher events channel closed unexpectedly")
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}

				if filepath.Clean(event.Name) != filepath.Clean(cm.configPath) {
					continue
				}

				cm.log.Debug("Configuration file changed. Reloading...")
				if err := cm.Load(); err != nil {
					cm.log.Warn("Error reloading config", "err", err)
					continue
				}

				select {
				case changesCh <- struct{}{}:
				default:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					errorsCh <- fmt.Errorf("watcher errors channel closed unexpectedly")
					return
				}
				cm.log.Warn("Watcher error", "err", err)
			}
		}
	}()

	return changesCh, errorsCh, nil
}

// AllowedOrigins returns the allowed origins from the configuration.
func (cm *Manager) AllowedOrigins() []string {
	cm.lock.RLock()
	defer cm.lock.RUnlock()
	return cm.config.AllowedOrigins
}

// AllowsOrigin reports whether cross-origin requests from origin are allowed.
// An empty allow list, or one containing WildcardOrigin, allows every origin.
func (cm *Manager) AllowsOrigin(origin string) bool {
	cm.lock.RLock()
	defer cm.lock.RUnlock()

	if len(cm.originSet) == 0 {
		return true
	}
	if _, ok := cm.originSet[WildcardOrigin]; ok {
		return true
	}
	_, ok := cm.originSet[origin]
	return ok
}
