package health

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ProbeFile - описание проверок в YAML
//
//	probes:
//	  - name: crowd-detector
//	    url: http://crowd-detector:9000/healthz
type ProbeFile struct {
	Probes []ProbeDefinition `yaml:"probes"`
}

type ProbeDefinition struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Loader читает файл проверок и перечитывает его при изменении
type Loader struct {
	path     string
	client   *http.Client
	logger   *logrus.Logger
	mu       sync.RWMutex
	onChange []func([]Probe)
}

// NewLoader создает загрузчик и проверяет, что файл читается
func NewLoader(path string, client *http.Client, logger *logrus.Logger) (*Loader, error) {
	l := &Loader{path: path, client: client, logger: logger}
	if _, err := l.Load(); err != nil {
		return nil, err
	}
	return l, nil
}

// OnChange регистрирует обработчик новой конфигурации проверок
func (l *Loader) OnChange(fn func([]Probe)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Load читает файл и строит HTTP-проверки
func (l *Loader) Load() ([]Probe, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read probes %s: %w", l.path, err)
	}
	var file ProbeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse probes %s: %w", l.path, err)
	}
	probes := make([]Probe, 0, len(file.Probes))
	for i, def := range file.Probes {
		if def.Name == "" || def.URL == "" {
			return nil, fmt.Errorf("probe #%d in %s: name and url are required", i, l.path)
		}
		probes = append(probes, NewHTTPProbe(def.Name, def.URL, l.client))
	}
	return probes, nil
}

// Reload перечитывает файл и уведомляет подписчиков
func (l *Loader) Reload() ([]Probe, error) {
	probes, err := l.Load()
	if err != nil {
		return nil, err
	}
	l.mu.RLock()
	callbacks := make([]func([]Probe), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.RUnlock()
	for _, fn := range callbacks {
		fn(probes)
	}
	return probes, nil
}

// Watch перечитывает файл при записи. stop останавливает наблюдение.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("probes watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("probes watcher add %s: %w", l.path, err)
	}

	log := l.logger.WithFields(logrus.Fields{
		"component": "health",
		"method":    "Watch",
		"path":      l.path,
	})
	done := make(chan struct{})
	var once sync.Once
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						// Остаемся на прежнем наборе проверок
						log.WithError(err).Warn("Failed to reload probes")
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("Probes watcher error")
			case <-done:
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }, nil
}
