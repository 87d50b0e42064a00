package health

import (
	"context"
	"fmt"
	"net/http"
)

// Имена проверяемых подсистем
const (
	SubsystemCrowdDetector      = "crowd-detector"
	SubsystemFaceMatcher        = "face-matcher"
	SubsystemAnomalyDetector    = "anomaly-detector"
	SubsystemNavigationProvider = "navigation-provider"
	SubsystemStorageProvider    = "storage-provider"
	SubsystemWebhookQueue       = "webhook-queue"
)

// Probe - ограниченная по времени проверка внешней подсистемы
type Probe interface {
	Name() string
	Check(ctx context.Context) error
}

// HTTPProbe считает подсистему доступной, если GET по url отвечает кодом ниже 500
type HTTPProbe struct {
	name   string
	url    string
	client *http.Client
}

func NewHTTPProbe(name, url string, client *http.Client) *HTTPProbe {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProbe{name: name, url: url, client: client}
}

func (p *HTTPProbe) Name() string {
	return p.name
}

func (p *HTTPProbe) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", p.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s responded with status %d", p.url, resp.StatusCode)
	}
	return nil
}

// PingProbe оборачивает Ping клиента базы данных или очереди
type PingProbe struct {
	name string
	ping func(ctx context.Context) error
}

func NewPingProbe(name string, ping func(ctx context.Context) error) *PingProbe {
	return &PingProbe{name: name, ping: ping}
}

func (p *PingProbe) Name() string {
	return p.name
}

func (p *PingProbe) Check(ctx context.Context) error {
	return p.ping(ctx)
}
