package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/shenikar/crowd_safety_engine/internal/metrics"
	"github.com/shenikar/crowd_safety_engine/internal/models"
)

// MinAnomalyValues - минимальная длина ряда для оценки аномалии
const MinAnomalyValues = 5

var (
	// ErrDisabled - адрес детектора не настроен
	ErrDisabled = errors.New("detector is not configured")
	// ErrUnavailable - детектор не ответил или ответил ошибкой
	ErrUnavailable = errors.New("detector unavailable")
)

// CrowdResult - ответ сервиса подсчета людей
type CrowdResult struct {
	Count int `json:"count"`
}

// FaceMatch - найденный в кадре человек из списка пропавших
type FaceMatch struct {
	FaceID int    `json:"face_id"`
	Name   string `json:"name"`
}

// FaceResult - ответ сервиса распознавания лиц
type FaceResult struct {
	NumFaces int         `json:"num_faces"`
	Flagged  []FaceMatch `json:"flagged_missing_persons"`
}

// AnomalyResult - ответ сервиса оценки аномалий во временном ряду
type AnomalyResult struct {
	IsLatestAnomaly bool      `json:"is_latest_anomaly"`
	AnomalyIndices  []int     `json:"anomaly_indices"`
	AnomalyScores   []float64 `json:"anomaly_scores"`
	LatestValue     float64   `json:"latest_value"`
}

// Client вызывает внешний сервис инференса. Каждый вызов ограничен таймаутом.
type Client struct {
	name    string
	baseURL string
	timeout time.Duration
	http    *http.Client
}

func NewClient(name, baseURL string, timeout time.Duration) *Client {
	return &Client{
		name:    name,
		baseURL: baseURL,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string {
	return c.name
}

// CountPeople отправляет кадр в сервис подсчета людей
func (c *Client) CountPeople(ctx context.Context, image []byte, filename string) (CrowdResult, error) {
	var result CrowdResult
	err := c.postImage(ctx, "/detect", image, filename, &result)
	return result, err
}

// Recognize отправляет кадр в сервис поиска пропавших
func (c *Client) Recognize(ctx context.Context, image []byte, filename string) (FaceResult, error) {
	var result FaceResult
	err := c.postImage(ctx, "/recognize", image, filename, &result)
	return result, err
}

// ScoreAnomaly оценивает последнее значение ряда (численность, плотность, показания датчика)
func (c *Client) ScoreAnomaly(ctx context.Context, values []float64) (AnomalyResult, error) {
	var result AnomalyResult
	if len(values) < MinAnomalyValues {
		return result, fmt.Errorf("at least %d values required: %w", MinAnomalyValues, models.ErrInvalidSignal)
	}
	body, err := json.Marshal(map[string][]float64{"data": values})
	if err != nil {
		return result, fmt.Errorf("failed to marshal anomaly request: %w", err)
	}
	err = c.do(ctx, "/detect", "application/json", body, &result)
	return result, err
}

func (c *Client) postImage(ctx context.Context, path string, image []byte, filename string, out any) error {
	if len(image) == 0 {
		return fmt.Errorf("empty image: %w", models.ErrInvalidSignal)
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return c.do(ctx, path, w.FormDataContentType(), buf.Bytes(), out)
}

func (c *Client) do(ctx context.Context, path, contentType string, body []byte, out any) (err error) {
	if c.baseURL == "" {
		return fmt.Errorf("%s: %w", c.name, ErrDisabled)
	}
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.DetectorCalls.WithLabelValues(c.name, status).Inc()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", c.name, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: %w: status %d: %s", c.name, ErrUnavailable, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: %w: malformed response: %v", c.name, ErrUnavailable, err)
	}
	return nil
}
