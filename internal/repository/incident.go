package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/crowd_safety_engine/internal/models"
)

// Закрытые инциденты не меняются, поэтому их можно кешировать надолго
const closedCacheTTL = 30 * time.Minute

const selectColumns = `
	id,
	kind,
	status,
	origin_type,
	origin_reference,
	latitude,
	longitude,
	place,
	location_unknown,
	location_refined,
	severity,
	details,
	attachments,
	outcome,
	history,
	created_at,
	updated_at,
	resolved_at
`

// IncidentRepository хранит снимки инцидентов в PostgreSQL.
// Закрытые инциденты дополнительно кешируются в Redis.
type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

// NewIncidentRepository создает репозиторий. redisClient может быть nil.
func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client) *IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
	}
}

// Save записывает последний снимок инцидента (upsert)
func (r *IncidentRepository) Save(ctx context.Context, incident *models.Incident) error {
	history, err := encodeHistory(incident.History)
	if err != nil {
		return err
	}
	attachments := incident.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	query := `
		INSERT INTO incidents (
			id, kind, status, origin_type, origin_reference,
			latitude, longitude, place, location_unknown, location_refined,
			severity, details, attachments, outcome, history,
			created_at, updated_at, resolved_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			place = EXCLUDED.place,
			location_unknown = EXCLUDED.location_unknown,
			location_refined = EXCLUDED.location_refined,
			severity = EXCLUDED.severity,
			attachments = EXCLUDED.attachments,
			outcome = EXCLUDED.outcome,
			history = EXCLUDED.history,
			updated_at = EXCLUDED.updated_at,
			resolved_at = EXCLUDED.resolved_at
		WHERE incidents.updated_at <= EXCLUDED.updated_at;
	`
	_, err = r.db.Exec(ctx, query,
		incident.ID,
		incident.Kind,
		incident.Status,
		incident.Origin.Type,
		incident.Origin.Reference,
		incident.Location.Latitude,
		incident.Location.Longitude,
		incident.Location.Place,
		incident.Location.Unknown,
		incident.LocationRefined,
		incident.Severity,
		incident.Details,
		attachments,
		incident.Outcome,
		history,
		incident.CreatedAt,
		incident.UpdatedAt,
		incident.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save incident: %w", err)
	}
	return nil
}

// Load возвращает инцидент по id, сначала проверяя кеш закрытых
func (r *IncidentRepository) Load(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	if cached, err := r.getFromCache(ctx, id); err == nil && cached != nil {
		return cached, nil
	}

	query := `SELECT ` + selectColumns + ` FROM incidents WHERE id = $1;`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load incident by id: %w", err)
	}

	if incident.Status.Terminal() {
		// Ошибка кеша не мешает ответу
		_ = r.setCache(ctx, incident)
	}
	return incident, nil
}

// Query возвращает инциденты по фильтру, новые первыми
func (r *IncidentRepository) Query(ctx context.Context, filter models.Filter) ([]*models.Incident, error) {
	where, args := buildWhere(filter)
	query := `SELECT ` + selectColumns + ` FROM incidents` + where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error query iteration: %w", err)
	}
	return incidents, nil
}

// LoadOpen возвращает все незакрытые инциденты для восстановления после сбоя
func (r *IncidentRepository) LoadOpen(ctx context.Context) ([]*models.Incident, error) {
	return r.Query(ctx, models.Filter{OpenOnly: true})
}

// buildWhere собирает условие выборки и аргументы запроса
func buildWhere(filter models.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.OpenOnly {
		args = append(args, []string{string(models.StatusResolved), string(models.StatusExpired)})
		conds = append(conds, "status <> ALL($"+strconv.Itoa(len(args))+")")
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, statuses)
		conds = append(conds, "status = ANY($"+strconv.Itoa(len(args))+")")
	}
	if filter.Kind != "" {
		args = append(args, string(filter.Kind))
		conds = append(conds, "kind = $"+strconv.Itoa(len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	var history []byte
	err := row.Scan(
		&incident.ID,
		&incident.Kind,
		&incident.Status,
		&incident.Origin.Type,
		&incident.Origin.Reference,
		&incident.Location.Latitude,
		&incident.Location.Longitude,
		&incident.Location.Place,
		&incident.Location.Unknown,
		&incident.LocationRefined,
		&incident.Severity,
		&incident.Details,
		&incident.Attachments,
		&incident.Outcome,
		&history,
		&incident.CreatedAt,
		&incident.UpdatedAt,
		&incident.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if incident.History, err = decodeHistory(history); err != nil {
		return nil, err
	}
	return incident, nil
}

// encodeHistory сериализует журнал переходов в JSONB. Пустой журнал пишется как [].
func encodeHistory(history []models.HistoryEntry) ([]byte, error) {
	if history == nil {
		history = []models.HistoryEntry{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal incident history: %w", err)
	}
	return data, nil
}

func decodeHistory(data []byte) ([]models.HistoryEntry, error) {
	history := []models.HistoryEntry{}
	if len(data) == 0 {
		return history, nil
	}
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident history: %w", err)
	}
	return history, nil
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("incident:%s", id.String())
}

// getFromCache пытается получить закрытый инцидент из Redis
func (r *IncidentRepository) getFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	if r.redisClient == nil {
		return nil, nil
	}
	val, err := r.redisClient.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// setCache сохраняет закрытый инцидент в Redis
func (r *IncidentRepository) setCache(ctx context.Context, incident *models.Incident) error {
	if r.redisClient == nil {
		return nil
	}
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, cacheKey(incident.ID), val, closedCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}
