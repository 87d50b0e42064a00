package v1

import (
	"github.com/shenikar/crowd_safety_engine/internal/adapter"
	"github.com/shenikar/crowd_safety_engine/internal/fanout"
	"github.com/shenikar/crowd_safety_engine/internal/models"
)

// DTOToSignal преобразует DTO сигнала в доменную модель
func DTOToSignal(dto SignalRequest) models.Signal {
	signal := models.Signal{
		Kind: models.Kind(dto.Kind),
		Origin: models.Origin{
			Type:      models.OriginType(dto.OriginType),
			Reference: dto.OriginReference,
		},
		Severity:    dto.Severity,
		Details:     dto.Details,
		Attachments: dto.Attachments,
	}
	if dto.Location != nil {
		loc := DTOToLocation(*dto.Location)
		signal.Location = &loc
	}
	return signal
}

func DTOToLocation(dto LocationRequest) models.Location {
	return models.Location{
		Latitude:  dto.Latitude,
		Longitude: dto.Longitude,
		Place:     dto.Place,
		Unknown:   dto.Unknown,
	}
}

func DTOToSOS(dto SOSRequest) adapter.SOS {
	return adapter.SOS{
		UserID:     dto.UserID,
		Type:       dto.Type,
		Latitude:   dto.Latitude,
		Longitude:  dto.Longitude,
		Details:    dto.Details,
		Attachment: dto.Attachment,
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	if model == nil {
		return nil
	}
	history := make([]HistoryEntryResponse, len(model.History))
	for i, h := range model.History {
		history[i] = HistoryEntryResponse{
			At:     h.At,
			Status: string(h.Status),
			Actor:  h.Actor,
			Note:   h.Note,
		}
	}
	attachments := model.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return &IncidentResponse{
		ID:              model.ID,
		Kind:            string(model.Kind),
		Status:          string(model.Status),
		OriginType:      string(model.Origin.Type),
		OriginReference: model.Origin.Reference,
		Latitude:        model.Location.Latitude,
		Longitude:       model.Location.Longitude,
		Place:           model.Location.Place,
		LocationUnknown: model.Location.Unknown,
		LocationRefined: model.LocationRefined,
		Severity:        model.Severity,
		Details:         model.Details,
		Attachments:     attachments,
		Outcome:         model.Outcome,
		History:         history,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
		ResolvedAt:      model.ResolvedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(incidents []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(incidents))
	for i, model := range incidents {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func ResultToSubmitResponse(res adapter.Result) SubmitResponse {
	return SubmitResponse{
		IncidentID: res.IncidentID,
		Duplicate:  res.Duplicate,
		Incident:   ModelToIncidentResponse(res.Incident),
	}
}

func ResultsToSubmitResponses(results []adapter.Result) []SubmitResponse {
	responses := make([]SubmitResponse, len(results))
	for i, res := range results {
		responses[i] = ResultToSubmitResponse(res)
	}
	return responses
}

func CountsToStatsResponse(counts models.IncidentCounts) StatsResponse {
	stats := StatsResponse{
		Open:     counts.Open,
		Total:    counts.Total,
		ByStatus: make(map[string]int, len(counts.ByStatus)),
		ByKind:   make(map[string]int, len(counts.ByKind)),
	}
	for status, n := range counts.ByStatus {
		stats.ByStatus[string(status)] = n
	}
	for kind, n := range counts.ByKind {
		stats.ByKind[string(kind)] = n
	}
	return stats
}

func SnapshotToHealthResponse(snapshot models.HealthSnapshot) HealthResponse {
	subsystems := make([]SubsystemResponse, len(snapshot.Subsystems))
	for i, s := range snapshot.Subsystems {
		subsystems[i] = SubsystemResponse{
			Name:          s.Name,
			Reachable:     s.Reachable,
			LatencyMs:     s.Latency.Milliseconds(),
			LastCheckedAt: s.LastCheckedAt,
			Error:         s.Error,
		}
	}
	return HealthResponse{
		Degraded:   snapshot.Degraded,
		Incidents:  CountsToStatsResponse(snapshot.Incidents),
		Subsystems: subsystems,
		TakenAt:    snapshot.TakenAt,
	}
}

// MessageToEvent преобразует сообщение подписки в имя и данные SSE-события
func MessageToEvent(msg fanout.Message) (string, uint64, any) {
	switch msg.Kind {
	case fanout.MessageReconnect:
		return string(fanout.MessageReconnect), msg.Seq, ReconnectEvent{Seq: msg.Seq, Reason: msg.Reason}
	case fanout.MessageBroadcast:
		return string(fanout.MessageBroadcast), msg.Seq, BroadcastToEvent(*msg.Broadcast)
	}
	change := msg.Change
	return string(fanout.MessageChange), change.Seq, ChangeEvent{
		Seq:        change.Seq,
		Type:       string(change.Type),
		IncidentID: change.IncidentID,
		From:       change.From,
		To:         change.To,
		Actor:      change.Actor,
		At:         change.At,
		Incident:   ModelToIncidentResponse(change.Incident),
	}
}

func BroadcastToEvent(b models.Broadcast) BroadcastEvent {
	return BroadcastEvent{
		Seq:     b.Seq,
		Message: b.Message,
		Actor:   b.Actor,
		At:      b.At,
	}
}

func AuditToResponses(entries []models.AuditEntry) []AuditEntryResponse {
	responses := make([]AuditEntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = AuditEntryResponse{
			ID:        e.ID,
			Action:    string(e.Action),
			Actor:     e.Actor,
			Message:   e.Message,
			CreatedAt: e.CreatedAt,
		}
	}
	return responses
}
