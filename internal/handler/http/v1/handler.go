package v1

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/crowd_safety_engine/internal/attachment"
	"github.com/shenikar/crowd_safety_engine/internal/config"
	"github.com/shenikar/crowd_safety_engine/internal/detector"
	"github.com/shenikar/crowd_safety_engine/internal/fanout"
	"github.com/shenikar/crowd_safety_engine/internal/health"
	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/shenikar/crowd_safety_engine/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	incidentService service.IncidentService
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(incidentService service.IncidentService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		incidentService: incidentService,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// bindJSON разбирает и валидирует тело запроса. При ошибке ответ уже записан.
func (h *Handler) bindJSON(c *gin.Context, log *logrus.Entry, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// respondError переводит доменную ошибку в HTTP-ответ
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidSignal),
		errors.Is(err, attachment.ErrEmpty),
		errors.Is(err, health.ErrUnknownIntent),
		errors.Is(err, service.ErrEmptyBroadcast):
		log.WithError(err).Warn("Request rejected")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, attachment.ErrTooLarge):
		log.WithError(err).Warn("Attachment too large")
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		log.WithError(err).Warn("Incident not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
	case errors.Is(err, attachment.ErrNotFound):
		log.WithError(err).Warn("Attachment not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "attachment not found"})
	case errors.Is(err, models.ErrIllegalTransition):
		log.WithError(err).Warn("Transition rejected")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, detector.ErrDisabled),
		errors.Is(err, service.ErrAttachmentsDisabled),
		errors.Is(err, service.ErrAuditDisabled):
		log.WithError(err).Warn("Feature is not configured")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, detector.ErrUnavailable):
		log.WithError(err).Error("Detector unavailable")
		c.JSON(http.StatusBadGateway, gin.H{"error": "detector unavailable"})
	default:
		log.WithError(err).Error("Request failed in service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return uuid.Nil, false
	}
	return id, true
}

// readFile читает файл multipart-формы с ограничением размера
func (h *Handler) readFile(c *gin.Context) ([]byte, string, string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, "", "", fmt.Errorf("file is required: %w", models.ErrInvalidSignal)
	}
	if h.cfg.AttachmentMaxSize > 0 && header.Size > h.cfg.AttachmentMaxSize {
		return nil, "", "", attachment.ErrTooLarge
	}
	file, err := header.Open()
	if err != nil {
		return nil, "", "", fmt.Errorf("could not open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", "", fmt.Errorf("could not read uploaded file: %w", err)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, header.Filename, contentType, nil
}

// @Summary Submit a signal
// @Description Submit an incoming signal. A duplicate within the dedup window merges into the open incident. Requires API key.
// @Tags Signals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param signal body SignalRequest true "Signal"
// @Success 201 {object} SubmitResponse "Incident created"
// @Success 200 {object} SubmitResponse "Merged into an open incident"
// @Failure 400 {object} map[string]string "Invalid signal"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /signals [post]
func (h *Handler) submitSignal(c *gin.Context) {
	var input SignalRequest
	log := h.logger.WithField("method", "submitSignal")
	if !h.bindJSON(c, log, &input) {
		return
	}

	res, err := h.incidentService.SubmitSignal(c.Request.Context(), DTOToSignal(input))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(submitStatus(res.Duplicate), ResultToSubmitResponse(res))
}

func submitStatus(duplicate bool) int {
	if duplicate {
		return http.StatusOK
	}
	return http.StatusCreated
}

// @Summary Trigger SOS
// @Description Raise a visitor SOS alert. Anonymous senders may omit user_id. Requires API key.
// @Tags Signals
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param sos body SOSRequest true "SOS"
// @Success 201 {object} SubmitResponse
// @Success 200 {object} SubmitResponse "Merged into an open incident"
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /sos [post]
func (h *Handler) triggerSOS(c *gin.Context) {
	var input SOSRequest
	log := h.logger.WithField("method", "triggerSOS")
	if !h.bindJSON(c, log, &input) {
		return
	}

	res, err := h.incidentService.TriggerSOS(c.Request.Context(), DTOToSOS(input))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(submitStatus(res.Duplicate), ResultToSubmitResponse(res))
}

func (h *Handler) bindFrame(c *gin.Context, log *logrus.Entry) (detector.Frame, bool) {
	var form FrameForm
	if err := c.ShouldBind(&form); err != nil {
		log.WithError(err).Warn("Failed to bind form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return detector.Frame{}, false
	}
	if err := h.validate.Struct(form); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return detector.Frame{}, false
	}
	data, filename, _, err := h.readFile(c)
	if err != nil {
		h.respondError(c, log, err)
		return detector.Frame{}, false
	}
	return detector.Frame{
		CameraID: form.CameraID,
		Location: models.Location{Latitude: form.Latitude, Longitude: form.Longitude, Place: form.Place},
		Image:    data,
		Filename: filename,
	}, true
}

// @Summary Run crowd detection
// @Description Count people in a camera frame. A count over the threshold raises a crowd-anomaly incident. Requires API key.
// @Tags Detections
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param camera_id formData string true "Camera ID"
// @Param latitude formData number false "Latitude"
// @Param longitude formData number false "Longitude"
// @Param place formData string false "Place"
// @Param file formData file true "Frame"
// @Success 200 {object} DetectionResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Detector unavailable"
// @Failure 503 {object} map[string]string "Detector not configured"
// @Router /detections/crowd [post]
func (h *Handler) detectCrowd(c *gin.Context) {
	log := h.logger.WithField("method", "detectCrowd")
	frame, ok := h.bindFrame(c, log)
	if !ok {
		return
	}

	out, err := h.incidentService.DetectCrowd(c.Request.Context(), frame)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, DetectionResponse{Detection: out.Detection, Incidents: ResultsToSubmitResponses(out.Results)})
}

// @Summary Run face matching
// @Description Match faces in a frame against missing persons. Each match raises a lost-person incident. Requires API key.
// @Tags Detections
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param camera_id formData string true "Camera ID"
// @Param latitude formData number false "Latitude"
// @Param longitude formData number false "Longitude"
// @Param place formData string false "Place"
// @Param file formData file true "Frame"
// @Success 200 {object} DetectionResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Detector unavailable"
// @Failure 503 {object} map[string]string "Detector not configured"
// @Router /detections/face [post]
func (h *Handler) detectFaces(c *gin.Context) {
	log := h.logger.WithField("method", "detectFaces")
	frame, ok := h.bindFrame(c, log)
	if !ok {
		return
	}

	out, err := h.incidentService.DetectFaces(c.Request.Context(), frame)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, DetectionResponse{Detection: out.Detection, Incidents: ResultsToSubmitResponses(out.Results)})
}

// @Summary Run anomaly detection
// @Description Score a sensor series. An anomalous latest value raises a crowd-anomaly incident. Requires API key.
// @Tags Detections
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param series body AnomalyRequest true "Sensor series"
// @Success 200 {object} DetectionResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Detector unavailable"
// @Failure 503 {object} map[string]string "Detector not configured"
// @Router /detections/anomaly [post]
func (h *Handler) detectAnomaly(c *gin.Context) {
	var input AnomalyRequest
	log := h.logger.WithField("method", "detectAnomaly")
	if !h.bindJSON(c, log, &input) {
		return
	}

	out, err := h.incidentService.DetectAnomaly(c.Request.Context(), detector.Series{
		SensorID: input.SensorID,
		Location: DTOToLocation(input.Location),
		Values:   input.Values,
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, DetectionResponse{Detection: out.Detection, Incidents: ResultsToSubmitResponses(out.Results)})
}

// @Summary Get a list of incidents
// @Description List incidents newest first. include_closed also reads history evicted from memory. Requires API key.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param status query string false "Comma separated statuses"
// @Param kind query string false "Incident kind"
// @Param open query bool false "Only open incidents"
// @Param include_closed query bool false "Include persisted closed incidents"
// @Param limit query int false "Max items" default(100)
// @Success 200 {array} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid filter"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	filter := models.Filter{OpenOnly: c.Query("open") == "true"}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	if kind := c.Query("kind"); kind != "" {
		filter.Kind = models.Kind(kind)
		if !filter.Kind.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown incident kind"})
			return
		}
	}
	if statuses := c.Query("status"); statuses != "" {
		for _, s := range strings.Split(statuses, ",") {
			status := models.Status(strings.TrimSpace(s))
			if !validStatus(status) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown incident status"})
				return
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}

	incidents, err := h.incidentService.ListIncidents(c.Request.Context(), filter, c.Query("include_closed") == "true")
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

func validStatus(status models.Status) bool {
	for _, s := range models.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID. Requires API key.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Get incident statistics
// @Description Incident counts by status and kind. Requires API key.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /incidents/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	snapshot := h.incidentService.Health(c.Request.Context(), true)
	c.JSON(http.StatusOK, CountsToStatsResponse(snapshot.Incidents))
}

// @Summary Acknowledge incident
// @Description triggered -> acknowledged. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param request body ActorRequest true "Actor"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Router /incidents/{id}/acknowledge [post]
func (h *Handler) acknowledgeIncident(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "acknowledgeIncident").WithField("id", id)
	var input ActorRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	incident, err := h.incidentService.Acknowledge(c.Request.Context(), id, input.Actor)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Escalate incident
// @Description triggered|acknowledged -> active. Severity may only be raised. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param request body EscalateRequest true "Escalation"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Router /incidents/{id}/escalate [post]
func (h *Handler) escalateIncident(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "escalateIncident").WithField("id", id)
	var input EscalateRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	incident, err := h.incidentService.Escalate(c.Request.Context(), id, input.Actor, input.Severity)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Resolve incident
// @Description Close an open incident with an outcome. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param request body ResolveRequest true "Resolution"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Router /incidents/{id}/resolve [post]
func (h *Handler) resolveIncident(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "resolveIncident").WithField("id", id)
	var input ResolveRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	incident, err := h.incidentService.Resolve(c.Request.Context(), id, input.Actor, input.Outcome)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Refine incident location
// @Description Replace the reported location once, while the incident is still triggered. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param request body RefineLocationRequest true "Location"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 409 {object} map[string]string "Location already refined or incident not triggered"
// @Router /incidents/{id}/location [post]
func (h *Handler) refineLocation(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "refineLocation").WithField("id", id)
	var input RefineLocationRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	location := models.Location{Latitude: input.Latitude, Longitude: input.Longitude, Place: input.Place}
	incident, err := h.incidentService.RefineLocation(c.Request.Context(), id, location, input.Actor)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Attach to incident
// @Description Attach a stored attachment reference to an open incident. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param request body AttachRequest true "Attachment reference"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 409 {object} map[string]string "Incident closed"
// @Router /incidents/{id}/attachments [post]
func (h *Handler) attachToIncident(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "attachToIncident").WithField("id", id)
	var input AttachRequest
	if !h.bindJSON(c, log, &input) {
		return
	}

	incident, err := h.incidentService.AttachToIncident(c.Request.Context(), id, input.Reference, input.Actor)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Upload attachment
// @Description Store a photo or audio clip and return its reference. Requires API key.
// @Tags Attachments
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param file formData file true "Attachment"
// @Success 201 {object} AttachmentResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 413 {object} map[string]string "Attachment too large"
// @Failure 503 {object} map[string]string "Attachment storage not configured"
// @Router /attachments [post]
func (h *Handler) uploadAttachment(c *gin.Context) {
	log := h.logger.WithField("method", "uploadAttachment")
	data, _, contentType, err := h.readFile(c)
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	ref, err := h.incidentService.UploadAttachment(c.Request.Context(), contentType, data)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, AttachmentResponse{Reference: ref})
}

// @Summary Download attachment
// @Tags Attachments
// @Produce octet-stream
// @Security ApiKeyAuth
// @Param ref path string true "Attachment reference"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string "Attachment not found"
// @Router /attachments/{ref} [get]
func (h *Handler) getAttachment(c *gin.Context) {
	log := h.logger.WithField("method", "getAttachment").WithField("ref", c.Param("ref"))

	a, err := h.incidentService.GetAttachment(c.Request.Context(), c.Param("ref"))
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.Data(http.StatusOK, a.ContentType, a.Data)
}

// @Summary Stream incident changes
// @Description Server-Sent Events stream of change records and operator broadcasts. The stream opens with a ready event carrying the current sequence as its id. A client resuming with Last-Event-ID (or last_seq), 0 included, first receives a reconnect event and must re-read state. Requires API key.
// @Tags Stream
// @Produce text/event-stream
// @Security ApiKeyAuth
// @Param Last-Event-ID header string false "Last received sequence number"
// @Param last_seq query int false "Last received sequence number"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} map[string]string "Invalid sequence number"
// @Router /stream [get]
func (h *Handler) streamChanges(c *gin.Context) {
	// Наличие номера, в том числе 0, означает переподключение
	var (
		lastSeqRaw string
		resumed    bool
	)
	if values := c.Request.Header.Values("Last-Event-ID"); len(values) > 0 {
		lastSeqRaw, resumed = values[0], true
	} else {
		lastSeqRaw, resumed = c.GetQuery("last_seq")
	}
	var lastSeq uint64
	if resumed {
		seq, err := strconv.ParseUint(strings.TrimSpace(lastSeqRaw), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid sequence number"})
			return
		}
		lastSeq = seq
	}

	var sub *fanout.Subscription
	if resumed {
		sub = h.incidentService.Resume(lastSeq)
	} else {
		sub = h.incidentService.Subscribe()
	}
	defer h.incidentService.Unsubscribe(sub)
	log := h.logger.WithFields(logrus.Fields{
		"method":          "streamChanges",
		"subscription_id": sub.ID,
		"resumed":         resumed,
		"last_seq":        lastSeq,
	})
	log.Info("Stream opened")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Render(-1, sse.Event{
		Id:    strconv.FormatUint(sub.StartSeq(), 10),
		Event: "ready",
		Data:  ReadyEvent{Seq: sub.StartSeq(), SubscriptionID: sub.ID},
	})
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			log.Info("Stream closed by client")
			return
		case msg, ok := <-sub.C():
			if !ok {
				if err := sub.Err(); err != nil {
					// Клиент переподключится с Last-Event-ID и получит reconnect
					log.WithError(err).Warn("Stream dropped")
					c.Render(-1, sse.Event{Event: "error", Data: gin.H{"error": err.Error()}})
					c.Writer.Flush()
				}
				return
			}
			name, seq, data := MessageToEvent(msg)
			c.Render(-1, sse.Event{
				Id:    strconv.FormatUint(seq, 10),
				Event: name,
				Data:  data,
			})
			c.Writer.Flush()
		}
	}
}

// @Summary System health
// @Description Incident counts and subsystem reachability. cached=true returns the last background snapshot. Requires API key.
// @Tags System
// @Produce json
// @Security ApiKeyAuth
// @Param cached query bool false "Use the last background snapshot"
// @Success 200 {object} HealthResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	snapshot := h.incidentService.Health(c.Request.Context(), c.Query("cached") == "true")
	c.JSON(http.StatusOK, SnapshotToHealthResponse(snapshot))
}

// @Summary Liveness
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Router /system/live [get]
func (h *Handler) liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Run maintenance
// @Description force-sync writes every incident to storage and refreshes health. clear-cache drops the cached snapshot and stale dedup keys. Requires API key.
// @Tags System
// @Produce json
// @Security ApiKeyAuth
// @Param intent path string true "Intent" Enums(force-sync, clear-cache)
// @Param actor query string false "Operator recorded in the audit log"
// @Success 200 {object} health.MaintenanceReport
// @Failure 400 {object} map[string]string "Unknown intent"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/maintenance/{intent} [post]
func (h *Handler) runMaintenance(c *gin.Context) {
	intent := health.Intent(c.Param("intent"))
	log := h.logger.WithField("method", "runMaintenance").WithField("intent", intent)

	actor := c.DefaultQuery("actor", "operator")
	report, err := h.incidentService.Maintain(c.Request.Context(), intent, actor)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	log.WithField("persisted", report.Persisted).Info("Maintenance completed")
	c.JSON(http.StatusOK, report)
}

// @Summary Broadcast operator message
// @Description Sends a message to every connected dashboard and app (stream broadcast event) and to field-team webhooks. The action is recorded in the audit log. Requires API key.
// @Tags Admin
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param message body BroadcastRequest true "Message"
// @Success 202 {object} BroadcastEvent
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /admin/broadcast [post]
func (h *Handler) broadcast(c *gin.Context) {
	log := h.logger.WithField("method", "broadcast")

	var req BroadcastRequest
	if !h.bindJSON(c, log, &req) {
		return
	}

	sent, err := h.incidentService.Broadcast(c.Request.Context(), req.Message, req.Actor)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusAccepted, BroadcastToEvent(sent))
}

// @Summary Audit log
// @Description Recent admin actions (broadcasts and maintenance), newest first. Requires API key and PostgreSQL.
// @Tags Admin
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Maximum entries (1-500)" default(100)
// @Success 200 {array} AuditEntryResponse
// @Failure 400 {object} map[string]string "Invalid limit"
// @Failure 503 {object} map[string]string "Audit log not configured"
// @Router /admin/logs [get]
func (h *Handler) auditLog(c *gin.Context) {
	log := h.logger.WithField("method", "auditLog")

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	entries, err := h.incidentService.AuditLog(c.Request.Context(), limit)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, AuditToResponses(entries))
}
