package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"journeyd/internal/journey"
)

// Handler carries the dependencies of the HTTP endpoints.
type Handler struct {
	svc    *journey.Service
	logger journey.Logger
}

// NewHandler creates a Handler over the given service.
func NewHandler(svc *journey.Service, logger journey.Logger) *Handler {
	if logger == nil {
		logger = journey.NopLogger{}
	}
	return &Handler{svc: svc, logger: logger}
}

// decodeBody decodes a JSON request body, rejecting unknown syntax but not
// unknown fields (clients send UI state this server does not model).
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, "ok", nil)
}

type createJourneyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateJourney creates an empty journey with the given name and description.
func (h *Handler) CreateJourney(w http.ResponseWriter, r *http.Request) {
	var req createJourneyRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	// Zero timestamps are stamped by the service at creation time.
	doc := journey.NewDocument(req.Name, req.Description, time.Time{})
	if _, err := h.svc.Create(r.Context(), doc); err != nil {
		h.respondError(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, "journey created", doc)
}

// ListJourneys returns non-deleted journeys newest-first.
func (h *Handler) ListJourneys(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	summaries, total, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, "", map[string]any{
		"journeys": summaries,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetJourney returns the full document.
func (h *Handler) GetJourney(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Load(r.Context(), chi.URLParam(r, "journeyID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", doc)
}

// UpdateJourney applies a metadata patch. Absent fields are left unchanged.
func (h *Handler) UpdateJourney(w http.ResponseWriter, r *http.Request) {
	var patch journey.MetadataPatch
	if err := decodeBody(r, &patch); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	doc, err := h.svc.UpdateMetadata(r.Context(), chi.URLParam(r, "journeyID"), patch)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "journey updated", doc)
}

// DeleteJourney soft-deletes by default; ?hard=true removes the journey and
// all child records permanently.
func (h *Handler) DeleteJourney(w http.ResponseWriter, r *http.Request) {
	hard := r.URL.Query().Get("hard") == "true"
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "journeyID"), hard); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "journey deleted", nil)
}

type duplicateJourneyRequest struct {
	Name string `json:"name"`
}

// DuplicateJourney copies a journey under a fresh id.
func (h *Handler) DuplicateJourney(w http.ResponseWriter, r *http.Request) {
	var req duplicateJourneyRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	doc, err := h.svc.Duplicate(r.Context(), chi.URLParam(r, "journeyID"), req.Name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, "journey duplicated", doc)
}

// The full-save body wraps the document under a "journey" key; the partial
// save bodies (canvas/goals/milestones) are flat.
type saveJourneyRequest struct {
	Journey *journey.Document `json:"journey"`
}

// SaveJourney reconciles the complete submitted document against stored state.
// A body without a journey document is rejected: decoding it as an empty
// document would prune every collection.
func (h *Handler) SaveJourney(w http.ResponseWriter, r *http.Request) {
	var req saveJourneyRequest
	if err := decodeBody(r, &req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}
	if req.Journey == nil {
		respondBadRequest(w, "missing journey document")
		return
	}

	id := chi.URLParam(r, "journeyID")
	if err := h.svc.Save(r.Context(), id, req.Journey); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "journey saved", nil)
}

type canvasPayload struct {
	Nodes []journey.Node `json:"nodes"`
	Edges []journey.Edge `json:"edges"`
}

// GetCanvas returns the node and edge collections.
func (h *Handler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	nodes, edges, err := h.svc.LoadCanvas(r.Context(), chi.URLParam(r, "journeyID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", canvasPayload{Nodes: nodes, Edges: edges})
}

// SaveCanvas reconciles nodes and edges only.
func (h *Handler) SaveCanvas(w http.ResponseWriter, r *http.Request) {
	var payload canvasPayload
	if err := decodeBody(r, &payload); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "journeyID")
	if err := h.svc.SaveCanvas(r.Context(), id, payload.Nodes, payload.Edges); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "canvas saved", nil)
}

type goalsPayload struct {
	Goals []journey.Goal `json:"goals"`
}

// GetGoals returns the goal collection.
func (h *Handler) GetGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := h.svc.LoadGoals(r.Context(), chi.URLParam(r, "journeyID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", goalsPayload{Goals: goals})
}

// SaveGoals reconciles the goal collection only.
func (h *Handler) SaveGoals(w http.ResponseWriter, r *http.Request) {
	var payload goalsPayload
	if err := decodeBody(r, &payload); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "journeyID")
	if err := h.svc.SaveGoals(r.Context(), id, payload.Goals); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "goals saved", nil)
}

type milestonesPayload struct {
	Milestones []journey.Milestone `json:"milestones"`
}

// GetMilestones returns the milestone collection.
func (h *Handler) GetMilestones(w http.ResponseWriter, r *http.Request) {
	milestones, err := h.svc.LoadMilestones(r.Context(), chi.URLParam(r, "journeyID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", milestonesPayload{Milestones: milestones})
}

// SaveMilestones reconciles the milestone collection only.
func (h *Handler) SaveMilestones(w http.ResponseWriter, r *http.Request) {
	var payload milestonesPayload
	if err := decodeBody(r, &payload); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	id := chi.URLParam(r, "journeyID")
	if err := h.svc.SaveMilestones(r.Context(), id, payload.Milestones); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "milestones saved", nil)
}

// GetStats returns the aggregate counts for one journey.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context(), chi.URLParam(r, "journeyID"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, "", stats)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
