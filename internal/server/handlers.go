package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	tonifyerrors "tonify/internal/errors"
	"tonify/internal/logging"
	"tonify/internal/ports"
	"tonify/internal/profile"
	"tonify/internal/trait"
)

// APIResponse is the uniform response envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type handler struct {
	scorer    ports.TraitScorer
	generator ports.ContentGenerator
	store     ports.ProfileStore
	logger    logging.Logger
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"status": "ok"}})
}

type analyzeRequest struct {
	Text string `json:"text"`
}

func (h *handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	vector, err := h.scorer.ScoreText(c.Request.Context(), req.Text)
	if err != nil {
		h.respondFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: vector})
}

type generateRequest struct {
	Traits trait.Vector `json:"traits"`
}

func (h *handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := req.Traits.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	content, err := h.generator.GenerateContent(c.Request.Context(), req.Traits)
	if err != nil {
		h.respondFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: content})
}

func (h *handler) listProfiles(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}

	profiles, err := h.store.List(c.Request.Context(), ownerID)
	if err != nil {
		h.respondFailure(c, err)
		return
	}
	if profiles == nil {
		profiles = []ports.Profile{}
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: profiles})
}

type createProfileRequest struct {
	Name     string       `json:"name"`
	Traits   trait.Vector `json:"traits"`
	Title    string       `json:"title"`
	Summary  string       `json:"summary"`
	Prompt   string       `json:"prompt"`
	Examples []string     `json:"examples"`
}

func (h *handler) createProfile(c *gin.Context) {
	ownerID, ok := requireOwner(c)
	if !ok {
		return
	}

	var req createProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := req.Traits.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	created, err := h.store.Create(c.Request.Context(), ownerID, ports.ProfileFields{
		Name:     req.Name,
		Traits:   req.Traits,
		Title:    req.Title,
		Summary:  req.Summary,
		Prompt:   req.Prompt,
		Examples: req.Examples,
	})
	if err != nil {
		h.respondFailure(c, err)
		return
	}
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: created})
}

func (h *handler) getProfile(c *gin.Context) {
	got, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: got})
}

type updateProfileRequest struct {
	Name     *string       `json:"name"`
	Traits   *trait.Vector `json:"traits"`
	Title    *string       `json:"title"`
	Summary  *string       `json:"summary"`
	Prompt   *string       `json:"prompt"`
	Examples *[]string     `json:"examples"`
}

func (h *handler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Traits != nil {
		if err := req.Traits.Validate(); err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
	}

	updated, err := h.store.Update(c.Request.Context(), c.Param("id"), ports.ProfileUpdate{
		Name:     req.Name,
		Traits:   req.Traits,
		Title:    req.Title,
		Summary:  req.Summary,
		Prompt:   req.Prompt,
		Examples: req.Examples,
	})
	if err != nil {
		h.respondFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: updated})
}

func (h *handler) deleteProfile(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true})
}

func (h *handler) duplicateProfile(c *gin.Context) {
	copied, err := profile.Duplicate(c.Request.Context(), h.store, c.Param("id"))
	if err != nil {
		h.respondFailure(c, err)
		return
	}
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: copied})
}

// requireOwner fetches the identity resolved by the middleware, answering
// 401 when absent.
func requireOwner(c *gin.Context) (string, bool) {
	ownerID := ports.OwnerIDFromContext(c.Request.Context())
	if ownerID == "" {
		respondError(c, http.StatusUnauthorized, tonifyerrors.ErrSaveRequiresIdentity)
		return "", false
	}
	return ownerID, true
}

func (h *handler) respondFailure(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed: %v", err)
	}
	respondError(c, status, err)
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, APIResponse{Success: false, Error: err.Error()})
}

// statusForError maps the error taxonomy onto HTTP statuses. Quota keeps its
// 429 so browser clients can distinguish it; upstream oracle trouble is a
// gateway-class failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, tonifyerrors.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, tonifyerrors.ErrSaveRequiresIdentity):
		return http.StatusUnauthorized
	case tonifyerrors.IsNotFound(err):
		return http.StatusNotFound
	case tonifyerrors.IsQuota(err):
		return http.StatusTooManyRequests
	case tonifyerrors.IsMalformed(err), tonifyerrors.IsIncomplete(err), tonifyerrors.IsTransient(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
