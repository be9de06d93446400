package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"brewing_control/internal/control"
	"brewing_control/internal/models"

	"github.com/gin-gonic/gin"
)

// Response status strings.
const (
	statusOK             = "ok"
	statusLoaded         = "loaded"
	statusStarted        = "started"
	statusPaused         = "paused"
	statusSkipped        = "skipped"
	statusStopped        = "stopped"
	statusGoalsSet       = "goals_set"
	statusOverridden     = "overridden"
	statusDurationSet    = "duration_set"
	maxRecipeBodyBytes   = 1 << 20
	queryParamRecipeName = "name"
)

// TemperatureGoalsRequest replaces every zone goal of the active step.
type TemperatureGoalsRequest struct {
	Goals []float64 `json:"goals" binding:"required" example:"66,78"`
}

// ActuatorGoalsRequest replaces every fluid actuator goal of the active step.
type ActuatorGoalsRequest struct {
	Goals []bool `json:"goals" binding:"required"`
}

// TemperatureOverrideRequest sets one zone goal.
type TemperatureOverrideRequest struct {
	Value *float64 `json:"value" binding:"required" example:"72.5"`
}

// ActuatorOverrideRequest sets one fluid actuator goal.
type ActuatorOverrideRequest struct {
	On *bool `json:"on" binding:"required" example:"true"`
}

// DurationOverrideRequest sets the active step duration in seconds.
type DurationOverrideRequest struct {
	Seconds *uint64 `json:"seconds" binding:"required" example:"600"`
}

func respondWithSnapshot(c *gin.Context, status string, snap models.Snapshot) {
	c.JSON(http.StatusOK, gin.H{"status": status, "state": snap})
}

func indexParam(c *gin.Context) (int, error) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an index", control.ErrIndexOutOfRange, c.Param("index"))
	}
	return i, nil
}

// readRecipeDocument returns the raw recipe document. JSON and YAML bodies
// share one import format and are parsed by the service.
func readRecipeDocument(c *gin.Context) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request.Body, maxRecipeBodyBytes))
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Submit a recipe
// @Description  Replaces the recipe, or appends while one is running. Body is a recipe document in JSON or YAML.
// @Tags         process
// @Accept       json,x-yaml
// @Produce      json
// @Param        body  body  string  true  "Recipe document"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/process/recipe [post]
// @Security     BearerAuth
func (h *Handler) submitRecipe(c *gin.Context) {
	document, err := readRecipeDocument(c)
	if err != nil {
		h.badRequest(c, err)
		return
	}
	snap, err := h.services.Process.ImportRecipe(c.Request.Context(), document)
	if err != nil {
		h.respondError(c, "process_load_recipe_failed", err)
		return
	}
	respondWithSnapshot(c, statusLoaded, snap)
}

// @Summary      Recipe and process status
// @Tags         process
// @Produce      json
// @Success      200  {object}  service.RecipeStatus
// @Router       /api/v1/process/recipe [get]
// @Security     BearerAuth
func (h *Handler) getRecipe(c *gin.Context) {
	st, err := h.services.Monitoring.RecipeStatus(c.Request.Context())
	if err != nil {
		h.respondError(c, "process_get_recipe_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Start or resume the recipe
// @Tags         process
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/process/start [post]
// @Security     BearerAuth
func (h *Handler) startProcess(c *gin.Context) {
	snap, err := h.services.Process.Start(c.Request.Context())
	if err != nil {
		h.respondError(c, "process_start_failed", err)
		return
	}
	respondWithSnapshot(c, statusStarted, snap)
}

// @Summary      Pause the recipe
// @Tags         process
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/process/pause [post]
// @Security     BearerAuth
func (h *Handler) pauseProcess(c *gin.Context) {
	snap, err := h.services.Process.Pause(c.Request.Context())
	if err != nil {
		h.respondError(c, "process_pause_failed", err)
		return
	}
	respondWithSnapshot(c, statusPaused, snap)
}

// @Summary      Skip to the next step
// @Tags         process
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]string
// @Router       /api/v1/process/skip [post]
// @Security     BearerAuth
func (h *Handler) skipStep(c *gin.Context) {
	snap, err := h.services.Process.Skip(c.Request.Context())
	if err != nil {
		h.respondError(c, "process_skip_failed", err)
		return
	}
	respondWithSnapshot(c, statusSkipped, snap)
}

// @Summary      Switch everything off
// @Tags         process
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/process/stop [post]
// @Security     BearerAuth
func (h *Handler) stopProcess(c *gin.Context) {
	snap, err := h.services.Process.Stop(c.Request.Context())
	if err != nil {
		h.respondError(c, "process_stop_failed", err)
		return
	}
	respondWithSnapshot(c, statusStopped, snap)
}

// @Summary      Replace temperature goals of the active step
// @Tags         process
// @Accept       json
// @Produce      json
// @Param        body  body  TemperatureGoalsRequest  true  "One goal per zone"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/process/temperatures [put]
// @Security     BearerAuth
func (h *Handler) setTemperatureGoals(c *gin.Context) {
	var req TemperatureGoalsRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	snap, err := h.services.Process.SetTemperatureGoals(c.Request.Context(), req.Goals)
	if err != nil {
		h.respondError(c, "process_set_temperatures_failed", err)
		return
	}
	respondWithSnapshot(c, statusGoalsSet, snap)
}

// @Summary      Replace actuator goals of the active step
// @Tags         process
// @Accept       json
// @Produce      json
// @Param        body  body  ActuatorGoalsRequest  true  "One goal per fluid actuator"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/process/actuators [put]
// @Security     BearerAuth
func (h *Handler) setActuatorGoals(c *gin.Context) {
	var req ActuatorGoalsRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	snap, err := h.services.Process.SetActuatorGoals(c.Request.Context(), req.Goals)
	if err != nil {
		h.respondError(c, "process_set_actuators_failed", err)
		return
	}
	respondWithSnapshot(c, statusGoalsSet, snap)
}

// @Summary      Override one zone goal
// @Tags         process
// @Accept       json
// @Produce      json
// @Param        index  path  int                         true  "Zone"
// @Param        body   body  TemperatureOverrideRequest  true  "Goal in °C"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/process/temperatures/{index} [put]
// @Security     BearerAuth
func (h *Handler) overrideTemperature(c *gin.Context) {
	index, err := indexParam(c)
	if err != nil {
		h.respondError(c, "process_override_temperature_failed", err)
		return
	}
	var req TemperatureOverrideRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	snap, err := h.services.Process.OverrideTemperature(c.Request.Context(), index, *req.Value)
	if err != nil {
		h.respondError(c, "process_override_temperature_failed", err, "index", index)
		return
	}
	respondWithSnapshot(c, statusOverridden, snap)
}

// @Summary      Override one fluid actuator goal
// @Tags         process
// @Accept       json
// @Produce      json
// @Param        index  path  int                      true  "Fluid actuator"
// @Param        body   body  ActuatorOverrideRequest  true  "Goal"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/process/actuators/{index} [put]
// @Security     BearerAuth
func (h *Handler) overrideActuator(c *gin.Context) {
	index, err := indexParam(c)
	if err != nil {
		h.respondError(c, "process_override_actuator_failed", err)
		return
	}
	var req ActuatorOverrideRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	snap, err := h.services.Process.OverrideActuator(c.Request.Context(), index, *req.On)
	if err != nil {
		h.respondError(c, "process_override_actuator_failed", err, "index", index)
		return
	}
	respondWithSnapshot(c, statusOverridden, snap)
}

// @Summary      Override the active step duration
// @Tags         process
// @Accept       json
// @Produce      json
// @Param        body  body  DurationOverrideRequest  true  "Seconds"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/process/duration [put]
// @Security     BearerAuth
func (h *Handler) overrideDuration(c *gin.Context) {
	var req DurationOverrideRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	snap, err := h.services.Process.OverrideDuration(c.Request.Context(), *req.Seconds)
	if err != nil {
		h.respondError(c, "process_override_duration_failed", err)
		return
	}
	respondWithSnapshot(c, statusDurationSet, snap)
}

// @Summary      Actuator bank states
// @Tags         process
// @Produce      json
// @Success      200  {array}  service.ActuatorState
// @Router       /api/v1/process/actuators [get]
// @Security     BearerAuth
func (h *Handler) getActuators(c *gin.Context) {
	states, err := h.services.Monitoring.Actuators(c.Request.Context())
	if err != nil {
		h.respondError(c, "process_get_actuators_failed", err)
		return
	}
	c.JSON(http.StatusOK, states)
}

// @Summary      Latest snapshot
// @Tags         process
// @Produce      json
// @Success      200  {object}  models.Snapshot
// @Router       /api/v1/process/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.respondError(c, "process_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}
