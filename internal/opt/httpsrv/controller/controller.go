package controller

import (
	"net/http"

	"github.com/traitdex/traitdex/internal/opt/httpsrv/service"
	"github.com/traitdex/traitdex/internal/opt/optutils"
)

type ControlController struct {
	Service service.ControlService
}

func NewController(s service.ControlService) *ControlController {
	return &ControlController{
		Service: s,
	}
}

func (c *ControlController) StatusHandler(w http.ResponseWriter, _ *http.Request) {
	status := c.Service.Status()
	optutils.WriteJSON(w, http.StatusOK, status)
}

func (c *ControlController) RegistryHandler(w http.ResponseWriter, _ *http.Request) {
	optutils.WriteJSON(w, http.StatusOK, c.Service.Registry())
}

func (c *ControlController) ImplementorsHandler(w http.ResponseWriter, r *http.Request) {
	trait, err := optutils.PathValueString(r, "trait")
	if err != nil {
		http.Error(w, "expect trait path-param", http.StatusBadRequest)
		return
	}

	impls, ok := c.Service.Implementors(trait)
	if !ok {
		optutils.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "unknown trait: " + trait})
		return
	}
	optutils.WriteJSON(w, http.StatusOK, impls)
}

func (c *ControlController) ArtifactHandler(w http.ResponseWriter, _ *http.Request) {
	data, err := c.Service.Artifact()
	if err != nil {
		optutils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	_, _ = w.Write(data)
}

func (c *ControlController) RescanHandler(w http.ResponseWriter, _ *http.Request) {
	if err := c.Service.TriggerRescan(); err != nil {
		optutils.WriteJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	optutils.WriteJSON(w, http.StatusOK, map[string]string{"status": "scheduled"})
}

func (c *ControlController) RetentionHandler(w http.ResponseWriter, _ *http.Request) {
	if err := c.Service.RunRetention(); err != nil {
		optutils.WriteJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	optutils.WriteJSON(w, http.StatusOK, map[string]string{"status": "scheduled"})
}
