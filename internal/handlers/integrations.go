package handlers

import "net/http"

type IntegrationsHandler struct{}

func NewIntegrationsHandler() *IntegrationsHandler {
	return &IntegrationsHandler{}
}

func (handler *IntegrationsHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"title":       "Auto-sync with grocery apps (Coming Soon)",
		"connected":   false,
		"description": "Automatically updates freshness using grocery app data integration (in development).",
	})
}
