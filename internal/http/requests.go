package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Renal37/go-custody-workflow/internal/middlewares"
	"github.com/Renal37/go-custody-workflow/internal/models"
	"github.com/Renal37/go-custody-workflow/internal/services"
	"github.com/go-chi/chi/v5"
)

// writeWorkflowError переводит ошибки сервисов в HTTP-коды
func writeWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		http.Error(w, "Request is not found", http.StatusNotFound)
	case errors.Is(err, services.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrNotEligible):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		http.Error(w, fmt.Sprintf("Error occurred during processing command: %s", err.Error()), http.StatusInternalServerError)
	}
}

func actorFromRequest(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	user := middlewares.GetUserFromContext(w, r)
	if user == nil {
		return models.Actor{}, false
	}

	return models.Actor{ID: user.ID, Name: user.Login}, true
}

func SubmitRequest(w http.ResponseWriter, r *http.Request) {
	input := middlewares.GetParsedJSONData[models.WithdrawalInput](w, r)
	workflowService := middlewares.GetServiceFromContext[models.WorkflowService](w, r, middlewares.WorkflowServiceKey)

	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	request, err := (*workflowService).Submit(r.Context(), input, actor)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	middlewares.EncodeJSONResponse(w, request)
}

func GetRequests(w http.ResponseWriter, r *http.Request) {
	registryService := middlewares.GetServiceFromContext[models.RegistryService](w, r, middlewares.RegistryServiceKey)

	var status *models.RequestStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.RequestStatus(strings.ToUpper(raw))
		status = &s
	}

	requests, err := (*registryService).ListByStatus(r.Context(), status)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	if len(requests) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	middlewares.EncodeJSONResponse(w, requests)
}

func GetRequest(w http.ResponseWriter, r *http.Request) {
	registryService := middlewares.GetServiceFromContext[models.RegistryService](w, r, middlewares.RegistryServiceKey)

	request, err := (*registryService).Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	middlewares.EncodeJSONResponse(w, request)
}

func GetAuditTrail(w http.ResponseWriter, r *http.Request) {
	registryService := middlewares.GetServiceFromContext[models.RegistryService](w, r, middlewares.RegistryServiceKey)

	trail, err := (*registryService).AuditTrail(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	middlewares.EncodeJSONResponse(w, trail)
}
