package router

import (
	"net/http"

	"github.com/Renal37/go-custody-workflow/internal/middlewares"
	"github.com/Renal37/go-custody-workflow/internal/models"
	"github.com/go-chi/chi/v5"
)

func ApproveRequest(w http.ResponseWriter, r *http.Request) {
	workflowService := middlewares.GetServiceFromContext[models.WorkflowService](w, r, middlewares.WorkflowServiceKey)

	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	request, err := (*workflowService).Approve(r.Context(), chi.URLParam(r, "requestID"), actor)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	middlewares.EncodeJSONResponse(w, request)
}

func RejectRequest(w http.ResponseWriter, r *http.Request) {
	input := middlewares.GetParsedJSONData[models.RejectInput](w, r)
	workflowService := middlewares.GetServiceFromContext[models.WorkflowService](w, r, middlewares.WorkflowServiceKey)

	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	request, err := (*workflowService).Reject(r.Context(), chi.URLParam(r, "requestID"), actor, input.Reason)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	middlewares.EncodeJSONResponse(w, request)
}

func CancelRequest(w http.ResponseWriter, r *http.Request) {
	workflowService := middlewares.GetServiceFromContext[models.WorkflowService](w, r, middlewares.WorkflowServiceKey)

	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	request, err := (*workflowService).Cancel(r.Context(), chi.URLParam(r, "requestID"), actor)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	middlewares.EncodeJSONResponse(w, request)
}

func ReApplyRequest(w http.ResponseWriter, r *http.Request) {
	workflowService := middlewares.GetServiceFromContext[models.WorkflowService](w, r, middlewares.WorkflowServiceKey)

	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	request, err := (*workflowService).ReApply(r.Context(), chi.URLParam(r, "requestID"), actor)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	middlewares.EncodeJSONResponse(w, request)
}

func ResubmitRequest(w http.ResponseWriter, r *http.Request) {
	workflowService := middlewares.GetServiceFromContext[models.WorkflowService](w, r, middlewares.WorkflowServiceKey)

	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	request, err := (*workflowService).Resubmit(r.Context(), chi.URLParam(r, "requestID"), actor)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	middlewares.EncodeJSONResponse(w, request)
}

func ArchiveRequest(w http.ResponseWriter, r *http.Request) {
	workflowService := middlewares.GetServiceFromContext[models.WorkflowService](w, r, middlewares.WorkflowServiceKey)

	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	request, err := (*workflowService).Archive(r.Context(), chi.URLParam(r, "requestID"), actor)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	middlewares.EncodeJSONResponse(w, request)
}
