package router

import (
	"errors"
	"net/http"

	"github.com/Renal37/go-custody-workflow/internal/middlewares"
	"github.com/Renal37/go-custody-workflow/internal/models"
	"github.com/Renal37/go-custody-workflow/internal/services"
)

// Обработчики обратных вызовов внешних участников конвейера:
// комплаенс-сервиса, офлайн-церемонии подписания и наблюдателя сети.
// Провал скрининга или подписания — зафиксированный результат, а не ошибка
// обратного вызова: заявка уже переведена в REJECTED, ответ 200.

func CompleteScreening(w http.ResponseWriter, r *http.Request) {
	result := middlewares.GetParsedJSONData[models.ScreeningResult](w, r)
	workflowService := middlewares.GetServiceFromContext[models.WorkflowService](w, r, middlewares.WorkflowServiceKey)

	request, err := (*workflowService).CompleteScreening(r.Context(), result)
	if err != nil && !errors.Is(err, services.ErrScreeningFailed) {
		writeWorkflowError(w, err)
		return
	}

	middlewares.EncodeJSONResponse(w, request)
}

func CompleteSigning(w http.ResponseWriter, r *http.Request) {
	result := middlewares.GetParsedJSONData[models.SigningResult](w, r)
	workflowService := middlewares.GetServiceFromContext[models.WorkflowService](w, r, middlewares.WorkflowServiceKey)

	request, err := (*workflowService).CompleteSigning(r.Context(), result)
	if err != nil && !errors.Is(err, services.ErrSigningFailed) {
		writeWorkflowError(w, err)
		return
	}

	middlewares.EncodeJSONResponse(w, request)
}

func RecordConfirmation(w http.ResponseWriter, r *http.Request) {
	event := middlewares.GetParsedJSONData[models.ConfirmationEvent](w, r)
	workflowService := middlewares.GetServiceFromContext[models.WorkflowService](w, r, middlewares.WorkflowServiceKey)

	request, err := (*workflowService).RecordConfirmation(r.Context(), event)
	if err != nil {
		writeWorkflowError(w, err)
		return
	}

	middlewares.EncodeJSONResponse(w, request)
}
