package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Renal37/go-custody-workflow/internal/database"
	"github.com/Renal37/go-custody-workflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorage воспроизводит контракт хранилища в памяти,
// включая атомарность ApplyTransitions.
type fakeStorage struct {
	requests     map[string]*database.RequestDB
	order        []string
	audit        map[string][]database.AuditEntryDB
	nextQueuePos int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		requests: make(map[string]*database.RequestDB),
		audit:    make(map[string][]database.AuditEntryDB),
	}
}

func (fs *fakeStorage) CreateRequest(_ context.Context, request database.RequestDB, audit database.AuditEntryDB) error {
	if _, ok := fs.requests[request.ID]; ok {
		return database.ErrDuplicateRequest
	}

	stored := copyRequest(&request)
	fs.requests[request.ID] = stored
	fs.order = append(fs.order, request.ID)
	fs.audit[request.ID] = append(fs.audit[request.ID], audit)
	return nil
}

func (fs *fakeStorage) FindRequest(_ context.Context, requestID string) (*database.RequestDB, error) {
	request, ok := fs.requests[requestID]
	if !ok {
		return nil, nil
	}
	return copyRequest(request), nil
}

func (fs *fakeStorage) FindRequestsByStatus(_ context.Context, status *database.RequestStatusDB) ([]database.RequestDB, error) {
	var result []database.RequestDB
	for _, id := range fs.order {
		request := fs.requests[id]
		if status == nil || request.Status.RequestStatus == status.RequestStatus {
			result = append(result, *copyRequest(request))
		}
	}
	return result, nil
}

func (fs *fakeStorage) FindAuditFlow(_ context.Context, requestID string) ([]database.AuditEntryDB, error) {
	return append([]database.AuditEntryDB{}, fs.audit[requestID]...), nil
}

func (fs *fakeStorage) ApplyTransitions(_ context.Context, transitions ...database.TransitionDB) error {
	// Проверяем существование всех заявок до применения, чтобы
	// сохранить атомарность как в транзакции базы данных.
	for _, t := range transitions {
		if _, ok := fs.requests[t.RequestID]; !ok {
			return fmt.Errorf("заявка %s не найдена при обновлении", t.RequestID)
		}
	}

	for _, t := range transitions {
		request := fs.requests[t.RequestID]

		if t.Update.ClearDecisions {
			request.Approvals = nil
			request.Rejections = nil
		}

		if t.Update.ResetPipeline {
			request.QueuePosition = nil
			request.EnqueuedAt = nil
			request.PipelineStage = nil
			request.ScreeningCompletedAt = nil
			request.TravelRuleCompletedAt = nil
			request.AirGapSessionID = nil
			request.SignatureCompletedAt = nil
			request.TxHash = nil
			request.BlockConfirmations = 0
			request.FailureReason = nil
		}

		request.Status = t.Status

		if t.Update.EnqueuedAt != nil {
			request.EnqueuedAt = t.Update.EnqueuedAt
		}
		if t.Update.PipelineStage != nil {
			request.PipelineStage = t.Update.PipelineStage
		}
		if t.Update.ScreeningCompletedAt != nil {
			request.ScreeningCompletedAt = t.Update.ScreeningCompletedAt
		}
		if t.Update.TravelRuleCompletedAt != nil {
			request.TravelRuleCompletedAt = t.Update.TravelRuleCompletedAt
		}
		if t.Update.AirGapSessionID != nil {
			request.AirGapSessionID = t.Update.AirGapSessionID
		}
		if t.Update.SignatureCompletedAt != nil {
			request.SignatureCompletedAt = t.Update.SignatureCompletedAt
		}
		if t.Update.TxHash != nil {
			request.TxHash = t.Update.TxHash
		}
		if t.Update.BlockConfirmations != nil {
			request.BlockConfirmations = *t.Update.BlockConfirmations
		}
		if t.Update.RequiredConfirmations != nil {
			request.RequiredConfirmations = *t.Update.RequiredConfirmations
		}
		if t.Update.FailureReason != nil {
			request.FailureReason = t.Update.FailureReason
		}

		if t.Update.AssignQueuePosition {
			fs.nextQueuePos++
			position := fs.nextQueuePos
			request.QueuePosition = &position
		}

		if t.AddApproval != nil {
			request.Approvals = append(request.Approvals, *t.AddApproval)
		}
		if t.AddRejection != nil {
			request.Rejections = append(request.Rejections, *t.AddRejection)
		}

		fs.audit[t.RequestID] = append(fs.audit[t.RequestID], t.Audit)
	}

	return nil
}

func copyRequest(request *database.RequestDB) *database.RequestDB {
	clone := *request
	clone.RequiredApprovers = append([]database.RequiredApproverDB{}, request.RequiredApprovers...)
	clone.Approvals = append([]database.ApprovalDB{}, request.Approvals...)
	clone.Rejections = append([]database.RejectionDB{}, request.Rejections...)
	return &clone
}

// testClock позволяет детерминированно сдвигать время в тестах
type testClock struct {
	current time.Time
}

func (tc *testClock) now() time.Time {
	return tc.current
}

func (tc *testClock) advance(d time.Duration) {
	tc.current = tc.current.Add(d)
}

func newTestWorkflow(t *testing.T, queueWait time.Duration, requiredConfirmations int) (*WorkflowService, *fakeStorage, *testClock) {
	t.Helper()

	storage := newFakeStorage()
	clock := &testClock{current: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}

	pipeline := NewPipelineEngine(queueWait, requiredConfirmations)
	pipeline.now = clock.now
	pipeline.newSessionID = func() string { return "air-gap-session-1" }

	registry := NewRegistryService(storage, pipeline)

	workflow := NewWorkflowService(storage, registry, pipeline)
	workflow.now = clock.now

	counter := 0
	workflow.newRequestID = func() string {
		counter++
		return fmt.Sprintf("request-%d", counter)
	}

	return workflow, storage, clock
}

var (
	initiator = models.Actor{ID: "operator-1", Name: "operator"}
	approverX = models.Actor{ID: "X", Name: "Xenia"}
	approverY = models.Actor{ID: "Y", Name: "Yuri"}
	approverZ = models.Actor{ID: "Z", Name: "Zoya"}
)

func validInput() models.WithdrawalInput {
	return models.WithdrawalInput{
		Title:       "Treasury rebalance",
		FromAddress: "bc1-hot-wallet",
		ToAddress:   "bc1-cold-storage",
		Amount:      2.5,
		Currency:    models.CurrencyBTC,
		GroupID:     "treasury",
		Priority:    models.PriorityHigh,
		RequiredApprovals: []models.RequiredApprover{
			{ID: "X", Name: "Xenia", Role: "team lead"},
			{ID: "Y", Name: "Yuri", Role: "compliance"},
			{ID: "Z", Name: "Zoya", Role: "cfo"},
		},
	}
}

func TestSubmitValidation(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	testCases := []struct {
		testName string
		mutate   func(input *models.WithdrawalInput)
	}{
		{
			testName: "empty title",
			mutate:   func(input *models.WithdrawalInput) { input.Title = "" },
		},
		{
			testName: "missing addresses",
			mutate:   func(input *models.WithdrawalInput) { input.ToAddress = "" },
		},
		{
			testName: "non-positive amount",
			mutate:   func(input *models.WithdrawalInput) { input.Amount = 0 },
		},
		{
			testName: "negative amount",
			mutate:   func(input *models.WithdrawalInput) { input.Amount = -1 },
		},
		{
			testName: "unsupported currency",
			mutate:   func(input *models.WithdrawalInput) { input.Currency = "DOGE" },
		},
		{
			testName: "unknown priority",
			mutate:   func(input *models.WithdrawalInput) { input.Priority = "URGENT" },
		},
		{
			testName: "empty approver list",
			mutate:   func(input *models.WithdrawalInput) { input.RequiredApprovals = nil },
		},
		{
			testName: "duplicate approver",
			mutate: func(input *models.WithdrawalInput) {
				input.RequiredApprovals = append(input.RequiredApprovals, models.RequiredApprover{ID: "X", Name: "Xenia"})
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.testName, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			_, err := workflow.Submit(ctx, input, initiator)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestSubmitCreatesSubmittedRequest(t *testing.T) {
	workflow, storage, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	assert.Equal(t, models.StatusSubmitted, request.Status)
	assert.Equal(t, initiator.ID, request.InitiatorID)
	assert.Len(t, request.RequiredApprovals, 3)
	assert.Equal(t, "X", request.RequiredApprovals[0].ID)
	assert.Empty(t, request.Approvals)
	assert.Empty(t, request.Rejections)

	trail := storage.audit[request.ID]
	require.Len(t, trail, 1)
	assert.Equal(t, "request submitted", trail[0].Action)
}

// Сценарий A: согласование строго по порядку X, Y, Z
func TestSequentialApprovalOrder(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	// Z не может утверждать первым
	_, err = workflow.Approve(ctx, request.ID, approverZ)
	assert.ErrorIs(t, err, ErrNotEligible)

	_, err = workflow.Approve(ctx, request.ID, approverX)
	require.NoError(t, err)

	// Z все еще ждет Y
	_, err = workflow.Approve(ctx, request.ID, approverZ)
	assert.ErrorIs(t, err, ErrNotEligible)

	_, err = workflow.Approve(ctx, request.ID, approverY)
	require.NoError(t, err)

	updated, err := workflow.Approve(ctx, request.ID, approverZ)
	require.NoError(t, err)

	// Полное согласование сразу ставит заявку в очередь конвейера
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Len(t, updated.Approvals, 3)
	require.NotNil(t, updated.QueuePosition)
	assert.Equal(t, 1, *updated.QueuePosition)
	require.NotNil(t, updated.PipelineStage)
	assert.Equal(t, models.StageQueued, *updated.PipelineStage)
	assert.Equal(t, 3, updated.RequiredConfirmations)
}

// У каждого утверждения все предыдущие позиции очереди уже утверждены
func TestApprovalsFollowQueueOrder(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	_, err = workflow.Approve(ctx, request.ID, approverX)
	require.NoError(t, err)
	updated, err := workflow.Approve(ctx, request.ID, approverY)
	require.NoError(t, err)

	approvedSet := make(map[string]bool)
	for _, approval := range updated.Approvals {
		approvedSet[approval.ApproverID] = true
	}

	for i, approver := range updated.RequiredApprovals {
		if approvedSet[approver.ID] {
			for j := 0; j < i; j++ {
				assert.True(t, approvedSet[updated.RequiredApprovals[j].ID],
					"approver at position %d approved before position %d", i, j)
			}
		}
	}
}

// Сценарий B: одно отклонение окончательно для всей заявки
func TestSingleRejectionIsFinal(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	input := validInput()
	input.RequiredApprovals = input.RequiredApprovals[:2] // [X, Y]

	request, err := workflow.Submit(ctx, input, initiator)
	require.NoError(t, err)

	_, err = workflow.Approve(ctx, request.ID, approverX)
	require.NoError(t, err)

	updated, err := workflow.Reject(ctx, request.ID, approverY, "policy violation")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, updated.Status)
	require.Len(t, updated.Rejections, 1)
	assert.Equal(t, "policy violation", updated.Rejections[0].Reason)

	// Дальнейшие утверждения невозможны
	_, err = workflow.Approve(ctx, request.ID, approverX)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = workflow.Approve(ctx, request.ID, approverY)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPreemptiveRejectionByWaitingApprover(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	// Z ждет своей очереди, но может отклонить досрочно
	updated, err := workflow.Reject(ctx, request.ID, approverZ, "counterparty is sanctioned")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, updated.Status)
}

func TestRejectRequiresReason(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	_, err = workflow.Reject(ctx, request.ID, approverX, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNoDoubleAction(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	_, err = workflow.Approve(ctx, request.ID, approverX)
	require.NoError(t, err)

	// Повторное утверждение тем же согласующим
	_, err = workflow.Approve(ctx, request.ID, approverX)
	assert.ErrorIs(t, err, ErrNotEligible)

	// Утвердивший не может отклонить
	_, err = workflow.Reject(ctx, request.ID, approverX, "changed my mind")
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestBlockedApproverCannotAct(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	_, err = workflow.Reject(ctx, request.ID, approverX, "budget exceeded")
	require.NoError(t, err)

	// После отклонения заявка уже в REJECTED, команды согласующих отклоняются
	_, err = workflow.Approve(ctx, request.ID, approverY)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOutsiderIsNotEligible(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	_, err = workflow.Approve(ctx, request.ID, models.Actor{ID: "stranger", Name: "stranger"})
	assert.ErrorIs(t, err, ErrNotEligible)
}

// Журнал аудита монотонен: неудачные команды не добавляют записей
func TestAuditLogMonotonicity(t *testing.T) {
	workflow, storage, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	baseline := len(storage.audit[request.ID])

	_, err = workflow.Approve(ctx, request.ID, approverZ)
	require.ErrorIs(t, err, ErrNotEligible)
	assert.Len(t, storage.audit[request.ID], baseline, "failed command must append zero audit entries")

	_, err = workflow.Approve(ctx, request.ID, approverX)
	require.NoError(t, err)
	assert.Greater(t, len(storage.audit[request.ID]), baseline)
}

// Сценарий C: archive закрывает заявку окончательно
func TestArchiveIsTerminal(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	_, err = workflow.Reject(ctx, request.ID, approverX, "wrong destination")
	require.NoError(t, err)

	archived, err := workflow.Archive(ctx, request.ID, initiator)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, archived.Status)

	_, err = workflow.ReApply(ctx, request.ID, initiator)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReApplyResetsCleanly(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	_, err = workflow.Approve(ctx, request.ID, approverX)
	require.NoError(t, err)
	_, err = workflow.Reject(ctx, request.ID, approverY, "limits")
	require.NoError(t, err)

	reapplied, err := workflow.ReApply(ctx, request.ID, initiator)
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, reapplied.Status)
	assert.Empty(t, reapplied.Approvals)
	assert.Empty(t, reapplied.Rejections)
	assert.Len(t, reapplied.RequiredApprovals, 3, "approval queue is preserved")
	assert.Equal(t, "X", reapplied.RequiredApprovals[0].ID)

	// Новый цикл согласования начинается с позиции 0
	resubmitted, err := workflow.Resubmit(ctx, request.ID, initiator)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, resubmitted.Status)

	_, err = workflow.Approve(ctx, request.ID, approverY)
	assert.ErrorIs(t, err, ErrNotEligible)
	_, err = workflow.Approve(ctx, request.ID, approverX)
	assert.NoError(t, err)
}

// Повторная команда по заявке, уже находящейся в целевом статусе,
// отклоняется и не оставляет следов в журнале аудита
func TestRepeatedCommandInTargetStatusFails(t *testing.T) {
	workflow, storage, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	_, err = workflow.Reject(ctx, request.ID, approverX, "wrong destination")
	require.NoError(t, err)

	_, err = workflow.Archive(ctx, request.ID, initiator)
	require.NoError(t, err)

	baseline := len(storage.audit[request.ID])

	// Повторное архивирование терминальной заявки
	_, err = workflow.Archive(ctx, request.ID, initiator)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, storage.audit[request.ID], baseline)

	final, err := workflow.registry.Get(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, final.Status)
}

func TestResubmitOnSubmittedFails(t *testing.T) {
	workflow, storage, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	baseline := len(storage.audit[request.ID])

	_, err = workflow.Resubmit(ctx, request.ID, initiator)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, storage.audit[request.ID], baseline)
}

func TestReApplyOnDraftFails(t *testing.T) {
	workflow, storage, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	_, err = workflow.Reject(ctx, request.ID, approverX, "limits")
	require.NoError(t, err)

	_, err = workflow.ReApply(ctx, request.ID, initiator)
	require.NoError(t, err)

	baseline := len(storage.audit[request.ID])

	// Заявка уже в черновике: повторный возврат не проходит
	_, err = workflow.ReApply(ctx, request.ID, initiator)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, storage.audit[request.ID], baseline)
}

func TestReApplyOnlyByInitiator(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	_, err = workflow.Reject(ctx, request.ID, approverX, "limits")
	require.NoError(t, err)

	_, err = workflow.ReApply(ctx, request.ID, approverX)
	assert.ErrorIs(t, err, ErrNotEligible)
}

func TestCancelBeforeAnyApproval(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	cancelled, err := workflow.Cancel(ctx, request.ID, initiator)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	// Терминальный статус: команды больше не принимаются
	_, err = workflow.Cancel(ctx, request.ID, initiator)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestCancelAfterFirstApprovalFails(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	_, err = workflow.Approve(ctx, request.ID, approverX)
	require.NoError(t, err)

	_, err = workflow.Cancel(ctx, request.ID, initiator)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestUnknownRequest(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	_, err := workflow.Approve(ctx, "missing", approverX)
	assert.ErrorIs(t, err, ErrRequestNotFound)

	err = workflow.AdvancePipeline(ctx, "missing")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestGuardTransitionTable(t *testing.T) {
	testCases := []struct {
		from    models.RequestStatus
		to      models.RequestStatus
		allowed bool
	}{
		{models.StatusDraft, models.StatusSubmitted, true},
		{models.StatusSubmitted, models.StatusApproved, true},
		{models.StatusSubmitted, models.StatusRejected, true},
		{models.StatusSubmitted, models.StatusCancelled, true},
		{models.StatusApproved, models.StatusPending, true},
		{models.StatusPending, models.StatusProcessing, true},
		{models.StatusPending, models.StatusCancelled, true},
		{models.StatusProcessing, models.StatusCompleted, true},
		{models.StatusProcessing, models.StatusRejected, true},
		{models.StatusRejected, models.StatusArchived, true},
		{models.StatusRejected, models.StatusDraft, true},

		{models.StatusDraft, models.StatusApproved, false},
		{models.StatusSubmitted, models.StatusProcessing, false},
		{models.StatusCompleted, models.StatusDraft, false},
		{models.StatusArchived, models.StatusDraft, false},
		{models.StatusCancelled, models.StatusSubmitted, false},
		{models.StatusProcessing, models.StatusPending, false},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s to %s", tc.from, tc.to), func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to))
		})
	}
}

func TestConcurrentCommandsAreSerialized(t *testing.T) {
	workflow, _, _ := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	input := validInput()
	input.RequiredApprovals = input.RequiredApprovals[:2]

	request, err := workflow.Submit(ctx, input, initiator)
	require.NoError(t, err)

	_, err = workflow.Approve(ctx, request.ID, approverX)
	require.NoError(t, err)

	done := make(chan error, 2)
	go func() {
		_, err := workflow.Approve(ctx, request.ID, approverY)
		done <- err
	}()
	go func() {
		_, err := workflow.Reject(ctx, request.ID, approverY, "race")
		done <- err
	}()

	first := <-done
	second := <-done

	// Ровно одна из конкурирующих команд выигрывает
	if first == nil {
		assert.Error(t, second)
	} else {
		assert.NoError(t, second)
	}

	final, err := workflow.registry.Get(ctx, request.ID)
	require.NoError(t, err)
	assert.Contains(t, []models.RequestStatus{models.StatusPending, models.StatusRejected}, final.Status)
	assert.LessOrEqual(t, len(final.Approvals)+len(final.Rejections), len(final.RequiredApprovals))

	for _, approval := range final.Approvals {
		for _, rejection := range final.Rejections {
			assert.NotEqual(t, approval.ApproverID, rejection.ApproverID)
		}
	}
}

func TestScreeningFailureIsWrapped(t *testing.T) {
	workflow, _, clock := newTestWorkflow(t, time.Minute, 3)
	ctx := context.Background()

	request := submitAndApprove(t, workflow)

	clock.advance(2 * time.Minute)
	require.NoError(t, workflow.AdvancePipeline(ctx, request.ID))

	reason := "sanctions list match"
	updated, err := workflow.CompleteScreening(ctx, models.ScreeningResult{
		RequestID: request.ID,
		Passed:    false,
		Reason:    &reason,
	})

	require.ErrorIs(t, err, ErrScreeningFailed)
	require.NotNil(t, updated)
	assert.Equal(t, models.StatusRejected, updated.Status)
	require.NotNil(t, updated.FailureReason)
	assert.Equal(t, reason, *updated.FailureReason)
}

// submitAndApprove прогоняет заявку через полное согласование до очереди
func submitAndApprove(t *testing.T, workflow *WorkflowService) *models.WithdrawalRequest {
	t.Helper()
	ctx := context.Background()

	request, err := workflow.Submit(ctx, validInput(), initiator)
	require.NoError(t, err)

	for _, approver := range []models.Actor{approverX, approverY, approverZ} {
		request, err = workflow.Approve(ctx, request.ID, approver)
		require.NoError(t, err)
	}

	require.Equal(t, models.StatusPending, request.Status)
	return request
}
