package businessflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/services"
	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/repository"
	"github.com/petrodesk/petrodesk/utils"
	"gorm.io/gorm"
)

// ApprovalFlow handles decisions on price suggestions.
//
// Two guards keep concurrent decisions consistent: the unique index on
// (suggestion_id, level) makes the second decision at one level fail, and
// the registry version taken with the chain snapshot is re-checked inside
// the transaction so a chain change between read and commit rolls the
// decision back.
type ApprovalFlow interface {
	Decide(ctx context.Context, suggestionUUID string, request *dto.DecideRequest, actorID uint, metadata *ClientMetadata) (*dto.DecideResponse, error)
	BatchDecide(ctx context.Context, request *dto.BatchDecideRequest, actorID uint, metadata *ClientMetadata) (*dto.BatchDecideResponse, error)
	Repair(ctx context.Context, suggestionUUID string, actorID uint, metadata *ClientMetadata) (*dto.RepairResponse, error)
	PendingApprovals(ctx context.Context, request *dto.PendingApprovalsRequest, actorID uint) (*dto.PendingApprovalsResponse, error)
}

// ApprovalFlowImpl implements the approval business flow
type ApprovalFlowImpl struct {
	suggestionRepo    repository.PriceSuggestionRepository
	approvalRepo      repository.PriceApprovalRepository
	auditRepo         repository.AuditLogRepository
	permissionService services.PermissionService
	orderFlow         ApprovalOrderFlow
	dispatcher        services.NotificationDispatcher
	db                *gorm.DB
}

// NewApprovalFlow creates a new approval flow instance
func NewApprovalFlow(
	suggestionRepo repository.PriceSuggestionRepository,
	approvalRepo repository.PriceApprovalRepository,
	auditRepo repository.AuditLogRepository,
	permissionService services.PermissionService,
	orderFlow ApprovalOrderFlow,
	dispatcher services.NotificationDispatcher,
	db *gorm.DB,
) ApprovalFlow {
	return &ApprovalFlowImpl{
		suggestionRepo:    suggestionRepo,
		approvalRepo:      approvalRepo,
		auditRepo:         auditRepo,
		permissionService: permissionService,
		orderFlow:         orderFlow,
		dispatcher:        dispatcher,
		db:                db,
	}
}

// decisionOutcome carries the state computed inside the decide transaction
type decisionOutcome struct {
	suggestion  *models.PriceSuggestion
	nextLevel   int
	nextProfile string
	terminal    bool
}

// Decide applies one approval decision at the suggestion's current level
func (af *ApprovalFlowImpl) Decide(ctx context.Context, suggestionUUID string, request *dto.DecideRequest, actorID uint, metadata *ClientMetadata) (*dto.DecideResponse, error) {
	permissions, err := af.requireApprover(ctx, actorID)
	if err != nil {
		return nil, err
	}

	snapshot, err := af.orderFlow.Snapshot(ctx)
	if err != nil {
		return nil, NewBusinessError("DECIDE_FAILED", "Failed to read approval chain", err)
	}

	outcome, err := af.decideOne(ctx, suggestionUUID, request, actorID, permissions, snapshot)
	if err != nil {
		errMsg := fmt.Sprintf("Decision failed: %s", err.Error())
		af.logDecision(ctx, actorID, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("DECIDE_FAILED", "Failed to decide on suggestion", err)
	}

	msg := fmt.Sprintf("Decision recorded on %s: %s", outcome.suggestion.UUID, request.Decision)
	af.logDecision(ctx, actorID, msg, true, nil, metadata)

	af.dispatchOutcome(ctx, outcome, actorID)

	return &dto.DecideResponse{Suggestion: ToSuggestionDTO(*outcome.suggestion)}, nil
}

// BatchDecide applies one decision to every undecided suggestion of a batch.
// Results are partial: one failing suggestion does not block the rest.
func (af *ApprovalFlowImpl) BatchDecide(ctx context.Context, request *dto.BatchDecideRequest, actorID uint, metadata *ClientMetadata) (*dto.BatchDecideResponse, error) {
	permissions, err := af.requireApprover(ctx, actorID)
	if err != nil {
		return nil, err
	}

	batchID, err := uuid.Parse(request.BatchID)
	if err != nil {
		return nil, NewBusinessError("BATCH_DECIDE_VALIDATION_FAILED", "Batch validation failed", ErrBatchNotFound)
	}

	suggestions, err := af.suggestionRepo.ByBatchID(ctx, batchID)
	if err != nil {
		return nil, NewBusinessError("BATCH_DECIDE_FAILED", "Failed to load batch", err)
	}
	if len(suggestions) == 0 {
		return nil, NewBusinessError("BATCH_DECIDE_FAILED", "Failed to load batch", ErrBatchNotFound)
	}

	snapshot, err := af.orderFlow.Snapshot(ctx)
	if err != nil {
		return nil, NewBusinessError("BATCH_DECIDE_FAILED", "Failed to read approval chain", err)
	}

	itemRequest := &dto.DecideRequest{
		Decision:    request.Decision,
		Observation: request.Observation,
	}

	resp := &dto.BatchDecideResponse{BatchID: request.BatchID}
	for _, suggestion := range suggestions {
		result := dto.BatchDecideResult{SuggestionUUID: suggestion.UUID.String()}

		outcome, err := af.decideOne(ctx, suggestion.UUID.String(), itemRequest, actorID, permissions, snapshot)
		if err != nil {
			result.Success = false
			result.ErrorCode = CodeOf(err)
			result.ErrorMessage = err.Error()
			resp.Failed++
		} else {
			result.Success = true
			result.Status = outcome.suggestion.Status.String()
			resp.Decided++
			af.dispatchOutcome(ctx, outcome, actorID)
		}

		resp.Results = append(resp.Results, result)
	}

	msg := fmt.Sprintf("Batch decision on %s: %d decided, %d failed", request.BatchID, resp.Decided, resp.Failed)
	af.logDecision(ctx, actorID, msg, resp.Failed == 0, nil, metadata)

	return resp, nil
}

// Repair re-anchors a suggestion stranded by a chain change: its current
// level no longer maps to an active row. The suggestion moves to the lowest
// active level above the last decided one, or approves when none remains.
func (af *ApprovalFlowImpl) Repair(ctx context.Context, suggestionUUID string, actorID uint, metadata *ClientMetadata) (*dto.RepairResponse, error) {
	if _, err := af.requireApprover(ctx, actorID); err != nil {
		return nil, err
	}

	snapshot, err := af.orderFlow.Snapshot(ctx)
	if err != nil {
		return nil, NewBusinessError("REPAIR_FAILED", "Failed to read approval chain", err)
	}
	if snapshot.FirstActiveLevel() == 0 {
		return nil, NewBusinessError("REPAIR_CHAIN_EMPTY", "Approval chain is not configured", ErrApprovalChainEmpty)
	}

	var suggestion *models.PriceSuggestion
	var terminal bool
	var nextLevel int

	err = repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		var err error
		suggestion, err = af.suggestionRepo.ByUUID(ctx, suggestionUUID)
		if err != nil {
			return err
		}
		if suggestion == nil {
			return ErrSuggestionNotFound
		}
		if suggestion.IsTerminal() {
			return ErrSuggestionTerminal
		}

		if _, ok := snapshot.ActiveProfileAt(suggestion.CurrentLevel); ok {
			return ErrNotRepairable
		}

		approvals, err := af.approvalRepo.ListBySuggestion(ctx, suggestion.ID)
		if err != nil {
			return err
		}
		lastDecided := 0
		for _, approval := range approvals {
			if approval.Level > lastDecided {
				lastDecided = approval.Level
			}
		}

		nextLevel = snapshot.NextActiveLevel(lastDecided)
		status := models.SuggestionStatusInApproval
		if len(approvals) == 0 {
			status = models.SuggestionStatusPending
		}
		if nextLevel == 0 {
			// Every remaining level was decided or deactivated
			status = models.SuggestionStatusApproved
			nextLevel = suggestion.CurrentLevel
			terminal = true
		}

		if err := af.validateChainVersion(ctx, snapshot.Version); err != nil {
			return err
		}

		if err := af.suggestionRepo.UpdateStatusLevel(ctx, suggestion.ID, status, nextLevel); err != nil {
			return err
		}
		suggestion.Status = status
		suggestion.CurrentLevel = nextLevel
		return nil
	})
	if err != nil {
		errMsg := fmt.Sprintf("Repair failed: %s", err.Error())
		af.logRepair(ctx, actorID, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("REPAIR_FAILED", "Failed to repair suggestion", err)
	}

	msg := fmt.Sprintf("Suggestion repaired: %s -> level %d", suggestion.UUID, suggestion.CurrentLevel)
	af.logRepair(ctx, actorID, msg, true, nil, metadata)

	if terminal {
		_ = af.dispatcher.NotifyTerminal(ctx, suggestion, "sistema")
	} else if profileName, ok := snapshot.ActiveProfileAt(suggestion.CurrentLevel); ok {
		_ = af.dispatcher.NotifyApprovalRequested(ctx, suggestion, profileName, suggestion.CurrentLevel)
	}

	return &dto.RepairResponse{
		Suggestion: ToSuggestionDTO(*suggestion),
		Repaired:   true,
	}, nil
}

// PendingApprovals returns the suggestions waiting at the caller's level
func (af *ApprovalFlowImpl) PendingApprovals(ctx context.Context, request *dto.PendingApprovalsRequest, actorID uint) (*dto.PendingApprovalsResponse, error) {
	permissions, err := af.requireApprover(ctx, actorID)
	if err != nil {
		return nil, err
	}

	page, pageSize, err := NormalizePagination(request.Page, request.PageSize)
	if err != nil {
		return nil, NewBusinessError("PENDING_VALIDATION_FAILED", "Pending list validation failed", err)
	}

	snapshot, err := af.orderFlow.Snapshot(ctx)
	if err != nil {
		return nil, NewBusinessError("PENDING_FAILED", "Failed to read approval chain", err)
	}

	level, active := snapshot.PositionOf(permissions.ProfileName)
	if level == 0 || !active {
		return &dto.PendingApprovalsResponse{
			Suggestions: []dto.SuggestionDTO{},
			Pagination:  dto.PaginationDTO{Page: page, PageSize: pageSize},
		}, nil
	}

	var total int64
	out := make([]dto.SuggestionDTO, 0, pageSize)
	for _, status := range []models.SuggestionStatus{models.SuggestionStatusPending, models.SuggestionStatusInApproval} {
		filter := models.PriceSuggestionFilter{
			StationID:    request.StationID,
			Status:       utils.ToPtr(status),
			CurrentLevel: &level,
		}

		count, err := af.suggestionRepo.Count(ctx, filter)
		if err != nil {
			return nil, NewBusinessError("PENDING_FAILED", "Failed to list pending suggestions", err)
		}
		total += count

		suggestions, err := af.suggestionRepo.ByFilter(ctx, filter, "created_at ASC", pageSize, (page-1)*pageSize)
		if err != nil {
			return nil, NewBusinessError("PENDING_FAILED", "Failed to list pending suggestions", err)
		}
		for _, suggestion := range suggestions {
			out = append(out, ToSuggestionDTO(*suggestion))
		}
	}

	return &dto.PendingApprovalsResponse{
		Suggestions: out,
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

// Private helper methods

func (af *ApprovalFlowImpl) requireApprover(ctx context.Context, actorID uint) (*services.PermissionSet, error) {
	permissions, err := af.permissionService.Resolve(ctx, actorID)
	if err != nil {
		return nil, NewBusinessError("APPROVE_PERMISSION_CHECK_FAILED", "Permission check failed", err)
	}
	if !permissions.Has(models.CapabilityApprove) {
		return nil, NewBusinessError("APPROVE_FORBIDDEN", "Caller cannot approve suggestions", ErrPermissionDenied)
	}
	return permissions, nil
}

// decideOne runs the full decision transaction for one suggestion
func (af *ApprovalFlowImpl) decideOne(ctx context.Context, suggestionUUID string, request *dto.DecideRequest, actorID uint, permissions *services.PermissionSet, snapshot *models.OrderSnapshot) (*decisionOutcome, error) {
	decision := models.ApprovalDecision(request.Decision)
	if !decision.Valid() {
		return nil, ErrInvalidDecision
	}
	if request.Observation != nil && len(*request.Observation) > utils.MaxObservationsLength {
		return nil, ErrObservationsTooLong
	}

	outcome := &decisionOutcome{}

	err := repository.WithTransaction(ctx, af.db, func(ctx context.Context) error {
		suggestion, err := af.suggestionRepo.ByUUID(ctx, suggestionUUID)
		if err != nil {
			return err
		}
		if suggestion == nil {
			return ErrSuggestionNotFound
		}
		if suggestion.IsTerminal() {
			return ErrSuggestionTerminal
		}
		if suggestion.CreatedByID == actorID {
			return ErrSelfApproval
		}

		levelProfile, ok := snapshot.ActiveProfileAt(suggestion.CurrentLevel)
		if !ok {
			// Stranded by a chain change, needs repair first
			return ErrApprovalChainChanged
		}
		if levelProfile != permissions.ProfileName {
			return ErrNotLevelApprover
		}

		if decision == models.DecisionApproved &&
			permissions.MaxApprovalMargin != nil &&
			suggestion.Margin > *permissions.MaxApprovalMargin {
			return ErrMarginAboveLimit
		}

		approval := &models.PriceApproval{
			SuggestionID: suggestion.ID,
			Level:        suggestion.CurrentLevel,
			ApproverID:   actorID,
			Decision:     decision,
			Observation:  request.Observation,
		}
		if err := af.approvalRepo.Save(ctx, approval); err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrSuggestionAlreadyDecided
			}
			return err
		}

		// The chain must not have moved since the snapshot was taken,
		// otherwise the level advance below could anchor on stale data
		if err := af.validateChainVersion(ctx, snapshot.Version); err != nil {
			return err
		}

		status := suggestion.Status
		level := suggestion.CurrentLevel

		if decision == models.DecisionRejected {
			status = models.SuggestionStatusRejected
			outcome.terminal = true
		} else {
			next := snapshot.NextActiveLevel(suggestion.CurrentLevel)
			if next == 0 {
				status = models.SuggestionStatusApproved
				outcome.terminal = true
			} else {
				status = models.SuggestionStatusInApproval
				level = next
				outcome.nextLevel = next
				outcome.nextProfile, _ = snapshot.ActiveProfileAt(next)
			}
		}

		if err := af.suggestionRepo.UpdateStatusLevel(ctx, suggestion.ID, status, level); err != nil {
			return err
		}

		suggestion.Status = status
		suggestion.CurrentLevel = level
		suggestion.Approvals = append(suggestion.Approvals, *approval)
		outcome.suggestion = suggestion
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

func (af *ApprovalFlowImpl) validateChainVersion(ctx context.Context, expected int64) error {
	current, err := af.orderFlow.CurrentVersion(ctx)
	if err != nil {
		return err
	}
	if current != expected {
		return ErrApprovalChainChanged
	}
	return nil
}

func (af *ApprovalFlowImpl) dispatchOutcome(ctx context.Context, outcome *decisionOutcome, actorID uint) {
	if outcome.terminal {
		deciderName := fmt.Sprintf("usuário %d", actorID)
		if len(outcome.suggestion.Approvals) > 0 {
			last := outcome.suggestion.Approvals[len(outcome.suggestion.Approvals)-1]
			if last.Approver != nil {
				deciderName = last.Approver.FullName
			}
		}
		_ = af.dispatcher.NotifyTerminal(ctx, outcome.suggestion, deciderName)
		return
	}
	if outcome.nextProfile != "" {
		_ = af.dispatcher.NotifyApprovalRequested(ctx, outcome.suggestion, outcome.nextProfile, outcome.nextLevel)
	}
}

func (af *ApprovalFlowImpl) logDecision(ctx context.Context, actorID uint, description string, success bool, errMsg *string, metadata *ClientMetadata) {
	af.logAction(ctx, actorID, models.AuditActionSuggestionDecided, description, success, errMsg, metadata)
}

func (af *ApprovalFlowImpl) logRepair(ctx context.Context, actorID uint, description string, success bool, errMsg *string, metadata *ClientMetadata) {
	af.logAction(ctx, actorID, models.AuditActionSuggestionRepaired, description, success, errMsg, metadata)
}

func (af *ApprovalFlowImpl) logAction(ctx context.Context, actorID uint, action, description string, success bool, errMsg *string, metadata *ClientMetadata) {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:       &actorID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	requestID := ctx.Value(RequestIDKey)
	if requestID != nil {
		if requestIDStr, ok := requestID.(string); ok {
			audit.RequestID = &requestIDStr
		}
	}

	_ = af.auditRepo.Save(ctx, audit)
}
