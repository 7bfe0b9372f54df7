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

// SuggestionFlow handles submission and maintenance of price suggestions
type SuggestionFlow interface {
	Submit(ctx context.Context, request *dto.SubmitSuggestionRequest, actorID uint, metadata *ClientMetadata) (*dto.SubmitSuggestionResponse, error)
	SubmitBatch(ctx context.Context, request *dto.SubmitBatchRequest, actorID uint, metadata *ClientMetadata) (*dto.SubmitBatchResponse, error)
	Edit(ctx context.Context, suggestionUUID string, request *dto.EditSuggestionRequest, actorID uint, metadata *ClientMetadata) (*dto.EditSuggestionResponse, error)
	List(ctx context.Context, request *dto.ListSuggestionsRequest, actorID uint) (*dto.ListSuggestionsResponse, error)
	Get(ctx context.Context, suggestionUUID string, actorID uint) (*dto.GetSuggestionResponse, error)
}

// SuggestionFlowImpl implements the suggestion business flow
type SuggestionFlowImpl struct {
	suggestionRepo    repository.PriceSuggestionRepository
	approvalRepo      repository.PriceApprovalRepository
	stationRepo       repository.StationRepository
	clientRepo        repository.ClientRepository
	paymentMethodRepo repository.PaymentMethodRepository
	auditRepo         repository.AuditLogRepository
	permissionService services.PermissionService
	orderFlow         ApprovalOrderFlow
	dispatcher        services.NotificationDispatcher
	db                *gorm.DB
}

// NewSuggestionFlow creates a new suggestion flow instance
func NewSuggestionFlow(
	suggestionRepo repository.PriceSuggestionRepository,
	approvalRepo repository.PriceApprovalRepository,
	stationRepo repository.StationRepository,
	clientRepo repository.ClientRepository,
	paymentMethodRepo repository.PaymentMethodRepository,
	auditRepo repository.AuditLogRepository,
	permissionService services.PermissionService,
	orderFlow ApprovalOrderFlow,
	dispatcher services.NotificationDispatcher,
	db *gorm.DB,
) SuggestionFlow {
	return &SuggestionFlowImpl{
		suggestionRepo:    suggestionRepo,
		approvalRepo:      approvalRepo,
		stationRepo:       stationRepo,
		clientRepo:        clientRepo,
		paymentMethodRepo: paymentMethodRepo,
		auditRepo:         auditRepo,
		permissionService: permissionService,
		orderFlow:         orderFlow,
		dispatcher:        dispatcher,
		db:                db,
	}
}

// Submit validates and persists one price suggestion, anchoring it at the
// first active level of the approval chain. An empty chain fails the
// submission: suggestions never auto-approve.
func (sf *SuggestionFlowImpl) Submit(ctx context.Context, request *dto.SubmitSuggestionRequest, actorID uint, metadata *ClientMetadata) (*dto.SubmitSuggestionResponse, error) {
	permissions, err := sf.permissionService.Resolve(ctx, actorID)
	if err != nil {
		return nil, NewBusinessError("SUBMIT_PERMISSION_CHECK_FAILED", "Permission check failed", err)
	}
	if !permissions.Has(models.CapabilityRegisterPrice) {
		return nil, NewBusinessError("SUBMIT_FORBIDDEN", "Caller cannot register prices", ErrPermissionDenied)
	}

	snapshot, err := sf.orderFlow.Snapshot(ctx)
	if err != nil {
		return nil, NewBusinessError("SUBMIT_FAILED", "Failed to read approval chain", err)
	}
	firstLevel := snapshot.FirstActiveLevel()
	if firstLevel == 0 {
		return nil, NewBusinessError("SUBMIT_CHAIN_EMPTY", "Approval chain is not configured", ErrApprovalChainEmpty)
	}

	var suggestion *models.PriceSuggestion

	err = repository.WithTransaction(ctx, sf.db, func(ctx context.Context) error {
		suggestion, err = sf.buildSuggestion(ctx, request, actorID, firstLevel, nil, nil)
		if err != nil {
			return err
		}
		return sf.suggestionRepo.Save(ctx, suggestion)
	})
	if err != nil {
		errMsg := fmt.Sprintf("Submission failed: %s", err.Error())
		sf.logSuggestionAction(ctx, actorID, models.AuditActionSuggestionSubmitted, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("SUBMIT_FAILED", "Failed to submit price suggestion", err)
	}

	msg := fmt.Sprintf("Suggestion submitted: %s", suggestion.UUID)
	sf.logSuggestionAction(ctx, actorID, models.AuditActionSuggestionSubmitted, msg, true, nil, metadata)

	sf.notifyLevel(ctx, suggestion, snapshot, firstLevel)

	return &dto.SubmitSuggestionResponse{Suggestion: ToSuggestionDTO(*suggestion)}, nil
}

// SubmitBatch persists a group of suggestions under one batch ID. The batch
// is atomic: one invalid item fails the whole submission.
func (sf *SuggestionFlowImpl) SubmitBatch(ctx context.Context, request *dto.SubmitBatchRequest, actorID uint, metadata *ClientMetadata) (*dto.SubmitBatchResponse, error) {
	if len(request.Suggestions) == 0 {
		return nil, NewBusinessError("SUBMIT_BATCH_VALIDATION_FAILED", "Batch validation failed", ErrBatchEmpty)
	}
	if len(request.Suggestions) > utils.MaxBatchSize {
		return nil, NewBusinessError("SUBMIT_BATCH_VALIDATION_FAILED", "Batch validation failed", ErrBatchTooLarge)
	}

	permissions, err := sf.permissionService.Resolve(ctx, actorID)
	if err != nil {
		return nil, NewBusinessError("SUBMIT_PERMISSION_CHECK_FAILED", "Permission check failed", err)
	}
	if !permissions.Has(models.CapabilityRegisterPrice) {
		return nil, NewBusinessError("SUBMIT_FORBIDDEN", "Caller cannot register prices", ErrPermissionDenied)
	}

	snapshot, err := sf.orderFlow.Snapshot(ctx)
	if err != nil {
		return nil, NewBusinessError("SUBMIT_BATCH_FAILED", "Failed to read approval chain", err)
	}
	firstLevel := snapshot.FirstActiveLevel()
	if firstLevel == 0 {
		return nil, NewBusinessError("SUBMIT_CHAIN_EMPTY", "Approval chain is not configured", ErrApprovalChainEmpty)
	}

	batchID := uuid.New()
	suggestions := make([]*models.PriceSuggestion, 0, len(request.Suggestions))

	err = repository.WithTransaction(ctx, sf.db, func(ctx context.Context) error {
		for i := range request.Suggestions {
			suggestion, err := sf.buildSuggestion(ctx, &request.Suggestions[i], actorID, firstLevel, &batchID, request.BatchName)
			if err != nil {
				return err
			}
			suggestions = append(suggestions, suggestion)
		}
		return sf.suggestionRepo.SaveBatch(ctx, suggestions)
	})
	if err != nil {
		errMsg := fmt.Sprintf("Batch submission failed: %s", err.Error())
		sf.logSuggestionAction(ctx, actorID, models.AuditActionSuggestionSubmitted, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("SUBMIT_BATCH_FAILED", "Failed to submit suggestion batch", err)
	}

	msg := fmt.Sprintf("Batch submitted: %s (%d suggestions)", batchID, len(suggestions))
	sf.logSuggestionAction(ctx, actorID, models.AuditActionSuggestionSubmitted, msg, true, nil, metadata)

	out := make([]dto.SuggestionDTO, 0, len(suggestions))
	for _, suggestion := range suggestions {
		sf.notifyLevel(ctx, suggestion, snapshot, firstLevel)
		out = append(out, ToSuggestionDTO(*suggestion))
	}

	return &dto.SubmitBatchResponse{
		BatchID:     batchID.String(),
		Suggestions: out,
	}, nil
}

// Edit updates a suggestion that has not entered the decision flow yet.
// Only the creator may edit, and any recorded decision freezes the row.
func (sf *SuggestionFlowImpl) Edit(ctx context.Context, suggestionUUID string, request *dto.EditSuggestionRequest, actorID uint, metadata *ClientMetadata) (*dto.EditSuggestionResponse, error) {
	var updated *models.PriceSuggestion

	err := repository.WithTransaction(ctx, sf.db, func(ctx context.Context) error {
		suggestion, err := sf.suggestionRepo.ByUUID(ctx, suggestionUUID)
		if err != nil {
			return err
		}
		if suggestion == nil {
			return ErrSuggestionNotFound
		}
		if suggestion.CreatedByID != actorID {
			return ErrPermissionDenied
		}
		if !suggestion.IsEditable() {
			return ErrSuggestionNotEditable
		}

		approvals, err := sf.approvalRepo.ListBySuggestion(ctx, suggestion.ID)
		if err != nil {
			return err
		}
		if len(approvals) > 0 {
			return ErrSuggestionNotEditable
		}

		if request.CostPrice != nil {
			suggestion.CostPrice = *request.CostPrice
		}
		if request.FinalPrice != nil {
			suggestion.FinalPrice = *request.FinalPrice
		}
		if suggestion.FinalPrice < suggestion.CostPrice {
			return ErrFinalPriceBelowCost
		}
		suggestion.Margin = computeMargin(suggestion.CostPrice, suggestion.FinalPrice)

		if request.PaymentMethodID != nil {
			if err := sf.checkPaymentMethod(ctx, *request.PaymentMethodID); err != nil {
				return err
			}
			suggestion.PaymentMethodID = request.PaymentMethodID
		}
		if request.Observations != nil {
			if len(*request.Observations) > utils.MaxObservationsLength {
				return ErrObservationsTooLong
			}
			suggestion.Observations = request.Observations
		}
		if request.Attachments != nil {
			suggestion.Attachments = request.Attachments
		}

		if err := sf.suggestionRepo.Update(ctx, *suggestion); err != nil {
			return err
		}
		updated = suggestion
		return nil
	})
	if err != nil {
		errMsg := fmt.Sprintf("Edit failed: %s", err.Error())
		sf.logSuggestionAction(ctx, actorID, models.AuditActionSuggestionEdited, errMsg, false, &errMsg, metadata)
		return nil, NewBusinessError("EDIT_FAILED", "Failed to edit price suggestion", err)
	}

	msg := fmt.Sprintf("Suggestion edited: %s", updated.UUID)
	sf.logSuggestionAction(ctx, actorID, models.AuditActionSuggestionEdited, msg, true, nil, metadata)

	return &dto.EditSuggestionResponse{Suggestion: ToSuggestionDTO(*updated)}, nil
}

// List returns a page of suggestions. Callers without the approve or
// reports capability only see their own submissions.
func (sf *SuggestionFlowImpl) List(ctx context.Context, request *dto.ListSuggestionsRequest, actorID uint) (*dto.ListSuggestionsResponse, error) {
	page, pageSize, err := NormalizePagination(request.Page, request.PageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_VALIDATION_FAILED", "List validation failed", err)
	}

	permissions, err := sf.permissionService.Resolve(ctx, actorID)
	if err != nil {
		return nil, NewBusinessError("LIST_PERMISSION_CHECK_FAILED", "Permission check failed", err)
	}

	filter := models.PriceSuggestionFilter{
		StationID:   request.StationID,
		CreatedByID: request.CreatedByID,
	}
	if request.ProductCode != nil {
		code := models.ProductCode(*request.ProductCode)
		if !code.Valid() {
			return nil, NewBusinessError("LIST_VALIDATION_FAILED", "List validation failed", ErrInvalidProductCode)
		}
		filter.ProductCode = &code
	}
	if request.Status != nil {
		status := models.SuggestionStatus(*request.Status)
		filter.Status = &status
	}

	if !permissions.Has(models.CapabilityApprove) && !permissions.Has(models.CapabilityViewReports) {
		filter.CreatedByID = &actorID
	}

	total, err := sf.suggestionRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_FAILED", "Failed to list suggestions", err)
	}

	suggestions, err := sf.suggestionRepo.ByFilter(ctx, filter, "created_at DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_FAILED", "Failed to list suggestions", err)
	}

	out := make([]dto.SuggestionDTO, 0, len(suggestions))
	for _, suggestion := range suggestions {
		out = append(out, ToSuggestionDTO(*suggestion))
	}

	return &dto.ListSuggestionsResponse{
		Suggestions: out,
		Pagination: dto.PaginationDTO{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	}, nil
}

// Get returns one suggestion with its full decision history
func (sf *SuggestionFlowImpl) Get(ctx context.Context, suggestionUUID string, actorID uint) (*dto.GetSuggestionResponse, error) {
	suggestion, err := sf.suggestionRepo.ByUUID(ctx, suggestionUUID)
	if err != nil {
		return nil, NewBusinessError("GET_FAILED", "Failed to load suggestion", err)
	}
	if suggestion == nil {
		return nil, NewBusinessError("GET_FAILED", "Failed to load suggestion", ErrSuggestionNotFound)
	}

	permissions, err := sf.permissionService.Resolve(ctx, actorID)
	if err != nil {
		return nil, NewBusinessError("GET_PERMISSION_CHECK_FAILED", "Permission check failed", err)
	}
	if suggestion.CreatedByID != actorID &&
		!permissions.Has(models.CapabilityApprove) &&
		!permissions.Has(models.CapabilityViewReports) {
		return nil, NewBusinessError("GET_FORBIDDEN", "Caller cannot view this suggestion", ErrPermissionDenied)
	}

	approvals, err := sf.approvalRepo.ListBySuggestion(ctx, suggestion.ID)
	if err != nil {
		return nil, NewBusinessError("GET_FAILED", "Failed to load decision history", err)
	}
	suggestion.Approvals = make([]models.PriceApproval, 0, len(approvals))
	for _, approval := range approvals {
		suggestion.Approvals = append(suggestion.Approvals, *approval)
	}

	return &dto.GetSuggestionResponse{Suggestion: ToSuggestionDTO(*suggestion)}, nil
}

// Private helper methods

func (sf *SuggestionFlowImpl) buildSuggestion(ctx context.Context, request *dto.SubmitSuggestionRequest, actorID uint, firstLevel int, batchID *uuid.UUID, batchName *string) (*models.PriceSuggestion, error) {
	productCode := models.ProductCode(request.ProductCode)
	if !productCode.Valid() {
		return nil, ErrInvalidProductCode
	}
	if request.FinalPrice < request.CostPrice {
		return nil, ErrFinalPriceBelowCost
	}
	if request.Observations != nil && len(*request.Observations) > utils.MaxObservationsLength {
		return nil, ErrObservationsTooLong
	}

	station, err := sf.stationRepo.ByID(ctx, request.StationID)
	if err != nil {
		return nil, err
	}
	if station == nil || !utils.IsTrue(station.IsActive) {
		return nil, ErrStationNotFound
	}

	if request.ClientID != nil {
		client, err := sf.clientRepo.ByID(ctx, *request.ClientID)
		if err != nil {
			return nil, err
		}
		if client == nil || !utils.IsTrue(client.IsActive) {
			return nil, ErrClientNotFound
		}
	}

	if request.PaymentMethodID != nil {
		if err := sf.checkPaymentMethod(ctx, *request.PaymentMethodID); err != nil {
			return nil, err
		}
	}

	return &models.PriceSuggestion{
		StationID:       request.StationID,
		ClientID:        request.ClientID,
		ProductCode:     productCode,
		CostPrice:       request.CostPrice,
		FinalPrice:      request.FinalPrice,
		Margin:          computeMargin(request.CostPrice, request.FinalPrice),
		PaymentMethodID: request.PaymentMethodID,
		Observations:    request.Observations,
		Attachments:     request.Attachments,
		BatchID:         batchID,
		BatchName:       batchName,
		Status:          models.SuggestionStatusPending,
		CurrentLevel:    firstLevel,
		CreatedByID:     actorID,
		Station:         station,
	}, nil
}

func (sf *SuggestionFlowImpl) checkPaymentMethod(ctx context.Context, id uint) error {
	method, err := sf.paymentMethodRepo.ByID(ctx, id)
	if err != nil {
		return err
	}
	if method == nil || !utils.IsTrue(method.IsActive) {
		return ErrPaymentMethodNotFound
	}
	return nil
}

func (sf *SuggestionFlowImpl) notifyLevel(ctx context.Context, suggestion *models.PriceSuggestion, snapshot *models.OrderSnapshot, level int) {
	profileName, ok := snapshot.ActiveProfileAt(level)
	if !ok {
		return
	}
	_ = sf.dispatcher.NotifyApprovalRequested(ctx, suggestion, profileName, level)
}

func (sf *SuggestionFlowImpl) logSuggestionAction(ctx context.Context, actorID uint, action, description string, success bool, errMsg *string, metadata *ClientMetadata) {
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

	_ = sf.auditRepo.Save(ctx, audit)
}

// computeMargin returns the relative margin over cost
func computeMargin(cost, final float64) float64 {
	if cost == 0 {
		return 0
	}
	return (final - cost) / cost
}
