package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/services"
	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/repository"
	"github.com/petrodesk/petrodesk/utils"
	"github.com/xuri/excelize/v2"
)

// ReportFlow generates spreadsheet exports of the pricing workflow
type ReportFlow interface {
	ExportSuggestions(ctx context.Context, request *dto.ExportSuggestionsRequest, actorID uint) (*dto.ExportSuggestionsResponse, error)
}

// ReportFlowImpl implements the report business flow
type ReportFlowImpl struct {
	suggestionRepo    repository.PriceSuggestionRepository
	approvalRepo      repository.PriceApprovalRepository
	permissionService services.PermissionService
}

// NewReportFlow creates a new report flow instance
func NewReportFlow(
	suggestionRepo repository.PriceSuggestionRepository,
	approvalRepo repository.PriceApprovalRepository,
	permissionService services.PermissionService,
) ReportFlow {
	return &ReportFlowImpl{
		suggestionRepo:    suggestionRepo,
		approvalRepo:      approvalRepo,
		permissionService: permissionService,
	}
}

// ExportSuggestions builds an XLSX workbook with the filtered suggestions
// and their decision history
func (rf *ReportFlowImpl) ExportSuggestions(ctx context.Context, request *dto.ExportSuggestionsRequest, actorID uint) (*dto.ExportSuggestionsResponse, error) {
	permissions, err := rf.permissionService.Resolve(ctx, actorID)
	if err != nil {
		return nil, NewBusinessError("REPORT_PERMISSION_CHECK_FAILED", "Permission check failed", err)
	}
	if !permissions.Has(models.CapabilityViewReports) {
		return nil, NewBusinessError("REPORT_FORBIDDEN", "Caller cannot export reports", ErrPermissionDenied)
	}

	filter, err := rf.buildFilter(request)
	if err != nil {
		return nil, NewBusinessError("REPORT_VALIDATION_FAILED", "Report validation failed", err)
	}

	suggestions, err := rf.suggestionRepo.ByFilter(ctx, *filter, "created_at ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("REPORT_FAILED", "Failed to load suggestions for export", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheetName := "Sugestoes"
	xl.SetSheetName(xl.GetSheetName(0), sheetName)

	header := []string{
		"uuid", "station", "product", "cost_price", "final_price", "margin",
		"currency", "status", "current_level", "batch_id", "created_by",
		"created_at", "decisions",
	}
	_ = xl.SetSheetRow(sheetName, "A1", &header)

	for ri, s := range suggestions {
		stationName := ""
		if s.Station != nil {
			stationName = s.Station.Name
		}
		createdBy := strconv.FormatUint(uint64(s.CreatedByID), 10)
		if s.CreatedBy != nil {
			createdBy = s.CreatedBy.FullName
		}
		batchID := ""
		if s.BatchID != nil {
			batchID = s.BatchID.String()
		}

		decisions, err := rf.formatDecisions(ctx, s.ID)
		if err != nil {
			return nil, NewBusinessError("REPORT_FAILED", "Failed to load decision history", err)
		}

		record := []string{
			s.UUID.String(),
			stationName,
			s.ProductCode.String(),
			strconv.FormatFloat(s.CostPrice, 'f', 3, 64),
			strconv.FormatFloat(s.FinalPrice, 'f', 3, 64),
			strconv.FormatFloat(s.Margin, 'f', 4, 64),
			utils.BRLCurrency,
			s.Status.String(),
			strconv.Itoa(s.CurrentLevel),
			batchID,
			createdBy,
			s.CreatedAt.UTC().Format(time.RFC3339),
			decisions,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheetName, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, NewBusinessError("REPORT_WRITE_FAILED", "Failed to write spreadsheet", err)
	}

	return &dto.ExportSuggestionsResponse{
		FileName:    fmt.Sprintf("sugestoes_%s.xlsx", utils.UTCNow().Format("2006-01-02")),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     buf.Bytes(),
	}, nil
}

func (rf *ReportFlowImpl) buildFilter(request *dto.ExportSuggestionsRequest) (*models.PriceSuggestionFilter, error) {
	filter := &models.PriceSuggestionFilter{StationID: request.StationID}

	if request.ProductCode != nil {
		code := models.ProductCode(*request.ProductCode)
		if !code.Valid() {
			return nil, ErrInvalidProductCode
		}
		filter.ProductCode = &code
	}
	if request.Status != nil {
		status := models.SuggestionStatus(*request.Status)
		filter.Status = &status
	}

	var from, to *time.Time
	if request.From != nil {
		t, err := time.Parse("2006-01-02", *request.From)
		if err != nil {
			return nil, err
		}
		from = &t
		filter.CreatedAfter = from
	}
	if request.To != nil {
		t, err := time.Parse("2006-01-02", *request.To)
		if err != nil {
			return nil, err
		}
		// Inclusive end of day
		end := t.Add(24*time.Hour - time.Nanosecond)
		to = &end
		filter.CreatedBefore = to
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, ErrStartDateAfterEndDate
	}

	return filter, nil
}

func (rf *ReportFlowImpl) formatDecisions(ctx context.Context, suggestionID uint) (string, error) {
	approvals, err := rf.approvalRepo.ListBySuggestion(ctx, suggestionID)
	if err != nil {
		return "", err
	}

	out := ""
	for i, approval := range approvals {
		if i > 0 {
			out += "; "
		}
		approver := strconv.FormatUint(uint64(approval.ApproverID), 10)
		if approval.Approver != nil {
			approver = approval.Approver.FullName
		}
		out += fmt.Sprintf("L%d %s por %s em %s",
			approval.Level, approval.Decision, approver,
			approval.CreatedAt.UTC().Format("2006-01-02 15:04"))
	}
	return out, nil
}
