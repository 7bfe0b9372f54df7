package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/petrodesk/petrodesk/app/dto"
	"github.com/petrodesk/petrodesk/app/services"
	"github.com/petrodesk/petrodesk/config"
	"github.com/petrodesk/petrodesk/models"
	"github.com/petrodesk/petrodesk/repository"
	"github.com/petrodesk/petrodesk/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// redisKey prefixes a cache key with the configured namespace
func redisKey(cfg config.CacheConfig, key string) string {
	return cfg.RedisPrefix + key
}

// ApprovalOrderFlow manages the ordered approval chain registry.
//
// The chain is cached in Redis together with a monotonically increasing
// version. Every mutation bumps the version; decision flows snapshot the
// chain up front and re-validate the version before committing a level
// advance.
type ApprovalOrderFlow interface {
	List(ctx context.Context) (*dto.ListApprovalOrderResponse, error)
	Snapshot(ctx context.Context) (*models.OrderSnapshot, error)
	CurrentVersion(ctx context.Context) (int64, error)
	Reorder(ctx context.Context, request *dto.ReorderApprovalOrderRequest, actorID uint, metadata *ClientMetadata) (*dto.ApprovalOrderMutationResponse, error)
	SetActive(ctx context.Context, rowID uint, request *dto.SetApprovalOrderActiveRequest, actorID uint, metadata *ClientMetadata) (*dto.ApprovalOrderMutationResponse, error)
	Add(ctx context.Context, request *dto.AddApprovalOrderRequest, actorID uint, metadata *ClientMetadata) (*dto.ApprovalOrderMutationResponse, error)
	SeedDefaultChain(ctx context.Context) error
}

// ApprovalOrderFlowImpl implements the approval order registry flow
type ApprovalOrderFlowImpl struct {
	orderRepo         repository.ApprovalOrderRepository
	profileRepo       repository.ProfileRepository
	auditRepo         repository.AuditLogRepository
	permissionService services.PermissionService
	rc                *redis.Client
	cacheConfig       *config.CacheConfig
	db                *gorm.DB
}

// NewApprovalOrderFlow creates a new approval order flow instance
func NewApprovalOrderFlow(
	orderRepo repository.ApprovalOrderRepository,
	profileRepo repository.ProfileRepository,
	auditRepo repository.AuditLogRepository,
	permissionService services.PermissionService,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	db *gorm.DB,
) ApprovalOrderFlow {
	return &ApprovalOrderFlowImpl{
		orderRepo:         orderRepo,
		profileRepo:       profileRepo,
		auditRepo:         auditRepo,
		permissionService: permissionService,
		rc:                rc,
		cacheConfig:       cacheConfig,
		db:                db,
	}
}

// List returns the full chain, inactive rows included
func (f *ApprovalOrderFlowImpl) List(ctx context.Context) (*dto.ListApprovalOrderResponse, error) {
	snapshot, err := f.Snapshot(ctx)
	if err != nil {
		return nil, NewBusinessError("APPROVAL_ORDER_LIST_FAILED", "Failed to list approval order", err)
	}

	rows := make([]dto.ApprovalOrderRowDTO, 0, len(snapshot.Rows))
	for _, row := range snapshot.Rows {
		rows = append(rows, ToApprovalOrderRowDTO(row))
	}

	return &dto.ListApprovalOrderResponse{
		Rows:    rows,
		Version: snapshot.Version,
	}, nil
}

// Snapshot returns a versioned read of the chain for decision flows
func (f *ApprovalOrderFlowImpl) Snapshot(ctx context.Context) (*models.OrderSnapshot, error) {
	version, err := f.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	// Try the row cache first
	if f.rc != nil {
		cacheKey := redisKey(*f.cacheConfig, utils.ApprovalOrderCacheKey)
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var rows []models.ApprovalProfileOrder
			if err := json.Unmarshal(bs, &rows); err == nil {
				return &models.OrderSnapshot{Rows: rows, Version: version}, nil
			}
		}
	}

	rows, err := f.orderRepo.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.ApprovalProfileOrder, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}

	f.cacheRows(ctx, out)

	return &models.OrderSnapshot{Rows: out, Version: version}, nil
}

// CurrentVersion returns the registry version, initializing it on first use
func (f *ApprovalOrderFlowImpl) CurrentVersion(ctx context.Context) (int64, error) {
	if f.rc == nil {
		return 0, nil
	}

	versionKey := redisKey(*f.cacheConfig, utils.ApprovalOrderVersionKey)
	version, err := f.rc.Get(ctx, versionKey).Int64()
	if err == redis.Nil {
		return f.rc.Incr(ctx, versionKey).Result()
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read approval order version: %w", err)
	}
	return version, nil
}

// Reorder assigns new positions to the chain rows
func (f *ApprovalOrderFlowImpl) Reorder(ctx context.Context, request *dto.ReorderApprovalOrderRequest, actorID uint, metadata *ClientMetadata) (*dto.ApprovalOrderMutationResponse, error) {
	if err := f.requireManageCapability(ctx, actorID); err != nil {
		return nil, err
	}

	resp, err := f.withMutationTransaction(ctx, func(ctx context.Context) (*dto.ApprovalOrderMutationResponse, error) {
		rows, err := f.orderRepo.ListOrdered(ctx)
		if err != nil {
			return nil, err
		}

		byID := make(map[uint]*models.ApprovalProfileOrder, len(rows))
		for _, row := range rows {
			byID[row.ID] = row
		}

		positions := make(map[uint]int, len(request.Positions))
		for _, p := range request.Positions {
			if _, ok := byID[p.ID]; !ok {
				return nil, ErrOrderRowNotFound
			}
			if _, dup := positions[p.ID]; dup {
				return nil, ErrPositionsIncomplete
			}
			positions[p.ID] = p.OrderPosition
		}

		// The input must be a full permutation of the existing id set; an
		// omitted row must fail loud, not silently keep its old position
		if len(positions) != len(rows) {
			return nil, ErrPositionsIncomplete
		}

		// Validate density over the active rows under the new positions
		activePositions := make([]int, 0, len(rows))
		for _, row := range rows {
			if utils.IsTrue(row.IsActive) {
				activePositions = append(activePositions, positions[row.ID])
			}
		}
		if err := validateDensePositions(activePositions); err != nil {
			return nil, err
		}

		if err := f.orderRepo.UpdatePositions(ctx, positions); err != nil {
			return nil, err
		}

		return f.mutationResponse(ctx)
	})

	if err != nil {
		return nil, NewBusinessError("APPROVAL_ORDER_REORDER_FAILED", "Failed to reorder approval chain", err)
	}

	f.bumpVersion(ctx)
	resp.Version, _ = f.CurrentVersion(ctx)
	f.logRegistryChange(ctx, actorID, "reorder", metadata)

	return resp, nil
}

// SetActive toggles one row in or out of the chain
func (f *ApprovalOrderFlowImpl) SetActive(ctx context.Context, rowID uint, request *dto.SetApprovalOrderActiveRequest, actorID uint, metadata *ClientMetadata) (*dto.ApprovalOrderMutationResponse, error) {
	if err := f.requireManageCapability(ctx, actorID); err != nil {
		return nil, err
	}

	resp, err := f.withMutationTransaction(ctx, func(ctx context.Context) (*dto.ApprovalOrderMutationResponse, error) {
		row, err := f.orderRepo.ByID(ctx, rowID)
		if err != nil {
			return nil, err
		}
		if row == nil {
			return nil, ErrOrderRowNotFound
		}

		if err := f.orderRepo.SetActive(ctx, rowID, request.IsActive); err != nil {
			return nil, err
		}

		return f.mutationResponse(ctx)
	})

	if err != nil {
		return nil, NewBusinessError("APPROVAL_ORDER_SET_ACTIVE_FAILED", "Failed to toggle approval chain row", err)
	}

	f.bumpVersion(ctx)
	resp.Version, _ = f.CurrentVersion(ctx)
	f.logRegistryChange(ctx, actorID, fmt.Sprintf("set_active:%d:%t", rowID, request.IsActive), metadata)

	return resp, nil
}

// Add appends a profile to the end of the chain
func (f *ApprovalOrderFlowImpl) Add(ctx context.Context, request *dto.AddApprovalOrderRequest, actorID uint, metadata *ClientMetadata) (*dto.ApprovalOrderMutationResponse, error) {
	if err := f.requireManageCapability(ctx, actorID); err != nil {
		return nil, err
	}

	resp, err := f.withMutationTransaction(ctx, func(ctx context.Context) (*dto.ApprovalOrderMutationResponse, error) {
		profile, err := f.profileRepo.ByName(ctx, request.ProfileName)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			return nil, ErrProfileNotFound
		}
		if !utils.IsTrue(profile.CanApprove) {
			return nil, ErrProfileCannotApprove
		}

		exists, err := f.orderRepo.Exists(ctx, models.ApprovalProfileOrderFilter{ProfileName: &request.ProfileName})
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrProfileAlreadyInChain
		}

		maxPos, err := f.orderRepo.MaxPosition(ctx)
		if err != nil {
			return nil, err
		}

		row := &models.ApprovalProfileOrder{
			ProfileName:   request.ProfileName,
			OrderPosition: maxPos + 1,
			IsActive:      utils.ToPtr(true),
		}
		if err := f.orderRepo.Save(ctx, row); err != nil {
			if repository.IsUniqueViolation(err) {
				return nil, ErrProfileAlreadyInChain
			}
			return nil, err
		}

		return f.mutationResponse(ctx)
	})

	if err != nil {
		return nil, NewBusinessError("APPROVAL_ORDER_ADD_FAILED", "Failed to add profile to approval chain", err)
	}

	f.bumpVersion(ctx)
	resp.Version, _ = f.CurrentVersion(ctx)
	f.logRegistryChange(ctx, actorID, "add:"+request.ProfileName, metadata)

	return resp, nil
}

// SeedDefaultChain installs the supervisor -> gerente -> diretor chain when
// the registry is empty. Called once at startup.
func (f *ApprovalOrderFlowImpl) SeedDefaultChain(ctx context.Context) error {
	count, err := f.orderRepo.Count(ctx, models.ApprovalProfileOrderFilter{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	chain := []string{models.ProfileSupervisor, models.ProfileGerente, models.ProfileDiretor}
	rows := make([]*models.ApprovalProfileOrder, 0, len(chain))
	for i, name := range chain {
		rows = append(rows, &models.ApprovalProfileOrder{
			ProfileName:   name,
			OrderPosition: i + 1,
			IsActive:      utils.ToPtr(true),
		})
	}

	if err := f.orderRepo.SaveBatch(ctx, rows); err != nil {
		return err
	}

	f.invalidateRows(ctx)
	f.bumpVersion(ctx)

	return nil
}

// Private helper methods

func (f *ApprovalOrderFlowImpl) requireManageCapability(ctx context.Context, actorID uint) error {
	permissions, err := f.permissionService.Resolve(ctx, actorID)
	if err != nil {
		return NewBusinessError("APPROVAL_ORDER_PERMISSION_CHECK_FAILED", "Permission check failed", err)
	}
	if !permissions.Has(models.CapabilityManageApprovalOrder) {
		return NewBusinessError("APPROVAL_ORDER_FORBIDDEN", "Caller cannot manage the approval chain", ErrPermissionDenied)
	}
	return nil
}

func (f *ApprovalOrderFlowImpl) mutationResponse(ctx context.Context) (*dto.ApprovalOrderMutationResponse, error) {
	rows, err := f.orderRepo.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ApprovalOrderRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ToApprovalOrderRowDTO(*row))
	}

	return &dto.ApprovalOrderMutationResponse{Rows: out}, nil
}

// bumpVersion invalidates the row cache and advances the registry version.
// Runs after the mutation committed so readers never see a stale chain under
// a fresh version.
func (f *ApprovalOrderFlowImpl) bumpVersion(ctx context.Context) {
	if f.rc == nil {
		return
	}
	f.invalidateRows(ctx)
	versionKey := redisKey(*f.cacheConfig, utils.ApprovalOrderVersionKey)
	_ = f.rc.Incr(ctx, versionKey).Err()
}

func (f *ApprovalOrderFlowImpl) invalidateRows(ctx context.Context) {
	if f.rc == nil {
		return
	}
	cacheKey := redisKey(*f.cacheConfig, utils.ApprovalOrderCacheKey)
	_ = f.rc.Del(ctx, cacheKey).Err()
}

func (f *ApprovalOrderFlowImpl) cacheRows(ctx context.Context, rows []models.ApprovalProfileOrder) {
	if f.rc == nil {
		return
	}
	cacheKey := redisKey(*f.cacheConfig, utils.ApprovalOrderCacheKey)
	if bs, err := json.Marshal(rows); err == nil {
		_ = f.rc.Set(ctx, cacheKey, bs, 0).Err()
	}
}

func (f *ApprovalOrderFlowImpl) logRegistryChange(ctx context.Context, actorID uint, description string, metadata *ClientMetadata) {
	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		UserID:      &actorID,
		Action:      models.AuditActionApprovalOrderChanged,
		Description: &description,
		Success:     utils.ToPtr(true),
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}
	_ = f.auditRepo.Save(ctx, audit)
}

func (f *ApprovalOrderFlowImpl) withMutationTransaction(ctx context.Context, fn func(context.Context) (*dto.ApprovalOrderMutationResponse, error)) (*dto.ApprovalOrderMutationResponse, error) {
	var result *dto.ApprovalOrderMutationResponse
	var fnErr error

	err := repository.WithTransaction(ctx, f.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

// validateDensePositions checks positions form the sequence 1..N
func validateDensePositions(positions []int) error {
	if len(positions) == 0 {
		return nil
	}

	sorted := make([]int, len(positions))
	copy(sorted, positions)
	sort.Ints(sorted)

	for i, pos := range sorted {
		if pos != i+1 {
			return ErrPositionsNotDense
		}
	}
	return nil
}
