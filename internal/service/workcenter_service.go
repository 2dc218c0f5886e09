package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridha-415/filaops-sub000/internal/engine"
	"github.com/ridha-415/filaops-sub000/internal/entity"
	"github.com/ridha-415/filaops-sub000/internal/repository"
	"gorm.io/gorm"
)

type WorkCenterService struct {
	repo *repository.RoutingRepository
}

func NewWorkCenterService(repo *repository.RoutingRepository) *WorkCenterService {
	return &WorkCenterService{repo: repo}
}

type CreateWorkCenterRequest struct {
	Code                string  `json:"code" binding:"required"`
	Name                string  `json:"name" binding:"required"`
	CenterType          string  `json:"center_type"`
	CapacityHoursPerDay float64 `json:"capacity_hours_per_day" binding:"gte=0"`
	MachineRatePerHour  float64 `json:"machine_rate_per_hour" binding:"gte=0"`
	LaborRatePerHour    float64 `json:"labor_rate_per_hour" binding:"gte=0"`
	OverheadRatePerHour float64 `json:"overhead_rate_per_hour" binding:"gte=0"`
}

func (s *WorkCenterService) Create(ctx context.Context, req CreateWorkCenterRequest) (*entity.WorkCenter, error) {
	centerType := req.CenterType
	if centerType == "" {
		centerType = entity.WorkCenterTypeMachine
	}
	switch centerType {
	case entity.WorkCenterTypeMachine, entity.WorkCenterTypeStation, entity.WorkCenterTypeLabor:
	default:
		return nil, fmt.Errorf("无效的工作中心类型: %s", centerType)
	}

	capacity := req.CapacityHoursPerDay
	if capacity == 0 {
		capacity = 8
	}

	wc := &entity.WorkCenter{
		ID:                  newID(),
		Code:                req.Code,
		Name:                req.Name,
		CenterType:          centerType,
		CapacityHoursPerDay: capacity,
		MachineRatePerHour:  req.MachineRatePerHour,
		LaborRatePerHour:    req.LaborRatePerHour,
		OverheadRatePerHour: req.OverheadRatePerHour,
		Status:              "active",
	}
	if err := s.repo.CreateWorkCenter(ctx, wc); err != nil {
		return nil, fmt.Errorf("创建工作中心失败: %w", err)
	}
	return wc, nil
}

func (s *WorkCenterService) GetByID(ctx context.Context, id string) (*entity.WorkCenter, error) {
	wc, err := s.repo.GetWorkCenter(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &engine.NotFoundError{Kind: "work_center", ID: id}
		}
		return nil, err
	}
	return wc, nil
}

type UpdateWorkCenterRequest struct {
	Name                *string  `json:"name"`
	CapacityHoursPerDay *float64 `json:"capacity_hours_per_day"`
	MachineRatePerHour  *float64 `json:"machine_rate_per_hour"`
	LaborRatePerHour    *float64 `json:"labor_rate_per_hour"`
	OverheadRatePerHour *float64 `json:"overhead_rate_per_hour"`
	Status              *string  `json:"status"`
}

func (s *WorkCenterService) Update(ctx context.Context, id string, req UpdateWorkCenterRequest) (*entity.WorkCenter, error) {
	wc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		wc.Name = *req.Name
	}
	if req.CapacityHoursPerDay != nil {
		wc.CapacityHoursPerDay = *req.CapacityHoursPerDay
	}
	if req.MachineRatePerHour != nil {
		wc.MachineRatePerHour = *req.MachineRatePerHour
	}
	if req.LaborRatePerHour != nil {
		wc.LaborRatePerHour = *req.LaborRatePerHour
	}
	if req.OverheadRatePerHour != nil {
		wc.OverheadRatePerHour = *req.OverheadRatePerHour
	}
	if req.Status != nil {
		wc.Status = *req.Status
	}

	if err := s.repo.UpdateWorkCenter(ctx, wc); err != nil {
		return nil, fmt.Errorf("更新工作中心失败: %w", err)
	}
	return wc, nil
}

func (s *WorkCenterService) List(ctx context.Context, params repository.WorkCenterListParams) ([]entity.WorkCenter, int64, error) {
	return s.repo.ListWorkCenters(ctx, params)
}
