package entity

import (
	"time"
)

// WorkCenterType 工作中心类型
const (
	WorkCenterTypeMachine = "machine"
	WorkCenterTypeStation = "station"
	WorkCenterTypeLabor   = "labor"
)

// WorkCenter 工作中心（机台/工位/人工，含小时费率）
type WorkCenter struct {
	ID                  string     `json:"id" gorm:"primaryKey;size:32"`
	Code                string     `json:"code" gorm:"size:64;not null;uniqueIndex"`
	Name                string     `json:"name" gorm:"size:128;not null"`
	CenterType          string     `json:"center_type" gorm:"size:16;not null;default:machine"`
	CapacityHoursPerDay float64    `json:"capacity_hours_per_day" gorm:"type:decimal(8,2);default:8"`
	MachineRatePerHour  float64    `json:"machine_rate_per_hour" gorm:"type:decimal(12,4);default:0"`
	LaborRatePerHour    float64    `json:"labor_rate_per_hour" gorm:"type:decimal(12,4);default:0"`
	OverheadRatePerHour float64    `json:"overhead_rate_per_hour" gorm:"type:decimal(12,4);default:0"`
	Status              string     `json:"status" gorm:"size:16;not null;default:active"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	DeletedAt           *time.Time `json:"deleted_at,omitempty" gorm:"index"`
}

func (WorkCenter) TableName() string {
	return "work_centers"
}

// Routing 工艺路线（产品的工序序列；product_id为空表示模板）
type Routing struct {
	ID                  string     `json:"id" gorm:"primaryKey;size:32"`
	ProductID           string     `json:"product_id" gorm:"size:32;index"` // 模板无产品
	Code                string     `json:"code" gorm:"size:64;not null"`
	Version             int        `json:"version" gorm:"not null;default:1"`
	Revision            string     `json:"revision" gorm:"size:32"`
	IsTemplate          bool       `json:"is_template" gorm:"not null;default:false"`
	IsActive            bool       `json:"is_active" gorm:"not null;default:false;index"`
	TotalRunTimeMinutes float64    `json:"total_run_time_minutes" gorm:"type:decimal(12,2);default:0"`
	TotalCost           float64    `json:"total_cost" gorm:"type:decimal(15,4);default:0"`
	Notes               string     `json:"notes" gorm:"type:text"`
	CreatedBy           string     `json:"created_by" gorm:"size:64"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	DeletedAt           *time.Time `json:"deleted_at,omitempty" gorm:"index"`

	// 关联
	Product    *Product    `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Operations []Operation `json:"operations,omitempty" gorm:"foreignKey:RoutingID"`
}

func (Routing) TableName() string {
	return "routings"
}

// Operation 工序（sequence在同一工艺路线内连续且唯一）
type Operation struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	RoutingID        string    `json:"routing_id" gorm:"size:32;not null;index"`
	Sequence         int       `json:"sequence" gorm:"not null;default:0"`
	WorkCenterID     string    `json:"work_center_id" gorm:"size:32;not null"`
	Code             string    `json:"code" gorm:"size:64"`
	Name             string    `json:"name" gorm:"size:128;not null"`
	RunTimeMinutes   float64   `json:"run_time_minutes" gorm:"type:decimal(12,2);default:0"`
	SetupTimeMinutes float64   `json:"setup_time_minutes" gorm:"type:decimal(12,2);default:0"`
	CalculatedCost   float64   `json:"calculated_cost" gorm:"type:decimal(15,4);default:0"` // 派生，随工时/费率变化重算
	Notes            string    `json:"notes" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// 关联
	WorkCenter *WorkCenter `json:"work_center,omitempty" gorm:"foreignKey:WorkCenterID"`
}

func (Operation) TableName() string {
	return "routing_operations"
}
