package engine

import (
	"github.com/shopspring/decimal"
)

// WorkCenterRates 工作中心小时费率
type WorkCenterRates struct {
	MachineRatePerHour  float64
	LaborRatePerHour    float64
	OverheadRatePerHour float64
}

// RoutingOperation 工序快照
type RoutingOperation struct {
	ID               string
	Sequence         int
	RunTimeMinutes   float64
	SetupTimeMinutes float64
	Rates            WorkCenterRates
}

// RoutingTotals 工艺路线汇总
type RoutingTotals struct {
	TotalRunTimeMinutes float64            `json:"total_run_time_minutes"`
	TotalCost           float64            `json:"total_cost"`
	OperationCosts      map[string]float64 `json:"operation_costs"`
}

var sixty = decimal.NewFromInt(60)

// OperationCost 单工序成本：(运行+准备工时小时数) × 费率合计。
// 准备工时计入成本，但不计入展示给用户的运行工时合计。
func OperationCost(op RoutingOperation) float64 {
	return operationCost(op).InexactFloat64()
}

func operationCost(op RoutingOperation) decimal.Decimal {
	hours := decimal.NewFromFloat(op.RunTimeMinutes).Add(decimal.NewFromFloat(op.SetupTimeMinutes)).Div(sixty)
	rate := decimal.NewFromFloat(op.Rates.MachineRatePerHour).
		Add(decimal.NewFromFloat(op.Rates.LaborRatePerHour)).
		Add(decimal.NewFromFloat(op.Rates.OverheadRatePerHour))
	return hours.Mul(rate)
}

// AggregateRouting 汇总工艺路线全部工序的工时与成本
func AggregateRouting(ops []RoutingOperation) *RoutingTotals {
	totals := &RoutingTotals{OperationCosts: make(map[string]float64, len(ops))}

	runTime := decimal.Zero
	cost := decimal.Zero
	for _, op := range ops {
		opCost := operationCost(op)
		totals.OperationCosts[op.ID] = opCost.InexactFloat64()
		runTime = runTime.Add(decimal.NewFromFloat(op.RunTimeMinutes))
		cost = cost.Add(opCost)
	}

	totals.TotalRunTimeMinutes = runTime.InexactFloat64()
	totals.TotalCost = cost.InexactFloat64()
	return totals
}
