package engine

import (
	"testing"
)

func TestOperationCost(t *testing.T) {
	// 60min run, 0 setup, $2 machine + $25 labor + $0 overhead = 1h * 27 = $27
	op := RoutingOperation{
		ID:             "op1",
		RunTimeMinutes: 60,
		Rates:          WorkCenterRates{MachineRatePerHour: 2, LaborRatePerHour: 25},
	}
	if cost := OperationCost(op); cost != 27 {
		t.Errorf("expected cost 27, got %v", cost)
	}
}

func TestOperationCost_SetupIncluded(t *testing.T) {
	op := RoutingOperation{
		ID:               "op1",
		RunTimeMinutes:   30,
		SetupTimeMinutes: 30,
		Rates:            WorkCenterRates{MachineRatePerHour: 10, OverheadRatePerHour: 2},
	}
	// (0.5h + 0.5h) * 12 = 12
	if cost := OperationCost(op); cost != 12 {
		t.Errorf("expected cost 12, got %v", cost)
	}
}

func TestAggregateRouting(t *testing.T) {
	ops := []RoutingOperation{
		{ID: "op1", Sequence: 1, RunTimeMinutes: 60, Rates: WorkCenterRates{MachineRatePerHour: 2, LaborRatePerHour: 25}},
		{ID: "op2", Sequence: 2, RunTimeMinutes: 15, SetupTimeMinutes: 45, Rates: WorkCenterRates{LaborRatePerHour: 40}},
	}

	totals := AggregateRouting(ops)

	// setup time excluded from the run time total shown to the user
	if totals.TotalRunTimeMinutes != 75 {
		t.Errorf("expected total run time 75, got %v", totals.TotalRunTimeMinutes)
	}
	// but included in cost: 27 + (1h * 40) = 67
	if totals.TotalCost != 67 {
		t.Errorf("expected total cost 67, got %v", totals.TotalCost)
	}
	if totals.OperationCosts["op2"] != 40 {
		t.Errorf("expected op2 cost 40, got %v", totals.OperationCosts["op2"])
	}
}

func TestAggregateRouting_Empty(t *testing.T) {
	totals := AggregateRouting(nil)
	if totals.TotalRunTimeMinutes != 0 || totals.TotalCost != 0 {
		t.Errorf("expected zero totals, got %+v", totals)
	}
}
