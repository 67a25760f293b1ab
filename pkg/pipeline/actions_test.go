package pipeline

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/variantdev/docship/pkg/telemetry"
)

func TestActions_Run(t *testing.T) {
	metrics := telemetry.NewMetrics("docship", []string{"pipeline", "step"})

	a := &Actions{
		Deploy:   newTestDeployer(&fakeTracker{}, &fakeCluster{}),
		Index:    &IndexUpdate{Resolver: DefaultResolver(), Updater: &fakeUpdater{}},
		Metrics:  metrics,
		Pipeline: "docs",
	}

	planner := NewPlanner(DefaultResolver(), "docs")
	steps := planner.Plan(BuildContext{Branch: "feature/x"})

	res, err := a.Run(context.Background(), steps[2])
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != Skipped || res.Step != ":rocket: Deploy to Staging" {
		t.Errorf("unexpected result: %+v", res)
	}

	if _, err := a.Run(context.Background(), steps[1]); err == nil {
		t.Error("expected error for a wait step")
	}

	if _, err := a.Run(context.Background(), steps[0]); err == nil {
		t.Error("expected error for a build step without a build action")
	}

	if _, err := a.Run(context.Background(), Step{Name: "x", Action: Action("rollback")}); err == nil {
		t.Error("expected error for an unknown action")
	}

	reg := prometheus.NewRegistry()
	if err := reg.Register(metrics); err != nil {
		t.Fatal(err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}

	statuses := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "docship_step_handled_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" {
					statuses[l.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}

	if statuses[telemetry.StatusSkipped] != 1 {
		t.Errorf("expected one skipped step, got %v", statuses)
	}
	if statuses[telemetry.StatusError] != 3 {
		t.Errorf("expected three failed steps, got %v", statuses)
	}
}
