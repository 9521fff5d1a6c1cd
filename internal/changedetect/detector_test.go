package changedetect_test

import (
	"context"
	"testing"

	"case-automation/internal/changedetect"
	"case-automation/pkg/thehive"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, args ...any) {}
func (m *mockLogger) Info(ctx context.Context, args ...any)  {}
func (m *mockLogger) Warn(ctx context.Context, args ...any)  {}
func (m *mockLogger) Error(ctx context.Context, args ...any) {}

func (m *mockLogger) Debugf(ctx context.Context, template string, args ...any) {}
func (m *mockLogger) Infof(ctx context.Context, template string, args ...any)  {}
func (m *mockLogger) Warnf(ctx context.Context, template string, args ...any)  {}
func (m *mockLogger) Errorf(ctx context.Context, template string, args ...any) {}

func baseAlert() thehive.Alert {
	return thehive.Alert{
		Title:     "Offense 42",
		Source:    "QRadar_Offenses",
		SourceRef: "42",
		Date:      1577872800000,
		Tags:      []string{"a", "b"},
		Artifacts: []thehive.Observable{
			{DataType: "ip", Data: "10.0.0.1", Message: "Source IP", Tags: []string{"src"}},
			{DataType: "ip", Data: "192.168.1.1", Message: "Destination IP", Tags: []string{"dst"}},
		},
	}
}

func TestHasChanged(t *testing.T) {
	d := changedetect.New(&mockLogger{})
	ctx := context.Background()

	t.Run("Identical Records", func(t *testing.T) {
		if d.HasChanged(ctx, baseAlert(), baseAlert()) {
			t.Errorf("identical records must not register as changed")
		}
	})

	t.Run("Date Is Volatile", func(t *testing.T) {
		candidate := baseAlert()
		candidate.Date = 1577876400000
		if d.HasChanged(ctx, baseAlert(), candidate) {
			t.Errorf("date difference alone must not register as changed")
		}
	})

	t.Run("Tag Symmetric Difference", func(t *testing.T) {
		current := baseAlert()
		current.Tags = []string{"a", "b"}
		candidate := baseAlert()
		candidate.Tags = []string{"b", "c"}
		if !d.HasChanged(ctx, current, candidate) {
			t.Errorf("tag set difference must register as changed")
		}
	})

	t.Run("Tag Added Only In Candidate", func(t *testing.T) {
		candidate := baseAlert()
		candidate.Tags = append(candidate.Tags, "new")
		if !d.HasChanged(ctx, baseAlert(), candidate) {
			t.Errorf("added tag must register as changed")
		}
	})

	t.Run("Tag Order Irrelevant", func(t *testing.T) {
		candidate := baseAlert()
		candidate.Tags = []string{"b", "a"}
		if d.HasChanged(ctx, baseAlert(), candidate) {
			t.Errorf("tag order must not register as changed")
		}
	})

	t.Run("Artifact Length Mismatch", func(t *testing.T) {
		candidate := baseAlert()
		candidate.Artifacts = candidate.Artifacts[:1]
		if !d.HasChanged(ctx, baseAlert(), candidate) {
			t.Errorf("artifact count difference must register as changed")
		}
	})

	t.Run("Artifact Attribute Change", func(t *testing.T) {
		candidate := baseAlert()
		candidate.Artifacts[1].Message = "Local destination IP"
		if !d.HasChanged(ctx, baseAlert(), candidate) {
			t.Errorf("artifact attribute difference must register as changed")
		}
	})

	t.Run("Artifact Tag Change", func(t *testing.T) {
		candidate := baseAlert()
		candidate.Artifacts[0].Tags = []string{"src", "dst"}
		if !d.HasChanged(ctx, baseAlert(), candidate) {
			t.Errorf("artifact tag difference must register as changed")
		}
	})
}
