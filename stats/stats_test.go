package stats

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.Observe("controller", DirSend, 128, time.Millisecond) // must not panic
}

func TestObserveIncrementsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.Observe("controller", DirSend, 256, 5*time.Millisecond)
	r.Observe("controller", DirSend, 256, 5*time.Millisecond)
	r.Observe("child", DirRecv, 256, 0)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	var found bool
	for _, mf := range mfs {
		if mf.GetName() != "mpichan_rendezvous_total" {
			continue
		}
		for _, m := range mf.Metric {
			if labelValue(m, "role") == "controller" && labelValue(m, "direction") == DirSend {
				found = true
				if got := m.GetCounter().GetValue(); got != 2 {
					t.Errorf("rendezvous_total{controller,send} = %v, want 2", got)
				}
			}
		}
	}
	if !found {
		t.Fatal("expected a controller/send series in mpichan_rendezvous_total")
	}
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.Label {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
