package telemetry_test

import (
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"testing"

	"github.com/petasbytes/mcp-chat/internal/telemetry"
)

// Run TestProbe in a clean env so startup-only telemetry config is deterministic.
func runWithEnv(t *testing.T, env map[string]string) (string, error) {
	t.Helper()
	cmd := exec.Command(os.Args[0], "-test.run=TestProbe")
	// Empty MCPC_* vars still count as set for LookupEnv, so only pass explicit overrides.
	base := []string{"GO_WANT_HELPER_PROCESS=1"}
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "PATH=") {
			base = append(base, kv)
			break
		}
	}
	for k, v := range env {
		base = append(base, k+"="+v)
	}
	cmd.Env = base
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestStartupConfig_Matrix(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"baseline_off", map[string]string{}, "observe=false dir=.mcpchat"},
		{"observe_on", map[string]string{"MCPC_OBSERVE_JSON": "1"}, "observe=true dir=.mcpchat"},
		{"observe_explicit_off", map[string]string{"MCPC_OBSERVE_JSON": "0"}, "observe=false dir=.mcpchat"},
		{"custom_dir", map[string]string{"MCPC_EVENTS_DIR": "/tmp/ev"}, "observe=false dir=/tmp/ev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runWithEnv(t, tt.env)
			if err != nil {
				t.Fatalf("subprocess error: %v\n%s", err, got)
			}
			if !slices.Contains(strings.Split(got, "\n"), tt.want) {
				t.Fatalf("want line:\n%s\ngot output:\n%s", tt.want, got)
			}
		})
	}
}

func TestProbe(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Printf("observe=%v dir=%s\n", telemetry.ObserveEnabled(), telemetry.EventsDir())
}
