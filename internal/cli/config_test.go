package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func resetConfigFlags(t *testing.T) {
	t.Helper()
	oldWrite, oldForce, oldPath, oldThresholds := configWrite, configForce, configPath, configThresholds
	t.Cleanup(func() {
		configWrite, configForce, configPath, configThresholds = oldWrite, oldForce, oldPath, oldThresholds
	})
	configWrite, configForce, configPath, configThresholds = false, false, "", false
}

func TestRunConfigPrint(t *testing.T) {
	resetConfigFlags(t)
	cmd, out, _ := testCommand()
	if err := runConfig(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `excel_default_file: "20 RPS.xlsx"`) {
		t.Errorf("unexpected sample:\n%s", out.String())
	}

	configThresholds = true
	out.Reset()
	if err := runConfig(cmd, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "wal_high_mb_per_min: 100") {
		t.Errorf("unexpected thresholds sample:\n%s", out.String())
	}
}

func TestRunConfigWrite(t *testing.T) {
	resetConfigFlags(t)
	configWrite = true
	configPath = filepath.Join(t.TempDir(), "nested", "pgreport.yaml")

	cmd, out, _ := testCommand()
	if err := runConfig(cmd, nil); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if !strings.Contains(out.String(), "Config written to "+configPath) {
		t.Errorf("unexpected output %q", out.String())
	}
	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	if err := runConfig(cmd, nil); err == nil || !strings.Contains(err.Error(), "--force") {
		t.Errorf("second write without --force = %v", err)
	}

	configForce = true
	if err := runConfig(cmd, nil); err != nil {
		t.Errorf("forced write: %v", err)
	}
}
