package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"eduvista/site/internal/domain/newsletter"
	"eduvista/site/internal/domain/scheduler"
)

func setTestEnv(t *testing.T) {
	t.Helper()

	env := map[string]string{
		"ENV":               "development",
		"DB_DRIVER":         "sqlite",
		"DB_PATH":           filepath.Join(t.TempDir(), "sitectl.db"),
		"DATABASE_URL":      "",
		"LOG_LEVEL":         "error",
		"EMAIL_PROVIDER":    "log",
		"REDIS_ADDR":        "",
		"JWT_SIGNING_KEY":   strings.Repeat("s", 40),
		"LLM_API_KEY":       "",
		"LLM_MODELS":        "",
		"SANITY_PROJECT_ID": "",
		"SUPABASE_URL":      "",
		"AYRSHARE_API_KEY":  "",
		"SERVER_PORT":       "",
	}
	for key, value := range env {
		t.Setenv(key, value)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateAndAdminCommands(t *testing.T) {
	setTestEnv(t)

	if out, err := execute(t, "migrate"); err != nil {
		t.Fatalf("migrate failed: %v (%s)", err, out)
	}

	out, err := execute(t, "admin", "create",
		"--email", "owner@eduvista.test",
		"--name", "Site Owner",
		"--password", "a very long password",
	)
	if err != nil {
		t.Fatalf("admin create failed: %v (%s)", err, out)
	}
	if !strings.Contains(out, "created admin owner@eduvista.test") {
		t.Fatalf("unexpected output: %q", out)
	}

	out, err = execute(t, "admin", "list")
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if !strings.Contains(out, "owner@eduvista.test") {
		t.Fatalf("expected user in listing, got %q", out)
	}
}

func TestAdminCreateRequiresPassword(t *testing.T) {
	setTestEnv(t)
	t.Setenv(adminPasswordEnv, "")

	_, err := execute(t, "admin", "create", "--email", "a@eduvista.test", "--name", "A")
	if err == nil || !strings.Contains(err.Error(), "password is required") {
		t.Fatalf("expected password error, got %v", err)
	}
}

func TestSchedulerRunOncePrintsReports(t *testing.T) {
	setTestEnv(t)

	out, err := execute(t, "scheduler", "run-once")
	if err != nil {
		t.Fatalf("run-once failed: %v (%s)", err, out)
	}

	var reports []scheduler.Report
	if err := json.Unmarshal([]byte(out), &reports); err != nil {
		t.Fatalf("decoding reports: %v (%s)", err, out)
	}
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}

	if _, err := execute(t, "scheduler", "run-once", "--kind", "podcasts"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestSubscribersExportWritesHeader(t *testing.T) {
	setTestEnv(t)

	out, err := execute(t, "subscribers", "export")
	if err != nil {
		t.Fatalf("export failed: %v (%s)", err, out)
	}
	if strings.TrimSpace(out) != strings.Join(newsletter.CSVHeader, ",") {
		t.Fatalf("expected only the header row, got %q", out)
	}

	if _, err := execute(t, "subscribers", "export", "--status", "bounced"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
