package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"business-navigator/internal/intelligence"
	"business-navigator/internal/shared/config"
)

func useSQLite(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "navctl.db")
	prev := loadConfig
	loadConfig = func() config.Config {
		return config.Config{Env: "dev", DatabaseDriver: "sqlite", SQLitePath: path}
	}
	t.Cleanup(func() {
		loadConfig = prev
		flagJSON = false
		flagNoColor = false
	})
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestSeedThenReport(t *testing.T) {
	useSQLite(t)

	seeded := run(t, "seed", "--no-color")
	assert.Contains(t, seeded, "Seed (sqlite)")
	assert.Contains(t, seeded, "business_plans")

	raw := run(t, "report", "--json")
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &report))
	counts := report["counts"].(map[string]any)
	assert.Equal(t, float64(1), counts["userCount"])
	assert.Equal(t, float64(4), counts["taskCount"])
	assert.Equal(t, float64(1), counts["completedTasks"])
}

func TestMigrateReportsVersion(t *testing.T) {
	useSQLite(t)
	flagJSON = false
	got := run(t, "migrate")
	assert.Equal(t, "sqlite migrated to version 1\n", got)
}

func TestRenderReport(t *testing.T) {
	flagNoColor = true
	t.Cleanup(func() { flagNoColor = false })

	var buf bytes.Buffer
	renderReport(&buf, intelligence.AggregateReport{
		Counts: intelligence.Counts{UserCount: 2, PlanCount: 3, TaskCount: 10, CompletedTasks: 4},
		Derived: intelligence.DerivedInsights{
			CompletionRate:    40,
			ExecutionMomentum: intelligence.MomentumLow,
		},
		Recommendations: []intelligence.Recommendation{{
			Type: "productivity", Priority: intelligence.PriorityHigh, Title: "Improve Task Completion", Action: "Review task priorities",
		}},
		RecentActivity: []intelligence.Activity{{Title: "Cart", User: "Ada", CreatedAt: time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC)}},
	})
	out := buf.String()
	assert.Contains(t, out, "Completion rate     40.0%")
	assert.Contains(t, out, "Improve Task Completion")
	assert.Contains(t, out, "2025-01-02 03:04")
	assert.False(t, strings.Contains(out, "\x1b["), "expected no ANSI codes with --no-color")
}

func TestTableWidths(t *testing.T) {
	flagNoColor = true
	t.Cleanup(func() { flagNoColor = false })
	tb := newTable("A", "Longer")
	tb.addRow("wide value", "x")
	lines := strings.Split(strings.TrimRight(tb.render(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "A           Longer", lines[0])
	assert.Equal(t, "wide value  x     ", lines[2])
}
