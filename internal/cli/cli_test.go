package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/triggerlog/internal/filestore"
	"github.com/mesh-intelligence/triggerlog/internal/logger"
	"github.com/mesh-intelligence/triggerlog/internal/paths"
	"github.com/mesh-intelligence/triggerlog/internal/sqlite"
	"github.com/mesh-intelligence/triggerlog/internal/stats"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// testEnv runs command trees against isolated directories with a clock
// that advances one minute per reading.
type testEnv struct {
	t          *testing.T
	configDir  string
	dataDir    string
	reportsDir string
	clock      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		t:          t,
		configDir:  filepath.Join(root, "config"),
		dataDir:    filepath.Join(root, "data"),
		reportsDir: filepath.Join(root, "reports"),
		clock:      time.Date(2024, 3, 11, 8, 0, 0, 0, time.Local),
	}
	t.Setenv(paths.EnvReportsDir, env.reportsDir)
	t.Setenv(paths.EnvDataDir, "")
	t.Setenv(envPrefix+"_BACKEND", "")
	t.Cleanup(logger.Close)
	return env
}

func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	a := &app{
		now: func() time.Time {
			e.clock = e.clock.Add(time.Minute)
			return e.clock
		},
		interactive: func() bool { return false },
	}
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "args %v: %s", args, out)
	return out
}

func (e *testEnv) writeConfig(body string) {
	e.t.Helper()
	require.NoError(e.t, os.MkdirAll(e.configDir, 0o755))
	require.NoError(e.t, os.WriteFile(filepath.Join(e.configDir, configFileExt), []byte(body), 0o644))
}

func (e *testEnv) entries() []types.Entry {
	e.t.Helper()
	var entries []types.Entry
	require.NoError(e.t, json.Unmarshal([]byte(e.mustRun("--json", "history")), &entries))
	return entries
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("version")
	assert.Contains(t, out, "triggerlog v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInitCreatesDirectoriesAndConfig(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("init")
	assert.Contains(t, out, "triggerlog initialized successfully")

	for _, dir := range []string{env.configDir, env.dataDir, env.reportsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}

	data, err := os.ReadFile(filepath.Join(env.configDir, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: json")
	assert.Contains(t, string(data), "pattern_threshold: 2")

	_, err = os.Stat(filepath.Join(env.configDir, "logs", logger.FileName))
	assert.NoError(t, err, "log file is created")

	// Idempotent and keeps an edited config.
	env.writeConfig("backend: csv\n")
	env.mustRun("init")
	data, err = os.ReadFile(filepath.Join(env.configDir, configFileExt))
	require.NoError(t, err)
	assert.Equal(t, "backend: csv\n", string(data))
}

func TestLogAndRecent(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("log", "--trigger", "Traffic", "--feeling", "anxiety=7", "-f", "Anger=4", "--intensity", "6", "--notes", "late again")
	assert.Contains(t, out, "Logged entry")
	env.mustRun("log", "--trigger", "Work email")

	var recent []types.Entry
	require.NoError(t, json.Unmarshal([]byte(env.mustRun("--json", "recent")), &recent))
	require.Len(t, recent, 2)
	assert.Equal(t, "Work email", recent[0].Trigger, "newest first")
	assert.Equal(t, "Traffic", recent[1].Trigger)
	assert.Equal(t, 7, recent[1].Feelings["anxiety"])
	assert.Equal(t, 4, recent[1].Feelings["anger"])
	assert.Equal(t, 6, recent[1].Intensity)
	assert.Equal(t, "late again", recent[1].Notes)
	assert.Equal(t, types.DefaultIntensity, recent[0].Intensity)

	require.NoError(t, json.Unmarshal([]byte(env.mustRun("--json", "recent", "--limit", "1")), &recent))
	assert.Len(t, recent, 1)

	text := env.mustRun("recent")
	assert.Contains(t, text, "Work email")
	assert.Contains(t, text, "ago")
}

func TestLogClampsOutOfRangeFlags(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "--trigger", "Loud noise", "--intensity", "42", "--feeling", "anxiety=-3", "--feeling", "shame=99")

	entries := env.entries()
	require.Len(t, entries, 1)
	assert.Equal(t, types.MaxIntensity, entries[0].Intensity)
	assert.Equal(t, types.MinFeeling, entries[0].Feelings["anxiety"])
	assert.Equal(t, types.MaxFeeling, entries[0].Feelings["shame"])
}

func TestLogRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "no trigger off a terminal", args: []string{"log"}, wantErr: types.ErrEmptyTrigger},
		{name: "blank trigger", args: []string{"log", "--trigger", "   "}, wantErr: types.ErrEmptyTrigger},
		{name: "feeling without score", args: []string{"log", "-t", "x", "--feeling", "anxiety"}, wantErr: types.ErrInvalidFeeling},
		{name: "non-integer score", args: []string{"log", "-t", "x", "--feeling", "anxiety=high"}, wantErr: types.ErrInvalidFeeling},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.run(tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, exitUserError, exitCode(err))
			assert.Empty(t, env.entries(), "rejected input is never persisted")
		})
	}
}

func TestSummary(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "-t", "Traffic", "-f", "anxiety=7", "-i", "8")
	env.mustRun("log", "-t", "Work email", "-f", "anxiety=3", "-i", "4")
	env.mustRun("log", "-t", "Traffic", "-f", "anxiety=5", "-i", "6")

	var s stats.Summary
	require.NoError(t, json.Unmarshal([]byte(env.mustRun("--json", "summary", "--window", "2")), &s))
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, "Traffic", s.TopTrigger)
	require.NotEmpty(t, s.TopTriggers)
	assert.Equal(t, stats.TriggerCount{Trigger: "Traffic", Count: 2}, s.TopTriggers[0])
	assert.InDelta(t, 5.0, s.FeelingAverages["anxiety"], 1e-9)
	assert.InDelta(t, 4.0, s.WindowAverages["anxiety"], 1e-9)
	assert.InDelta(t, 6.0, s.AverageIntensity, 1e-9)

	text := env.mustRun("summary")
	assert.Contains(t, text, "Total entries:")
	assert.Contains(t, text, "Top trigger:")
	assert.Contains(t, text, "Feeling profile")
	assert.Contains(t, text, "Correlations")
}

func TestSummaryThreshold(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		env.mustRun("log", "-t", "Traffic")
	}
	env.mustRun("log", "-t", "Rain")

	patterns := func(args ...string) []stats.Pattern {
		var s stats.Summary
		require.NoError(t, json.Unmarshal([]byte(env.mustRun(append([]string{"--json", "summary"}, args...)...)), &s))
		return s.HourPatterns
	}

	got := patterns()
	require.Len(t, got, 1, "config default of 2")
	assert.Equal(t, "Traffic", got[0].Trigger)

	assert.Len(t, patterns("--threshold", "0"), 2, "an explicit zero keeps single occurrences")
	assert.Empty(t, patterns("--threshold", "3"))

	_, err := env.run("summary", "--threshold", "-1")
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestSummaryEmpty(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun("summary")
	assert.Contains(t, out, "No entries yet")
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "-t", "Traffic", "--before", "driving to WORK")
	env.mustRun("log", "-t", "Argument", "--notes", "about work hours")
	env.mustRun("log", "-t", "Rain")

	old := filepath.Join(t.TempDir(), "old.json")
	require.NoError(t, os.WriteFile(old, []byte(`[{"id":1,"timestamp":"2023-01-02 09:00:00","trigger":"Old work thing","feelings":{},"intensity":3}]`), 0o644))
	env.mustRun("import", old)

	var got []types.Entry
	require.NoError(t, json.Unmarshal([]byte(env.mustRun("--json", "history", "--search", "work")), &got))
	require.Len(t, got, 3)
	assert.Equal(t, "Argument", got[0].Trigger, "newest first")
	assert.Equal(t, "Traffic", got[1].Trigger)
	assert.Equal(t, "Old work thing", got[2].Trigger)

	require.NoError(t, json.Unmarshal([]byte(env.mustRun("--json", "history", "--search", "work", "--days", "30")), &got))
	assert.Len(t, got, 2)

	text := env.mustRun("history", "--search", "rain")
	assert.Contains(t, text, "Rain")
	assert.Contains(t, text, "1 of 4 entries")

	_, err := env.run("history", "--days", "-1")
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestRecentAfterImportOfOlderEntries(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "-t", "Today")

	old := filepath.Join(t.TempDir(), "old.json")
	require.NoError(t, os.WriteFile(old, []byte(`[
		{"id":1,"timestamp":"2023-01-01 09:00:00","trigger":"Old A","feelings":{},"intensity":3},
		{"id":2,"timestamp":"2023-01-02 09:00:00","trigger":"Old B","feelings":{},"intensity":3}
	]`), 0o644))
	env.mustRun("import", old)

	var got []types.Entry
	require.NoError(t, json.Unmarshal([]byte(env.mustRun("--json", "recent", "--limit", "1")), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Today", got[0].Trigger)

	require.NoError(t, json.Unmarshal([]byte(env.mustRun("--json", "recent", "--limit", "2")), &got))
	require.Len(t, got, 2)
	assert.Equal(t, []string{"Today", "Old B"}, []string{got[0].Trigger, got[1].Trigger})
}

func TestShow(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "-t", "Traffic", "-f", "anxiety=6", "-f", "custom=2")
	id := env.entries()[0].ID

	out := env.mustRun("show", strconv.FormatInt(id, 10))
	assert.Contains(t, out, "Trigger:   Traffic")
	assert.Contains(t, out, "anxiety")
	assert.Contains(t, out, "custom", "labels outside the configured set are shown")

	_, err := env.run("show", "12345")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Equal(t, exitUserError, exitCode(err))

	_, err = env.run("show", "abc")
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestExport(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("export")
	assert.ErrorIs(t, err, types.ErrNoEntries)
	assert.Equal(t, exitUserError, exitCode(err))

	env.mustRun("log", "-t", "Traffic", "-f", "anxiety=6")
	out := env.mustRun("export")
	assert.Contains(t, out, "Exported 1 entries")

	files, err := os.ReadDir(env.reportsDir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	names := []string{files[0].Name(), files[1].Name()}
	assert.Contains(t, names[0]+names[1], "triggers_backup_")
	assert.Contains(t, names[0]+names[1], "triggers_export_")

	_, err = env.run("export", "--format", "xml")
	assert.ErrorIs(t, err, types.ErrUnknownFormat)
}

func TestImportLegacyFormats(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()

	mood := filepath.Join(dir, "mood.csv")
	require.NoError(t, os.WriteFile(mood, []byte("Timestamp,Trigger,Mood,Intensity\n2024-01-05 10:00:00,Traffic,Anxious,12\n2024-01-05 11:00:00,,Calm,2\n"), 0o644))
	out := env.mustRun("import", mood, "--format", "mood-csv")
	assert.Contains(t, out, "Imported 1 entries (1 skipped)")

	wide := filepath.Join(dir, "wide.json")
	require.NoError(t, os.WriteFile(wide, []byte(`[{"Timestamp":"2024-01-06 09:30:00","What":"Deadline","Before":"","After":"","Anxiety":8,"Stress":6,"OverallIntensity":7,"Notes":"ok"}]`), 0o644))
	env.mustRun("import", wide, "--format", "wide-json")

	entries := env.entries()
	require.Len(t, entries, 2)
	byTrigger := map[string]types.Entry{}
	for _, e := range entries {
		byTrigger[e.Trigger] = e
	}
	assert.Equal(t, "mood: Anxious", byTrigger["Traffic"].Notes)
	assert.Equal(t, types.MaxIntensity, byTrigger["Traffic"].Intensity)
	assert.Equal(t, 8, byTrigger["Deadline"].Feelings["anxiety"])
	assert.Equal(t, 6, byTrigger["Deadline"].Feelings["stress"])
	assert.Equal(t, 7, byTrigger["Deadline"].Intensity)

	_, err := env.run("import", filepath.Join(dir, "missing.json"))
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestImportInfersCSVFromExtension(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "-t", "Traffic", "-f", "anxiety=6")
	env.mustRun("export", "--format", "csv")

	files, err := filepath.Glob(filepath.Join(env.reportsDir, "*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	other := newTestEnv(t)
	other.mustRun("import", files[0])
	entries := other.entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 6, entries[0].Feelings["anxiety"])
}

func TestClear(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("log", "-t", "Traffic")

	_, err := env.run("clear")
	assert.ErrorIs(t, err, errConfirmRequired)
	assert.Len(t, env.entries(), 1)

	out := env.mustRun("clear", "--yes")
	assert.Contains(t, out, "All entries deleted.")
	assert.Empty(t, env.entries())
}

func TestMenuRequiresTerminal(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("menu")
	assert.ErrorIs(t, err, errNotInteractive)
}

func TestBackendsFromConfig(t *testing.T) {
	tests := []struct {
		backend string
		file    string
	}{
		{backend: types.BackendJSON, file: filestore.JSONFileName},
		{backend: types.BackendCSV, file: filestore.CSVFileName},
		{backend: types.BackendSQLite, file: sqlite.DBFileName},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			env := newTestEnv(t)
			env.writeConfig("backend: " + tt.backend + "\n")
			env.mustRun("log", "-t", "Traffic", "-f", "anxiety=7")
			env.mustRun("log", "-t", "Traffic", "-f", "anxiety=5")

			_, err := os.Stat(filepath.Join(env.dataDir, tt.file))
			require.NoError(t, err)

			var s stats.Summary
			require.NoError(t, json.Unmarshal([]byte(env.mustRun("--json", "summary")), &s))
			assert.Equal(t, 2, s.Total)
			assert.InDelta(t, 6.0, s.FeelingAverages["anxiety"], 1e-9)
		})
	}
}

func TestBackendFromEnv(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv(envPrefix+"_BACKEND", types.BackendCSV)
	env.mustRun("log", "-t", "Traffic")

	_, err := os.Stat(filepath.Join(env.dataDir, filestore.CSVFileName))
	assert.NoError(t, err)
}

func TestUnknownBackendIsUserError(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig("backend: postgres\n")
	_, err := env.run("recent")
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
	assert.Equal(t, exitUserError, exitCode(err))
}

func TestConfiguredFeelingsDriveCSVColumns(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig("feelings: [anxiety, stress]\n")
	env.mustRun("log", "-t", "Traffic", "-f", "stress=4", "-f", "anger=9")
	env.mustRun("export", "--format", "csv")

	files, err := filepath.Glob(filepath.Join(env.reportsDir, "*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	header := strings.SplitN(string(data), "\n", 2)[0]
	assert.Equal(t, "id,timestamp,trigger,before,after,intensity,notes,feeling_anxiety,feeling_stress", header)
}

func TestDataDirPrecedence(t *testing.T) {
	env := newTestEnv(t)
	configured := filepath.Join(t.TempDir(), "from-config")
	env.writeConfig("data_dir: " + configured + "\n")
	t.Setenv(paths.EnvDataDir, filepath.Join(t.TempDir(), "from-env"))

	// The flag wins over config.yaml.
	env.mustRun("log", "-t", "Traffic")
	_, err := os.Stat(filepath.Join(env.dataDir, filestore.JSONFileName))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(configured, filestore.JSONFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestDotEnvSetsConfigDir(t *testing.T) {
	env := newTestEnv(t)
	work := t.TempDir()
	fromDotEnv := filepath.Join(t.TempDir(), "dotenv-config")
	require.NoError(t, os.WriteFile(filepath.Join(work, dotEnvFile), []byte(paths.EnvConfigDir+"="+fromDotEnv+"\n"), 0o644))

	t.Setenv(paths.EnvConfigDir, "")
	require.NoError(t, os.Unsetenv(paths.EnvConfigDir))
	t.Chdir(work)

	cmd := newRootCmd(&app{now: time.Now, interactive: func() bool { return false }})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--data-dir", env.dataDir, "init"})
	require.NoError(t, cmd.Execute(), out.String())

	_, err := os.Stat(filepath.Join(fromDotEnv, configFileExt))
	assert.NoError(t, err, "config.yaml is created in the directory named by .env")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitSuccess, exitCode(nil))
	assert.Equal(t, exitUserError, exitCode(userError(types.ErrEmptyTrigger)))
	assert.Equal(t, exitSysError, exitCode(sysError(os.ErrPermission)))
	assert.Equal(t, exitUserError, exitCode(os.ErrInvalid), "unclassified errors are user errors")
}
