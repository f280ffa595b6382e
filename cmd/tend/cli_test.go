package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tendhq/tend/internal/config"
	"github.com/tendhq/tend/internal/db"
	"github.com/tendhq/tend/internal/ops"
)

// setupTestStore creates a temporary database for testing.
func setupTestStore(t *testing.T) *db.Store {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return db.NewStore(database)
}

// runApp executes a CLI command and returns captured stdout.
func runApp(t *testing.T, store *db.Store, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp(store, config.DefaultConfig())

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := app.Run(append([]string{"tend"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

func TestParseList(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"slack", []string{"slack"}},
		{"slack,email", []string{"slack", "email"}},
		{" slack , email , ", []string{"slack", "email"}},
	}
	for _, tt := range tests {
		if got := parseList(tt.input); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("parseList(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestIsCLIMode(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"tend"}, false},
		{[]string{"tend", "people"}, true},
		{[]string{"tend", "scan", "notes.md"}, true},
		{[]string{"tend", "--help"}, true},
		{[]string{"tend", "bogus"}, false},
	}
	for _, tt := range tests {
		os.Args = tt.args
		if got := isCLIMode(); got != tt.want {
			t.Errorf("isCLIMode(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestCLIAddPersonAndPeople(t *testing.T) {
	store := setupTestStore(t)

	out, err := runApp(t, store, "add-person", "Priya", "Nair", "--importance=critical", "--channels=slack,email")
	if err != nil {
		t.Fatalf("add-person failed: %v", err)
	}

	var added ops.AddPersonOutput
	if err := json.Unmarshal([]byte(out), &added); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if added.Person.Key != "priyanair" {
		t.Errorf("key = %s, want priyanair", added.Person.Key)
	}
	if len(added.Person.Channels) != 2 {
		t.Errorf("channels = %v, want 2 entries", added.Person.Channels)
	}

	out, err = runApp(t, store, "people")
	if err != nil {
		t.Fatalf("people failed: %v", err)
	}
	var listed ops.ListPeopleOutput
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if listed.Count != 1 {
		t.Errorf("count = %d, want 1", listed.Count)
	}
}

func TestCLIPersonNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := runApp(t, store, "person", "ghost")
	if err == nil {
		t.Fatal("expected error for missing person")
	}
}

func TestCLIScanFile(t *testing.T) {
	store := setupTestStore(t)

	note := "Sarah Chen, VP of engineering, is the decision maker for the platform budget and headcount.\n" +
		"She prefers direct slack messages over email.\n\n" +
		"Sarah will review the platform roadmap by Friday.\n"
	path := filepath.Join(t.TempDir(), "note.md")
	if err := os.WriteFile(path, []byte(note), 0o644); err != nil {
		t.Fatalf("write note: %v", err)
	}

	out, err := runApp(t, store, "scan", "--category=one_on_one", "--meeting-type=leadership", path)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	var scanned ops.ScanOutput
	if err := json.Unmarshal([]byte(out), &scanned); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if scanned.Processed == 0 {
		t.Error("expected processed candidates")
	}
	if scanned.Failed != 0 {
		t.Errorf("failed = %d, want 0", scanned.Failed)
	}

	out, err = runApp(t, store, "tasks", "--status=active")
	if err != nil {
		t.Fatalf("tasks failed: %v", err)
	}
	var tasks ops.ListTasksOutput
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if tasks.Count == 0 {
		t.Error("expected the roadmap task to be created")
	}
}

func TestCLIRecommendFlow(t *testing.T) {
	store := setupTestStore(t)

	if _, err := runApp(t, store, "add-person", "Priya", "Nair", "--importance=critical"); err != nil {
		t.Fatalf("add-person failed: %v", err)
	}

	out, err := runApp(t, store, "recommend")
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	var gen ops.GenerateRecommendationsOutput
	if err := json.Unmarshal([]byte(out), &gen); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if len(gen.Recommendations) != 1 {
		t.Fatalf("recommendations = %d, want 1", len(gen.Recommendations))
	}

	out, err = runApp(t, store, "interaction", "priyanair", "--type=meeting", "--quality=5")
	if err != nil {
		t.Fatalf("interaction failed: %v", err)
	}
	var rec ops.RecordInteractionOutput
	if err := json.Unmarshal([]byte(out), &rec); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if rec.SupersededCount != 1 {
		t.Errorf("superseded = %d, want 1", rec.SupersededCount)
	}
}

func TestCLIScanRequiresFiles(t *testing.T) {
	store := setupTestStore(t)
	if _, err := runApp(t, store, "scan"); err == nil {
		t.Fatal("expected error when no files given")
	}
}
