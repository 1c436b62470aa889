package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-quickattributes/finder"
	"github.com/goliatone/go-quickattributes/pkg/testsupport"
)

// executeCommand runs a fresh command tree with args and returns captured output
func executeCommand(args ...string) (string, error) {
	root := NewRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// writeConfig points the CLI at a SQLite file and a miniredis settings store.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mr, _ := testsupport.NewRedis(t)

	yaml := fmt.Sprintf(`redis_url: redis://%s
logging:
  level: error
database:
  dsn: file:%s
settings:
  backend: redis
  prefix: "cli_test:"
sites:
  default:
    shop_url: https://shop.test/shop/
`, mr.Addr(), filepath.Join(dir, "terms.db"))

	path := filepath.Join(dir, "quickattrs.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	root := NewRootCommand()
	if root.Use != "quickattrs" {
		t.Errorf("root.Use = %q, want %q", root.Use, "quickattrs")
	}

	expectedCmds := []string{"columns", "flush", "settings", "schema", "term-event", "taxonomy", "term"}
	cmdMap := make(map[string]*cobra.Command)
	for _, cmd := range root.Commands() {
		cmdMap[cmd.Name()] = cmd
	}
	for _, expected := range expectedCmds {
		if cmdMap[expected] == nil {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

func TestEndToEnd(t *testing.T) {
	cfg := writeConfig(t)

	steps := [][]string{
		{"schema"},
		{"taxonomy", "add", "attr_color", "Color"},
		{"term", "add", "Red", "--taxonomy", "attr_color", "--count", "3"},
		{"term", "add", "Blue", "--taxonomy", "attr_color", "--count", "0"},
	}
	for _, args := range steps {
		if out, err := executeCommand(append(args, "--config", cfg)...); err != nil {
			t.Fatalf("%v failed: %v\n%s", args, err, out)
		}
	}

	settingsFile := filepath.Join(t.TempDir(), "settings.json")
	body := `{"columns":{"1":{"taxonomy":"attr_color","heading":"Colour"}},"show_counts":"1"}`
	if err := os.WriteFile(settingsFile, []byte(body), 0644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	if out, err := executeCommand("settings", "set", settingsFile, "--config", cfg); err != nil {
		t.Fatalf("settings set failed: %v\n%s", err, out)
	}

	out, err := executeCommand("columns", "--lang", "en", "--config", cfg)
	if err != nil {
		t.Fatalf("columns failed: %v\n%s", err, out)
	}

	var view finder.View
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("columns output is not a view: %v\n%s", err, out)
	}
	if len(view.Columns) != 1 || view.Columns[0].Heading != "Colour" {
		t.Fatalf("unexpected columns %+v", view.Columns)
	}
	items := view.Columns[0].Items
	if len(items) != 1 || items[0].Label != "Red" {
		t.Fatalf("empty terms should be hidden, got %+v", items)
	}
	if items[0].URL != "https://shop.test/shop/?filter_color=red" {
		t.Errorf("unexpected link %q", items[0].URL)
	}
	if !items[0].ShowCount || items[0].Count != 3 {
		t.Errorf("expected visible count 3, got %+v", items[0])
	}

	out, err = executeCommand("settings", "show", "--config", cfg)
	if err != nil || !strings.Contains(out, `"show_counts": true`) {
		t.Fatalf("settings show = %s, %v", out, err)
	}
}

func TestTermEventCommand(t *testing.T) {
	cfg := writeConfig(t)

	tests := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{args: []string{"term-event", "edited", "attr_color", "12"}, want: "term cache flushed"},
		{args: []string{"term-event", "deleted", "product_cat", "12"}, want: "ignored"},
		{args: []string{"term-event", "renamed", "attr_color", "12"}, wantErr: true},
		{args: []string{"term-event", "created", "attr_color", "zero"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, "_"), func(t *testing.T) {
			out, err := executeCommand(append(tt.args, "--config", cfg)...)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got output %q", out)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q does not contain %q", out, tt.want)
			}
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	if _, err := executeCommand("flush", "--config", filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

// Each executeCommand call builds its own container, so settings written by
// one run must be read back from the database by the next.
func TestSettingsPersistWithDefaultBackend(t *testing.T) {
	dir := t.TempDir()
	yaml := fmt.Sprintf(`logging:
  level: error
database:
  dsn: file:%s
sites:
  default:
    shop_url: https://shop.test/shop/
`, filepath.Join(dir, "terms.db"))
	cfg := filepath.Join(dir, "quickattrs.yaml")
	if err := os.WriteFile(cfg, []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	settingsFile := filepath.Join(dir, "settings.json")
	body := `{"columns":{"2":{"taxonomy":"attr_size","heading":"Sizes"}}}`
	if err := os.WriteFile(settingsFile, []byte(body), 0644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	steps := [][]string{
		{"taxonomy", "add", "attr_size", "Size"},
		{"term", "add", "Large", "--taxonomy", "attr_size", "--count", "2"},
		{"settings", "set", settingsFile},
	}
	for _, args := range steps {
		if out, err := executeCommand(append(args, "--config", cfg)...); err != nil {
			t.Fatalf("%v failed: %v\n%s", args, err, out)
		}
	}

	out, err := executeCommand("columns", "--config", cfg)
	if err != nil {
		t.Fatalf("columns failed: %v\n%s", err, out)
	}
	var view finder.View
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("columns output is not a view: %v\n%s", err, out)
	}
	if len(view.Columns) != 1 || view.Columns[0].Heading != "Sizes" {
		t.Fatalf("saved columns were not loaded, got %+v", view.Columns)
	}
	if items := view.Columns[0].Items; len(items) != 1 || items[0].Label != "Large" {
		t.Fatalf("unexpected items %+v", items)
	}
}
