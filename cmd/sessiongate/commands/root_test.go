package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"sessiongate/internal/app"
)

func TestExecuteClosesWireWhenCommandFails(t *testing.T) {
	root := newRootCmd()
	var used *app.Wire
	root.AddCommand(&cobra.Command{
		Use: "fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			used = wire
			return errors.New("command failed")
		},
	})
	var stderr bytes.Buffer
	root.SetErr(&stderr)
	root.SetOut(&stderr)
	root.SetArgs([]string{
		"fail",
		"--home", t.TempDir(),
		"--storage", app.StorageSQLite,
		"--platform", "http://127.0.0.1:1",
	})

	err := execute(root)
	if err == nil || !strings.Contains(err.Error(), "command failed") {
		t.Fatalf("execute = %v", err)
	}
	if used == nil {
		t.Fatal("wire was never built")
	}
	if wire != nil {
		t.Fatal("wire still set after execute")
	}
	if _, err := used.Status(); err == nil {
		t.Fatal("storage still open after a failed command")
	}
}
