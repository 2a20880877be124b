package filewatch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	tcontext "github.com/harborml/berth/internal/testutils/context"
	"github.com/harborml/berth/pkg/utils/filewatch"
)

func waitCancel(t *testing.T, ctx context.Context, timeout context.Context) {
	t.Helper()

	select {
	case <-ctx.Done():
		return
	case <-timeout.Done():
	}
	t.Fatalf("context is not canceled")
}

func createFile(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
}

func TestUntilModifyContext(t *testing.T) {
	for name, testcase := range map[string]struct {
		watchFile bool // watch the file itself, not its directory
		modify    func(t *testing.T, file string)
	}{
		"when a file is created in a watched directory, it cancels context": {
			modify: func(t *testing.T, file string) {
				createFile(t, file+".new")
			},
		},
		"when a file is written in a watched directory, it cancels context": {
			modify: func(t *testing.T, file string) {
				if err := os.WriteFile(file, []byte("content"), 0644); err != nil {
					t.Fatal(err)
				}
			},
		},
		"when the watched file is written, it cancels context": {
			watchFile: true,
			modify: func(t *testing.T, file string) {
				if err := os.WriteFile(file, []byte("content"), 0644); err != nil {
					t.Fatal(err)
				}
			},
		},
		"when a file in the watched directory is deleted, it cancels context": {
			modify: func(t *testing.T, file string) {
				if err := os.Remove(file); err != nil {
					t.Fatal(err)
				}
			},
		},
		"when a file in the watched directory is renamed, it cancels context": {
			modify: func(t *testing.T, file string) {
				if err := os.Rename(file, file+".renamed"); err != nil {
					t.Fatal(err)
				}
			},
		},
	} {
		t.Run(name, func(t *testing.T) {
			timeout, cancelTimeout := tcontext.WithTest(context.Background(), t)
			defer cancelTimeout()

			dir := t.TempDir()
			file := filepath.Join(dir, "file")
			createFile(t, file)

			target := dir
			if testcase.watchFile {
				target = file
			}

			ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), target)
			if err != nil {
				t.Fatal(err)
			}
			defer cancel()

			if err := ctx.Err(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testcase.modify(t, file)
			waitCancel(t, ctx, timeout)
		})
	}

	t.Run("when the target does not exist, it returns error", func(t *testing.T) {
		dir := t.TempDir()
		_, _, err := filewatch.UntilModifyContext(
			context.Background(), filepath.Join(dir, "no-such-file"),
		)
		if err == nil {
			t.Error("expected error, but got nil")
		}
	})

	t.Run("when a target path is empty, it returns error", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "file")
		createFile(t, file)

		_, _, err := filewatch.UntilModifyContext(context.Background(), file, "")
		if err == nil {
			t.Error("expected error, but got nil")
		}
	})
}
