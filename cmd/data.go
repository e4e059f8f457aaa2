package cmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// transferTimeout bounds export, backup and restore.
const transferTimeout = 2 * time.Minute

// exportCmd writes the result history as CSV to the named file, or to
// stdout when no file is given.
func exportCmd(args []string) int {
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "Usage: speedlog export [FILE]")
		return 1
	}

	rt, ok := setupOrReport()
	if !ok {
		return 1
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), transferTimeout)
	defer cancel()

	if len(args) == 0 {
		if err := rt.Client.Export(ctx, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	var buf bytes.Buffer
	if err := rt.Client.Export(ctx, &buf); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := os.WriteFile(args[0], buf.Bytes(), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", args[0], err)
		return 1
	}
	rt.Logger.Info("results exported", "file", args[0], "bytes", buf.Len())
	fmt.Printf("Results exported to %s\n", args[0])
	return 0
}

// backupCmd saves a database dump. Without a file name the one suggested by
// the server is used in the current directory.
func backupCmd(args []string) int {
	if len(args) > 1 {
		fmt.Fprintln(os.Stderr, "Usage: speedlog backup [FILE]")
		return 1
	}

	rt, ok := setupOrReport()
	if !ok {
		return 1
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), transferTimeout)
	defer cancel()

	var buf bytes.Buffer
	suggested, err := rt.Client.Backup(ctx, &buf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	path := backupPath(args, suggested, time.Now())
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
		return 1
	}
	rt.Logger.Info("backup saved", "file", path, "bytes", buf.Len())
	fmt.Printf("Backup saved to %s\n", path)
	return 0
}

// backupPath picks the output file: the argument, else the server's
// suggestion reduced to its base name, else a timestamped default.
func backupPath(args []string, suggested string, now time.Time) string {
	if len(args) == 1 {
		return args[0]
	}
	if name := filepath.Base(suggested); suggested != "" && name != "." && name != string(filepath.Separator) {
		return name
	}
	return "speedlog_backup_" + now.Format("20060102_150405") + ".sql"
}

// restoreCmd uploads a dump made by backupCmd after the user confirms, or
// straight away with --yes.
func restoreCmd(args []string, stdin io.Reader) int {
	file, yes, err := parseRestoreArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: speedlog restore FILE [--yes]")
		return 1
	}

	f, err := os.Open(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer f.Close()

	if !yes && !confirm(stdin, fmt.Sprintf("Replace all data on the server with %s? [y/N] ", file)) {
		fmt.Println("Restore cancelled.")
		return 1
	}

	rt, ok := setupOrReport()
	if !ok {
		return 1
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), transferTimeout)
	defer cancel()
	if err := rt.Client.Restore(ctx, f, filepath.Base(file)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Println("Database restored.")
	return 0
}

func parseRestoreArgs(args []string) (file string, yes bool, err error) {
	for _, a := range args {
		switch {
		case a == "--yes" || a == "-y":
			yes = true
		case strings.HasPrefix(a, "-"):
			return "", false, fmt.Errorf("unknown flag %q", a)
		case file != "":
			return "", false, errors.New("only one backup file can be restored")
		default:
			file = a
		}
	}
	if file == "" {
		return "", false, errors.New("missing backup file")
	}
	return file, yes, nil
}

func confirm(r io.Reader, prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(r).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
