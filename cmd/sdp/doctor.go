package main

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/franz/speech-janitor/internal/store"
	"github.com/franz/speech-janitor/internal/util"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the base directory",
	Long: `Run diagnostic checks to ensure sdp can operate correctly.

This command checks:
- SQLite version
- Catalog accessibility and integrity
- Write permission on the base directory
- Disk space availability
- Network mounts (parallel writes are reduced there)
- Leftovers of interrupted builds

Use --clean to remove the leftovers.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().Bool("clean", false, "remove staging directories of interrupted builds")
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	baseDir := GetConfigString("base_dir", "datasets")
	clean, _ := cmd.Flags().GetBool("clean")

	util.InfoLog("=== SDP Doctor - System Diagnostics ===")
	util.InfoLog("")

	results := []checkResult{
		checkSQLite(),
		checkBaseDirectory(baseDir),
		checkCatalog(filepath.Join(baseDir, store.CatalogFile)),
		checkDiskSpace(baseDir),
		checkFilesystem(baseDir),
		checkStaging(baseDir, clean),
	}

	util.InfoLog("")
	util.InfoLog("=== Diagnostic Results ===")
	util.InfoLog("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			util.ErrorLog("%s", line)
		} else if r.warning {
			util.WarnLog("%s", line)
		} else {
			util.SuccessLog("%s", line)
		}
	}

	util.InfoLog("")
	if hasErrors {
		util.ErrorLog("❌ Some critical checks failed. Please resolve errors before running sdp.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		util.WarnLog("⚠️  Some checks produced warnings. Review them before proceeding.")
	} else {
		util.SuccessLog("✅ All checks passed! System is ready for sdp operations.")
	}

	return nil
}

// checkSQLite verifies the embedded SQLite works
func checkSQLite() checkResult {
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkCatalog verifies catalog accessibility and integrity
func checkCatalog(dbPath string) checkResult {
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Catalog",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Catalog",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Catalog",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Catalog",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Catalog",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	return checkResult{
		name:    "Catalog",
		message: fmt.Sprintf("%s (%s)", dbPath, humanize.Bytes(uint64(info.Size()))),
	}
}

// checkBaseDirectory verifies the base directory is writable, creating it
// when missing
func checkBaseDirectory(path string) checkResult {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(path, 0755); err != nil {
				return checkResult{
					name:    "Base directory",
					error:   true,
					message: fmt.Sprintf("cannot create %s: %v", path, err),
				}
			}
			return checkResult{
				name:    "Base directory",
				message: fmt.Sprintf("%s (created)", path),
			}
		}
		return checkResult{
			name:    "Base directory",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    "Base directory",
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	testFile := filepath.Join(path, ".sdp_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    "Base directory",
			error:   true,
			message: fmt.Sprintf("cannot write to %s: %v", path, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    "Base directory",
		message: fmt.Sprintf("%s (writable)", path),
	}
}

// checkDiskSpace verifies available disk space below path
func checkDiskSpace(path string) checkResult {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return checkResult{
			name:    "Disk space",
			warning: true,
			message: fmt.Sprintf("cannot determine disk space: %v", err),
		}
	}

	availBytes := stat.Bavail * uint64(stat.Bsize)
	totalBytes := stat.Blocks * uint64(stat.Bsize)
	usedBytes := totalBytes - (stat.Bfree * uint64(stat.Bsize))
	usedPercent := float64(usedBytes) / float64(totalBytes) * 100

	// Audio copies and mel tensors of a corpus easily take tens of GB
	warning := false
	warningMsg := ""
	if availBytes < 10*humanize.GiByte {
		warning = true
		warningMsg = " (low space!)"
	} else if usedPercent > 90 {
		warning = true
		warningMsg = " (>90% used)"
	}

	return checkResult{
		name:    "Disk space",
		warning: warning,
		message: fmt.Sprintf("%s available%s", humanize.IBytes(availBytes), warningMsg),
	}
}

// checkFilesystem warns when the base directory is on a network mount
func checkFilesystem(path string) checkResult {
	info, err := util.DetectNetworkFilesystem(path)
	if err != nil {
		return checkResult{
			name:    "Filesystem",
			warning: true,
			message: fmt.Sprintf("cannot detect filesystem: %v", err),
		}
	}
	if info.IsNetwork {
		return checkResult{
			name:    "Filesystem",
			warning: true,
			message: fmt.Sprintf("%s mount at %s (workers are capped)", info.Protocol, info.MountPath),
		}
	}
	return checkResult{name: "Filesystem", message: "local"}
}

// checkStaging reports directories left behind by interrupted builds and
// removes them when clean is set
func checkStaging(baseDir string, clean bool) checkResult {
	stages := store.NewStageStore(nil)
	if !stages.Exists(baseDir) {
		return checkResult{name: "Staging directories", message: "none"}
	}

	if clean {
		removed, err := stages.CleanStaging(baseDir)
		if err != nil {
			return checkResult{
				name:    "Staging directories",
				error:   true,
				message: err.Error(),
			}
		}
		for _, path := range removed {
			util.DebugLog("Removed %s", path)
		}
		return checkResult{
			name:    "Staging directories",
			message: fmt.Sprintf("%d removed", len(removed)),
		}
	}

	found, err := stages.FindStaging(baseDir)
	if err != nil {
		return checkResult{
			name:    "Staging directories",
			warning: true,
			message: err.Error(),
		}
	}
	if len(found) > 0 {
		return checkResult{
			name:    "Staging directories",
			warning: true,
			message: fmt.Sprintf("%d left by interrupted builds (run 'sdp doctor --clean')", len(found)),
		}
	}
	return checkResult{name: "Staging directories", message: "none"}
}
