package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"nightdrive/config"
	"nightdrive/storage"
)

var backupCSV bool

var backupCmd = &cobra.Command{
	Use:   "backup-leads",
	Short: "Copy captured lead files into a timestamped backup directory",
	RunE:  runBackup,
}

func init() {
	backupCmd.Flags().BoolVar(&backupCSV, "csv", false, "also export each channel as CSV")
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := storage.NewNDJSONStore(cfg.DataDir)
	if err != nil {
		return err
	}

	stamp := time.Now().UTC().Format("20060102-150405")
	backupDir := filepath.Join(cfg.DataDir, "backups", stamp)
	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}

	copied := 0
	for _, kind := range []string{"contact", "newsletter"} {
		src := store.Path(kind)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			continue
		}
		dst := filepath.Join(backupDir, kind+".ndjson")
		if err := copyFile(src, dst); err != nil {
			return fmt.Errorf("backup %s: %w", kind, err)
		}
		copied++

		if backupCSV {
			if err := exportCSV(store, kind, filepath.Join(backupDir, kind+".csv")); err != nil {
				return fmt.Errorf("export %s csv: %w", kind, err)
			}
		}
	}

	fmt.Printf("backed up %d lead file(s) to %s\n", copied, backupDir)
	return nil
}

func exportCSV(store *storage.NDJSONStore, kind, path string) error {
	leads, err := store.ReadAll(kind)
	if err != nil {
		return err
	}
	w, err := storage.NewCSVWriter(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.WriteLeads(leads)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
