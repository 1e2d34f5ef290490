// cmd/demoplay/validate.go
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zageabb/reflex-AgentDemo/internal/models"
	"github.com/zageabb/reflex-AgentDemo/internal/storage"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file-or-dir>...",
		Short: "Check scenario files for errors and suspicious steps",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var files []string
			for _, arg := range args {
				found, err := scenarioFiles(arg)
				if err != nil {
					return err
				}
				files = append(files, found...)
			}

			failed := 0
			for _, path := range files {
				report, err := lintFile(path)
				if err != nil {
					failed++
					fmt.Printf("❌ %s: %v\n", path, err)
					continue
				}
				fmt.Printf("✅ %s: %s (%d steps)\n", path, report.ID, report.Steps)
				for _, w := range report.Warnings {
					fmt.Printf("   ⚠ %s\n", w)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenario files are invalid", failed, len(files))
			}
			return nil
		},
	}
}

func scenarioFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}
	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func lintFile(path string) (*models.ValidationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	payload, err := storage.DecodePayload(path, data)
	if err != nil {
		return nil, err
	}
	return models.LintPayload(payload)
}
