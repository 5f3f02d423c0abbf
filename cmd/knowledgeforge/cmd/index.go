package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kestrel-labs/knowledgeforge/internal/indexstore"
)

// extensionTypes maps a file extension to the Entry Type a bare CLI index
// invocation should infer for it. Anything unmatched defaults to knowledge.
var extensionTypes = map[string]indexstore.EntryType{
	".go":   indexstore.EntryTypeCode,
	".py":   indexstore.EntryTypeCode,
	".ts":   indexstore.EntryTypeCode,
	".js":   indexstore.EntryTypeCode,
	".rs":   indexstore.EntryTypeCode,
	".java": indexstore.EntryTypeCode,
}

func newIndexCmd() *cobra.Command {
	var (
		entryType string
		category  string
		tags      []string
		rebuild   bool
		only      string
	)

	cmd := &cobra.Command{
		Use:   "index [paths...]",
		Short: "Index files as knowledge entries, or rebuild the index",
		Long: `Index reads each given file and stores it as an entry.

Entry type is inferred from the file extension unless --type overrides it.
With --rebuild, the whole index is rebuilt from the stored entries (or only
the entries of one type, with --only) instead of appending; any paths given
alongside --rebuild are ignored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rebuild {
				return runRebuild(cmd, only)
			}
			return runIndex(cmd, args, entryType, category, tags)
		},
	}

	cmd.Flags().StringVar(&entryType, "type", "", "override inferred entry type (knowledge, memory, adr, gotcha, code)")
	cmd.Flags().StringVar(&category, "category", "", "category to assign to indexed entries")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag to attach to indexed entries (repeatable)")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "rebuild the index instead of appending")
	cmd.Flags().StringVar(&only, "only", "", "with --rebuild, limit to this entry type instead of a full rebuild")

	return cmd
}

func runIndex(cmd *cobra.Command, paths []string, entryType, category string, tags []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("index requires at least one file path")
	}

	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	entries := make([]*indexstore.Entry, 0, len(paths))
	for _, path := range paths {
		entry, err := loadEntry(path, entryType, category, tags)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		entries = append(entries, entry)
	}

	ctx := cmd.Context()
	if err := engine.IndexContent(ctx, entries); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d entries\n", len(entries))
	return nil
}

func runRebuild(cmd *cobra.Command, only string) error {
	engine, err := loadEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := cmd.Context()
	if only != "" {
		report, err := engine.Manager.RebuildPartialIndex(ctx, indexstore.EntryType(only))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "partial rebuild complete: %d entries\n", report.EntryCount)
		return nil
	}

	report, err := engine.Manager.RebuildIndex(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rebuild complete: %d entries\n", report.EntryCount)
	return nil
}

// loadEntry builds an Entry from a file on disk. It does not resolve
// gitignore rules, submodules, or repository layout: it treats each path
// as one opaque knowledge entry, not a codebase to crawl.
func loadEntry(path, entryType, category string, tags []string) (*indexstore.Entry, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	typ := indexstore.EntryTypeKnowledge
	if entryType != "" {
		typ = indexstore.EntryType(entryType)
	} else if inferred, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]; ok {
		typ = inferred
	}

	return &indexstore.Entry{
		Type:     typ,
		Category: category,
		Path:     path,
		Title:    filepath.Base(path),
		Content:  string(content),
		Tags:     tags,
		Language: strings.TrimPrefix(filepath.Ext(path), "."),
	}, nil
}
