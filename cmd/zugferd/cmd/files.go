package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	dataExtensions    = []string{".json", ".yaml", ".yml"}
	invoiceExtensions = []string{".xml", ".pdf"}
)

// collectFiles expands globs and directories into the files carrying one of
// the given extensions. Explicitly named files are always kept.
func collectFiles(args []string, extensions []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		if arg == "-" {
			files = append(files, arg)
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			return nil, fmt.Errorf("file not found: %s", arg)
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() {
				if match == arg || hasExtension(match, extensions) {
					files = append(files, match)
				}
				continue
			}
			err = filepath.Walk(match, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && hasExtension(path, extensions) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		}
	}

	return files, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// outputNames maps every input to <name>.xml in a flat output directory.
// Inputs sharing a base name would overwrite each other and are rejected.
func outputNames(files []string) ([]string, error) {
	names := make([]string, len(files))
	owner := make(map[string]string, len(files))
	for i, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + ".xml"
		if prev, ok := owner[name]; ok {
			return nil, fmt.Errorf("%s and %s both produce %s", prev, file, name)
		}
		owner[name] = file
		names[i] = name
	}
	return names, nil
}
