package main

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Issue is one validation finding. Line 0 means the whole document.
type Issue struct {
	Line    int
	Message string
}

var (
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

	changeTypes = map[string]bool{
		"Added":      true,
		"Changed":    true,
		"Deprecated": true,
		"Removed":    true,
		"Fixed":      true,
		"Security":   true,
	}
)

// ValidateHistory checks a parsed changelog against the Keep a Changelog
// conventions and returns the findings sorted by line.
func ValidateHistory(history *History) []Issue {
	var issues []Issue
	report := func(line int, format string, args ...any) {
		issues = append(issues, Issue{Line: line, Message: fmt.Sprintf(format, args...)})
	}

	if history.Title == "" {
		report(0, "Missing changelog title (# Changelog)")
	} else if !strings.Contains(strings.ToLower(history.Title), "changelog") {
		report(1, "Title should contain 'Changelog'")
	}

	hasUnreleased := false
	for _, release := range history.Releases {
		if strings.EqualFold(release.Version, "unreleased") {
			hasUnreleased = true
			if _, ok := history.Links[release.Version]; !ok {
				report(0, "Missing link definition for [%s]", release.Version)
			}
			continue
		}

		if !versionPattern.MatchString(release.Version) {
			report(release.Line, "Version '%s' should follow semantic versioning (X.Y.Z)", release.Version)
		}
		if release.Date == "" {
			report(release.Line, "Version '%s' is missing a release date", release.Version)
		} else if !datePattern.MatchString(release.Date) {
			report(release.Line, "Date '%s' should be in ISO 8601 format (YYYY-MM-DD)", release.Date)
		}
		if _, ok := history.Links[release.Version]; !ok {
			report(0, "Missing link definition for version [%s]", release.Version)
		}

		for line, name := range release.Sections {
			if !changeTypes[name] {
				report(line, "Invalid change type '%s'. Valid types: Added, Changed, Deprecated, Removed, Fixed, Security", name)
			}
		}
	}

	if !hasUnreleased {
		report(0, "Missing [Unreleased] section")
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].Line < issues[j].Line })
	return issues
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a changelog follows Keep a Changelog spec",
	Long: `Validate that a changelog file follows the Keep a Changelog specification.

Checks include:
- File has a title (# Changelog)
- Has an [Unreleased] section
- Version entries use correct format: ## [X.Y.Z] - YYYY-MM-DD
- Dates are in ISO 8601 format (YYYY-MM-DD)
- Change types are valid (Added, Changed, Deprecated, Removed, Fixed, Security)
- Link definitions exist for all versions`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		history, err := ParseHistory(content)
		if err != nil {
			return fmt.Errorf("parsing changelog: %w", err)
		}

		issues := ValidateHistory(history)
		if len(issues) == 0 {
			fmt.Println("✓ Changelog is valid")
			return nil
		}

		fmt.Printf("Found %d issue(s):\n\n", len(issues))
		for _, issue := range issues {
			if issue.Line > 0 {
				fmt.Printf("  Line %d: %s\n", issue.Line, issue.Message)
			} else {
				fmt.Printf("  %s\n", issue.Message)
			}
		}

		os.Exit(1)
		return nil
	},
}

func init() {
	validateCmd.Flags().StringP("file", "f", "CHANGELOG.md", "Path to the changelog file")
	rootCmd.AddCommand(validateCmd)
}
