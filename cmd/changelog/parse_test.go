package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validChangelog = `# Changelog

All notable changes to this project will be documented in this file.

The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.1.0/),
and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).

## [Unreleased]

### Added
- New feature in progress

## [1.0.0] - 2024-01-15

### Added
- Initial release
- Core functionality

### Fixed
- Bug fixes

## [0.1.0] - 2024-01-01

### Added
- Beta release

[Unreleased]: https://github.com/wefthq/weft/compare/v1.0.0...HEAD
[1.0.0]: https://github.com/wefthq/weft/compare/v0.1.0...v1.0.0
[0.1.0]: https://github.com/wefthq/weft/releases/tag/v0.1.0
`

func TestParseHistory(t *testing.T) {
	history, err := ParseHistory([]byte(validChangelog))
	require.NoError(t, err)
	require.Len(t, history.Releases, 3)

	assert.Equal(t, "Changelog", history.Title)

	assert.Equal(t, "Unreleased", history.Releases[0].Version)
	assert.Empty(t, history.Releases[0].Date)

	assert.Equal(t, "1.0.0", history.Releases[1].Version)
	assert.Equal(t, "2024-01-15", history.Releases[1].Date)
	assert.Contains(t, history.Releases[1].Body, "Initial release")
	assert.NotContains(t, history.Releases[1].Body, "Beta release")

	assert.Len(t, history.Links, 3)
	assert.Equal(t, "https://github.com/wefthq/weft/compare/v0.1.0...v1.0.0", history.Links["1.0.0"])
}

func TestParseHistorySectionHeadings(t *testing.T) {
	history, err := ParseHistory([]byte(validChangelog))
	require.NoError(t, err)

	var names []string
	for _, name := range history.Releases[1].Sections {
		names = append(names, name)
	}
	assert.ElementsMatch(t, []string{"Added", "Fixed"}, names)
}

func TestFind(t *testing.T) {
	history, err := ParseHistory([]byte(validChangelog))
	require.NoError(t, err)

	assert.NotNil(t, history.Find("1.0.0"))
	assert.NotNil(t, history.Find("v1.0.0"), "leading v should be tolerated")
	assert.Nil(t, history.Find("9.9.9"))
}

func TestValidateHistoryValid(t *testing.T) {
	history, err := ParseHistory([]byte(validChangelog))
	require.NoError(t, err)

	assert.Empty(t, ValidateHistory(history))
}

func TestValidateHistoryFindings(t *testing.T) {
	source := strings.Join([]string{
		"# Release notes",
		"",
		"## [1.0] - 15/01/2024",
		"",
		"### Invented",
		"- something",
		"",
	}, "\n")

	history, err := ParseHistory([]byte(source))
	require.NoError(t, err)

	issues := ValidateHistory(history)
	require.NotEmpty(t, issues)

	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	joined := strings.Join(messages, "\n")
	assert.Contains(t, joined, "Title should contain 'Changelog'")
	assert.Contains(t, joined, "semantic versioning")
	assert.Contains(t, joined, "ISO 8601")
	assert.Contains(t, joined, "Invalid change type 'Invented'")
	assert.Contains(t, joined, "Missing [Unreleased] section")
	assert.Contains(t, joined, "Missing link definition for version [1.0]")
}

func TestValidateHistoryMissingDate(t *testing.T) {
	source := strings.Join([]string{
		"# Changelog",
		"",
		"## [Unreleased]",
		"",
		"## [1.0.0]",
		"",
		"[Unreleased]: https://example.com",
		"[1.0.0]: https://example.com",
	}, "\n")

	history, err := ParseHistory([]byte(source))
	require.NoError(t, err)

	issues := ValidateHistory(history)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "missing a release date")
	assert.Equal(t, 5, issues[0].Line)
}

func TestStripLinkDefinitions(t *testing.T) {
	body := "### Added\n- thing\n\n[1.0.0]: https://example.com\n"
	got := stripLinkDefinitions(body)
	assert.Equal(t, "### Added\n- thing", got)
}
