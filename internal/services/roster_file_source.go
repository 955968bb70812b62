package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alimgiray/better-github/internal/models"
	"gopkg.in/yaml.v3"
)

// RosterFileSource reads rosters from a YAML or JSON fixture.
// The document is either a list of records or a mapping of "owner/repo" to such lists.
type RosterFileSource struct {
	path string
}

func NewRosterFileSource(path string) *RosterFileSource {
	return &RosterFileSource{path: path}
}

func (s *RosterFileSource) Name() string {
	return "file"
}

func (s *RosterFileSource) FetchRoster(ctx context.Context, owner, repo string) ([]*models.ContributorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster file: %w", err)
	}
	return ParseRoster(data, models.RepoFullName(owner, repo))
}

// ParseRoster decodes a roster document and validates every record
func ParseRoster(data []byte, repoFullName string) ([]*models.ContributorRecord, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	if len(doc.Content) == 0 {
		return []*models.ContributorRecord{}, nil
	}

	var roster []*models.ContributorRecord
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&roster); err != nil {
			return nil, fmt.Errorf("failed to decode roster: %w", err)
		}
	case yaml.MappingNode:
		var byRepo map[string][]*models.ContributorRecord
		if err := root.Decode(&byRepo); err != nil {
			return nil, fmt.Errorf("failed to decode roster: %w", err)
		}
		found := false
		for name, records := range byRepo {
			if strings.EqualFold(name, repoFullName) {
				roster, found = records, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("roster has no entry for %s", repoFullName)
		}
	default:
		return nil, fmt.Errorf("roster must be a list or a mapping of repositories")
	}

	for _, record := range roster {
		if record == nil {
			continue
		}
		if err := record.Validate(); err != nil {
			return nil, fmt.Errorf("invalid roster entry: %w", err)
		}
	}
	return NormalizeRoster(roster), nil
}
