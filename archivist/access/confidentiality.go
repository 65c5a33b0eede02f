package access

import (
	"fmt"
	"strings"

	"github.com/bobinette/archivist/archivist"
	"github.com/bobinette/archivist/errors"
)

// Mode tells whether confidentiality is set on a new document or changed on
// an existing one.
type Mode string

const (
	ModeUpload Mode = "upload"
	ModeEdit   Mode = "edit"
)

// AllowedLevels returns the levels that can be picked. On edit a document
// can only keep or raise its level.
func AllowedLevels(mode Mode, current archivist.Level) []archivist.Level {
	if mode != ModeEdit || !current.Valid() {
		return archivist.Levels
	}
	return archivist.Levels[current.Rank():]
}

// SetConfidentiality validates the requested level and assignees and applies
// them to doc. On error doc is left untouched.
func SetConfidentiality(doc *archivist.Document, requested archivist.Level, assignees []string, mode Mode) error {
	allowed := AllowedLevels(mode, doc.Confidentiality)
	if !contains(allowed, requested) {
		if mode == ModeEdit && requested.Valid() {
			return errors.New(
				fmt.Sprintf("confidentiality can only be kept or raised, current level is %s", doc.Confidentiality.Label()),
				errors.Validation(errors.ReasonInvalidLevel),
			)
		}
		return errors.New(
			fmt.Sprintf("invalid confidentiality level %q, expected one of %s", requested, join(allowed)),
			errors.Validation(errors.ReasonInvalidLevel),
		)
	}

	assignees = dedup(assignees)
	if requested != archivist.Public && len(assignees) == 0 {
		return errors.New(
			fmt.Sprintf("at least one assignee is required for %s documents", requested.Label()),
			errors.Validation(errors.ReasonMissingAssignees),
		)
	}

	if requested == archivist.Public {
		assignees = []string{}
	}

	doc.Confidentiality = requested
	doc.Assignees = assignees
	return nil
}

func contains(levels []archivist.Level, l archivist.Level) bool {
	for _, level := range levels {
		if level == l {
			return true
		}
	}
	return false
}

func join(levels []archivist.Level) string {
	s := make([]string, len(levels))
	for i, l := range levels {
		s[i] = string(l)
	}
	return strings.Join(s, ", ")
}

func dedup(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		res = append(res, id)
	}
	return res
}
