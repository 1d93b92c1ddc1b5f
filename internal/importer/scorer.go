package importer

import (
	"fmt"
	"sort"
	"strings"

	"beleidsgraaf/internal/db"
)

const (
	directTagScore = 1.0
	parentTagScore = 0.7

	// MatchThreshold is the minimum confidence for a node to count as a
	// match candidate.
	MatchThreshold = 0.5

	// MaxCandidates caps how many candidates a single item can produce.
	MaxCandidates = 10
)

// Snapshot is a point-in-time view of the tag hierarchy and the
// node/tag index, loaded once per cycle so every item in the cycle
// scores against the same data.
type Snapshot struct {
	tagByName  map[string]db.Tag
	tagByID    map[int64]db.Tag
	nodesByTag map[int64][]int64
	nodeTypes  map[int64]string
}

func NewSnapshot(tags []db.Tag, nodeTags []db.NodeTag) *Snapshot {
	s := &Snapshot{
		tagByName:  make(map[string]db.Tag, len(tags)),
		tagByID:    make(map[int64]db.Tag, len(tags)),
		nodesByTag: make(map[int64][]int64),
		nodeTypes:  make(map[int64]string),
	}
	for _, t := range tags {
		s.tagByName[strings.ToLower(t.Name)] = t
		s.tagByID[t.ID] = t
	}
	for _, nt := range nodeTags {
		s.nodesByTag[nt.TagID] = append(s.nodesByTag[nt.TagID], nt.NodeID)
		s.nodeTypes[nt.NodeID] = nt.NodeType
	}
	return s
}

// TagID resolves a tag name case-insensitively.
func (s *Snapshot) TagID(name string) (int64, bool) {
	t, ok := s.tagByName[strings.ToLower(name)]
	return t.ID, ok
}

// TagNames returns the vocabulary handed to the extraction capability.
func (s *Snapshot) TagNames() []string {
	names := make([]string, 0, len(s.tagByID))
	for _, t := range s.tagByID {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Candidate is one scored match between an imported item and an
// existing corpus node.
type Candidate struct {
	NodeID     int64
	Confidence float64
	Reason     string
}

// ScoreNodes ranks corpus nodes by tag overlap with the given matched
// tag names. A node directly tagged with a matched tag scores 1.0 for
// that tag; a node tagged with the matched tag's parent scores 0.7.
// Scores are normalized by the number of distinct matched tags and
// clamped to [0,1]. Nodes below MatchThreshold are dropped and at most
// MaxCandidates are returned, best first.
//
// The function is deterministic for a given snapshot: ties are broken
// by node id.
func ScoreNodes(matchedTags []string, snap *Snapshot) []Candidate {
	raw := make(map[int64]float64)
	reasons := make(map[int64][]string)

	addReason := func(nodeID int64, tagName string) {
		for _, r := range reasons[nodeID] {
			if r == tagName {
				return
			}
		}
		reasons[nodeID] = append(reasons[nodeID], tagName)
	}

	seen := make(map[int64]bool)
	distinct := 0
	for _, name := range matchedTags {
		tag, ok := snap.tagByName[strings.ToLower(name)]
		if !ok {
			continue
		}
		if seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true
		distinct++

		for _, nodeID := range snap.nodesByTag[tag.ID] {
			if snap.nodeTypes[nodeID] == db.NodeTypeImportedItem {
				continue
			}
			raw[nodeID] += directTagScore
			addReason(nodeID, tag.Name)
		}
		if tag.ParentID != nil {
			for _, nodeID := range snap.nodesByTag[*tag.ParentID] {
				if snap.nodeTypes[nodeID] == db.NodeTypeImportedItem {
					continue
				}
				raw[nodeID] += parentTagScore
				addReason(nodeID, tag.Name)
			}
		}
	}

	divisor := float64(distinct)
	if divisor < 1 {
		divisor = 1
	}

	candidates := make([]Candidate, 0, len(raw))
	for nodeID, score := range raw {
		confidence := score / divisor
		if confidence > 1.0 {
			confidence = 1.0
		}
		if confidence < MatchThreshold {
			continue
		}
		candidates = append(candidates, Candidate{
			NodeID:     nodeID,
			Confidence: confidence,
			Reason:     renderReason(reasons[nodeID]),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].NodeID < candidates[j].NodeID
	})
	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	return candidates
}

func renderReason(tagNames []string) string {
	return fmt.Sprintf("Tag overlap: %s", strings.Join(tagNames, ", "))
}
