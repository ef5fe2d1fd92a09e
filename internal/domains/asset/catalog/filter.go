package catalog

import (
	"strings"

	"assetstore-backend/internal/domains/asset/model"
)

// Filter evaluates a query over a catalog snapshot. It is pure and
// deterministic: no side effects, output preserves the input's
// relative order, so it can safely run on every keystroke of a live
// search box.
//
// A record is included when ALL three predicates match:
//   - search term: case-insensitive substring of title, description,
//     or any tag; the empty term matches everything
//   - media kind: "all", or the asset's kind derived from its file type
//   - status: "all", "published" (is_published), "draft" (the rest)
func Filter(snapshot []model.Asset, q model.FilterQuery) []model.Asset {
	term := strings.ToLower(q.SearchTerm)

	result := make([]model.Asset, 0, len(snapshot))
	for _, a := range snapshot {
		if matchesSearch(a, term) && matchesMediaKind(a, q.MediaKind) && matchesStatus(a, q.Status) {
			result = append(result, a)
		}
	}
	return result
}

func matchesSearch(a model.Asset, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(a.Title), term) {
		return true
	}
	if a.Description != nil && strings.Contains(strings.ToLower(*a.Description), term) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func matchesMediaKind(a model.Asset, kind string) bool {
	switch kind {
	case "", model.FilterMediaAll:
		return true
	case model.FilterMediaAudio:
		return a.MediaKind == model.MediaKindAudio
	case model.FilterMediaImage:
		return a.MediaKind == model.MediaKindImage
	default:
		return false
	}
}

func matchesStatus(a model.Asset, status string) bool {
	switch status {
	case "", model.FilterStatusAll:
		return true
	case model.FilterStatusPublished:
		return a.IsPublished
	case model.FilterStatusDraft:
		return !a.IsPublished
	default:
		return false
	}
}
