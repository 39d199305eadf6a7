package logmodel

import (
	"strings"
	"time"
)

// Item is a single MSBuild item: its include name and metadata.
type Item struct {
	Name     string
	Metadata map[string]string
}

// MetadataValue looks up a metadata value. MSBuild metadata names are
// case-insensitive, so an exact match is tried first and then a folded one.
func (i Item) MetadataValue(name string) (string, bool) {
	if v, ok := i.Metadata[name]; ok {
		return v, true
	}
	for k, v := range i.Metadata {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// ItemGroup is an ordered list of items sharing an item type.
type ItemGroup struct {
	Name  string
	Items []Item
}

// ItemAction records items being added to or removed from an item type
// while a target ran.
type ItemAction struct {
	Time       time.Time
	IsAddition bool
	ItemGroup  ItemGroup
}

// PropertySet records one property assignment made while a target ran.
// It is a historical record, not a live property bag.
type PropertySet struct {
	Name  string
	Value string
	Time  time.Time
}

// groupItems folds a flat item list into item groups keyed by item type,
// keeping the order in which each type first appeared.
func groupItems(items []EventItem) []ItemGroup {
	if len(items) == 0 {
		return nil
	}
	index := make(map[string]int)
	var groups []ItemGroup
	for _, it := range items {
		i, ok := index[it.ItemType]
		if !ok {
			i = len(groups)
			index[it.ItemType] = i
			groups = append(groups, ItemGroup{Name: it.ItemType})
		}
		groups[i].Items = append(groups[i].Items, Item{Name: it.Include, Metadata: copyMap(it.Metadata)})
	}
	return groups
}

func toItems(items []EventItem) []Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{Name: it.Include, Metadata: copyMap(it.Metadata)}
	}
	return out
}

func copyMap(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
