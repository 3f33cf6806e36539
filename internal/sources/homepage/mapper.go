package homepage

import (
	"cmp"
	"slices"
	"strings"
)

// MapBookmarks flattens bookmarks.yaml. The bookmark name becomes the
// title; the description falls back to the category name.
func MapBookmarks(config BookmarksConfig) []Entry {
	var entries []Entry

	for _, category := range config {
		for categoryName, bookmarkList := range category {
			for _, bookmarkMap := range bookmarkList {
				for bookmarkName, entryList := range bookmarkMap {
					// Each bookmark has a list with a single entry
					if len(entryList) == 0 {
						continue
					}
					e := entryList[0]

					title := strings.TrimSpace(bookmarkName)
					if title == "" {
						title = e.Abbr
					}

					entries = append(entries, Entry{
						Title:       title,
						URL:         strings.TrimSpace(e.Href),
						Description: firstNonEmpty(e.Description, categoryName),
						Group:       categoryName,
					})
				}
			}
		}
	}

	sortEntries(entries)
	return entries
}

// MapServices flattens services.yaml into one entry per service.
func MapServices(config ServicesConfig) []Entry {
	var entries []Entry

	for _, groupMap := range config {
		for groupName, servicesList := range groupMap {
			for _, serviceMap := range servicesList {
				for serviceName, props := range serviceMap {
					entries = append(entries, Entry{
						Title:       strings.TrimSpace(serviceName),
						URL:         strings.TrimSpace(props.Href),
						Description: firstNonEmpty(props.Description, groupName),
						Group:       groupName,
					})
				}
			}
		}
	}

	sortEntries(entries)
	return entries
}

// sortEntries gives map-backed YAML a stable order.
func sortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return cmp.Or(cmp.Compare(a.Group, b.Group), cmp.Compare(a.Title, b.Title))
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
