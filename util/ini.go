package util

import (
	"strings"

	"gopkg.in/ini.v1"
)

// Ini loads an ini file and returns the keys of its unnamed section.
func Ini(path string) (map[string]string, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Section("").KeysHash(), nil
}

// SplitList splits a comma-separated ini value into its non-empty, trimmed items.
func SplitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
