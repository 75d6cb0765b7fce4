package settings

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// RecentKey is the store key holding the recent directory list.
const RecentKey = "recentDirectories"

// MaxRecent is the number of directories remembered.
const MaxRecent = 5

// Recent is the most-recently-used list of validated directories.
type Recent struct {
	kv KV
}

// NewRecent returns a recent-directory list stored in kv.
func NewRecent(kv KV) *Recent {
	return &Recent{kv: kv}
}

// List returns the remembered directories, most recent first. A missing or
// corrupt stored value reads as an empty list.
func (r *Recent) List() []string {
	raw, ok := r.kv.Get(RecentKey)
	if !ok {
		return nil
	}

	var dirs []string
	if err := json.Unmarshal([]byte(raw), &dirs); err != nil {
		return nil
	}
	return slices.DeleteFunc(dirs, func(d string) bool {
		return strings.TrimSpace(d) == ""
	})
}

// Add moves dir to the front of the list and returns the updated list.
func (r *Recent) Add(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return r.List(), nil
	}

	dirs := []string{dir}
	for _, d := range r.List() {
		if d != dir {
			dirs = append(dirs, d)
		}
	}
	if len(dirs) > MaxRecent {
		dirs = dirs[:MaxRecent]
	}

	data, err := json.Marshal(dirs)
	if err != nil {
		return nil, fmt.Errorf("marshaling recent directories: %w", err)
	}
	if err := r.kv.Set(RecentKey, string(data)); err != nil {
		return nil, err
	}
	return dirs, nil
}

// Latest returns the most recent directory, or "" when none is stored.
func (r *Recent) Latest() string {
	if dirs := r.List(); len(dirs) > 0 {
		return dirs[0]
	}
	return ""
}

// Clear forgets all directories.
func (r *Recent) Clear() error {
	return r.kv.Delete(RecentKey)
}
