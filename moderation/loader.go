package moderation

import (
	"bufio"
	"embed"
	"io/fs"
	"sort"
	"strings"

	"github.com/samber/lo"
)

//go:embed censored/*
var censoredFolder embed.FS

// LoadCensoredWords reads every embedded word list (one file per
// language, one word per line, '#' comments) and returns the
// deduplicated union.
func LoadCensoredWords() ([]string, error) {
	set := make(map[string]struct{})

	err := fs.WalkDir(censoredFolder, "censored", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := censoredFolder.Open(path)
		if err != nil {
			return err
		}
		defer data.Close()

		scanner := bufio.NewScanner(data)
		for scanner.Scan() {
			word := strings.TrimSpace(scanner.Text())
			if word == "" || strings.HasPrefix(word, "#") {
				continue
			}
			set[strings.ToLower(word)] = struct{}{}
		}
		return scanner.Err()
	})
	if err != nil {
		return nil, err
	}

	words := lo.Keys(set)
	sort.Strings(words)
	return words, nil
}
