package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/wbxml/internal/protocol/wbxml"
	"github.com/danmuck/wbxml/internal/protocol/wire"
)

type pagesFile struct {
	Pages []pageEntry `toml:"page"`
}

type pageEntry struct {
	Index    int      `toml:"index"`
	Name     string   `toml:"name"`
	FirstTag *int     `toml:"first_tag"`
	Tags     []string `toml:"tags"`
}

// loadPages reads a codepage table file. Indices left out of the file
// get an empty page.
func loadPages(path string) ([]wbxml.Codepage, error) {
	var raw pagesFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}
	if !meta.IsDefined("page") || len(raw.Pages) == 0 {
		return nil, fmt.Errorf("load pages: %s defines no [[page]] tables", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load pages: unknown key %s", undecoded[0])
	}

	maxIndex := 0
	byIndex := make(map[int]*wbxml.BasePage, len(raw.Pages))
	for i, entry := range raw.Pages {
		page, err := entry.page()
		if err != nil {
			return nil, fmt.Errorf("page[%d] invalid: %w", i, err)
		}
		if _, dup := byIndex[entry.Index]; dup {
			return nil, fmt.Errorf("page[%d] invalid: duplicate index %d", i, entry.Index)
		}
		byIndex[entry.Index] = page
		if entry.Index > maxIndex {
			maxIndex = entry.Index
		}
	}

	pages := make([]wbxml.Codepage, maxIndex+1)
	for i := range pages {
		if page, ok := byIndex[i]; ok {
			pages[i] = page
			continue
		}
		pages[i] = &wbxml.BasePage{PageName: "unassigned", First: 5}
	}
	return pages, nil
}

func (e pageEntry) page() (*wbxml.BasePage, error) {
	if e.Index < 0 || e.Index > 0xFF {
		return nil, fmt.Errorf("index %d out of range", e.Index)
	}
	first := 5
	if e.FirstTag != nil {
		first = *e.FirstTag
	}
	if first < 5 || first > int(wire.TagIDMask) {
		return nil, fmt.Errorf("first_tag %d out of range", first)
	}
	if first+len(e.Tags) > int(wire.TagIDMask)+1 {
		return nil, fmt.Errorf("%d tags from 0x%02x overflow the tag space", len(e.Tags), first)
	}
	for j, name := range e.Tags {
		if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " <>&\"'") {
			return nil, fmt.Errorf("tag %d has invalid name %q", j, name)
		}
	}
	name := strings.TrimSpace(e.Name)
	if name == "" {
		name = fmt.Sprintf("page%d", e.Index)
	}
	return &wbxml.BasePage{PageName: name, First: uint8(first), Names: e.Tags}, nil
}
