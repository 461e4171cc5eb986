package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "tool", "wbxmlctl":
		return toolTemplate, nil
	case "pages":
		return pagesTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const toolTemplate = `root = "."

[codec]
chunk_size = 256
document_id = ""

[log]
level = "info"
file = ""
max_size_mb = 10
max_backups = 3

[metrics]
textfile = ""
`

const pagesTemplate = `# Codepage tables for "wbxmlctl dump --pages".
# Each [[page]] is selected by its SWITCH_PAGE index.

[[page]]
index = 0
name = "example"
first_tag = 5
tags = ["Root", "Item", "Value"]
`
