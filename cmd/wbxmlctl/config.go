package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danmuck/wbxml/internal/config"
)

const defaultConfigPath = "wbxmlctl.toml"

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Write or check wbxmlctl configuration files",
		Annotations: map[string]string{skipConfig: "true"},
	}
	cmd.AddCommand(a.configInitCmd(), a.configValidateCmd())
	return cmd
}

func (a *app) targetPath(args []string) string {
	switch {
	case len(args) > 0:
		return args[0]
	case a.configPath != "":
		return a.configPath
	default:
		return defaultConfigPath
	}
}

func (a *app) configInitCmd() *cobra.Command {
	var (
		kind  string
		force bool
	)
	cmd := &cobra.Command{
		Use:         "init [path]",
		Short:       "Write a config template",
		Annotations: map[string]string{skipConfig: "true"},
		Args:        cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.targetPath(args)
			if err := config.WriteTemplate(path, kind, force); err != nil {
				return err
			}
			a.printf(cmd, "Wrote %s template to %s\n", kind, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "tool", "template kind: tool|pages")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func (a *app) configValidateCmd() *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:         "validate [path]",
		Short:       "Check a config or codepage table file",
		Annotations: map[string]string{skipConfig: "true"},
		Args:        cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.targetPath(args)
			switch kind {
			case "tool":
				if _, err := config.Load(path); err != nil {
					return err
				}
			case "pages":
				pages, err := loadPages(path)
				if err != nil {
					return err
				}
				a.printf(cmd, "%d codepages\n", len(pages))
			default:
				return fmt.Errorf("unknown config kind: %s", kind)
			}
			a.printf(cmd, "Validated %s config at %s\n", kind, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "tool", "file kind: tool|pages")
	return cmd
}
