package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/danmuck/wbxml/internal/observability"
	"github.com/danmuck/wbxml/internal/protocol/content"
	"github.com/danmuck/wbxml/internal/protocol/syncml"
	"github.com/danmuck/wbxml/internal/protocol/wbxml"
)

func (a *app) dumpCmd() *cobra.Command {
	var (
		pagesPath string
		useSyncML bool
		indent    string
	)
	cmd := &cobra.Command{
		Use:   "dump <in.wbxml>",
		Short: "Render a document as indented XML",
		Long: "Render a document as indented XML. Opaque data is shown as hex.\n\n" +
			"The file/folder vocabulary is used unless --syncml or --pages selects\n" +
			"another codepage table.",
		Example: `  wbxmlctl dump photos.wbxml
  wbxmlctl dump --syncml session.wbxml
  wbxmlctl dump --pages pages.toml custom.wbxml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				pages   []wbxml.Codepage
				counter *objectCounter
			)
			switch {
			case pagesPath != "":
				loaded, err := loadPages(pagesPath)
				if err != nil {
					return err
				}
				pages = loaded
			case useSyncML:
				pages = syncml.Pages()
			default:
				counter = &objectCounter{}
				pages = content.Pages(counter)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			tracer := wbxml.NewXMLTracer(out, pages, indent)
			p := wbxml.NewParser(tracer.Pages(),
				wbxml.WithLogger(a.logger),
				wbxml.WithChunkSize(a.cfg.Codec.ChunkSize),
			)

			start := time.Now()
			err = p.Parse(bufio.NewReader(f))
			observability.RecordDocument(observability.DirectionDecode, p.BytesRead(), time.Since(start), err)
			if ferr := tracer.Flush(); err == nil {
				err = ferr
			}
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("dump %s: %w", args[0], err)
			}

			event := a.logger.Info().
				Str("document", string(p.Header().StringTable)).
				Int64("bytes", p.BytesRead())
			if counter != nil {
				event = event.Int("folders", counter.folders).Int("files", counter.files)
			}
			event.Msg("dumped")
			return nil
		},
	}
	cmd.Flags().StringVar(&pagesPath, "pages", "", "TOML codepage table file")
	cmd.Flags().BoolVar(&useSyncML, "syncml", false, "use the SyncML codepages")
	cmd.Flags().StringVar(&indent, "indent", "  ", "indent per nesting level")
	cmd.MarkFlagsMutuallyExclusive("pages", "syncml")
	return cmd
}

// objectCounter is a ContentHandler that only counts.
type objectCounter struct {
	folders int
	files   int
}

func (c *objectCounter) OnFolder(*content.Folder) error {
	c.folders++
	return nil
}

func (c *objectCounter) OnFileBegin(*content.File, bool) error { return nil }

func (c *objectCounter) OnFileData(*content.File, []byte) error { return nil }

func (c *objectCounter) OnFileEnd(_ *content.File, commit bool) error {
	if commit {
		c.files++
	}
	return nil
}
