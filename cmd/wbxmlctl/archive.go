package main

import (
	"bufio"
	"os"

	"github.com/spf13/cobra"

	"github.com/danmuck/wbxml/internal/archive"
)

func (a *app) archiveOptions() archive.Options {
	return archive.Options{
		DocumentID: a.cfg.Codec.DocumentID,
		ChunkSize:  a.cfg.Codec.ChunkSize,
		Logger:     a.logger,
	}
}

func (a *app) packCmd() *cobra.Command {
	var docID string
	cmd := &cobra.Command{
		Use:   "pack <dir> <out.wbxml|->",
		Short: "Encode a directory tree as one document",
		Example: `  wbxmlctl pack ./photos photos.wbxml
  wbxmlctl pack --doc-id backup-7 ./photos - > photos.wbxml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, cleanup, err := createOutput(cmd, args[1])
			if err != nil {
				return err
			}
			opts := a.archiveOptions()
			if docID != "" {
				opts.DocumentID = docID
			}

			bw := bufio.NewWriter(out)
			sum, err := archive.Pack(cmd.Context(), args[0], bw, opts)
			if err == nil {
				err = bw.Flush()
			}
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				cleanup()
				return err
			}
			a.printf(cmd, "packed %d folders, %d files (%d bytes) as %s\n", sum.Folders, sum.Files, sum.Bytes, sum.DocumentID)
			return nil
		},
	}
	cmd.Flags().StringVar(&docID, "doc-id", "", "document id for the string table (default: config or random UUID)")
	return cmd
}

func (a *app) unpackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpack <in.wbxml> [dir]",
		Short: "Restore a packed document into a directory",
		Long:  "Restore a packed document. Without dir, the config root is used.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			dir := a.cfg.Root
			if len(args) == 2 {
				dir = args[1]
			}
			sum, err := archive.Unpack(cmd.Context(), f, dir, a.archiveOptions())
			if err != nil {
				return err
			}
			a.printf(cmd, "unpacked %d folders, %d files (%d bytes) from %s\n", sum.Folders, sum.Files, sum.Bytes, sum.DocumentID)
			return nil
		},
	}
}
