package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/noah-isme/bilishelf-api/internal/app"
	"github.com/noah-isme/bilishelf-api/internal/dto"
)

func newExportCmd(root *rootOptions) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a snapshot of the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withApp(cmd, func(a *app.App) error {
				snapshot, err := a.Snapshots.Export(cmd.Context(), dto.ExportQuery{Format: format})
				if err != nil {
					return err
				}
				if out == "" || out == "-" {
					_, err = cmd.OutOrStdout().Write(snapshot.Content)
					return err
				}
				if err := os.WriteFile(out, snapshot.Content, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d folders, %d videos, %d tags to %s\n",
					snapshot.Summary.Folders, snapshot.Summary.Videos, snapshot.Summary.Tags, out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Snapshot format (json, csv, pdf)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (stdout when empty)")
	return cmd
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var format, in string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Merge a json or csv snapshot into the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd, in)
			if err != nil {
				return err
			}
			return root.withApp(cmd, func(a *app.App) error {
				summary, err := a.Snapshots.Import(cmd.Context(), dto.ImportRequest{Format: format, Content: string(content)})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), summary)
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Snapshot format (json, csv)")
	cmd.Flags().StringVarP(&in, "in", "i", "", "Input file (stdin when empty)")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return content, nil
}
