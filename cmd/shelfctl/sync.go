package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/bilishelf-api/internal/app"
	"github.com/noah-isme/bilishelf-api/internal/dto"
	"github.com/noah-isme/bilishelf-api/internal/models"
)

type syncOptions struct {
	cookie     string
	folders    []int64
	offset     int
	startPage  int
	maxFolders int
	maxPages   int
	maxVideos  int
	noTags     bool
	loop       bool
	maxRuns    int
}

func newSyncCmd(root *rootOptions) *cobra.Command {
	opts := &syncOptions{}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull remote favorite folders into the library",
		Long: `Run a bounded synchronization against the remote favorites.

Each run processes at most --max-folders folders starting at --offset. With
--loop the command follows the returned cursor until the catalog is exhausted
or the remote starts refusing requests.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withApp(cmd, func(a *app.App) error {
				return runSync(cmd, a, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.cookie, "cookie", "", "Credential cookie (defaults to BILIBILI_COOKIE)")
	cmd.Flags().Int64SliceVar(&opts.folders, "folder", nil, "Remote folder ID to sync (repeatable)")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Catalog offset to start from")
	cmd.Flags().IntVar(&opts.startPage, "start-page", 0, "First page when syncing a single folder")
	cmd.Flags().IntVar(&opts.maxFolders, "max-folders", 0, "Folders per run")
	cmd.Flags().IntVar(&opts.maxPages, "max-pages", 0, "Pages per folder")
	cmd.Flags().IntVar(&opts.maxVideos, "max-videos", 0, "Videos per folder")
	cmd.Flags().BoolVar(&opts.noTags, "no-tags", false, "Skip per-video tag enrichment")
	cmd.Flags().BoolVar(&opts.loop, "loop", false, "Keep running until the cursor is exhausted")
	cmd.Flags().IntVar(&opts.maxRuns, "max-runs", 50, "Upper bound on runs with --loop")
	return cmd
}

func (o *syncOptions) request() dto.SyncRequest {
	enrich := !o.noTags
	return dto.SyncRequest{
		Cookie:                  o.cookie,
		SelectedRemoteFolderIDs: o.folders,
		Offset:                  o.offset,
		StartPage:               o.startPage,
		MaxFolders:              o.maxFolders,
		MaxPagesPerFolder:       o.maxPages,
		MaxVideosPerFolder:      o.maxVideos,
		IncludeTagEnrichment:    &enrich,
	}
}

func runSync(cmd *cobra.Command, a *app.App, opts *syncOptions) error {
	req := opts.request()
	for run := 1; ; run++ {
		result, err := a.Sync.Run(cmd.Context(), req)
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), result); err != nil {
			return err
		}
		if !opts.loop || run >= opts.maxRuns {
			return nil
		}
		next, ok := advance(req, result)
		if !ok {
			return nil
		}
		req = next
	}
}

// advance moves the request past a finished run. It reports false when there is
// nothing left or the run was cut short by risk control.
func advance(req dto.SyncRequest, result *models.SyncResult) (dto.SyncRequest, bool) {
	switch {
	case result.RiskBlocked:
		return req, false
	case result.HasMorePage && result.NextPage != nil:
		req.StartPage = *result.NextPage
		return req, true
	case result.HasMore && result.NextOffset != nil:
		if *result.NextOffset <= req.Offset {
			return req, false
		}
		req.Offset = *result.NextOffset
		req.StartPage = 0
		return req, true
	default:
		return req, false
	}
}

func newFoldersCmd(root *rootOptions) *cobra.Command {
	var (
		cookie  string
		refresh bool
		remote  bool
	)
	cmd := &cobra.Command{
		Use:   "folders",
		Short: "List local folders, or the remote catalog with --remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.withApp(cmd, func(a *app.App) error {
				if remote {
					folders, _, err := a.Sync.ListRemoteFolders(cmd.Context(), dto.RemoteFolderListRequest{Cookie: cookie, Refresh: refresh})
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), folders)
				}
				folders, err := a.Folders.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, f := range folders {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%d\n", f.ID, f.Name, f.ItemCount)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "List the remote catalog instead")
	cmd.Flags().StringVar(&cookie, "cookie", "", "Credential cookie for --remote")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the catalog cache with --remote")
	return cmd
}
