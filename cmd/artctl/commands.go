package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/artboard/internal/apiclient"
)

func newUploadCmd(opts *options) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "upload [files...]",
		Short: "Upload files as a new artwork",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}

			files := make([]apiclient.File, 0, len(args))
			for _, p := range args {
				f, err := os.Open(p)
				if err != nil {
					return err
				}
				defer f.Close()
				files = append(files, apiclient.File{
					Name:        filepath.Base(p),
					ContentType: mime.TypeByExtension(filepath.Ext(p)),
					Body:        f,
				})
			}

			art, err := client.CreateArtwork(cmd.Context(), title, description, files)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created artwork %d (%d files)\n", art.ID, len(art.Files))
			for _, f := range art.Files {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\t%s\n", f.Type, f.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "artwork title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "artwork description")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all artworks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			arts, err := client.ListArtworks(cmd.Context())
			if err != nil {
				return err
			}
			if len(arts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No artworks yet.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tFILES\tAVG\tVOTES")
			for _, art := range arts {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%d\n", art.ID, art.Title, len(art.Files), art.AverageRating, art.RatingCount)
			}
			return tw.Flush()
		},
	}
}

func newRateCmd(opts *options) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "rate <id> <rating>",
		Short: "Rate an artwork",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid artwork id %q", args[0])
			}
			rating, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid rating %q", args[1])
			}

			client, err := opts.client()
			if err != nil {
				return err
			}
			if err := client.RateArtwork(cmd.Context(), id, userID, rating); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rated artwork %d with %g as %s\n", id, rating, userID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "rater id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
