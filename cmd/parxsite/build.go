package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/parxgroup/parxsite"
	"github.com/parxgroup/parxsite/contentstore"
	"github.com/parxgroup/parxsite/metatags"
	"github.com/parxgroup/parxsite/prerender"
)

func newSitemapCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sitemap",
		Short: "Write sitemap.xml with the static routes and every published article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !c.cfg.Content.Configured() {
				c.logger.Warn("content store not configured; skipping sitemap generation")
				return nil
			}
			src, closer, err := parxsite.OpenSource(c.cfg.Content, c.logger)
			if err != nil {
				return err
			}
			if closer != nil {
				defer closer.Close()
			}
			r := prerender.New(c.cfg.DistDir, metatags.NewResolver(c.cfg.Site, src, c.logger), c.logger)
			out, err := r.Sitemap(cmd.Context(), c.cfg.Routes, src, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newPrerenderCmd(c *cli) *cobra.Command {
	var articles bool
	cmd := &cobra.Command{
		Use:   "prerender",
		Short: "Write metadata-decorated HTML shells for every static page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var src contentstore.Source
			if articles {
				s, closer, err := parxsite.OpenSource(c.cfg.Content, c.logger)
				if err != nil {
					return err
				}
				if closer != nil {
					defer closer.Close()
				}
				src = s
			}

			r := prerender.New(c.cfg.DistDir, metatags.NewResolver(c.cfg.Site, src, c.logger), c.logger)
			written, err := r.Pages(cmd.Context())
			if err != nil {
				return err
			}
			if articles {
				more, err := r.Articles(cmd.Context(), src)
				if err != nil {
					return err
				}
				written = append(written, more...)
			}
			for _, f := range written {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&articles, "articles", false, "also prerender every published article")
	return cmd
}

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <articles.json>",
		Short: "Import a JSON array of articles into the SQLite mirror",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Content.DatabasePath == "" {
				return fmt.Errorf("content.database_path is not set")
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			store, err := contentstore.NewSQLiteStore(c.cfg.Content.DatabasePath)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Seed(cmd.Context(), f)
			if err != nil {
				return err
			}
			c.logger.Info("seeded articles", zap.Int("count", n), zap.String("db", c.cfg.Content.DatabasePath))
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d articles\n", n)
			return nil
		},
	}
}
