package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
	"github.com/jbaikge/boneless/internal/fieldtype"
	serviceContent "github.com/jbaikge/boneless/internal/service/content"
)

// collection binds one importable collection to its service calls
type collection struct {
	name    string
	export  func(ctx context.Context, svc contentSvc.ExportService, w io.Writer) (int, error)
	load    func(ctx context.Context, svc contentSvc.ImportService, r io.Reader) (*contentSvc.ImportResult, error)
	counter func(ctx context.Context, c *cli) (int, error)
}

func newClassesCmd(c *cli) *cobra.Command {
	return newCollectionCmd(c, collection{
		name: "classes",
		export: func(ctx context.Context, svc contentSvc.ExportService, w io.Writer) (int, error) {
			return svc.ExportClasses(ctx, w)
		},
		load: func(ctx context.Context, svc contentSvc.ImportService, r io.Reader) (*contentSvc.ImportResult, error) {
			items, err := serviceContent.DecodeClasses(r)
			if err != nil {
				return nil, err
			}
			return svc.ImportClasses(ctx, items)
		},
		counter: func(ctx context.Context, c *cli) (int, error) {
			_, rng, err := c.client.Classes().List(ctx, content.ClassFilter{})
			return rng.Size, err
		},
	})
}

func newTemplatesCmd(c *cli) *cobra.Command {
	return newCollectionCmd(c, collection{
		name: "templates",
		export: func(ctx context.Context, svc contentSvc.ExportService, w io.Writer) (int, error) {
			return svc.ExportTemplates(ctx, w)
		},
		load: func(ctx context.Context, svc contentSvc.ImportService, r io.Reader) (*contentSvc.ImportResult, error) {
			items, err := serviceContent.DecodeTemplates(r)
			if err != nil {
				return nil, err
			}
			return svc.ImportTemplates(ctx, items)
		},
		counter: func(ctx context.Context, c *cli) (int, error) {
			_, rng, err := c.client.Templates().List(ctx, content.TemplateFilter{})
			return rng.Size, err
		},
	})
}

func newCollectionCmd(c *cli, col collection) *cobra.Command {
	cmd := &cobra.Command{
		Use:   col.name,
		Short: fmt.Sprintf("Export or import %s", col.name),
	}

	var output string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: fmt.Sprintf("Write every %s record as a JSON array", col.name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := c.out
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			svc := serviceContent.NewExportService(c.client.Classes(), c.client.Templates(), c.logger)
			n, err := col.export(cmd.Context(), svc, w)
			if err != nil {
				return err
			}
			c.logger.Info("export complete", "collection", col.name, "count", n)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	importCmd := &cobra.Command{
		Use:   "import [file]",
		Short: fmt.Sprintf("Create %s from an exported JSON array", col.name),
		Long: fmt.Sprintf(`Create %s from an exported JSON array, read from file or stdin.

Every record gets a new id. The printed id map relates each exported id to
the id assigned by the gateway.`, col.name),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := c.in
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			registry, err := fieldtype.NewRegistry()
			if err != nil {
				return err
			}
			svc := serviceContent.NewImportService(c.client.Classes(), c.client.Templates(), registry, c.logger,
				serviceContent.WithRefresh(func(ctx context.Context, name string) {
					total, err := col.counter(ctx, c)
					if err != nil {
						c.logger.Warn("refresh failed", "collection", name, "error", err)
						return
					}
					fmt.Fprintf(c.errOut, "%s: %d total\n", name, total)
				}),
			)
			result, err := col.load(cmd.Context(), svc, r)
			if err != nil {
				return err
			}
			return c.printJSON(result)
		},
	}

	cmd.AddCommand(exportCmd, importCmd)
	return cmd
}
