package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbaikge/boneless/internal/domain/models/content"
	contentSvc "github.com/jbaikge/boneless/internal/domain/services/content"
	"github.com/jbaikge/boneless/internal/fieldtype"
	serviceContent "github.com/jbaikge/boneless/internal/service/content"
	"github.com/jbaikge/boneless/internal/storage/transfer"
)

func newDocumentsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Manage documents",
	}
	cmd.AddCommand(newDocumentsCreateCmd(c))
	return cmd
}

func newDocumentsCreateCmd(c *cli) *cobra.Command {
	var (
		classID string
		req     contentSvc.DocumentRequest
		sets    []string
		files   []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a document, uploading any --file values first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseAssignments(sets)
			if err != nil {
				return err
			}
			paths, err := parseAssignments(files)
			if err != nil {
				return err
			}

			for name, value := range paths {
				path := value.(string)
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				values[name] = &content.PendingFile{
					Title:       filepath.Base(path),
					ContentType: mime.TypeByExtension(filepath.Ext(path)),
					Body:        f,
				}
			}
			req.Values = values

			registry, err := fieldtype.NewRegistry()
			if err != nil {
				return err
			}
			docs := serviceContent.NewDocumentService(
				c.client.Documents(), c.client.Classes(), c.client.Templates(),
				serviceContent.NewDocumentCodec(registry, c.logger),
				serviceContent.NewUploadCoordinator(c.client.Files(), transfer.NewHTTPTransferer(c.http, c.logger), 0, c.logger),
				c.logger,
			)

			doc, err := docs.CreateDocument(cmd.Context(), classID, &req)
			if err != nil {
				return err
			}
			return c.printJSON(doc)
		},
	}

	cmd.Flags().StringVar(&classID, "class", "", "Class id (required)")
	cmd.Flags().StringVar(&req.Path, "path", "", "Public path")
	cmd.Flags().StringVar(&req.ParentID, "parent", "", "Parent document id")
	cmd.Flags().StringVar(&req.TemplateID, "template", "", "Template id")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as name=value (repeatable)")
	cmd.Flags().StringArrayVar(&files, "file", nil, "Upload field as name=path (repeatable)")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}

// parseAssignments splits name=value pairs. Later pairs win.
func parseAssignments(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected name=value", pair)
		}
		values[name] = value
	}
	return values, nil
}
