package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/securepipe/securepipe/internal/common/httpclient"
	"github.com/securepipe/securepipe/internal/common/logtrace"
	"github.com/securepipe/securepipe/internal/common/uuid"
	"github.com/spf13/cobra"
)

// defaultPipelineConfiguration is sent when create gets no --config-file.
func defaultPipelineConfiguration() map[string]any {
	return map[string]any{
		"steps": []any{
			map[string]any{
				"name":   "default_step",
				"type":   "script",
				"script": `echo "Pipeline created successfully"`,
			},
		},
	}
}

func pipelineResource() *resource[Pipeline] {
	return &resource[Pipeline]{
		name:   "pipeline",
		plural: "pipelines",
		parent: projectParent,
		createFlags: []flagSpec{
			{name: "type", short: "t", usage: "Pipeline type", def: "deployment", choices: pipelineTypes},
			descriptionFlag,
			{name: "config-file", short: "f", usage: "YAML, JSON or TOML file with the pipeline configuration"},
		},
		updateFlags: []flagSpec{
			descriptionFlag,
			{name: "type", short: "t", usage: "New pipeline type", field: "type", choices: pipelineTypes},
		},
		buildCreate: func(in createInput) (any, map[string]string, error) {
			projectID, err := parseID("project", in.ParentID)
			if err != nil {
				return nil, nil, err
			}
			configuration := defaultPipelineConfiguration()
			if f := in.Values["config-file"]; f != "" {
				if configuration, err = loadConfigurationFile(f); err != nil {
					return nil, nil, err
				}
			}
			return &pipelineCreate{
				Name:          in.Name,
				ProjectID:     projectID,
				PipelineType:  in.Values["type"],
				Description:   in.Values["description"],
				Configuration: configuration,
			}, nil, nil
		},
		printItem: func(w io.Writer, r *Pipeline) {
			fmt.Fprintf(w, "  🔄 %s (ID: %s)\n", orUnknown(r.Name), orUnknown(r.ID))
		},
		printDetails: func(w io.Writer, r *Pipeline) {
			headLabel.Fprintln(w, "🔄 Pipeline Details:")
			fmt.Fprintf(w, "  📛 Name: %s\n", orUnknown(r.Name))
			fmt.Fprintf(w, "  🆔 ID: %s\n", orUnknown(r.ID))
			fmt.Fprintf(w, "  📁 Project: %s\n", orUnknown(r.ProjectID))
			fmt.Fprintf(w, "  🔧 Type: %s\n", orUnknown(r.Kind()))
			fmt.Fprintf(w, "  📊 Status: %s\n", r.StatusText())
			optionalLine(w, "  📝 Description", r.Description)
			optionalLine(w, "  📅 Created", r.CreatedAt)
			optionalLine(w, "  📅 Updated", r.UpdatedAt)
		},
		printCreated: func(w io.Writer, r *Pipeline, in createInput) {
			fmt.Fprintf(w, "🔄 Name: %s\n", orDefault(r.Name, in.Name))
			fmt.Fprintf(w, "🆔 ID: %s\n", orUnknown(r.ID))
			fmt.Fprintf(w, "📁 Project: %s\n", orDefault(r.ProjectID, in.ParentID))
			fmt.Fprintf(w, "🔧 Type: %s\n", orDefault(r.Kind(), in.Values["type"]))
			optionalLine(w, "📝 Description", r.Description)
		},
		printUpdated: func(w io.Writer, r *Pipeline) {
			fmt.Fprintf(w, "🔄 Name: %s\n", orUnknown(r.Name))
			fmt.Fprintf(w, "🆔 ID: %s\n", orUnknown(r.ID))
		},
		extra: func(a *App) []*cobra.Command {
			return []*cobra.Command{
				newPipelineExecuteCmd(a),
				newPipelineExecutionsCmd(a),
				newPipelineCancelCmd(a),
				newPipelineApplyCmd(a),
			}
		},
	}
}

func newPipelineExecuteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "execute [PIPELINE_ID]",
		Short: "Execute a pipeline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := pipelineResource().requireID(args)
			if err != nil {
				return err
			}
			gw, err := a.gateway()
			if err != nil {
				return err
			}
			raw, err := gw.Request(cmd.Context(), httpclient.RequestOptions{
				Method: http.MethodPost,
				Path:   apiPrefix + "pipelines/" + id + "/execute",
			})
			if err != nil {
				return failed("Failed to execute pipeline", err)
			}
			return a.render(raw, func(w io.Writer) error {
				ex, err := decodeRecord[Execution](raw)
				if err != nil {
					return err
				}
				okLabel.Fprintln(w, "✅ Pipeline execution started!")
				fmt.Fprintf(w, "🔄 Execution ID: %s\n", orUnknown(ex.ID))
				fmt.Fprintf(w, "📊 Status: %s\n", orUnknown(ex.Status))
				fmt.Fprintf(w, "📅 Started: %s\n", orUnknown(ex.StartedAt))
				return nil
			})
		},
	}
}

func newPipelineExecutionsCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "executions [PIPELINE_ID]",
		Short: "List pipeline executions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := pipelineResource().requireID(args)
			if err != nil {
				return err
			}
			gw, err := a.gateway()
			if err != nil {
				return err
			}
			raw, err := gw.Request(cmd.Context(), httpclient.RequestOptions{
				Method: http.MethodGet,
				Path:   apiPrefix + "pipelines/" + id + "/executions",
			})
			if err != nil {
				return failed("Failed to list pipeline executions", err)
			}
			return a.render(raw, func(w io.Writer) error {
				items, err := decodeList[Execution](raw, "executions", "items")
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(w, "No executions found")
					return nil
				}
				headLabel.Fprintf(w, "📋 Pipeline Executions (%d):\n", len(items))
				for _, ex := range items {
					fmt.Fprintf(w, "  🔄 ID: %s\n", orUnknown(ex.ID))
					fmt.Fprintf(w, "     📊 Status: %s\n", orUnknown(ex.Status))
					fmt.Fprintf(w, "     📅 Started: %s\n", orUnknown(ex.StartedAt))
					optionalLine(w, "     📅 Completed", ex.CompletedAt)
					fmt.Fprintln(w)
				}
				return nil
			})
		},
	}
}

func newPipelineCancelCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [PIPELINE_ID] [EXECUTION_ID]",
		Short: "Cancel a pipeline execution",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 || args[0] == "" || args[1] == "" {
				return ErrValidation.New("Pipeline ID and Execution ID are required")
			}
			gw, err := a.gateway()
			if err != nil {
				return err
			}
			raw, err := gw.Request(cmd.Context(), httpclient.RequestOptions{
				Method: http.MethodPatch,
				Path:   apiPrefix + "pipelines/" + args[0] + "/executions/" + args[1] + "/cancel",
			})
			if err != nil {
				return failed("Failed to cancel pipeline execution", err)
			}
			return a.render(raw, func(w io.Writer) error {
				okLabel.Fprintln(w, "✅ Pipeline execution cancelled successfully!")
				return nil
			})
		},
	}
}

func newPipelineApplyCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply -f FILENAME [flags]",
		Short: "Create pipelines from a definition file",
		Long: `Create one pipeline per document of a YAML file. Documents are separated
by "---" and may reference environment variables as {{ .ENV.NAME }}; a .env
file in the current directory is read as well.

Example file:
  name: nightly-scan
  type: security_scan
  configuration:
    steps:
      - name: scan
        type: script
        script: ./scan.sh --token {{ .ENV.SCAN_TOKEN }}
  ---
  name: deploy
  type: deployment
  configuration:
    steps:
      - name: rollout
        type: script
        script: ./deploy.sh

Examples:
  securepipe pipeline apply -f pipelines.yaml -p 12
  securepipe pipeline apply -f pipelines.yaml --ignore-errors`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := stringFlag(cmd.Flags(), "filename")
			if filename == "" {
				return ErrValidation.New("A file is required: use -f FILENAME")
			}
			ignoreErrors, _ := cmd.Flags().GetBool("ignore-errors")

			docs, err := loadPipelineFile(filename)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				fmt.Fprintln(a.Out, "No pipelines found in file")
				return nil
			}

			defaultProject := stringFlag(cmd.Flags(), "project-id")
			if defaultProject == "" {
				if s, err := a.loadSession(); err != nil {
					return err
				} else if s != nil {
					defaultProject = s.DefaultProjectID.String()
				}
			}

			gw, err := a.gateway()
			if err != nil {
				return err
			}

			var firstErr error
			for _, doc := range docs {
				// one request ID per document
				requestID := uuid.NewRequestID()
				log.Debug().Str("request_id", requestID).Str("pipeline", doc.Name).Msg("applying pipeline document")
				ctx := logtrace.WithRequestID(cmd.Context(), requestID)
				id, err := applyPipeline(ctx, gw, doc, defaultProject)
				if err != nil {
					errorLabel.Fprintf(a.Out, "[ERROR] %s: %v\n", doc.Name, err)
					if firstErr == nil {
						firstErr = err
					}
					if !ignoreErrors {
						break
					}
					continue
				}
				okLabel.Fprintf(a.Out, "[OK] Created: %s (ID: %s)\n", doc.Name, id)
			}
			if firstErr != nil {
				return failed("Failed to apply pipelines", firstErr)
			}
			return nil
		},
	}
	cmd.Flags().StringP("filename", "f", "", "File with one or more pipeline definitions")
	cmd.Flags().StringP("project-id", "p", "", "Project ID for documents without project_id (uses default if not specified)")
	cmd.Flags().Bool("ignore-errors", false, "Continue with the next document after an error")
	return cmd
}

// applyPipeline creates the pipeline described by doc and returns its ID.
func applyPipeline(ctx context.Context, gw httpclient.Gateway, doc PipelineDocument, defaultProject string) (string, error) {
	project := orDefault(doc.Project(), defaultProject)
	if project == "" {
		return "", ErrValidation.New("No project ID specified and no default project set")
	}
	projectID, err := parseID("project", project)
	if err != nil {
		return "", err
	}
	configuration := doc.Configuration
	if configuration == nil {
		configuration = defaultPipelineConfiguration()
	}
	body := &pipelineCreate{
		Name:          doc.Name,
		ProjectID:     projectID,
		PipelineType:  orDefault(doc.Type, "deployment"),
		Description:   doc.Description,
		Configuration: configuration,
	}
	if err := validateBody(body); err != nil {
		return "", err
	}

	raw, err := gw.Request(ctx, httpclient.RequestOptions{
		Method: http.MethodPost,
		Path:   apiPrefix + "pipelines/",
		Body:   body,
	})
	if err != nil {
		return "", err
	}
	rec, err := decodeRecord[Pipeline](raw)
	if err != nil {
		return "", err
	}
	return orUnknown(rec.ID), nil
}
