package cli

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/securepipe/securepipe/internal/common/httpclient"
	"github.com/securepipe/securepipe/internal/config"
	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const apiPrefix = "/api/v1/"

// flagSpec describes a string flag that maps onto a request field.
type flagSpec struct {
	name    string
	short   string
	usage   string
	field   string // body or query key; empty means the flag is not sent as is
	def     string
	choices []string
	upper   bool // send upper-cased
}

// parentRef names the resource that contains another one.
type parentRef struct {
	noun      string // "account"
	flag      string // "account-id"
	short     string
	field     string // query and body key
	defaultOf func(s *config.Session) string
}

// createInput holds the collected input of a create command.
type createInput struct {
	Name     string
	ParentID string
	Values   map[string]string // by flag name, after choice checks and defaults
}

// resource describes one CRUD command group. T is the record type the API
// returns for the resource.
type resource[T any] struct {
	name   string // singular, lower case
	plural string
	parent *parentRef

	listFlags   []flagSpec // sent as query parameters
	createFlags []flagSpec
	updateFlags []flagSpec // name is always updatable

	// buildCreate turns the input into a request body and optional query
	// parameters. The body is validated before sending.
	buildCreate func(in createInput) (body any, query map[string]string, err error)

	printItem    func(w io.Writer, r *T)
	printDetails func(w io.Writer, r *T)
	printCreated func(w io.Writer, r *T, in createInput)
	printUpdated func(w io.Writer, r *T)

	// extra returns additional subcommands.
	extra func(a *App) []*cobra.Command
}

func (r *resource[T]) title() string {
	return cases.Title(language.English).String(r.name)
}

func (r *resource[T]) collectionPath() string {
	return apiPrefix + r.plural + "/"
}

func (r *resource[T]) itemPath(id string) string {
	return apiPrefix + r.plural + "/" + id
}

// requireID checks the optional positional ID argument.
func (r *resource[T]) requireID(args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return "", ErrValidation.New(fmt.Sprintf("%s ID is required", r.title()))
	}
	return strings.TrimSpace(args[0]), nil
}

// resolveParent returns the parent ID from the flag or the stored default.
func (r *resource[T]) resolveParent(a *App, cmd *cobra.Command) (string, error) {
	if r.parent == nil {
		return "", nil
	}
	if id := stringFlag(cmd.Flags(), r.parent.flag); id != "" {
		return id, nil
	}
	s, err := a.loadSession()
	if err != nil {
		return "", err
	}
	if s != nil {
		if id := strings.TrimSpace(r.parent.defaultOf(s)); id != "" {
			return id, nil
		}
	}
	return "", ErrValidation.New(fmt.Sprintf("No %s ID specified and no default %s set", r.parent.noun, r.parent.noun))
}

// command builds the command group for the resource.
func (r *resource[T]) command(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   r.name,
		Short: fmt.Sprintf("%s management commands", r.title()),
		Long: fmt.Sprintf(`Create, list, show, update and delete %[1]s.

Examples:
  securepipe %[2]s list
  securepipe %[2]s create --name my-%[2]s
  securepipe %[2]s show 7
  securepipe %[2]s update 7 --name renamed
  securepipe %[2]s delete 7 --yes`, r.plural, r.name),
	}
	cmd.AddCommand(r.listCmd(a), r.createCmd(a), r.showCmd(a), r.updateCmd(a), r.deleteCmd(a))
	if r.extra != nil {
		cmd.AddCommand(r.extra(a)...)
	}
	return cmd
}

func (r *resource[T]) addParentFlag(cmd *cobra.Command) {
	if r.parent != nil {
		cmd.Flags().StringP(r.parent.flag, r.parent.short, "",
			fmt.Sprintf("%s ID (uses default if not specified)", cases.Title(language.English).String(r.parent.noun)))
	}
}

func addFlags(cmd *cobra.Command, specs []flagSpec, withDefaults bool) {
	for _, f := range specs {
		def := ""
		if withDefaults {
			def = f.def
		}
		usage := f.usage
		if len(f.choices) > 0 {
			usage = fmt.Sprintf("%s (%s)", usage, strings.Join(f.choices, "|"))
		}
		cmd.Flags().StringP(f.name, f.short, def, usage)
	}
}

// flagValues reads specs from cmd, checks choices and drops empty values.
func flagValues(cmd *cobra.Command, specs []flagSpec) (map[string]string, error) {
	values := make(map[string]string)
	for _, f := range specs {
		v := stringFlag(cmd.Flags(), f.name)
		if v == "" {
			continue
		}
		if err := checkChoice(f.name, v, f.choices); err != nil {
			return nil, err
		}
		if f.upper {
			v = strings.ToUpper(v)
		}
		values[f.name] = v
	}
	return values, nil
}

func (r *resource[T]) listCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", r.plural),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := r.resolveParent(a, cmd)
			if err != nil {
				return err
			}
			filters, err := flagValues(cmd, r.listFlags)
			if err != nil {
				return err
			}

			query := make(map[string]string)
			if r.parent != nil {
				query[r.parent.field] = parentID
			}
			for _, f := range r.listFlags {
				if v, ok := filters[f.name]; ok {
					query[f.field] = v
				}
			}

			gw, err := a.gateway()
			if err != nil {
				return err
			}
			raw, err := gw.Request(cmd.Context(), httpclient.RequestOptions{
				Method:      http.MethodGet,
				Path:        r.collectionPath(),
				QueryParams: query,
			})
			if err != nil {
				return failed("Failed to list "+r.plural, err)
			}

			return a.render(raw, func(w io.Writer) error {
				items, err := decodeList[T](raw, r.plural, "items")
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintf(w, "No %s found\n", r.plural)
					return nil
				}
				headLabel.Fprintf(w, "📋 %s (%d):\n", cases.Title(language.English).String(r.plural), len(items))
				for _, it := range items {
					r.printItem(w, it)
				}
				return nil
			})
		},
	}
	r.addParentFlag(cmd)
	addFlags(cmd, r.listFlags, false)
	return cmd
}

func (r *resource[T]) createCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: fmt.Sprintf("Create a new %s", r.name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := flagValues(cmd, r.createFlags)
			if err != nil {
				return err
			}
			name := stringFlag(cmd.Flags(), "name")
			if name == "" {
				if name, err = a.Prompter.Prompt("Name"); err != nil {
					return err
				}
			}
			parentID, err := r.resolveParent(a, cmd)
			if err != nil {
				return err
			}

			in := createInput{Name: name, ParentID: parentID, Values: values}
			body, query, err := r.buildCreate(in)
			if err != nil {
				return err
			}
			if err := validateBody(body); err != nil {
				return err
			}

			gw, err := a.gateway()
			if err != nil {
				return err
			}
			raw, err := gw.Request(cmd.Context(), httpclient.RequestOptions{
				Method:      http.MethodPost,
				Path:        r.collectionPath(),
				QueryParams: query,
				Body:        body,
			})
			if err != nil {
				return failed("Failed to create "+r.name, err)
			}

			return a.render(raw, func(w io.Writer) error {
				rec, err := decodeRecord[T](raw)
				if err != nil {
					return err
				}
				okLabel.Fprintf(w, "✅ %s created successfully!\n", r.title())
				r.printCreated(w, rec, in)
				return nil
			})
		},
	}
	cmd.Flags().StringP("name", "n", "", fmt.Sprintf("%s name", r.title()))
	r.addParentFlag(cmd)
	addFlags(cmd, r.createFlags, true)
	return cmd
}

func (r *resource[T]) showCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   fmt.Sprintf("show [%s_ID]", strings.ToUpper(r.name)),
		Short: fmt.Sprintf("Show %s details", r.name),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := r.requireID(args)
			if err != nil {
				return err
			}
			gw, err := a.gateway()
			if err != nil {
				return err
			}
			raw, err := gw.Request(cmd.Context(), httpclient.RequestOptions{
				Method: http.MethodGet,
				Path:   r.itemPath(id),
			})
			if err != nil {
				return failed("Failed to show "+r.name, err)
			}
			return a.render(raw, func(w io.Writer) error {
				rec, err := decodeRecord[T](raw)
				if err != nil {
					return err
				}
				r.printDetails(w, rec)
				return nil
			})
		},
	}
}

func (r *resource[T]) updateCmd(a *App) *cobra.Command {
	specs := append([]flagSpec{{name: "name", short: "n", usage: fmt.Sprintf("New %s name", r.name), field: "name"}}, r.updateFlags...)
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("update [%s_ID]", strings.ToUpper(r.name)),
		Short: fmt.Sprintf("Update %s details", r.name),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := r.requireID(args)
			if err != nil {
				return err
			}
			values, err := flagValues(cmd, specs)
			if err != nil {
				return err
			}
			if len(values) == 0 {
				return ErrValidation.New("At least one field to update must be specified")
			}

			body := []byte("{}")
			for _, f := range specs {
				if v, ok := values[f.name]; ok {
					if body, err = sjson.SetBytes(body, f.field, v); err != nil {
						return fmt.Errorf("failed to build request: %w", err)
					}
				}
			}

			gw, err := a.gateway()
			if err != nil {
				return err
			}
			raw, err := gw.Request(cmd.Context(), httpclient.RequestOptions{
				Method: http.MethodPut,
				Path:   r.itemPath(id),
				Body:   body,
			})
			if err != nil {
				return failed("Failed to update "+r.name, err)
			}
			return a.render(raw, func(w io.Writer) error {
				rec, err := decodeRecord[T](raw)
				if err != nil {
					return err
				}
				okLabel.Fprintf(w, "✅ %s updated successfully!\n", r.title())
				r.printUpdated(w, rec)
				return nil
			})
		},
	}
	addFlags(cmd, specs, false)
	return cmd
}

func (r *resource[T]) deleteCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("delete [%s_ID]", strings.ToUpper(r.name)),
		Short: fmt.Sprintf("Delete a %s", r.name),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := r.requireID(args)
			if err != nil {
				return err
			}
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				ok, err := a.Prompter.Confirm(fmt.Sprintf("Are you sure you want to delete this %s?", r.name))
				if err != nil {
					return err
				}
				if !ok {
					return ErrAborted
				}
			}

			gw, err := a.gateway()
			if err != nil {
				return err
			}
			raw, err := gw.Request(cmd.Context(), httpclient.RequestOptions{
				Method: http.MethodDelete,
				Path:   r.itemPath(id),
			})
			if err != nil {
				return failed("Failed to delete "+r.name, err)
			}
			return a.render(raw, func(w io.Writer) error {
				okLabel.Fprintf(w, "✅ %s deleted successfully!\n", r.title())
				return nil
			})
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Confirm the action without prompting")
	return cmd
}
