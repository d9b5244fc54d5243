package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ivankudzin/botlist/internal/rpc"
	"github.com/ivankudzin/botlist/internal/transport/http/dto"
)

func NewActionsCommand() *cobra.Command {
	remote := &RemoteOptions{}

	cmd := &cobra.Command{
		Use:   "actions [partial]",
		Short: "List staff actions and their fields",
		Long: `List staff actions and their fields.

Without --api the built-in catalog is listed. With --api the catalog is
fetched from a running server.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			partial := ""
			if len(args) == 1 {
				partial = args[0]
			}

			var (
				schemas []dto.MethodSchema
				err     error
			)
			if remote.APIURL != "" {
				client, clientErr := remote.client()
				if clientErr != nil {
					return clientErr
				}
				schemas, err = client.Methods(commandContext(cmd), partial)
			} else {
				schemas, err = localSchemas(partial)
			}
			if err != nil {
				return err
			}
			if len(schemas) == 0 {
				return fmt.Errorf("no action matches %q", partial)
			}

			printSchemas(cmd.OutOrStdout(), schemas)
			return nil
		},
	}

	remote.bind(cmd, false)
	return cmd
}

func localSchemas(partial string) ([]dto.MethodSchema, error) {
	catalog := rpc.Default()
	methods := catalog.Suggest(partial)
	schemas := make([]dto.MethodSchema, 0, len(methods))
	for _, method := range methods {
		spec, err := catalog.Lookup(string(method))
		if err != nil {
			return nil, err
		}
		schema := dto.MethodSchema{Method: string(spec.Method), Title: spec.Title}
		for _, field := range spec.Fields {
			schema.Fields = append(schema.Fields, dto.FieldSchema{
				Name:        field.Name,
				Label:       field.Label,
				Kind:        string(field.Kind),
				Placeholder: field.Placeholder,
				Paragraph:   field.Paragraph,
			})
		}
		schemas = append(schemas, schema)
	}
	return schemas, nil
}

func printSchemas(out io.Writer, schemas []dto.MethodSchema) {
	for _, schema := range schemas {
		fmt.Fprintf(out, "%s  %s\n", schema.Method, schema.Title)
		for _, field := range schema.Fields {
			desc := field.Kind
			if field.Placeholder != "" {
				desc += ", " + field.Placeholder
			}
			fmt.Fprintf(out, "    %-14s %s (%s)\n", field.Name, field.Label, desc)
		}
	}
}

func parseFieldFlags(values []string) (map[string]string, error) {
	fields := make(map[string]string, len(values))
	for _, value := range values {
		name, v, ok := strings.Cut(value, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid field %q: want name=value", value)
		}
		fields[name] = v
	}
	return fields, nil
}
