package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toyz/pluginmeta/internal/errors"
	"github.com/toyz/pluginmeta/internal/models"
	"github.com/toyz/pluginmeta/internal/registry"
	"github.com/toyz/pluginmeta/internal/utils"
)

func (a *app) extractCommand() *cobra.Command {
	var (
		output  string
		dialect string
	)

	cmd := &cobra.Command{
		Use:   "extract <files|dirs|dir/...>",
		Short: "Print the metadata of plugin modules",
		Long: `Extract reads each plugin module and prints its resolved metadata.
Directories list their top-level plugins and the index file of each
subdirectory; a trailing /... walks recursively.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := registry.Format(output)

			processor := utils.NewFileProcessor()
			files, err := processor.ExpandPatterns(args)
			if err != nil {
				return err
			}

			ext := a.newExtractor()
			results := registry.New()
			failures := errors.NewMultipleErrors()

			for _, file := range files {
				code, err := processor.ReadPlugin(file)
				if err != nil {
					failures.Add(asPluginMetaError(err, file))
					continue
				}

				var meta models.PluginMeta
				if dialect != "" {
					meta, err = ext.Extract(code, models.ParseDialect(dialect))
				} else {
					meta, err = ext.ExtractModule(file, code)
				}
				if err != nil {
					failures.Add(asPluginMetaError(err, file))
					continue
				}

				if err := results.Register(models.Plugin{Src: file, PluginMeta: meta}); err != nil {
					failures.Add(asPluginMetaError(err, file))
				}
			}

			data, err := results.Encode(format)
			if err != nil {
				return err
			}
			if _, err := cmd.OutOrStdout().Write(data); err != nil {
				return err
			}

			a.diag.Verbose("Extracted %d of %d plugins", results.Size(), len(files))
			return failures.ErrorOrNil()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(registry.FormatYAML), fmt.Sprintf("Output format: %s, %s or %s", registry.FormatYAML, registry.FormatJSON, registry.FormatTOML))
	cmd.Flags().StringVar(&dialect, "dialect", "", "Force the syntax dialect (ts or tsx) instead of inferring it from the extension")

	return cmd
}

// asPluginMetaError ties an error to the file it came from
func asPluginMetaError(err error, file string) errors.PluginMetaError {
	switch e := err.(type) {
	case *errors.BaseError:
		if e.Location().IsEmpty() {
			return e.WithContext("file", file)
		}
		return e
	case errors.PluginMetaError:
		return e
	default:
		return errors.WrapWithOperation("process", file, err)
	}
}
