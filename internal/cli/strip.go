package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/toyz/pluginmeta/internal/rewriter"
	"github.com/toyz/pluginmeta/internal/utils"
)

func (a *app) stripCommand() *cobra.Command {
	var (
		registryFlag string
		write        bool
		sourcemap    bool
	)

	cmd := &cobra.Command{
		Use:   "strip <files|dirs|dir/...>",
		Short: "Remove build-time metadata from plugin modules",
		Long: `Strip runs the rewrite pass over each plugin listed in the registry. Edited
modules are printed to stdout, or written in place with --write. Files the
registry does not know are left alone.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.loadRegistry(registryFlag)
			if err != nil {
				return err
			}

			maps := a.sourcemapOptions()
			if sourcemap {
				maps.Client = true
			}
			engine := rewriter.NewEngine(reg, a.diag, rewriter.WithSourcemap(maps))

			processor := utils.NewFileProcessor()
			files, err := processor.ExpandPatterns(args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var edited, stubbed, unchanged int
			for _, file := range files {
				a.diag.Debug("Stripping %s", file)
				code, err := processor.ReadPlugin(file)
				if err != nil {
					return err
				}

				result := engine.Transform(code, file)
				if result == nil {
					a.diag.Verbose("%s: unchanged", file)
					unchanged++
					continue
				}
				if result.Kind == rewriter.KindStub {
					stubbed++
				} else {
					edited++
				}

				if !write {
					if err := printResult(out, file, result); err != nil {
						return err
					}
					continue
				}

				if err := a.writeResult(processor.GetFileReader(), file, result); err != nil {
					return err
				}
				a.diag.Success("%s: %s", file, result.Kind)
			}

			a.diag.Summary(fmt.Sprintf("Processed %d plugins", len(files)), map[string]interface{}{
				"edited":    edited,
				"stubbed":   stubbed,
				"unchanged": unchanged,
			})
			return nil
		},
	}

	cmd.Flags().StringVar(&registryFlag, "registry", "", "Registry manifest (default from config)")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write results back to the source files")
	cmd.Flags().BoolVar(&sourcemap, "map", false, "Emit source maps: a .map file per plugin with --write, an inline comment otherwise")

	return cmd
}

// printResult writes an edited module to out, with its source map inlined
func printResult(out io.Writer, file string, result *rewriter.Result) error {
	code := result.Code
	if result.Map != nil {
		url, err := result.Map.DataURL()
		if err != nil {
			return err
		}
		code += "\n//# sourceMappingURL=" + url
	}
	_, err := fmt.Fprintf(out, "// %s (%s)\n%s\n", file, result.Kind, code)
	return err
}

func (a *app) writeResult(reader *utils.FileReader, file string, result *rewriter.Result) error {
	if err := reader.WriteFile(file, result.Code); err != nil {
		return err
	}
	if result.Map == nil {
		return nil
	}

	data, err := result.Map.JSON()
	if err != nil {
		return err
	}
	return reader.WriteFile(file+".map", string(data))
}
