package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/toyz/pluginmeta/internal/errors"
	"github.com/toyz/pluginmeta/internal/order"
	"github.com/toyz/pluginmeta/internal/registry"
	"github.com/toyz/pluginmeta/internal/utils"
)

func (a *app) registryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Build and inspect plugin registry manifests",
	}
	cmd.AddCommand(a.registryBuildCommand(), a.registryListCommand())
	return cmd
}

func (a *app) registryBuildCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build <dirs...>",
		Short: "Extract every plugin under the given targets into a manifest",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := a.registryPath(output)
			if target == "" {
				return errors.New(errors.ConfigurationErrorCode, "no registry manifest path").
					WithSuggestion("Pass --output or set registry in pluginmeta.yaml")
			}

			reg, buildErr := registry.Build(args, a.newExtractor(), utils.NewFileProcessor())
			if reg == nil {
				return buildErr
			}

			if err := reg.Save(target); err != nil {
				return err
			}

			a.diag.Success("Wrote %d plugins to %s", reg.Size(), target)
			return buildErr
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Manifest path; the extension selects json, yaml or toml")
	return cmd
}

func (a *app) registryListCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a manifest's plugins in scheduling order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.loadRegistry(path)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ORDER\tTIER\tNAME\tDEPENDS ON\tSRC")
			for _, p := range reg.List() {
				name := "-"
				if p.Name != nil {
					name = *p.Name
				}
				deps := "-"
				if len(p.DependsOn) > 0 {
					deps = fmt.Sprint(p.DependsOn)
				}
				value := registry.EffectiveOrder(p.PluginMeta)
				tier := "-"
				if t, ok := order.TierOf(value); ok {
					tier = string(t)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", value, tier, name, deps, p.Src)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&path, "registry", "", "Registry manifest (default from config)")
	return cmd
}

func (a *app) loadRegistry(flag string) (*registry.Registry, error) {
	path := a.registryPath(flag)
	if path == "" {
		return nil, errors.New(errors.ConfigurationErrorCode, "no registry manifest configured").
			WithSuggestion("Pass --registry or set registry in pluginmeta.yaml")
	}

	reg, err := registry.Load(path)
	if err != nil {
		return nil, err
	}
	a.diag.Verbose("Loaded %d plugins from %s", reg.Size(), path)
	return reg, nil
}
