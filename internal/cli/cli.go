// Package cli implements coffeectl, a small tool for inspecting the compiled
// environment record and the identity provider URLs derived from it.
package cli

import (
	"aggregat4/coffeeshop/internal/environment"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

// openURL is replaced in tests.
var openURL = browser.OpenURL

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "coffeectl",
		Short:         "Inspect the coffee shop environment",
		Long:          "coffeectl prints the environment record compiled into this build and the login and logout URLs of the identity provider.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newEnvCmd())
	root.AddCommand(newLoginURLCmd())
	root.AddCommand(newLogoutURLCmd())
	return root
}

func newEnvCmd() *cobra.Command {
	var format string
	var validate bool
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Print the compiled environment record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env := environment.Current()
			if validate {
				if err := env.Validate(); err != nil {
					return err
				}
			}
			return printRecord(cmd, env, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().BoolVar(&validate, "validate", false, "Fail if the record is invalid")
	cmd.AddCommand(newEnvCheckCmd())
	return cmd
}

func newEnvCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Load and validate a record file (json or hjson)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := environment.Load(args[0])
			if err != nil {
				return errors.Wrapf(err, "checking %s", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (api %s, tenant %s)\n", args[0], env.APIServerURL, env.Domain())
			return nil
		},
	}
}

func printRecord(cmd *cobra.Command, env environment.Environment, format string) error {
	var out []byte
	var err error
	switch format {
	case "json":
		out, err = json.MarshalIndent(env, "", "  ")
		out = append(out, '\n')
	case "yaml":
		out, err = env.ToYAML()
	default:
		return errors.Errorf("unknown format %q, use json or yaml", format)
	}
	if err != nil {
		return errors.Wrap(err, "encoding record")
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func newLoginURLCmd() *cobra.Command {
	var state string
	var open bool
	cmd := &cobra.Command{
		Use:   "login-url",
		Short: "Print the authorize URL of the identity provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			url := environment.Current().AuthorizeURL(state)
			fmt.Fprintln(cmd.OutOrStdout(), url)
			if open {
				return openURL(url)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&state, "state", "", "Opaque state passed through the login")
	cmd.Flags().BoolVar(&open, "open", false, "Open the URL in the default browser")
	return cmd
}

func newLogoutURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout-url",
		Short: "Print the logout URL of the identity provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), environment.Current().LogoutURL())
			return nil
		},
	}
}
