package main

import (
	"fmt"
	"io"
	"strings"

	"dashboard-cms/pkg/models"
	"dashboard-cms/pkg/services"

	"github.com/spf13/cobra"
)

func printRecord(w io.Writer, rec models.ContentRecord, format string) error {
	out, err := services.MarshalRecord(rec, format)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func (a *app) showCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the local working copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRecord(cmd.OutOrStdout(), a.sync.WorkingCopy(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml or toml")
	return cmd
}

func (a *app) pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Replace the working copy with the server record, discarding unsaved edits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.sync.LoadFromRemote(cmd.Context()); err != nil {
				return fmt.Errorf("pull: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded content from %s\n", a.apiURL)
			return nil
		},
	}
}

func (a *app) pushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Save the working copy to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.sync.SaveToRemote(cmd.Context()); err != nil {
				return fmt.Errorf("push: %w", err)
			}
			st := a.sync.Status()
			fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s at %s\n", a.apiURL, st.LastSavedAt.Format("15:04:05"))
			return nil
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore default content on the server and in the working copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if local {
				a.sync.ResetLocal()
				fmt.Fprintln(cmd.OutOrStdout(), "Working copy reset to defaults")
				return nil
			}
			if _, err := a.sync.ResetLocalAndRemote(cmd.Context()); err != nil {
				return fmt.Errorf("reset: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Server and working copy reset to defaults")
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "only reset the working copy")
	return cmd
}

// stringFlag returns a pointer to the flag value only when it was given, so
// unset flags leave the field alone.
func stringFlag(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func (a *app) headerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "header",
		Short: "Edit the header section",
	}
	set := &cobra.Command{
		Use:   "set",
		Short: "Change header fields in the working copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := a.sync.EditHeader(models.HeaderPatch{
				Title:    stringFlag(cmd, "title"),
				ImageURL: stringFlag(cmd, "image-url"),
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Header: %q (%s)\n", h.Title, h.ImageURL)
			return nil
		},
	}
	set.Flags().String("title", "", "header title")
	set.Flags().String("image-url", "", "header image URL")
	cmd.AddCommand(set)
	return cmd
}

func parseLinks(args []string) ([]models.NavLink, error) {
	links := make([]models.NavLink, 0, len(args))
	for _, arg := range args {
		label, url, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid link %q: expected LABEL=URL", arg)
		}
		links = append(links, models.NavLink{Label: label, URL: url})
	}
	return links, nil
}

func (a *app) navCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Edit the navigation links",
	}
	set := &cobra.Command{
		Use:   "set [LABEL=URL]...",
		Short: "Replace the whole navigation list in the working copy",
		RunE: func(cmd *cobra.Command, args []string) error {
			links, err := parseLinks(args)
			if err != nil {
				return err
			}
			links = a.sync.SetNavbar(links)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Navbar: %d link(s)\n", len(links))
			for _, l := range links {
				fmt.Fprintf(out, "  %s -> %s\n", l.Label, l.URL)
			}
			return nil
		},
	}
	cmd.AddCommand(set)
	return cmd
}

func (a *app) footerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "footer",
		Short: "Edit the footer section",
	}
	set := &cobra.Command{
		Use:   "set",
		Short: "Change footer fields in the working copy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := a.sync.EditFooter(models.FooterPatch{
				Email:   stringFlag(cmd, "email"),
				Phone:   stringFlag(cmd, "phone"),
				Address: stringFlag(cmd, "address"),
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Footer: %s | %s | %s\n", f.Email, f.Phone, f.Address)
			return nil
		},
	}
	set.Flags().String("email", "", "contact email")
	set.Flags().String("phone", "", "contact phone")
	set.Flags().String("address", "", "postal address")
	cmd.AddCommand(set)
	return cmd
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show unsaved edits and media host configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ms := a.uploader.Status()
			fmt.Fprintf(out, "Media host: configured=%t cloudName=%t uploadPreset=%t\n",
				ms.Configured, ms.CloudName, ms.UploadPreset)

			diff, err := a.sync.Pending(cmd.Context())
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			if diff == "" {
				fmt.Fprintln(out, okText("Working copy matches the server"))
				return nil
			}
			fmt.Fprintf(out, "%s\n%s", warnText("Unsaved changes (-server +local):"), colorDiff(diff))
			return nil
		},
	}
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the content API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := a.api.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (up %.0fs)\n", h.Status, h.Message, h.Uptime)
			return nil
		},
	}
}
