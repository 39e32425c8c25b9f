package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"grocerbot/internal/catalog"
	"grocerbot/internal/intent"
	"grocerbot/internal/snapshot"
)

// loadCatalog reads the --prices file, falling back to the built-in sample
// table when it does not exist. Nothing is written to disk.
func loadCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	path, _ := cmd.Flags().GetString("prices")

	c, err := catalog.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s not found, using sample prices\n", path)
		return catalog.New(catalog.DefaultCategories)
	}
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	return c, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ---------------- prices ----------------

func newPricesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "prices",
		Short: "List the price catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch format {
			case "json":
				body, err := c.Indented()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, body)
				return err
			case "yaml":
				enc := yaml.NewEncoder(out)
				if err := enc.Encode(c.Categories()); err != nil {
					return err
				}
				return enc.Close()
			case "text":
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, cat := range c.Categories() {
					fmt.Fprintf(tw, "%s\n", cat.Name)
					for _, it := range cat.Items {
						fmt.Fprintf(tw, "  %s\tRs%g/kg\n", it.Name, it.Price)
					}
				}
				return tw.Flush()
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, yaml")
	return cmd
}

// ---------------- lookup ----------------

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <item>",
		Short: "Resolve an item name against the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(cmd)
			if err != nil {
				return err
			}

			name := strings.Join(args, " ")
			m, ok := c.Lookup(name)
			if !ok {
				return fmt.Errorf("item '%s' not found", name)
			}
			return writeJSON(cmd.OutOrStdout(), m)
		},
	}
}

// ---------------- classify ----------------

type classification struct {
	IsCartQuery     bool   `json:"is_cart_query"`
	WantsToOrder    bool   `json:"wants_to_order"`
	IsPriceQuestion bool   `json:"is_price_question"`
	Item            string `json:"item,omitempty"`
	Quantity        int    `json:"quantity"`
	Rule            string `json:"rule,omitempty"`
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <message>",
		Short: "Show how a chat message would be classified",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(cmd)
			if err != nil {
				return err
			}

			in := intent.NewExtractor(c).Classify(strings.Join(args, " "))
			return writeJSON(cmd.OutOrStdout(), classification{
				IsCartQuery:     in.IsCartQuery,
				WantsToOrder:    in.WantsToOrder,
				IsPriceQuestion: in.IsPriceQuestion,
				Item:            in.Item,
				Quantity:        in.Quantity,
				Rule:            in.Rule,
			})
		},
	}
}

// ---------------- snapshot ----------------

func newSnapshotCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "snapshot <session-id>",
		Short: "Print a saved session snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := snapshot.NewFileWriter(dir)
			if err != nil {
				return err
			}
			doc, err := w.Read(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot %s: %w", args[0], err)
			}
			return writeJSON(cmd.OutOrStdout(), doc)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", envOr("SNAPSHOT_DIR", "./saved_sessions"), "Snapshot directory")
	return cmd
}
