package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hyperifyio/laudo/internal/extract"
	"github.com/hyperifyio/laudo/internal/record"
)

func (c *cli) caseCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "case", Short: "Manage case records"}
	cmd.AddCommand(
		c.caseCreateCmd(),
		&cobra.Command{
			Use:   "list",
			Short: "List cases, most recently updated first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				list, err := c.app.ListCases()
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tPROCESSO\tRECLAMANTE\tSTATUS\tATUALIZADO")
				for _, r := range list {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.DisplayProcessNumber(),
						r.Identification.Claimant.Name, r.Status, r.UpdatedAt.Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Print a case as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rec, err := c.app.GetCase(args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), rec)
			},
		},
		c.caseUpdateCmd(),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a case with its extraction and report",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.app.DeleteCase(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "caso %s removido\n", args[0])
				return nil
			},
		},
		c.caseClearCmd(),
		&cobra.Command{
			Use:   "forget-extraction <id>",
			Short: "Drop the cached extraction of a case; filled fields stay",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.app.ClearExtraction(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "extração do caso %s removida\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Count cases per status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := c.app.Stats()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), st)
			},
		},
	)
	return cmd
}

func (c *cli) caseCreateCmd() *cobra.Command {
	var (
		file     string
		process  string
		claimant string
		company  string
		cnae     string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a case from flags or a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rec record.CaseRecord
			if file != "" {
				if err := readJSON(file, &rec); err != nil {
					return err
				}
			}
			if process != "" {
				rec.ProcessNumber = process
				rec.Identification.ProcessNumber = process
			}
			if claimant != "" {
				rec.Identification.Claimant.Name = claimant
			}
			if company != "" {
				rec.Identification.Company.Name = company
			}
			if cnae != "" {
				rec.Identification.Company.CNAE = cnae
			}
			out, err := c.app.CreateCase(rec)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "", "case record JSON")
	f.StringVar(&process, "process", "", "process number")
	f.StringVar(&claimant, "claimant", "", "claimant name")
	f.StringVar(&company, "company", "", "company name")
	f.StringVar(&cnae, "cnae", "", "company CNAE")
	return cmd
}

func (c *cli) caseUpdateCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Merge a JSON file into a case; absent fields are kept, null clears",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			patch, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			out, err := c.app.UpdateCase(args[0], patch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "partial case record JSON")
	return cmd
}

func (c *cli) caseClearCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every case; the AI configuration is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete every case without --yes")
			}
			return c.app.ClearCases()
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *cli) extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <id> <file>",
		Short: "Extract case fields from the text (or saved HTML page) of the case file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[1])
			if err != nil {
				return err
			}
			text := string(b)
			switch strings.ToLower(filepath.Ext(args[1])) {
			case ".html", ".htm":
				text = extract.FromHTML(b).Text
			}
			data, err := c.app.ExtractCase(args[0], text)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			conf := data.Confidence
			fmt.Fprintf(w, "processo: %s\n", data.ExtractedData.DisplayProcessNumber())
			fmt.Fprintf(w, "confiança: identificação %d%%, objetivo %d%%, histórico médico %d%%, histórico laboral %d%%\n",
				conf.Identification, conf.ExpertiseObjective, conf.MedicalHistory, conf.LaborHistory)
			if len(data.MissingFields) > 0 {
				fmt.Fprintf(w, "pendências: %s\n", strings.Join(data.MissingFields, "; "))
			}
			return nil
		},
	}
}

func (c *cli) ntepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ntep <id>",
		Short: "Cross the company CNAE with the alleged CIDs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.app.VerifyNTEP(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", res.RiskLevel.Label(), res.Explanation)
			return nil
		},
	}
}
