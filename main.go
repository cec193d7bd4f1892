// Command goslim loads the Gene Ontology, answers ancestry queries over it
// and summarizes UniProt records by GO namespace and GO slim category.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/nodeadmin/goslim/annotate"
	"github.com/nodeadmin/goslim/config"
	"github.com/nodeadmin/goslim/ontology"
	"github.com/nodeadmin/goslim/report"
	"github.com/nodeadmin/goslim/uniprot"
)

const (
	Version = "0.1.0"
	appName = "goslim"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries state shared by the subcommands.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	log        zerolog.Logger
}

func rootCmd() *cobra.Command {
	a := &app{v: config.New(), log: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Gene Ontology slim annotation",
		Long: `goslim loads a Gene Ontology OBO file, optionally merges a GO slim
subset file, and answers "is term X under term Y" queries.

The annotate command reads UniProt XML exports and writes a per-protein GO
summary plus one GO slim category report per namespace.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	pf.String("obo", "", "Path to the base go.obo file")
	pf.String("slim", "", "Path to a GO slim OBO file to merge")
	pf.String("slim-limit", "", "Only merge this subset tag from the slim file")
	pf.Bool("verbose", false, "Log unrecognized OBO tags")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	bindFlags(a.v, pf, map[string]string{
		"ontology.path":       "obo",
		"ontology.slim_path":  "slim",
		"ontology.slim_limit": "slim-limit",
		"ontology.verbose":    "verbose",
		"log.level":           "log-level",
	})

	cmd.AddCommand(annotateCmd(a), ancestorCmd(a), lookupCmd(a), checkCmd(a), versionCmd())
	return cmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg

	level, _ := zerolog.ParseLevel(cfg.Log.Level)
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().
		Logger()
	return nil
}

func (a *app) loadGraph() (*ontology.Graph, error) {
	g, err := ontology.Load(a.cfg.Ontology.Path,
		ontology.WithLogger(a.log),
		ontology.WithVerbose(a.cfg.Ontology.Verbose))
	if err != nil {
		return nil, err
	}
	if a.cfg.Ontology.SlimPath != "" {
		if err := g.MergeSlim(a.cfg.Ontology.SlimPath, a.cfg.Ontology.SlimLimit); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func annotateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate DATA_DIR...",
		Short: "Write GO summary and GO slim category reports for UniProt exports",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Annotate
			namespaces, err := annotate.ParseNamespaces(cfg.Namespace)
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(cfg.Format)
			if err != nil {
				return err
			}

			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			agg := annotate.New(g,
				annotate.WithLogger(a.log),
				annotate.WithSlimTag(cfg.SlimTag),
				annotate.WithRelaxed(cfg.Relaxed),
				annotate.WithWorkers(cfg.Workers))

			for _, dir := range args {
				if err := a.annotateDir(cmd, agg, namespaces, format, dir); err != nil {
					return fmt.Errorf("%s: %w", dir, err)
				}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringP("namespace", "n", "A", "GO namespaces to report: A (all), B, M, C or none")
	f.String("slim-tag", "goslim_generic", "Subset tag selecting category terms")
	f.Bool("relaxed", false, "Also count terms reachable through inverse has_part")
	f.String("protein-file", "listUP.xml", "UniProt XML file name inside each data directory")
	f.String("format", string(report.XLSX), "Report format (xlsx, tsv, json, yaml)")
	f.Int("workers", 0, "Namespaces aggregated at once (0 = all)")
	bindFlags(a.v, f, map[string]string{
		"annotate.namespace":    "namespace",
		"annotate.slim_tag":     "slim-tag",
		"annotate.relaxed":      "relaxed",
		"annotate.protein_file": "protein-file",
		"annotate.format":       "format",
		"annotate.workers":      "workers",
	})
	return cmd
}

func (a *app) annotateDir(cmd *cobra.Command, agg *annotate.Aggregator, namespaces []ontology.Namespace, format report.Format, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	start := time.Now()
	entries, err := uniprot.ParseFile(filepath.Join(dir, a.cfg.Annotate.ProteinFile))
	if err != nil {
		return err
	}
	a.log.Info().Str("dir", dir).Int("proteins", len(entries)).Msg("Loaded proteins")

	reports, err := agg.Build(cmd.Context(), namespaces, annotate.FromUniProt(entries))
	if err != nil {
		return err
	}
	paths, err := reports.WriteDir(dir, format)
	if err != nil {
		return err
	}
	a.log.Info().
		Str("dir", dir).
		Strs("reports", paths).
		Dur("elapsed", time.Since(start)).
		Msg("Wrote reports")
	return nil
}

func ancestorCmd(a *app) *cobra.Command {
	var relaxed bool
	cmd := &cobra.Command{
		Use:   "ancestor TERM TARGET",
		Short: "Report whether TARGET is an ancestor of TERM",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			ok, err := g.IsAncestor(args[0], args[1], relaxed)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ok)
			return nil
		},
	}
	cmd.Flags().BoolVar(&relaxed, "relaxed", false, "Also follow inverse has_part edges")
	return cmd
}

func lookupCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "lookup ID",
		Short: "Print a term resolved by primary or alternate id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			term, err := g.Lookup(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "  ")
				return enc.Encode(term)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(term); err != nil {
					return err
				}
				return enc.Close()
			}
			return fmt.Errorf("unknown output format %q (want json or yaml)", format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (json, yaml)")
	return cmd
}

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the ontology and report dangling term references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.loadGraph()
			if err != nil {
				return err
			}
			stats := g.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d terms, %d alternate ids, %d obsolete, %d unrecognized tags, %d namespace anomalies\n",
				g.Header.Ontology, g.Header.DataVersion,
				stats.Terms, stats.AltIDs, stats.Obsolete, stats.UnrecognizedKeys, stats.NamespaceAnomalies)
			if err := g.CheckReferences(); err != nil {
				return fmt.Errorf("dangling references:\n%w", err)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skip config loading and validation.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	}
}
