package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"targetenc/pkg"
	"targetenc/pkg/encoding"
)

// bindFlags makes every flag of cmd readable from v as "<prefix>.<flag>",
// with dashes in flag names replaced by underscores.
func bindFlags(v *viper.Viper, prefix string, cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(prefix+"."+strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

func EncodeCommand(v *viper.Viper, method encoding.Method, defaults encoding.Parameters, short string) *cobra.Command {
	prefix := string(method)
	key := func(name string) string { return prefix + "." + name }

	var cmd = &cobra.Command{
		Use:   prefix + " -i inputFile -c column -t target [-o outputFile] [-m mappingFile]",
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pkg.Encode(pkg.EncodeParameters{
				InputFile:   v.GetString(key("input")),
				OutputFile:  v.GetString(key("output")),
				MappingFile: v.GetString(key("mapping_file")),
				Method:      method,
				Encoding: encoding.Parameters{
					Column:      v.GetString(key("column")),
					Target:      v.GetString(key("target")),
					Partition:   v.GetString(key("partition_column")),
					NSplits:     v.GetInt(key("n_splits")),
					Seed:        v.GetUint64(key("random_seed")),
					PriorWeight: v.GetFloat64(key("prior_weight")),
					Workers:     v.GetInt(key("workers")),
				},
				RestoreOrder: v.GetBool(key("restore_order")),
				Input:        cmd.InOrStdin(),
				Output:       cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringP("input", "i", "", "name of input file (optional, uses stdin if not present)")
	cmd.Flags().StringP("output", "o", "", "name of output file (optional, uses stdout if not present)")
	cmd.Flags().StringP("mapping-file", "m", "", "name of the file to save the fitted mapping to (optional)")
	cmd.Flags().StringP("column", "c", "", "categorical column to encode")
	cmd.Flags().StringP("target", "t", "", "binary target column")
	cmd.Flags().StringP("partition-column", "p", defaults.Partition, "boolean column marking labeled rows")
	cmd.Flags().IntP("n-splits", "k", defaults.NSplits, "number of cross-validation folds")
	cmd.Flags().Uint64P("random-seed", "x", defaults.Seed, "random seed of the fold split")
	cmd.Flags().Int("workers", 0, "number of folds encoded concurrently (0 uses all CPUs)")
	cmd.Flags().Bool("restore-order", false, "write rows in input order instead of labeled rows first")
	if method == encoding.MethodBayesian {
		cmd.Flags().Float64P("prior-weight", "w", defaults.PriorWeight, "strength of the shrinkage toward the prior mean")
	}

	bindFlags(v, prefix, cmd)
	return cmd
}

func HoldoutCommand(v *viper.Viper) *cobra.Command {
	return EncodeCommand(v, encoding.MethodHoldout, encoding.DefaultHoldoutParameters("", ""),
		"Appends the out-of-fold mean target of a categorical column")
}

func BayesianCommand(v *viper.Viper) *cobra.Command {
	return EncodeCommand(v, encoding.MethodBayesian, encoding.DefaultBayesianParameters("", ""),
		"Appends the out-of-fold mean target of a categorical column, smoothed toward the prior mean")
}

func ApplyCommand(v *viper.Viper) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "apply -m mappingFile -i inputFile [-o outputFile]",
		Short: "Encodes new data with a saved mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return pkg.Apply(pkg.ApplyParameters{
				InputFile:   v.GetString("apply.input"),
				OutputFile:  v.GetString("apply.output"),
				MappingFile: v.GetString("apply.mapping_file"),
				Input:       cmd.InOrStdin(),
				Output:      cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().StringP("mapping-file", "m", "", "name of the mapping file")
	cmd.Flags().StringP("input", "i", "", "name of input file (optional, uses stdin if not present)")
	cmd.Flags().StringP("output", "o", "", "name of output file (optional, uses stdout if not present)")

	_ = cmd.MarkFlagRequired("mapping-file")

	bindFlags(v, "apply", cmd)
	return cmd
}

func RootCommand() *cobra.Command {
	v := viper.New()

	var configFile string
	Main := &cobra.Command{
		Use:          "targetenc",
		Short:        "Leakage-safe target encoding of categorical columns",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v, configFile); err != nil {
				return err
			}
			return setupLogging(v.GetString("log_level"), v.GetString("log_format"), cmd.ErrOrStderr())
		},
	}

	Main.PersistentFlags().StringVarP(&configFile, "config", "", "", "YAML config file (optional)")
	Main.PersistentFlags().StringP("log-level", "", "info", "Logging level: info error or debug")
	Main.PersistentFlags().StringP("log-format", "", "pretty", "Logging format: pretty or json")
	_ = v.BindPFlag("log_level", Main.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log_format", Main.PersistentFlags().Lookup("log-format"))

	Main.AddCommand(HoldoutCommand(v))
	Main.AddCommand(BayesianCommand(v))
	Main.AddCommand(ApplyCommand(v))

	return Main
}

func main() {
	if err := RootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func initConfig(v *viper.Viper, configFile string) error {
	v.SetEnvPrefix("TARGETENC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile == "" {
		return nil
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file %s: %w", configFile, err)
	}
	return nil
}

func setupLogging(logLevel, logFormat string, out io.Writer) error {

	switch logLevel {
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		return fmt.Errorf("invalid logging level %q", logLevel)
	}

	switch logFormat {
	case "pretty":
		setupPrettyLogging(out)
	case "json":
		log.Logger = zerolog.New(out).With().Timestamp().Logger()
	default:
		return fmt.Errorf("invalid log format %q", logFormat)
	}
	return nil
}

func setupPrettyLogging(out io.Writer) {
	writer := zerolog.ConsoleWriter{Out: out}
	writer.FormatFieldValue = func(i interface{}) string {
		switch v := i.(type) {
		case json.Number:
			val, _ := v.Float64()
			return fmt.Sprintf("%.3f", val)
		default:
			return fmt.Sprintf("%s", i)
		}

	}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
}
