package main

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	simdb "github.com/nearsim/go-contract-sim/db"
	"github.com/nearsim/go-contract-sim/db/badgerdb"
	"github.com/nearsim/go-contract-sim/db/memorydb"
	"github.com/nearsim/go-contract-sim/ledger"
	"github.com/nearsim/go-contract-sim/runtime"
	"github.com/nearsim/go-contract-sim/types"
	"github.com/nearsim/go-contract-sim/vm"
)

const (
	flagConfig = "config"
	flagSigner = "signer"
	flagGas    = "gas"
)

func main() {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:   "contractsim",
		Short: "simulate cross-contract calls through the standalone vm runner",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			configFile := viper.GetString(flagConfig)
			if configFile == "" {
				return nil
			}
			viper.SetConfigFile(configFile)
			return viper.ReadInConfig()
		},
	}

	rootCmd.AddCommand(
		deployCommand(),
		callCommand(),
		viewCommand(),
		accountsCommand(),
	)

	rootCmd.PersistentFlags().String(flagConfig, "", "config path")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Send()
	}
}

// newRuntime assembles the runtime from config: a badger store when dbDir
// is set (accounts survive between invocations), memory otherwise.
func newRuntime() (*runtime.Runtime, func(), error) {
	var database simdb.DB
	if dir := viper.GetString("dbDir"); dir != "" {
		badgerDb, err := badgerdb.NewDB(dir)
		if err != nil {
			return nil, nil, err
		}
		database = badgerDb
	} else {
		database = memorydb.NewDB()
	}

	var defaultBalance *types.BigInt
	if balance := viper.GetString("defaultBalance"); balance != "" {
		parsed, err := types.ParseBigInt(balance)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		defaultBalance = parsed
	}

	accountLedger, err := ledger.NewAccountLedger(database, defaultBalance)
	if err != nil {
		database.Close()
		return nil, nil, err
	}

	runner := vm.NewStandaloneRunner(viper.GetString("runnerBinary"))
	cleanup := func() {
		if err := database.Close(); err != nil {
			log.Err(err).Msg("Close database")
		}
	}
	return runtime.New(accountLedger, runner), cleanup, nil
}

func deployCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deploy <account-id> <wasm-file>",
		Short: "register an account with contract code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := newRuntime()
			if err != nil {
				return err
			}
			defer cleanup()
			if _, err := rt.NewAccount(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("deployed %s -> %s\n", args[1], args[0])
			return nil
		},
	}
}

func callCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "call <account-id> <method> [input-json]",
		Short: "run a full scheduled invocation",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := newRuntime()
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := rt.Call(args[0], args[1], inputArg(args), viper.GetString(flagSigner), viper.GetUint64(flagGas))
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}
	command.Flags().String(flagSigner, "", "signer account id (defaults to the target)")
	command.Flags().Uint64(flagGas, 0, "prepaid gas (defaults to 10^15)")
	return command
}

func viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view <account-id> <method> [input-json]",
		Short: "run a read-only method",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := newRuntime()
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := rt.View(args[0], args[1], inputArg(args))
			if err != nil {
				return err
			}
			return printResult(result)
		},
	}
}

func accountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "list known accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := newRuntime()
			if err != nil {
				return err
			}
			defer cleanup()

			for _, account := range rt.Ledger().Accounts() {
				fmt.Printf("%s\tbalance=%s\twasm=%s\n", account.ID, account.Balance.String(), account.WasmFile)
			}
			return nil
		},
	}
}

func inputArg(args []string) []byte {
	if len(args) < 3 {
		return nil
	}
	return []byte(args[2])
}

func printResult(result interface{}) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
