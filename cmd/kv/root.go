package kv

import (
	"github.com/ValentinKolb/fsKV/cmd/util"
	"github.com/ValentinKolb/fsKV/lib/store/fstore"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
)

var (
	log     = logger.GetLogger("cli")
	fsStore *fstore.Store

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value store operations",
		PersistentPreRunE:  openStore,
		PersistentPostRunE: closeStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add store flags to the KV command
	util.SetupStoreFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(insertCmd)
	KeyValueCommands.AddCommand(lookupCmd)
	KeyValueCommands.AddCommand(removeCmd)
	KeyValueCommands.AddCommand(sizeCmd)
	KeyValueCommands.AddCommand(infoCmd)
	KeyValueCommands.AddCommand(checkCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// openStore opens the store configured by flags and environment
func openStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	conf := util.GetStoreConfig()

	var err error
	fsStore, err = util.OpenStore(conf)
	if err != nil {
		return err
	}
	log.Debugf("store configuration:%s", conf.String())
	return nil
}

// closeStore closes the store opened by openStore
func closeStore(_ *cobra.Command, _ []string) error {
	if fsStore == nil {
		return nil
	}
	return fsStore.Close()
}
