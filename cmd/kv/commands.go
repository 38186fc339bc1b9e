package kv

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ValentinKolb/fsKV/cmd/util"
	"github.com/spf13/cobra"
)

var (
	insertCmd = &cobra.Command{
		Use:   "insert [key] [value]",
		Short: "Stores a new key value pair (fails if the key exists)",
		Long:  util.WrapString(`Stores a new key value pair. Arguments that are valid JSON (e.g. 21, true, [1,2], {"a":1}, "quoted") are decoded first, anything else is stored as a string.`),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := util.ParseArgument(args[0])
			value := util.ParseArgument(args[1])
			if err := fsStore.Insert(key, value); err != nil {
				return err
			}
			fmt.Printf("inserted successfully (size=%d)\n", fsStore.Size())
			return nil
		},
	}
	lookupCmd = &cobra.Command{
		Use:   "lookup [key]",
		Short: "Reads the value for a key",
		Long:  util.WrapString("Reads the value for a key and prints it as JSON. Printing needs a self-describing codec (json or yaml), gob values can only be read through the library."),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value any
			if err := fsStore.Lookup(util.ParseArgument(args[0]), &value); err != nil {
				return err
			}
			return printJSON(value)
		},
	}
	removeCmd = &cobra.Command{
		Use:   "remove [key]",
		Short: "Deletes a key value pair and prints the removed value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value any
			if err := fsStore.Remove(util.ParseArgument(args[0]), &value); err != nil {
				return err
			}
			return printJSON(value)
		},
	}
	sizeCmd = &cobra.Command{
		Use:   "size",
		Short: "Prints the number of stored key value pairs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(fsStore.Size())
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints statistics about the store (shards, value sizes)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := fsStore.Info()
			if err != nil {
				return err
			}
			return printJSON(info)
		},
	}
	checkCmd = &cobra.Command{
		Use:   "check",
		Short: "Reports half-written mappings and stray files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := fsStore.Check()
			if err != nil {
				return err
			}
			if err := printJSON(report); err != nil {
				return err
			}
			if !report.OK() {
				return fmt.Errorf("store %s is inconsistent", fsStore.Root())
			}
			return nil
		},
	}
)

// printJSON writes v as indented JSON to stdout
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
