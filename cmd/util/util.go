package util

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ValentinKolb/fsKV/lib/codec"
	"github.com/ValentinKolb/fsKV/lib/common"
	"github.com/ValentinKolb/fsKV/lib/store/fstore"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the flags needed to open a store to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "root"
	cmd.PersistentFlags().String(key, "data", WrapString("The directory the store keeps its shard directories in (created if missing)"))

	key = "codec"
	cmd.PersistentFlags().String(key, codec.DefaultName, WrapString(fmt.Sprintf("Codec for keys and values (%s). A store must always be opened with the codec it was written with", strings.Join(codec.Names(), ", "))))

	key = "sync"
	cmd.PersistentFlags().Bool(key, true, WrapString("fsync every key and value file before it is renamed into place"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("The log level (debug, info, warn, error)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("fskv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetStoreConfig reads the store configuration from viper
func GetStoreConfig() *common.StoreConfig {
	return &common.StoreConfig{
		Root:       viper.GetString("root"),
		Codec:      viper.GetString("codec"),
		SyncWrites: viper.GetBool("sync"),
		LogLevel:   viper.GetString("log-level"),
	}
}

// OpenStore sets up logging and opens the store described by conf
func OpenStore(conf *common.StoreConfig) (*fstore.Store, error) {
	if err := common.InitLoggers(conf.LogLevel); err != nil {
		return nil, err
	}

	c, err := codec.ByName(conf.Codec)
	if err != nil {
		return nil, err
	}

	return fstore.Open(conf.Root, &fstore.Options{
		Codec:      c,
		SyncWrites: conf.SyncWrites,
	})
}

// ParseArgument turns a command line argument into a key or value.
// Valid JSON (numbers, booleans, arrays, objects, quoted strings) is decoded,
// anything else is taken as a plain string. Integral numbers stay integers.
func ParseArgument(arg string) any {
	dec := json.NewDecoder(strings.NewReader(arg))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return arg
	}
	return normalizeNumbers(v)
}

// normalizeNumbers replaces json.Number with int64 or float64
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case []any:
		for i := range t {
			t[i] = normalizeNumbers(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeNumbers(t[k])
		}
		return t
	default:
		return v
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
