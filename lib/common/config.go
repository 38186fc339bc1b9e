package common

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Store configuration struct
// --------------------------------------------------------------------------

// StoreConfig holds the settings the command line tool opens a store with.
type StoreConfig struct {
	// Root is the directory of the store
	Root string
	// Codec is the registry name of the key/value codec
	Codec string
	// SyncWrites enables fsync of every written file before it is renamed into place
	SyncWrites bool
	// LogLevel is the level at which logs will be output
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *StoreConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Store")
	addField("Root", c.Root)
	addField("Codec", c.Codec)
	addField("Sync Writes", fmt.Sprintf("%t", c.SyncWrites))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
