package codec

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var (
	log      = logger.GetLogger("codec")
	registry = xsync.NewMapOf[string, ICodec]()
)

// DefaultName is the name of the codec used when none is configured
const DefaultName = "json"

func init() {
	Register(NewJSONCodec())
	Register(NewYAMLCodec())
	Register(NewGOBCodec())
}

// Register adds a codec to the registry under its name.
// An already registered codec with the same name is replaced.
func Register(c ICodec) {
	if _, loaded := registry.LoadAndStore(strings.ToLower(c.Name()), c); loaded {
		log.Warningf("codec %q registered twice, replacing previous implementation", c.Name())
	}
}

// ByName returns the registered codec with the given name (case-insensitive).
// An empty name selects the default codec.
func ByName(name string) (ICodec, error) {
	if name == "" {
		name = DefaultName
	}
	if c, ok := registry.Load(strings.ToLower(name)); ok {
		return c, nil
	}
	return nil, fmt.Errorf("invalid codec %s (expected one of: %s)", name, strings.Join(Names(), ", "))
}

// Names returns the sorted names of all registered codecs
func Names() []string {
	names := make([]string, 0, registry.Size())
	registry.Range(func(name string, _ ICodec) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}
