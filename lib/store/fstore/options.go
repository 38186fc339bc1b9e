package fstore

import (
	"os"

	"github.com/ValentinKolb/fsKV/lib/codec"
)

// Options configures a Store during Open
type Options struct {
	Codec      codec.ICodec // Codec for keys and values (nil = json)
	SyncWrites bool         // fsync every file before it is renamed into place
	DirPerm    os.FileMode  // Permission bits of the root and shard directories (0 = 0755)
	FilePerm   os.FileMode  // Permission bits of key and value files (0 = 0644)
}

// DefaultOptions returns the default store options
func DefaultOptions() *Options {
	return &Options{
		Codec:      codec.NewJSONCodec(),
		SyncWrites: true,
		DirPerm:    0o755,
		FilePerm:   0o644,
	}
}

// withDefaults fills unset fields of a copy of o
func (o *Options) withDefaults() Options {
	if o == nil {
		return *DefaultOptions()
	}
	out := *o
	if out.Codec == nil {
		out.Codec = codec.NewJSONCodec()
	}
	if out.DirPerm == 0 {
		out.DirPerm = 0o755
	}
	if out.FilePerm == 0 {
		out.FilePerm = 0o644
	}
	return out
}
