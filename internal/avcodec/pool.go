package avcodec

import "github.com/kestrelav/avplay/internal/bufpool"

// bufpoolGet/bufpoolPut are thin indirections so packet.go reads like the
// rest of the package (no bare "bufpool." noise at every call site) while
// still sharing the process-wide pooled buffers with everything else that
// imports internal/bufpool.
func bufpoolGet(size int) []byte { return bufpool.Get(size) }
func bufpoolPut(buf []byte)      { bufpool.Put(buf) }
