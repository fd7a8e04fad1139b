// Package rowwin implements a fixed-capacity, relocatable, cross-process
// row-store: a single contiguous memory region holding a table of typed
// cells that one process builds and other processes read.
//
// # Quick Start
//
// Producer:
//
//	seg, _ := segment.Create("/dev/shm/results.win", 64*1024)
//	win, _ := rowwin.New(seg)
//	win.SetColumnCount(3)
//	row, _ := win.AllocRow()
//	win.PutInt64(row, 0, 42)
//	win.PutText(row, 1, "hi")
//	win.PutNull(row, 2)
//	win.Seal()
//
// Consumer (any process that can see the same bytes):
//
//	seg, _ := segment.Open("/dev/shm/results.win")
//	win, _ := rowwin.Open(seg)
//	v, _ := win.GetInt64(0, 0)
//
// # Relocation
//
// The region embeds no native pointers: rows, field directories and
// byte runs are all located by offsets stored inside the region itself,
// so the identical byte image works at whatever base address each
// process maps it.
//
// # Safety
//
// Every access is bounds-checked against the current capacity and
// returns a typed error. The image may come from another process, so
// corrupt offsets are reported as ErrCorruptSlot or ErrOutOfBounds and
// never dereferenced.
package rowwin
