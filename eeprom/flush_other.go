//go:build !unix

package eeprom

// flushDirty is unreachable on non-unix builds: mapFile never reports
// mapped=true there, so File.Flush always takes the whole-region copy
// path instead. Defined only so the package compiles under every GOOS.
func flushDirty(fd int, data []byte, ranges []dirtyRange) error {
	return nil
}
