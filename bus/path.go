package bus

import "fmt"

// RecordInterface builds the per-record property interface name used by
// the inventory cache, e.g. RecordInterface("VINI") ->
// "com.ibm.ipzvpd.VINI", matching OpenBMC's constants::kwdVpdInf family
// of interfaces keyed by record name.
func RecordInterface(recordName string) string {
	return fmt.Sprintf("com.ibm.ipzvpd.%s", recordName)
}
