package sqlengine

import "time"

// currentLocalOffsetSeconds snapshots the process's local UTC offset,
// baked into any DATE(fmt, ...) call's compiled format so a
// missing-timezone format can complete deterministically.
func currentLocalOffsetSeconds() int {
	_, off := time.Now().Zone()
	return off
}
