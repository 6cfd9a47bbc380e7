package cts

// WhichSQLiteDriver reports the sqlite driver compiled into this binary:
// mattn's cgo sqlite3 or the pure-Go modernc sqlite.
func WhichSQLiteDriver() string {
	return whichSQLiteDriver
}
