// Package all enables every built-in storage backend.
//
// Importing it for side effects runs the init functions of the concrete
// backends, which register their factories with the storage package:
//
//   - "postgres" (cleanload/internal/storage/postgres)
//   - "mssql"    (cleanload/internal/storage/mssql)
//   - "mysql"    (cleanload/internal/storage/mysql)
//   - "sqlite"   (cleanload/internal/storage/sqlite)
//
// Typical usage in a main package:
//
//	import _ "cleanload/internal/storage/all"
//
// A binary that needs only a subset of backends can import those packages
// directly instead.
package all

import (
	_ "cleanload/internal/storage/mssql"
	_ "cleanload/internal/storage/mysql"
	_ "cleanload/internal/storage/postgres"
	_ "cleanload/internal/storage/sqlite"
)
