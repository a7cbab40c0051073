// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a
// blank import) causes the init functions of each concrete backend to run,
// which in turn register their factories and DDL bootstrappers with the
// storage package.
//
// Importing this package makes the following storage kinds available at
// runtime:
//
//   - "sqlite"   (nvprep/internal/storage/sqlite)
//   - "postgres" (nvprep/internal/storage/postgres)
//
// Binaries that need only a subset of backends can blank-import the
// individual backend packages instead.
package all

import (
	_ "nvprep/internal/storage/postgres"
	_ "nvprep/internal/storage/sqlite"
)
