// Package core defines the contracts shared by docdir's directory, input
// and store packages.
//
// A docdir directory presents one index generation, identified by a
// Namespace (category and version), as a flat collection of named files.
// The files are FileRecords held by a remote Store; the directory only reads
// them, apart from the metadata mutations (rename, touch, delete) an index
// maintenance pass needs.
//
// # Interface Hierarchy
//
//   - Store: the persistence collaborator (Query, Delete, Update, ReadContent)
//   - Directory: the surface a search engine consumes
//   - Input: random-access reader over one record's content
//   - Output: declared for completeness; read-only directories never return one
//
// # Usage Example
//
//	import (
//	    "github.com/jmgilman/go/docdir/core"
//	    "github.com/jmgilman/go/docdir/directory"
//	)
//
//	func openSegments(ctx context.Context, store core.Store) error {
//	    dir, err := directory.New(store, core.Namespace{Category: "articles", Version: 3})
//	    if err != nil {
//	        return err
//	    }
//	    defer dir.Close()
//
//	    in, err := dir.OpenInput(ctx, "segments.gen")
//	    if err != nil {
//	        return err
//	    }
//	    defer in.Close()
//	    // Read from in...
//	    return nil
//	}
//
// # Errors
//
// Operations return errors that wrap io/fs sentinels, so stdlib checks work:
//
//	if errors.Is(err, fs.ErrNotExist) {
//	    // no record with that name in the namespace
//	}
//
// The same errors carry docdir/errors codes for finer classification.
//
// # Provider Implementations
//
// Stores live in separate packages under store/: memory, badger, redis,
// postgres and minio. All of them pass the storetest conformance suite.
package core
