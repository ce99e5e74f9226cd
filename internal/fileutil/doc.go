// Package fileutil discovers the files of a scan root and probes them for
// binary content.
//
// This package is the single place where repoquill touches the directory tree
// during discovery. Everything downstream (classification, loading, formatting)
// works on the models.FileEntry values it produces.
//
// # Discovery
//
// Discover returns a lazy, single-pass sequence:
//
//	for entry, err := range fileutil.Discover(ctx, root, fileutil.DiscoverOptions{HonorIgnore: true}) {
//	    if err != nil {
//	        return err // only ever ctx.Err() or ignore rule construction failures
//	    }
//	    fmt.Println(entry.RelativePath)
//	}
//
// The walk is depth-first. At each directory the files are yielded first, then
// each subdirectory is entered in name order. Callers observe entries as they are
// found, so progress can be reported and the walk stopped at any time by breaking
// out of the loop or cancelling ctx.
//
// # Filtering
//
//   - Names starting with "." are skipped, files and directories alike, whether
//     or not ignore files are honored.
//   - With HonorIgnore, every ignore file under the root is merged into one rule
//     set (see package ignore). Ignored directories are pruned, not just hidden.
//   - Symlinks to regular files are followed. Symlinked directories and special
//     files (sockets, devices, pipes) are skipped.
//
// # Error Tolerance
//
// A directory that cannot be listed, or a file whose metadata cannot be read, is
// skipped and the walk continues elsewhere. OnSkip receives those paths for
// logging. Discovery of an unreadable tree therefore yields fewer entries rather
// than failing.
//
// # Binary Detection
//
// IsBinary checks a fixed list of binary extensions first and falls back to
// scanning the first 8 KiB for a null byte. The extension check wins: a text
// file named "notes.exe" is binary without ever being opened. I/O errors during
// the probe mean "not binary".
package fileutil
