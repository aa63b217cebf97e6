// Package ingest discovers input documents on the local filesystem.
package ingest

// Source is one discovered input file.
type Source struct {
	Path    string // absolute
	Name    string // base name
	Ext     string // lowercase, without '.'
	HashHex string // sha256 of the content
	Size    int64
}

// Failure records a file that matched but could not be read.
type Failure struct {
	Path string
	Err  string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}

// ScanOptions controls which files a scan picks up.
type ScanOptions struct {
	Recursive  bool
	SkipHidden bool
	Extensions []string // nil -> constants.AllowedExtensions
}
