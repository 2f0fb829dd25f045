// Package files locates raw dataset files on disk.
//
// The loader asks ResolveSource for the configured raw dataset. When that
// file is absent, the newest .xlsx or .csv beside it is used instead, so a
// freshly exported workbook can be dropped into data/raw without editing
// configuration.
package files
