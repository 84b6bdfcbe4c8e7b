// Package inbox watches a local directory for documents to ingest.
//
// The watcher emits one Change per file once its events have been quiet for
// a short period, so a file that is still being copied is reported only after
// the copy settles. Hidden files and directories are ignored.
package inbox
