// Package extractors provides implementations of the Extractor interface
// for the supported document formats. Each extractor turns the bytes of one
// family of MIME types into plain text.
//
// Extractors are registered with the Registry at startup.
package extractors
