// Package cdn talks to the game's maintenance endpoint and asset CDN.
//
// BundleVersion asks the maintenance service for the current bundle version,
// FetchCatalog downloads the addressables catalog for that version, and
// DownloadBundle streams one bundle file. Requests that fail before any body
// bytes are consumed are retried with exponential backoff; a stream that
// breaks midway is reported to the caller, which owns the partial output.
package cdn
