// Package markdown implements the press ingestion pipeline: front matter
// extraction, Goldmark rendering, filesystem discovery, and synchronisation
// of documents into the article store.
package markdown
