// Package scrape defines the core types, interfaces and errors shared by the
// fetch, extract and write stages of a scrape run.
package scrape
