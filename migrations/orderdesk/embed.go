// Package orderdesk embeds the goose migrations for the order desk schema.
// Tables for every bounded context live in one migration stream because
// orders reference products and accounts across contexts.
package orderdesk

import "embed"

//go:embed *.sql
var FS embed.FS
