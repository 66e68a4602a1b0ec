// Package translation provides the Translation Service abstraction used by the
// pipeline, OpenAI and Gemini backends, caching, circuit breaking and rate
// limiting decorators, and the fail-open ItemTranslator that applies a service
// to single table cells.
package translation
